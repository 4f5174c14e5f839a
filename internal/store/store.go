// Package store records scoring runs in a SQLite database so that results
// can be compared across runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maxgio92/fnbound"
)

// Binary statuses as stored.
const (
	StatusScored = "scored"
	StatusFailed = "failed"
)

// Run is one scoring run with its corpus-level totals and scores.
type Run struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	Pattern    string

	Binaries int
	Failed   int
	GT       int
	Matches  int
	Shorts   int
	Longs    int
	Others   int
	Missings int

	PrecSt     float64
	RecallSt   float64
	F1St       float64
	F1BdShorts float64
	PrecBd     float64
	RecallBd   float64
	F1Bd       float64

	Scores []BinaryScore `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// BinaryScore is one binary's result within a Run.
type BinaryScore struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index;not null;type:varchar(36)"`
	Binary    string `gorm:"column:name;index;not null"`
	Status    string `gorm:"type:varchar(10)"`
	Error     string
	Alignment string `gorm:"type:varchar(10)"`

	FPSt    int
	FPBd    int
	TPSt    int
	TPBd    int
	LongBd  int
	ShortBd int
	Missing int
	GT      int
	Buried  int

	PrecSt   float64
	RecallSt float64
	F1St     float64
	PrecBd   float64
	RecallBd float64
	F1Bd     float64
}

// NewRun converts a finished corpus into a Run ready to be saved.
func NewRun(id string, startedAt, finishedAt time.Time, pattern string, c *fnbound.Corpus) *Run {
	t := c.Totals()
	tr := c.Triples()
	failures := c.Failures()

	r := &Run{
		ID:         id,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Pattern:    pattern,
		Binaries:   t.Binaries,
		Failed:     len(failures),
		GT:         t.GT,
		Matches:    t.Matches,
		Shorts:     t.Shorts,
		Longs:      t.Longs,
		Others:     t.Others,
		Missings:   t.Missings,
		PrecSt:     tr.Start.Precision,
		RecallSt:   tr.Start.Recall,
		F1St:       tr.Start.F1,
		F1BdShorts: tr.BoundaryWithShorts.F1,
		PrecBd:     tr.Boundary.Precision,
		RecallBd:   tr.Boundary.Recall,
		F1Bd:       tr.Boundary.F1,
	}

	for _, f := range c.Files() {
		cn, sc := f.Counts, f.Scores
		r.Scores = append(r.Scores, BinaryScore{
			RunID:     id,
			Binary:    f.Binary,
			Status:    StatusScored,
			Alignment: f.Alignment.String(),
			FPSt:      cn.FPSt,
			FPBd:      cn.FPBd,
			TPSt:      cn.TPSt,
			TPBd:      cn.TPBd,
			LongBd:    cn.LongBd,
			ShortBd:   cn.ShortBd,
			Missing:   cn.Missing,
			GT:        cn.GT,
			Buried:    f.BuriedCount,
			PrecSt:    sc.PrecSt,
			RecallSt:  sc.RecallSt,
			F1St:      sc.F1St,
			PrecBd:    sc.PrecBd,
			RecallBd:  sc.RecallBd,
			F1Bd:      sc.F1Bd,
		})
	}
	for _, f := range failures {
		r.Scores = append(r.Scores, BinaryScore{
			RunID:  id,
			Binary: f.Binary,
			Status: StatusFailed,
			Error:  f.Reason,
		})
	}
	return r
}

// Store is a handle on the run history database.
type Store struct {
	db *gorm.DB
}

// Open opens, creating if needed, the SQLite database at path and migrates
// its schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &BinaryScore{}); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to migrate database: %w", err), closeDB(db))
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return closeDB(s.db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores r and its binary scores in one transaction.
func (s *Store) SaveRun(ctx context.Context, r *Run) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first, without their
// binary scores.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given id and its binary scores ordered by
// binary.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := s.db.WithContext(ctx).
		Preload("Scores", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &r, nil
}

// BinaryHistory returns up to limit scores of one binary across runs, most
// recent run first.
func (s *Store) BinaryHistory(ctx context.Context, binary string, limit int) ([]BinaryScore, error) {
	var scores []BinaryScore
	err := s.db.WithContext(ctx).
		Joins("JOIN runs ON runs.id = binary_scores.run_id").
		Where("binary_scores.name = ?", binary).
		Order("runs.started_at DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get history of %s: %w", binary, err)
	}
	return scores, nil
}

// IsNotFound reports whether err stems from a lookup that matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
