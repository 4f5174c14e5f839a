package fnbound

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// textHeader is the keyword of the optional first record of a truth table.
const textHeader = "text"

// AddressTable maps a function start address to its length in bytes. A zero
// length means the length is unknown and matches any boundary.
type AddressTable map[uint64]int64

// Sorted returns the table's addresses in ascending order.
func (t AddressTable) Sorted() []uint64 {
	return sortedKeys(t)
}

// TextRegion is the inclusive address range that predictions are scored in.
type TextRegion struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
	// Explicit is set when the range came from a "text" header rather than
	// from the extent of the truth table.
	Explicit bool `json:"explicit"`
	empty    bool
}

// Contains reports whether addr lies within [Start, End].
func (r TextRegion) Contains(addr uint64) bool {
	if r.empty {
		return false
	}
	return addr >= r.Start && addr <= r.End
}

// RegionOf derives a TextRegion from the extent of the table: from its lowest
// address to the last byte of its highest-addressed entry. An empty table
// yields a region that contains nothing.
func RegionOf(t AddressTable) TextRegion {
	if len(t) == 0 {
		return TextRegion{empty: true}
	}
	addrs := t.Sorted()
	first, last := addrs[0], addrs[len(addrs)-1]
	end := last
	if n := t[last]; n > 0 {
		end = last + uint64(n) - 1
	}
	return TextRegion{Start: first, End: end}
}

// Truth is a parsed ground-truth table.
type Truth struct {
	Table  AddressTable
	Region TextRegion
}

// ReadTruth parses a ground-truth table. The first record may be a
// "text <startHex> <endHex>" header establishing the scored region; without
// it the region is derived from the table. Malformed data lines are skipped
// and returned as diagnostics. A malformed header is returned as a
// HeaderError and the table must not be scored.
func ReadTruth(r io.Reader) (*Truth, []error, error) {
	t := &Truth{Table: make(AddressTable)}
	var (
		diags     []error
		header    bool
		firstLine = true
		headerErr error
	)

	err := eachLine(r, func(lineNo int, line string, tooLong bool) bool {
		if tooLong {
			firstLine = false
			diags = append(diags, longLineError(lineNo, line))
			return true
		}
		fields := strings.Fields(line)

		if firstLine && len(fields) > 0 {
			firstLine = false
			if fields[0] == textHeader {
				region, err := parseHeader(fields)
				if err != nil {
					headerErr = &HeaderError{Text: line, Err: err}
					return false
				}
				t.Region = region
				header = true
				return true
			}
		}

		addr, n, err := parseRecord(fields)
		if err != nil {
			diags = append(diags, recordError(lineNo, line, err))
			return true
		}
		t.Table[addr] = n
		return true
	})
	if headerErr != nil {
		return nil, diags, headerErr
	}
	if err != nil {
		return nil, diags, fmt.Errorf("failed to read truth table: %w", err)
	}

	if !header {
		t.Region = RegionOf(t.Table)
	}
	return t, diags, nil
}

// ReadPredicted parses a prediction table of address/length pairs. A header
// line, if any, has no special meaning and is diagnosed like any other
// malformed record.
func ReadPredicted(r io.Reader) (AddressTable, []error, error) {
	t := make(AddressTable)
	var diags []error

	err := eachLine(r, func(lineNo int, line string, tooLong bool) bool {
		if tooLong {
			diags = append(diags, longLineError(lineNo, line))
			return true
		}
		addr, n, err := parseRecord(strings.Fields(line))
		if err != nil {
			diags = append(diags, recordError(lineNo, line, err))
			return true
		}
		t[addr] = n
		return true
	})
	if err != nil {
		return nil, diags, fmt.Errorf("failed to read prediction table: %w", err)
	}
	return t, diags, nil
}

// maxLineLength bounds a table record. Longer lines are skipped and
// diagnosed; line holds only their first maxLineLength bytes.
const maxLineLength = 64 * 1024

// eachLine calls fn with every line of r, without its line ending, until fn
// returns false. Only read errors are returned.
func eachLine(r io.Reader, fn func(lineNo int, line string, tooLong bool) bool) error {
	br := bufio.NewReaderSize(r, maxLineLength)
	for lineNo := 1; ; lineNo++ {
		chunk, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line := string(chunk)

		tooLong := isPrefix
		for isPrefix {
			_, isPrefix, err = br.ReadLine()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
		if !fn(lineNo, line, tooLong) {
			return nil
		}
	}
}

// Tables holds everything loaded for one binary.
type Tables struct {
	Truth     *Truth
	Predicted AddressTable
	// Diagnostics lists skipped records of both files.
	Diagnostics []error
}

// LoadBinary opens and parses the truth and prediction tables of one binary.
// A truth file that cannot be opened yields an error wrapping
// ErrMissingGroundTruth.
func LoadBinary(truthPath, predPath string) (*Tables, error) {
	tf, err := os.Open(truthPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingGroundTruth, truthPath, err)
	}
	defer tf.Close()

	truth, tdiags, err := ReadTruth(tf)
	if err != nil {
		if IsHeaderError(err) {
			return nil, fmt.Errorf("%s: %w", truthPath, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingGroundTruth, truthPath, err)
	}

	pf, err := os.Open(predPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction table: %w", err)
	}
	defer pf.Close()

	pred, pdiags, err := ReadPredicted(pf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", predPath, err)
	}

	tables := &Tables{Truth: truth, Predicted: pred}
	for _, d := range tdiags {
		tables.Diagnostics = append(tables.Diagnostics, fmt.Errorf("%s: %w", truthPath, d))
	}
	for _, d := range pdiags {
		tables.Diagnostics = append(tables.Diagnostics, fmt.Errorf("%s: %w", predPath, d))
	}
	return tables, nil
}

func parseHeader(fields []string) (TextRegion, error) {
	if len(fields) < 3 {
		return TextRegion{}, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	start, err := ParseAddress(fields[1])
	if err != nil {
		return TextRegion{}, err
	}
	end, err := ParseAddress(fields[2])
	if err != nil {
		return TextRegion{}, err
	}
	return TextRegion{Start: start, End: end, Explicit: true}, nil
}

// errTooFewFields marks a record with fewer than two fields.
var errTooFewFields = fmt.Errorf("fewer than two fields")

func parseRecord(fields []string) (uint64, int64, error) {
	if len(fields) < 2 {
		return 0, 0, errTooFewFields
	}
	addr, err := ParseAddress(fields[0])
	if err != nil {
		return 0, 0, err
	}
	n, err := ParseInt(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return addr, n, nil
}

// quoteLimit bounds how much of an over-long line a diagnostic quotes.
const quoteLimit = 32

func longLineError(lineNo int, line string) error {
	if len(line) > quoteLimit {
		line = line[:quoteLimit] + "..."
	}
	return &MalformedRecordError{
		Line:   lineNo,
		Text:   line,
		Reason: fmt.Sprintf("line longer than %d bytes", maxLineLength),
	}
}

func recordError(lineNo int, line string, err error) error {
	if err == errTooFewFields {
		return &MalformedRecordError{Line: lineNo, Text: line, Reason: err.Error()}
	}
	return &MalformedRecordError{Line: lineNo, Text: line, Reason: "bad number", Err: err}
}
