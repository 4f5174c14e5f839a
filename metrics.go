package fnbound

// Score is a precision/recall/F1 triple. All values are in [0, 1].
type Score struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Scores holds the start-level and boundary-level scores of one binary.
type Scores struct {
	PrecSt   float64 `json:"precSt" yaml:"precSt"`
	RecallSt float64 `json:"recallSt" yaml:"recallSt"`
	F1St     float64 `json:"f1St" yaml:"f1St"`
	PrecBd   float64 `json:"precBd" yaml:"precBd"`
	RecallBd float64 `json:"recallBd" yaml:"recallBd"`
	F1Bd     float64 `json:"f1Bd" yaml:"f1Bd"`
}

// Start returns the start-level triple.
func (s Scores) Start() Score {
	return Score{Precision: s.PrecSt, Recall: s.RecallSt, F1: s.F1St}
}

// Boundary returns the boundary-level triple.
func (s Scores) Boundary() Score {
	return Score{Precision: s.PrecBd, Recall: s.RecallBd, F1: s.F1Bd}
}

// ComputeScores derives the start- and boundary-level scores from a binary's
// counts. Zero denominators yield zero rather than an error.
func ComputeScores(c Counts) Scores {
	st := NewScore(c.TPSt, c.TPSt+c.FPSt, c.GT)
	bd := NewScore(c.TPBd, c.TPBd+c.FPBd, c.GT)
	return Scores{
		PrecSt:   st.Precision,
		RecallSt: st.Recall,
		F1St:     st.F1,
		PrecBd:   bd.Precision,
		RecallBd: bd.Recall,
		F1Bd:     bd.F1,
	}
}

// NewScore computes precision = tp/reported and recall = tp/relevant, and
// their harmonic mean. F1 is zero whenever precision is zero.
func NewScore(tp, reported, relevant int) Score {
	s := Score{
		Precision: ratio(tp, reported),
		Recall:    ratio(tp, relevant),
	}
	if s.Precision > 0 && s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
