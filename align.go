package fnbound

import "fmt"

// AlignmentMode is the byte granularity at which function starts of a binary
// are expected to occur.
type AlignmentMode int

// Recognized alignment modes.
const (
	Align1 AlignmentMode = 1
	Align2 AlignmentMode = 2
	Align4 AlignmentMode = 4
)

// alignmentThreshold is the share of addresses that must agree on an
// alignment for it to be assumed.
const alignmentThreshold = 0.9

func (m AlignmentMode) String() string {
	return fmt.Sprintf("align%d", int(m))
}

// Tolerance returns how many bytes a prediction may fall short of the true
// end and still count as a boundary match. Under Align4 the compiler pads to
// 16 bytes, so anything within one quantum matches; otherwise only an
// off-by-one end is forgiven.
func (m AlignmentMode) Tolerance() int64 {
	if m == Align4 {
		return 15
	}
	return 1
}

// DetectAlignment infers the alignment of the truth table's function starts.
// Align4 is chosen when more than 90% of the addresses are multiples of 16,
// Align2 when more than 90% are even. Otherwise Align1 is returned together
// with ErrAlignmentIndeterminate, which callers should treat as a warning.
func DetectAlignment(t AddressTable) (AlignmentMode, error) {
	if len(t) == 0 {
		return Align1, fmt.Errorf("%w: empty table", ErrAlignmentIndeterminate)
	}

	var cnt4, cnt2 int
	for a := range t {
		switch {
		case a%16 == 0:
			cnt4++
		case a%2 == 0:
			cnt2++
		}
	}

	total := float64(len(t))
	switch {
	case float64(cnt4)/total > alignmentThreshold:
		return Align4, nil
	case float64(cnt4+cnt2)/total > alignmentThreshold:
		return Align2, nil
	default:
		return Align1, fmt.Errorf("%w: %d of %d at 16 bytes, %d at 2 bytes",
			ErrAlignmentIndeterminate, cnt4, len(t), cnt2)
	}
}
