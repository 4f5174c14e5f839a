package fnbound

// Evaluate runs the per-binary pipeline on loaded tables: it detects the
// alignment of the truth table, classifies the predictions and computes the
// scores. The returned warnings are the load diagnostics of the tables
// followed by ErrAlignmentIndeterminate, if raised; none of them prevent
// scoring.
func Evaluate(binary string, t *Tables) (*FileStats, []error) {
	warnings := append([]error(nil), t.Diagnostics...)

	mode, err := DetectAlignment(t.Truth.Table)
	if err != nil {
		warnings = append(warnings, err)
	}

	return Classify(binary, t.Truth, t.Predicted, mode), warnings
}
