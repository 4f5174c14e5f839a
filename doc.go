// Package fnbound scores how well a function-detection tool recovers the
// function boundaries of stripped executables. It compares the tool's
// predicted (address, length) table against a ground-truth table derived from
// the unstripped binary.
//
// # Tables
//
// A ground-truth table may start with a "text <start> <end>" record that
// bounds the scored address range. Every other record of both tables is an
// address/length pair; see [ParseAddress] and [ParseInt] for the accepted
// number forms. Use [ReadTruth] and [ReadPredicted] to parse readers, or
// [LoadBinary] to open the two files of one binary.
//
// # Alignment
//
// [DetectAlignment] infers whether function starts are padded to 16 bytes,
// 2 bytes or not at all. The alignment sets how far a predicted end may fall
// short of the true end and still count as a match.
//
// # Classification
//
// [Classify] assigns every predicted address inside the text region one
// outcome:
//   - Match: the address is a true start and the lengths agree within tolerance
//   - Long: the prediction runs past the true end
//   - Short: the prediction stops before the true end
//   - Other: the address is not a true start (false positive)
//
// Every true start the tool never reported is Missing. A Missing start that
// lies strictly inside the span of a Long prediction is buried under it.
//
// # Scores
//
// Start-level scores treat every predicted true start as a hit; boundary-level
// scores only accept matches. [Corpus] folds binaries into corpus totals,
// score triples and worst-performer rankings, and the Write* functions render
// the detail report, the results CSVs and the run summary.
package fnbound
