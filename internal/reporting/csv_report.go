// Package reporting renders evaluation results as CSV files and as a
// human-readable summary block. Both sinks are pure writers over a result
// collection; they never touch the database.
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
)

// csvHeader is the stable column set of the per-item results file. Downstream
// spreadsheets depend on these names; do not reorder.
var csvHeader = []string{"image", "ground_truth", "prediction", "cer_score"}

// WriteCSV writes one row per evaluation result, in result order, preceded by
// the header row. CER scores are rendered with four decimal places.
func WriteCSV(w io.Writer, results []evaluationengine.ItemResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, res := range results {
		row := []string{
			res.ImageRef,
			res.Reference,
			res.Candidate,
			fmt.Sprintf("%.4f", res.ErrorRate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for '%s': %w", res.ImageRef, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
