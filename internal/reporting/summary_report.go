package reporting

import (
	"fmt"
	"io"
	"strings"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
)

// WriteSummary writes the banner-style aggregate block shown at the end of a
// CLI run.
func WriteSummary(w io.Writer, metrics evaluationengine.SummaryMetrics) error {
	rule := strings.Repeat("=", 60)

	_, err := fmt.Fprintf(w, "\n%s\nSUMMARY RESULTS\n%s\n", rule, rule)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	fmt.Fprintf(w, "Total Images Processed: %d\n", metrics.TotalItems)
	fmt.Fprintf(w, "Images with Ground Truth: %d\n", metrics.ItemsWithReference)
	fmt.Fprintf(w, "Average CER: %.4f\n", metrics.AverageErrorRate)
	fmt.Fprintf(w, "Accuracy (Exact Match): %.4f (%.2f%%)\n", metrics.ExactMatchAccuracy, metrics.ExactMatchAccuracy*100)
	fmt.Fprintf(w, "Correct Predictions: %d/%d\n", metrics.CorrectPredictions, metrics.ItemsWithReference)
	fmt.Fprintf(w, "Total Substitutions: %d\n", metrics.TotalSubstitutions)
	fmt.Fprintf(w, "Total Deletions: %d\n", metrics.TotalDeletions)
	fmt.Fprintf(w, "Total Insertions: %d\n", metrics.TotalInsertions)
	_, err = fmt.Fprintln(w, rule)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
