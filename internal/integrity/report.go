package integrity

import (
	"log/slog"

	"samplegraph/internal/logging"
)

// Report summarizes one repair or refresh run. Purely informational; the
// reporting path never fails the run.
type Report struct {
	Total             int `json:"total"`
	Checked           int `json:"checked"`
	IssuesFound       int `json:"issues_found"`
	FieldsFilled      int `json:"fields_filled"`
	FieldsRefreshed   int `json:"fields_refreshed"`
	MarkedUnavailable int `json:"marked_unavailable"`
	BatchesSkipped    int `json:"batches_skipped"`
	FetchesUsed       int `json:"fetches_used"`
	FetchBudget       int `json:"fetch_budget"`
	RemainingSamples  int `json:"remaining_samples"`
}

// Log emits the report through the supplied logger.
func (r Report) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("integrity report",
		logging.Int("total", r.Total),
		logging.Int("checked", r.Checked),
		logging.Int("issues_found", r.IssuesFound),
		logging.Int("fields_filled", r.FieldsFilled),
		logging.Int("fields_refreshed", r.FieldsRefreshed),
		logging.Int("marked_unavailable", r.MarkedUnavailable),
		logging.Int("batches_skipped", r.BatchesSkipped),
		logging.Int("fetches_used", r.FetchesUsed),
		logging.Int("fetch_budget", r.FetchBudget),
		logging.Int("remaining_samples", r.RemainingSamples))
}
