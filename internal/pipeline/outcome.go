package pipeline

import (
	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/agents"
	"github.com/smalter/autodoc/internal/quality"
)

// Outcome is the terminal report of one pipeline run. Rejections carry the
// gate index, a reason code and at least one actionable suggestion; they
// are ordinary results, never errors.
type Outcome struct {
	DocumentID      string                    `json:"document_id"`
	FileName        string                    `json:"file_name,omitempty"`
	Status          constants.PipelineStatus  `json:"status"`
	FileClass       constants.FileClass       `json:"file_type,omitempty"`
	RejectedAtGate  int                       `json:"rejected_at_gate"` // -1 when completed
	RejectionReason constants.RejectionReason `json:"rejection_reason,omitempty"`
	Message         string                    `json:"message"`
	Suggestions     []string                  `json:"suggestions,omitempty"`
	QualityScore    *quality.Score            `json:"quality_score,omitempty"`
	Result          *agents.ProcessingResult  `json:"result,omitempty"`
	Metadata        map[string]any            `json:"metadata,omitempty"`
}

// Completed reports whether the document made it through every gate.
func (o Outcome) Completed() bool {
	return o.Status == constants.StatusCompleted
}

func (o *Outcome) mergeMetadata(extra map[string]any) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		o.Metadata[k] = v
	}
}
