package resultrecorder

import (
	"context"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.ResultRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordCohortResults(_ context.Context, _ []domain.CohortResultRecord) error {
	return nil
}

func (n *noopRecorder) RecordBatchSummary(_ context.Context, _ domain.BatchSummaryRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
