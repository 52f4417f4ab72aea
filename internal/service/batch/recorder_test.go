package batch

import (
	"context"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type mockRecorder struct {
	cohortRecords []domain.CohortResultRecord
	summaries     []domain.BatchSummaryRecord
	flushes       int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{}
}

func (m *mockRecorder) RecordCohortResults(_ context.Context, records []domain.CohortResultRecord) error {
	m.cohortRecords = append(m.cohortRecords, records...)
	return nil
}

func (m *mockRecorder) RecordBatchSummary(_ context.Context, record domain.BatchSummaryRecord) error {
	m.summaries = append(m.summaries, record)
	return nil
}

func (m *mockRecorder) Flush(_ context.Context) error {
	m.flushes++
	return nil
}

func (m *mockRecorder) Close() error {
	return nil
}
