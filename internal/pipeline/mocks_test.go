package pipeline_test

import (
	"context"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	infra "github.com/dvloznov/hcstc-decisioning/internal/infra/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// MockCategorizer is a mock implementation of pipeline.Categorizer.
type MockCategorizer struct {
	ClassifyBatchFunc func(txns []domain.Transaction) []domain.CategoryMatch
}

func (m *MockCategorizer) ClassifyBatch(txns []domain.Transaction) []domain.CategoryMatch {
	if m.ClassifyBatchFunc != nil {
		return m.ClassifyBatchFunc(txns)
	}
	return make([]domain.CategoryMatch, len(txns))
}

// MockCalculator is a mock implementation of pipeline.MetricsCalculator.
type MockCalculator struct {
	CalculateFunc func(app domain.Application, s categorisation.Summary) metrics.Metrics
}

func (m *MockCalculator) Calculate(app domain.Application, s categorisation.Summary) metrics.Metrics {
	if m.CalculateFunc != nil {
		return m.CalculateFunc(app, s)
	}
	return metrics.Metrics{}
}

// MockScorer is a mock implementation of pipeline.Scorer.
type MockScorer struct {
	ScoreFunc func(applicationID string, m metrics.Metrics) scoring.Result
}

func (m *MockScorer) Score(applicationID string, mt metrics.Metrics) scoring.Result {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(applicationID, mt)
	}
	return scoring.Result{ApplicationID: applicationID, Decision: scoring.Refer}
}

// MockNarrator is a mock implementation of pipeline.Narrator.
type MockNarrator struct {
	SummarizeFunc func(ctx context.Context, result scoring.Result, m metrics.Metrics) (*narrative.Narrative, error)
}

func (m *MockNarrator) Summarize(ctx context.Context, result scoring.Result, mt metrics.Metrics) (*narrative.Narrative, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, result, mt)
	}
	return &narrative.Narrative{Summary: "mock summary"}, nil
}

// MockDecisionWriter is a mock implementation of pipeline.DecisionWriter.
type MockDecisionWriter struct {
	InsertDecisionFunc func(ctx context.Context, row *infra.DecisionRow) error
}

func (m *MockDecisionWriter) InsertDecision(ctx context.Context, row *infra.DecisionRow) error {
	if m.InsertDecisionFunc != nil {
		return m.InsertDecisionFunc(ctx, row)
	}
	return nil
}

// MockStorageService is a mock implementation of pipeline.StorageService.
type MockStorageService struct {
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
	UploadBytesFunc  func(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error)
	UploadFileFunc   func(ctx context.Context, bucketName, objectName, filePath string) error
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return nil, nil
}

func (m *MockStorageService) UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error) {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, bucketName, objectName, contentType, data)
	}
	return "gs://" + bucketName + "/" + objectName, nil
}

func (m *MockStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, bucketName, objectName, filePath)
	}
	return nil
}
