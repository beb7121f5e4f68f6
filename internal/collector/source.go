package collector

import (
	"context"
	"time"

	"PrebloomScout/internal/model"
)

// Source defines the interface for fetching discussion text units.
type Source interface {
	// FetchUnits returns units created at or after since.
	FetchUnits(ctx context.Context, since time.Time) ([]model.TextUnit, error)
	Name() string
}

// MockSource returns fixed units for development and testing.
type MockSource struct {
	SourceName string
	Units      []model.TextUnit
	Err        error
}

func (m *MockSource) Name() string {
	if m.SourceName != "" {
		return m.SourceName
	}
	return "mock"
}

func (m *MockSource) FetchUnits(_ context.Context, _ time.Time) ([]model.TextUnit, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.TextUnit(nil), m.Units...), nil
}
