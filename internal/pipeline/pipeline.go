// Package pipeline turns one uploaded dataset into the summary tables shown
// on the dashboard: validation, type coercion, revenue derivation, then
// grouped aggregation. A run is a pure function of (dataset, session); no
// state survives it.
package pipeline

import (
	"context"
	"log/slog"

	"bizpulse/internal/dataset"
	"bizpulse/internal/models"
)

const topProductCount = 5

type Pipeline struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Run executes the full pipeline. Column-level failures (missing required
// columns) abort the run with *MissingColumnsError and produce no tables;
// row-level coercion failures only drop the affected rows.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) (*models.Report, error) {
	ds.NormalizeColumns()

	if err := p.Validate(ds); err != nil {
		return nil, err
	}

	batch := p.Normalize(ds)

	if err := p.Derive(batch); err != nil {
		return nil, err
	}

	return p.Aggregate(ctx, batch), nil
}
