// Package services orchestrates one upload end to end: parse the CSV, run
// the pipeline, append the upload log row, and keep the resulting report
// available for the dashboard.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bizpulse/internal/dataset"
	"bizpulse/internal/models"
	"bizpulse/internal/pipeline"
)

// UploadLog is the slice of the store the analytics service needs.
type UploadLog interface {
	LogUpload(ctx context.Context, username, filename string) (*models.Upload, error)
	UploadsByUser(ctx context.Context, username string) ([]models.Upload, error)
}

type Analytics struct {
	mu       sync.RWMutex
	reports  map[string]*models.Report
	pipeline *pipeline.Pipeline
	uploads  UploadLog
	logger   *slog.Logger
	runs     atomic.Int64
}

func NewAnalytics(uploads UploadLog, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		reports:  make(map[string]*models.Report),
		pipeline: pipeline.New(logger),
		uploads:  uploads,
		logger:   logger,
	}
}

// Analyze processes one uploaded CSV on behalf of the session. The dataset
// lives only inside this call; on success the report snapshot replaces the
// user's previous one and the upload is appended to the log. A pipeline
// failure produces no tables and no log row.
func (a *Analytics) Analyze(ctx context.Context, session models.Session, r io.Reader, filename string) (*models.Report, error) {
	start := time.Now()

	ds, err := dataset.ReadCSV(r)
	if err != nil {
		return nil, err
	}

	report, err := a.pipeline.Run(ctx, ds)
	if err != nil {
		return nil, err
	}

	if a.uploads != nil {
		if _, err := a.uploads.LogUpload(ctx, session.Username, filename); err != nil {
			return nil, fmt.Errorf("record upload: %w", err)
		}
	}

	a.mu.Lock()
	a.reports[session.Username] = report
	a.mu.Unlock()
	a.runs.Add(1)

	a.logger.Info("analysis complete",
		"username", session.Username,
		"filename", filename,
		"records", report.RecordCount,
		"dropped", report.DroppedRows,
		"duration", time.Since(start),
	)
	return report, nil
}

// Report returns the session's latest report, or nil when the user has not
// uploaded anything yet.
func (a *Analytics) Report(session models.Session) *models.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reports[session.Username]
}

// Uploads lists the session's upload history, most recent first.
func (a *Analytics) Uploads(ctx context.Context, session models.Session) ([]models.Upload, error) {
	if a.uploads == nil {
		return []models.Upload{}, nil
	}
	return a.uploads.UploadsByUser(ctx, session.Username)
}

// Stats is the monitoring snapshot for /admin/stats.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var records int
	for _, rep := range a.reports {
		records += rep.RecordCount
	}

	return map[string]any{
		"runs":               a.runs.Load(),
		"users_with_reports": len(a.reports),
		"records_in_reports": records,
	}
}
