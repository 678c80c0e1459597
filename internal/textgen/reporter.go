// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Failure describes a generation call that exhausted its retries.
type Failure struct {
	Stage    string
	Provider string
	Model    string
	Attempts int
	Err      error
}

// Reporter receives non-fatal generation failures.
type Reporter interface {
	ReportFailure(ctx context.Context, f Failure)
}

// NopReporter discards failures.
type NopReporter struct{}

// ReportFailure does nothing.
func (NopReporter) ReportFailure(context.Context, Failure) {}

// LogReporter writes failures as structured error records.
type LogReporter struct {
	Logger *slog.Logger
}

// ReportFailure logs the failure with its full error chain as the trace.
func (r LogReporter) ReportFailure(ctx context.Context, f Failure) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "generation request failed",
		slog.String("stage", f.Stage),
		slog.String("provider", f.Provider),
		slog.String("model", f.Model),
		slog.Int("attempts", f.Attempts),
		slog.String("error", f.Err.Error()),
		slog.String("trace", errorTrace(f.Err)),
	)
}

// errorTrace renders the wrap chain of err, outermost first.
func errorTrace(err error) string {
	var parts []string
	for err != nil {
		parts = append(parts, fmt.Sprintf("%T: %v", err, err))
		next, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = next.Unwrap()
	}
	return strings.Join(parts, " <- ")
}
