package share

import (
	"context"
	"log/slog"
)

// LogAnalytics writes click events to a logger.
type LogAnalytics struct {
	Logger *slog.Logger
}

// Write implements Analytics.
func (a LogAnalytics) Write(ctx context.Context, e ClickEvent) error {
	unique := 0
	if e.Unique {
		unique = 1
	}
	a.Logger.InfoContext(ctx, e.Name,
		slog.String("token", e.Token),
		slog.String("channel", e.Channel),
		slog.String("campaign", e.Campaign),
		slog.String("content_id", e.ContentID),
		slog.Int("unique", unique),
		slog.Int64("timestamp", e.Timestamp.UnixMilli()))
	return nil
}

// Multi fans events out to several sinks and returns the first error.
type Multi []Analytics

// Write implements Analytics.
func (m Multi) Write(ctx context.Context, e ClickEvent) error {
	var first error
	for _, a := range m {
		if err := a.Write(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clicks implements StatsReader using the first sink that supports it.
func (m Multi) Clicks(ctx context.Context, token string) (ClickStats, error) {
	for _, a := range m {
		if r, ok := a.(StatsReader); ok {
			return r.Clicks(ctx, token)
		}
	}
	return ClickStats{}, ErrStatsUnsupported
}
