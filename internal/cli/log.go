package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphimg/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Packed graph.bin (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports pipeline and cache events as debug log lines. It is
// registered when --verbose is set.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnGenerateStart(_ context.Context, source string, vertices, edges uint64) {
	h.logger.Debug("generate started", "source", source, "vertices", vertices, "edges", edges)
}

func (h *logHooks) OnGenerateComplete(_ context.Context, source string, edges uint64, d time.Duration, err error) {
	h.complete("generate", err, "source", source, "edges", edges, "duration", d)
}

func (h *logHooks) OnEncodeStart(_ context.Context, path string) {
	h.logger.Debug("encode started", "path", path)
}

func (h *logHooks) OnEncodeComplete(_ context.Context, path string, words uint64, d time.Duration, err error) {
	h.complete("encode", err, "path", path, "words", words, "duration", d)
}

func (h *logHooks) OnPackStart(_ context.Context, path string) {
	h.logger.Debug("pack started", "path", path)
}

func (h *logHooks) OnPackComplete(_ context.Context, path string, bytes uint64, d time.Duration, err error) {
	h.complete("pack", err, "path", path, "bytes", bytes, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache store", "type", keyType, "size", size)
}

func (h *logHooks) complete(stage string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(stage+" finished", keyvals...)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
)
