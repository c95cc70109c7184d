package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline and cache events as debug log lines.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnParseStart(_ context.Context, format, file string) {
	h.Logger.Debug("parse start", "format", format, "file", file)
}

func (h *LogHooks) OnParseComplete(_ context.Context, format, file string, eventCount int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("parse failed", "format", format, "file", file, "err", err)
		return
	}
	h.Logger.Debug("parse done", "format", format, "file", file, "events", eventCount, "duration", duration)
}

func (h *LogHooks) OnLensStart(_ context.Context, lens string, layers int) {
	h.Logger.Debug("lens start", "lens", lens, "layers", layers)
}

func (h *LogHooks) OnLensComplete(_ context.Context, lens string, eventCount int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("lens failed", "lens", lens, "err", err)
		return
	}
	h.Logger.Debug("lens done", "lens", lens, "events", eventCount, "duration", duration)
}

func (h *LogHooks) OnGenerateStart(_ context.Context, formats []string) {
	h.Logger.Debug("generate start", "formats", formats)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, formats []string, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("generate failed", "formats", formats, "err", err)
		return
	}
	h.Logger.Debug("generate done", "formats", formats, "duration", duration)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}
