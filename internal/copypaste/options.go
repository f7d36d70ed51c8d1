package copypaste

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/history"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/tracing"
)

// DefaultHighlightTTL is how long copied cells stay highlighted.
const DefaultHighlightTTL = 2 * time.Second

// Config holds the clipboard behaviour settings.
type Config struct {
	// Delimiter separates cells in both directions. Zero means tab;
	// codec.Auto detects it when pasting and falls back to tab when copying.
	Delimiter                rune
	IncludeHeaderWhenCopying bool
	// QuoteFields quotes copied fields and honors quotes when pasting.
	QuoteFields bool
	// IgnoreFormattingFields are read and written raw.
	IgnoreFormattingFields []string
	MinPasteColumn         int
	FieldNameSeed          int
	CopiedHighlightTTL     time.Duration
	HistoryDepth           int
}

// CommandHandler receives each built paste command. It must either execute
// the command before returning or leave it untouched to decline the paste.
type CommandHandler func(cmd *paste.Command) error

// Option configures a Manager.
type Option func(*Manager)

// WithClipboard sets the clipboard. The default is clipboard.System.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(m *Manager) { m.clip = c }
}

// WithAccess replaces the cell access strategy built from Config.
func WithAccess(s access.Strategy) Option {
	return func(m *Manager) { m.acc = s }
}

// WithHistory shares an undo history between managers.
func WithHistory(h *history.History) Option {
	return func(m *Manager) { m.history = h }
}

// WithCommandHandler replaces the default execute-and-record behaviour.
// A handler that wants undo must push the command to History itself.
func WithCommandHandler(h CommandHandler) Option {
	return func(m *Manager) { m.handler = h }
}

// WithGrowthLimit refuses pastes that would grow the grid past maxRows rows
// or maxCols columns. Zero leaves that axis unlimited.
func WithGrowthLimit(maxRows, maxCols int) Option {
	return func(m *Manager) { m.limits = paste.Limits{MaxRows: maxRows, MaxCols: maxCols} }
}

// WithTracer records gestures as spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) { m.tracer = t }
}

// WithTimingObserver receives per-phase timings after every gesture.
func WithTimingObserver(o tracing.Observer) Option {
	return func(m *Manager) { m.timingObservers = append(m.timingObservers, o) }
}

// OnCopyInit runs at the start of every copy gesture, before the selection
// is read.
func OnCopyInit(fn func()) Option {
	return func(m *Manager) { m.onCopyInit = fn }
}

// OnCopySuccess runs after text reached the clipboard. rowCount is the height
// of a single copied range, or the number of ranges.
func OnCopySuccess(fn func(rowCount int)) Option {
	return func(m *Manager) { m.onCopySuccess = fn }
}
