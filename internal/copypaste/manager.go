// Package copypaste wires the clipboard engine to a grid: it turns the copy,
// paste, undo and cancel gestures into serializer runs and paste commands,
// and tells observers how each gesture ended.
package copypaste

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/cachemanager"
	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/codec"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/history"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/pubsub"
	"github.com/zjrosen/gridclip/internal/serialize"
	"github.com/zjrosen/gridclip/internal/tracing"
)

const highlightKey = "copied"

// Manager runs clipboard gestures against one grid. Gestures must not run
// concurrently; hosts serialize them.
type Manager struct {
	g       grid.Grid
	cfg     Config
	clip    clipboard.Clipboard
	acc     access.Strategy
	history *history.History
	handler CommandHandler
	limits  paste.Limits

	observers pubsub.Observers[Notification]
	broker    *pubsub.Broker[Notification]
	highlight *cachemanager.InMemoryCacheManager[string, []grid.Range]
	// lastCopied outlives the highlight so Escape can still cancel it.
	lastCopied []grid.Range

	tracer          trace.Tracer
	timingObservers []tracing.Observer
	onCopyInit      func()
	onCopySuccess   func(int)
}

// New creates a Manager for g.
func New(g grid.Grid, cfg Config, opts ...Option) *Manager {
	if cfg.CopiedHighlightTTL <= 0 {
		cfg.CopiedHighlightTTL = DefaultHighlightTTL
	}
	m := &Manager{
		g:         g,
		cfg:       cfg,
		clip:      clipboard.System{},
		acc:       access.Default(access.Options{IgnoreFormatting: cfg.IgnoreFormattingFields}),
		broker:    pubsub.NewBroker[Notification](),
		highlight: cachemanager.NewInMemoryCacheManager[string, []grid.Range]("copied-ranges", cfg.CopiedHighlightTTL, cachemanager.DefaultCleanupInterval),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.history == nil {
		m.history = history.New(cfg.HistoryDepth)
	}
	if m.handler == nil {
		m.handler = m.executeAndRecord
	}
	return m
}

// Config returns the active settings.
func (m *Manager) Config() Config { return m.cfg }

// SetIncludeHeader toggles the header line on copy and header detection on
// paste.
func (m *Manager) SetIncludeHeader(on bool) { m.cfg.IncludeHeaderWhenCopying = on }

// History returns the undo stack.
func (m *Manager) History() *history.History { return m.history }

// OnNotify registers a synchronous observer. Every gesture outcome reaches it
// exactly once, before the gesture returns.
func (m *Manager) OnNotify(fn func(pubsub.Event[Notification])) (remove func()) {
	return m.observers.Add(fn)
}

// Subscribe returns a channel of the same events for UI loops. Delivery is
// best effort.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[Notification] {
	return m.broker.Subscribe(ctx)
}

// Broker exposes the broker for pubsub.NewContinuousListener.
func (m *Manager) Broker() *pubsub.Broker[Notification] { return m.broker }

// Close releases subscribers and forgets the highlight.
func (m *Manager) Close() {
	m.broker.Close()
	m.highlight.Flush(context.Background())
}

// CopiedRanges returns the ranges to draw as copied, or nil once the
// highlight expired or was cancelled.
func (m *Manager) CopiedRanges() []grid.Range {
	ranges, _ := m.highlight.Get(context.Background(), highlightKey)
	return ranges
}

// HighlightExpiry returns when the current highlight ends.
func (m *Manager) HighlightExpiry() (time.Time, bool) {
	_, at, ok := m.highlight.GetWithExpiration(context.Background(), highlightKey)
	return at, ok
}

// Copy serializes the selected ranges to the clipboard. With nothing
// selected it only runs the copy-init hook.
func (m *Manager) Copy(ctx context.Context) error {
	if m.onCopyInit != nil {
		m.onCopyInit()
	}
	ranges := m.g.SelectedRanges()
	if len(ranges) == 0 {
		log.Debug(log.CatCopy, "copy with empty selection")
		return nil
	}

	rec := tracing.Start(ctx, m.tracer, tracing.SpanCopy, attribute.Int(tracing.AttrRanges, len(ranges)))

	stop := rec.Phase(tracing.PhaseSerialize)
	text, err := serialize.Serialize(m.g, ranges, m.acc, serialize.Options{
		IncludeHeader: m.cfg.IncludeHeaderWhenCopying,
		Delimiter:     m.copyDelimiter(),
		Quote:         m.cfg.QuoteFields,
	})
	stop(err)
	if err != nil {
		return m.fail(rec, ranges, "", fmt.Errorf("serialize selection: %w", err))
	}

	stop = rec.Phase(tracing.PhaseClipboardWrite)
	err = m.clip.WriteText(text)
	stop(err)
	if err != nil {
		return m.fail(rec, ranges, "", fmt.Errorf("write clipboard: %w", err))
	}
	rec.SetAttributes(attribute.Int(tracing.AttrBytes, len(text)))

	m.lastCopied = slices.Clone(ranges)
	m.markHighlight(ranges)
	m.notify(pubsub.CopyEvent, Notification{Ranges: ranges})
	m.finish(rec, nil)

	if m.onCopySuccess != nil {
		m.onCopySuccess(serialize.RowCount(ranges))
	}
	log.Info(log.CatCopy, "copied", "ranges", len(ranges), "bytes", len(text))
	return nil
}

// CancelCopy dismisses the last copy. It reports false when there was
// nothing to cancel.
func (m *Manager) CancelCopy() bool {
	if m.lastCopied == nil {
		return false
	}
	ranges := m.lastCopied
	m.lastCopied = nil
	m.highlight.Delete(context.Background(), highlightKey)
	m.notify(pubsub.CopyCancelledEvent, Notification{Ranges: ranges})
	return true
}

// Paste reads the clipboard and pastes it at the cursor.
func (m *Manager) Paste(ctx context.Context) error {
	rec := tracing.Start(ctx, m.tracer, tracing.SpanPaste)

	stop := rec.Phase(tracing.PhaseClipboardRead)
	text, err := m.clip.ReadText()
	stop(err)
	if err != nil {
		return m.fail(rec, nil, "", fmt.Errorf("read clipboard: %w", err))
	}
	return m.paste(rec, text)
}

// PasteText pastes text as if it had been read from the clipboard.
func (m *Manager) PasteText(ctx context.Context, text string) error {
	return m.paste(tracing.Start(ctx, m.tracer, tracing.SpanPaste), text)
}

func (m *Manager) paste(rec *tracing.Recorder, text string) error {
	rec.SetAttributes(attribute.Int(tracing.AttrBytes, len(text)))

	stop := rec.Phase(tracing.PhaseDecode)
	matrix := codec.Decode(text, codec.DecodeOptions{Delimiter: m.cfg.Delimiter, Quoted: m.cfg.QuoteFields})
	stop(nil)

	includeHeader := m.cfg.IncludeHeaderWhenCopying
	stop = rec.Phase(tracing.PhaseValidate)
	err := paste.Validate(matrix, includeHeader)
	stop(err)
	if err != nil {
		return m.fail(rec, nil, "", err)
	}

	stop = rec.Phase(tracing.PhasePlan)
	plan, err := paste.Prepare(m.g, matrix, paste.Options{
		IncludeHeader:  includeHeader,
		MinPasteColumn: m.cfg.MinPasteColumn,
		FieldNameSeed:  m.cfg.FieldNameSeed,
		Limits:         m.limits,
	})
	stop(err)
	if err != nil {
		return m.fail(rec, nil, "", err)
	}
	rec.SetAttributes(
		attribute.Int(tracing.AttrRows, plan.Resolution.Rows),
		attribute.Int(tracing.AttrCols, plan.Cols),
		attribute.Bool(tracing.AttrBroadcast, plan.Broadcast),
		attribute.Int(tracing.AttrRowsAdded, plan.Rows.RowsToAdd),
		attribute.Int(tracing.AttrColsAdded, len(plan.Columns.Added)),
		attribute.String(tracing.AttrDestination, plan.Destination.String()),
	)

	cmd := plan.NewCommand(m.g, m.acc, matrix,
		paste.WithAppliedCallback(m.pasteApplied),
		paste.WithUndoneCallback(m.pasteUndone),
	)
	rec.SetAttributes(attribute.String(tracing.AttrCommandID, cmd.ID()))

	stop = rec.Phase(tracing.PhaseApply)
	err = m.handler(cmd)
	stop(err)
	if err != nil {
		return m.fail(rec, []grid.Range{cmd.Destination()}, cmd.ID(), err)
	}
	if cmd.State() == paste.StateCreated {
		rec.AddEvent(tracing.EventDeclined)
		m.notify(pubsub.PasteCancelledEvent, Notification{Ranges: []grid.Range{cmd.Destination()}, CommandID: cmd.ID(), Details: DetailsDeclined})
		log.Info(log.CatPaste, "paste declined by handler", "id", cmd.ID())
	}
	m.finish(rec, nil)
	return nil
}

// executeAndRecord is the default command handler. A command that stopped
// at a failing cell is still recorded since it changed the grid.
func (m *Manager) executeAndRecord(cmd *paste.Command) error {
	err := cmd.Execute()
	if cmd.State() == paste.StateExecuted {
		m.history.Push(cmd)
	}
	return err
}

// Undo reverts the most recent paste. It reports false when there was
// nothing to undo.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	if !m.history.CanUndo() {
		return false, nil
	}
	rec := tracing.Start(ctx, m.tracer, tracing.SpanUndo)
	stop := rec.Phase(tracing.PhaseApply)
	cmd, err := m.history.Undo()
	stop(err)
	if err != nil {
		var ranges []grid.Range
		id := ""
		if pc, ok := cmd.(*paste.Command); ok {
			ranges = []grid.Range{pc.Destination()}
			id = pc.ID()
		}
		return true, m.fail(rec, ranges, id, fmt.Errorf("undo paste: %w", err))
	}
	m.finish(rec, nil)
	return true, nil
}

func (m *Manager) pasteApplied(dest grid.Range) {
	m.markHighlight([]grid.Range{dest})
	m.notify(pubsub.PasteAppliedEvent, Notification{Ranges: []grid.Range{dest}})
}

func (m *Manager) pasteUndone(dest grid.Range) {
	m.markHighlight([]grid.Range{dest})
	m.notify(pubsub.PasteCancelledEvent, Notification{Ranges: []grid.Range{dest}})
}

func (m *Manager) markHighlight(ranges []grid.Range) {
	m.highlight.Set(context.Background(), highlightKey, slices.Clone(ranges), m.cfg.CopiedHighlightTTL)
}

func (m *Manager) copyDelimiter() rune {
	if m.cfg.Delimiter == codec.Auto {
		return codec.DefaultDelimiter
	}
	return m.cfg.Delimiter
}

func (m *Manager) notify(eventType pubsub.EventType, n Notification) {
	event := pubsub.NewEvent(eventType, n)
	m.observers.Deliver(event)
	m.broker.Deliver(event)
}

// fail reports err as a validation error and ends the gesture.
func (m *Manager) fail(rec *tracing.Recorder, ranges []grid.Range, id string, err error) error {
	log.ErrorErr(log.CatPaste, "clipboard gesture failed", err, "id", id)
	m.notify(pubsub.ValidationErrorEvent, Notification{
		Ranges:    ranges,
		CommandID: id,
		Err:       err,
		Details:   err.Error(),
	})
	m.finish(rec, err)
	return err
}

func (m *Manager) finish(rec *tracing.Recorder, err error) {
	timings := rec.End(err)
	log.Debug(log.CatPaste, "gesture timings", "timings", timings.String())
	for _, o := range m.timingObservers {
		o.ObserveTimings(timings)
	}
}
