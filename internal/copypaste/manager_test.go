package copypaste

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/pubsub"
	"github.com/zjrosen/gridclip/internal/tracing"
)

func newSheet(rows, cols int) *grid.Sheet {
	columns := make([]grid.Column, cols)
	for c := range columns {
		name := fmt.Sprintf("col%c", 'A'+c)
		columns[c] = grid.Column{ID: name, Field: name, Name: name}
	}
	recs := make([]grid.Record, rows)
	for r := range recs {
		rec := grid.Record{grid.IDField: fmt.Sprint(r)}
		for c, col := range columns {
			rec[col.Field] = fmt.Sprintf("r%dc%d", r, c)
		}
		recs[r] = rec
	}
	return grid.NewSheet("test", columns, recs)
}

func text(s *grid.Sheet, row, col int) string {
	v, _ := s.Value(row, col)
	return access.Text(v)
}

type recorder struct {
	events []pubsub.Event[Notification]
}

func (r *recorder) types() []pubsub.EventType {
	out := make([]pubsub.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() pubsub.Event[Notification] {
	return r.events[len(r.events)-1]
}

func newManager(t *testing.T, s *grid.Sheet, clip clipboard.Clipboard, cfg Config, opts ...Option) (*Manager, *recorder) {
	t.Helper()
	m := New(s, cfg, append([]Option{WithClipboard(clip)}, opts...)...)
	t.Cleanup(m.Close)
	rec := &recorder{}
	m.OnNotify(func(e pubsub.Event[Notification]) { rec.events = append(rec.events, e) })
	return m, rec
}

func TestCopy_WritesClipboardAndNotifiesOnce(t *testing.T) {
	s := newSheet(3, 3)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 1, 1)})
	clip := clipboard.NewMemory("")

	var initCalls, rowCount int
	m, rec := newManager(t, s, clip, Config{},
		OnCopyInit(func() { initCalls++ }),
		OnCopySuccess(func(n int) { rowCount = n }),
	)

	require.NoError(t, m.Copy(context.Background()))
	require.Equal(t, "r0c0\tr0c1\r\nr1c0\tr1c1\r\n", clip.Text())
	require.Equal(t, []pubsub.EventType{pubsub.CopyEvent}, rec.types())
	require.Equal(t, []grid.Range{grid.NewRange(0, 0, 1, 1)}, rec.last().Payload.Ranges)
	require.Equal(t, 1, initCalls)
	require.Equal(t, 2, rowCount)
	require.Equal(t, []grid.Range{grid.NewRange(0, 0, 1, 1)}, m.CopiedRanges())
}

func TestCopy_MultipleRangesReportRangeCount(t *testing.T) {
	s := newSheet(5, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 2, 0), grid.NewRange(4, 1, 4, 1)})
	clip := clipboard.NewMemory("")

	var rowCount int
	m, _ := newManager(t, s, clip, Config{}, OnCopySuccess(func(n int) { rowCount = n }))

	require.NoError(t, m.Copy(context.Background()))
	require.Equal(t, "r0c0\r\nr1c0\r\nr2c0\r\nr4c1\r\n", clip.Text())
	require.Equal(t, 2, rowCount)
}

func TestCopy_WithHeader(t *testing.T) {
	s := newSheet(2, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 0, 1)})
	clip := clipboard.NewMemory("")
	m, _ := newManager(t, s, clip, Config{IncludeHeaderWhenCopying: true})

	require.NoError(t, m.Copy(context.Background()))
	require.Equal(t, "colA\tcolB\r\nr0c0\tr0c1\r\n", clip.Text())
}

func TestCopy_EmptySelectionOnlyRunsInit(t *testing.T) {
	s := newSheet(2, 2)
	clip := clipboard.NewMemory("keep")

	initCalls := 0
	m, rec := newManager(t, s, clip, Config{}, OnCopyInit(func() { initCalls++ }))

	require.NoError(t, m.Copy(context.Background()))
	require.Equal(t, 1, initCalls)
	require.Empty(t, rec.events)
	require.Equal(t, 0, clip.Writes())
	require.Nil(t, m.CopiedRanges())
}

func TestCopy_ClipboardFailureIsReported(t *testing.T) {
	s := newSheet(2, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 0, 0)})
	clip := clipboard.NewMemory("")
	clip.WriteErr = errors.New("no display")
	m, rec := newManager(t, s, clip, Config{})

	err := m.Copy(context.Background())
	require.ErrorContains(t, err, "no display")
	require.Equal(t, []pubsub.EventType{pubsub.ValidationErrorEvent}, rec.types())
	require.Contains(t, rec.last().Payload.Details, "no display")
	require.Nil(t, m.CopiedRanges())
	require.False(t, m.CancelCopy())
}

func TestCancelCopy(t *testing.T) {
	s := newSheet(2, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 1, 1)})
	m, rec := newManager(t, s, clipboard.NewMemory(""), Config{})

	require.False(t, m.CancelCopy(), "nothing copied yet")
	require.NoError(t, m.Copy(context.Background()))

	require.True(t, m.CancelCopy())
	require.Equal(t, []pubsub.EventType{pubsub.CopyEvent, pubsub.CopyCancelledEvent}, rec.types())
	require.Equal(t, []grid.Range{grid.NewRange(0, 0, 1, 1)}, rec.last().Payload.Ranges)
	require.Nil(t, m.CopiedRanges())
	require.False(t, m.CancelCopy())
}

func TestCopiedHighlightExpires(t *testing.T) {
	s := newSheet(2, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 0, 0)})
	m, _ := newManager(t, s, clipboard.NewMemory(""), Config{CopiedHighlightTTL: 20 * time.Millisecond})

	require.NoError(t, m.Copy(context.Background()))
	at, ok := m.HighlightExpiry()
	require.True(t, ok)
	require.True(t, at.After(time.Now().Add(-time.Second)))

	require.Eventually(t, func() bool { return m.CopiedRanges() == nil }, time.Second, 5*time.Millisecond)
	require.True(t, m.CancelCopy(), "escape still cancels after the highlight faded")
}

func TestPaste_AppliesAndUndoes(t *testing.T) {
	s := newSheet(3, 3)
	s.SetActiveCell(grid.Cell{Row: 1, Col: 1})
	m, rec := newManager(t, s, clipboard.NewMemory("a\tb\r\nc\td\r\n"), Config{})

	require.NoError(t, m.Paste(context.Background()))
	require.Equal(t, "a", text(s, 1, 1))
	require.Equal(t, "d", text(s, 2, 2))
	require.Equal(t, []pubsub.EventType{pubsub.PasteAppliedEvent}, rec.types())
	require.Equal(t, []grid.Range{grid.NewRange(1, 1, 2, 2)}, rec.last().Payload.Ranges)
	require.Equal(t, []grid.Range{grid.NewRange(1, 1, 2, 2)}, m.CopiedRanges())
	require.Equal(t, 1, m.History().Len())

	undone, err := m.Undo(context.Background())
	require.NoError(t, err)
	require.True(t, undone)
	require.Equal(t, "r1c1", text(s, 1, 1))
	require.Equal(t, "r2c2", text(s, 2, 2))
	require.Equal(t, []pubsub.EventType{pubsub.PasteAppliedEvent, pubsub.PasteCancelledEvent}, rec.types())
	require.Empty(t, rec.last().Payload.Details)
	require.Equal(t, "paste reverted r1c1:r2c2", Message(rec.last()))

	undone, err = m.Undo(context.Background())
	require.NoError(t, err)
	require.False(t, undone)
}

func TestPaste_GrowsGridAndUndoShrinksIt(t *testing.T) {
	s := newSheet(2, 2)
	s.SetActiveCell(grid.Cell{Row: 1, Col: 1})
	m, _ := newManager(t, s, clipboard.NewMemory(""), Config{})

	require.NoError(t, m.PasteText(context.Background(), "1\t2\t3\n4\t5\t6\n"))
	require.Equal(t, 3, s.RowCount())
	require.Len(t, s.Columns(), 4)

	_, err := m.Undo(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, s.RowCount())
	require.Len(t, s.Columns(), 2)
}

func TestPaste_StructuralErrorsLeaveGridUntouched(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		setup  func(*grid.Sheet)
		target any
	}{
		{
			name:   "empty clipboard",
			text:   "",
			setup:  func(s *grid.Sheet) { s.SetActiveCell(grid.Cell{}) },
			target: new(*paste.ParseAmbiguityError),
		},
		{
			name:   "no anchor",
			text:   "x",
			setup:  func(*grid.Sheet) {},
			target: new(*paste.NoAnchorError),
		},
		{
			name: "schema locked",
			text: "1\t2\t3",
			setup: func(s *grid.Sheet) {
				s.SetActiveCell(grid.Cell{Row: 0, Col: 1})
				s.Lock()
			},
			target: new(*paste.SchemaLockedError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSheet(2, 2)
			tt.setup(s)
			before := s.Snapshot()
			m, rec := newManager(t, s, clipboard.NewMemory(tt.text), Config{})

			err := m.Paste(context.Background())
			require.ErrorAs(t, err, tt.target)
			require.True(t, paste.IsStructural(err))
			require.Equal(t, []pubsub.EventType{pubsub.ValidationErrorEvent}, rec.types())
			require.Equal(t, before, s.Snapshot())
			require.Equal(t, 0, m.History().Len())
		})
	}
}

func TestPaste_CellWriteFailureKeepsPartialWriteUndoable(t *testing.T) {
	s := grid.NewSheet("typed", []grid.Column{
		{ID: "name", Field: "name", Name: "Name"},
		{ID: "qty", Field: "qty", Name: "Qty", Type: grid.ColumnNumber},
	}, []grid.Record{{grid.IDField: "0", "name": "apple", "qty": 1.0}})
	s.SetActiveCell(grid.Cell{})
	m, rec := newManager(t, s, clipboard.NewMemory("pear\tmany"), Config{})

	err := m.Paste(context.Background())
	var cellErr *paste.CellWriteError
	require.ErrorAs(t, err, &cellErr)
	require.Equal(t, "pear", text(s, 0, 0))
	require.Equal(t, []pubsub.EventType{pubsub.ValidationErrorEvent}, rec.types())
	require.Equal(t, 1, m.History().Len())

	_, err = m.Undo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "apple", text(s, 0, 0))
}

func TestPaste_HandlerDeclines(t *testing.T) {
	s := newSheet(2, 2)
	s.SetActiveCell(grid.Cell{})
	var seen *paste.Command
	m, rec := newManager(t, s, clipboard.NewMemory("x"), Config{},
		WithCommandHandler(func(cmd *paste.Command) error {
			seen = cmd
			return nil
		}),
	)

	require.NoError(t, m.Paste(context.Background()))
	require.NotNil(t, seen)
	require.Equal(t, "r0c0", text(s, 0, 0))
	require.Equal(t, []pubsub.EventType{pubsub.PasteCancelledEvent}, rec.types())
	require.Equal(t, seen.ID(), rec.last().Payload.CommandID)
	require.Equal(t, DetailsDeclined, rec.last().Payload.Details)
	require.Equal(t, "paste declined r0c0:r0c0", Message(rec.last()))
	require.Equal(t, 0, m.History().Len())
}

func TestPaste_HandlerExecutes(t *testing.T) {
	s := newSheet(2, 2)
	s.SetActiveCell(grid.Cell{})
	var executed []string
	m, rec := newManager(t, s, clipboard.NewMemory("x"), Config{},
		WithCommandHandler(func(cmd *paste.Command) error {
			executed = append(executed, cmd.ID())
			return cmd.Execute()
		}),
	)

	require.NoError(t, m.Paste(context.Background()))
	require.Len(t, executed, 1)
	require.Equal(t, "x", text(s, 0, 0))
	require.Equal(t, []pubsub.EventType{pubsub.PasteAppliedEvent}, rec.types())
	require.Equal(t, 0, m.History().Len(), "custom handlers own the history")
}

func TestPaste_HandlerError(t *testing.T) {
	s := newSheet(2, 2)
	s.SetActiveCell(grid.Cell{})
	m, rec := newManager(t, s, clipboard.NewMemory("x"), Config{},
		WithCommandHandler(func(*paste.Command) error { return errors.New("read only") }),
	)

	require.ErrorContains(t, m.Paste(context.Background()), "read only")
	require.Equal(t, []pubsub.EventType{pubsub.ValidationErrorEvent}, rec.types())
}

func TestPaste_ClipboardReadFailure(t *testing.T) {
	s := newSheet(2, 2)
	clip := clipboard.NewMemory("")
	clip.ReadErr = errors.New("denied")
	m, rec := newManager(t, s, clip, Config{})

	require.ErrorContains(t, m.Paste(context.Background()), "read clipboard")
	require.Equal(t, []pubsub.EventType{pubsub.ValidationErrorEvent}, rec.types())
}

func TestPaste_CopyRoundTripThroughClipboard(t *testing.T) {
	src := newSheet(3, 3)
	src.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 2, 2)})
	clip := clipboard.NewMemory("")
	copier, _ := newManager(t, src, clip, Config{IncludeHeaderWhenCopying: true})
	require.NoError(t, copier.Copy(context.Background()))

	dst := grid.NewSheet("dst", nil, nil)
	dst.SetActiveCell(grid.Cell{})
	paster, _ := newManager(t, dst, clip, Config{IncludeHeaderWhenCopying: true})
	require.NoError(t, paster.Paste(context.Background()))

	require.Equal(t, 3, dst.RowCount())
	cols := dst.Columns()
	require.Len(t, cols, 3)
	require.Equal(t, "colA", cols[0].Name)
	for r := range 3 {
		for c := range 3 {
			require.Equal(t, text(src, r, c), text(dst, r, c))
		}
	}
}

func TestTimingObserverSeesPhases(t *testing.T) {
	s := newSheet(2, 2)
	s.SetActiveCell(grid.Cell{})
	var got []tracing.Timings
	m, _ := newManager(t, s, clipboard.NewMemory("x\ty"), Config{},
		WithTimingObserver(tracing.ObserverFunc(func(tm tracing.Timings) { got = append(got, tm) })),
	)

	require.NoError(t, m.Paste(context.Background()))
	require.Len(t, got, 1)
	require.Equal(t, tracing.SpanPaste, got[0].Gesture)
	for _, p := range []tracing.Phase{tracing.PhaseClipboardRead, tracing.PhaseDecode, tracing.PhaseValidate, tracing.PhasePlan, tracing.PhaseApply} {
		require.Contains(t, got[0].Phases, p)
	}
	require.NoError(t, got[0].Err)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := newSheet(2, 2)
	s.SetSelectedRanges([]grid.Range{grid.NewRange(0, 0, 0, 0)})
	m, _ := newManager(t, s, clipboard.NewMemory(""), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Subscribe(ctx)

	require.NoError(t, m.Copy(context.Background()))
	select {
	case e := <-ch:
		require.Equal(t, pubsub.CopyEvent, e.Type)
		require.Equal(t, "copied r0c0:r0c0", Message(e))
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}
