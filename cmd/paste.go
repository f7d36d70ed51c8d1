package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/pubsub"
)

type pasteFlags struct {
	at      string
	selects []string
	stdin   bool
	timings bool
}

func (a *app) pasteCmd() *cobra.Command {
	var f pasteFlags
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste clipboard text into the sheet and save it",
		Long: `Paste decodes delimited clipboard text and writes it into the sheet,
adding rows and columns when the text does not fit. With --select, a single
value or row is repeated across the selection.`,
		Example: `  gridclip paste --at B2
  gridclip paste --select A1:A20 --stdin < value.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPaste(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.at, "at", "", "anchor cell in A1 or r0c0 form")
	cmd.Flags().StringSliceVar(&f.selects, "select", nil, "selected range to paste into (repeatable)")
	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "read the text from stdin instead of the clipboard")
	cmd.Flags().BoolVar(&f.timings, "timings", false, "print phase timings to stderr")
	return cmd
}

func (a *app) runPaste(cmd *cobra.Command, f pasteFlags) error {
	selection, err := parseRanges(f.selects)
	if err != nil {
		return err
	}
	var active *grid.Cell
	if f.at != "" {
		r, err := parseRange(f.at)
		if err != nil {
			return err
		}
		c := r.TopLeft()
		active = &c
	}

	ctx := cmd.Context()
	s, err := a.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	opts := append(s.managerOptions(timingsWriter(cmd, f.timings)),
		copypaste.WithClipboard(clipboard.System{Terminal: cmd.ErrOrStderr()}))
	mgr := copypaste.New(s.sheet, s.copy, opts...)
	defer mgr.Close()

	var last pubsub.Event[copypaste.Notification]
	mgr.OnNotify(func(e pubsub.Event[copypaste.Notification]) { last = e })

	if active != nil {
		s.sheet.SetActiveCell(*active)
	}
	s.sheet.SetSelectedRanges(selection)

	rows, cols := s.sheet.RowCount(), len(s.sheet.Columns())
	if f.stdin {
		text, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("reading stdin: %w", readErr)
		}
		err = mgr.PasteText(ctx, string(text))
	} else {
		err = mgr.Paste(ctx)
	}
	if err != nil && paste.IsStructural(err) {
		return err
	}

	// Cells written before a failed write stay written, so save either way.
	if saveErr := s.repo.SaveSheet(ctx, s.sheet); saveErr != nil {
		return fmt.Errorf("saving sheet: %w", saveErr)
	}
	if err != nil {
		return err
	}

	log.Info(log.CatPaste, "paste saved", "sheet", s.sheet.Name(), "event", last.Type)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s (+%d rows, +%d columns)\n",
		copypaste.Message(last), s.sheet.RowCount()-rows, len(s.sheet.Columns())-cols)
	return nil
}
