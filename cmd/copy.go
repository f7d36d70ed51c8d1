package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
)

type copyFlags struct {
	ranges  []string
	header  bool
	stdout  bool
	timings bool
}

func (a *app) copyCmd() *cobra.Command {
	var f copyFlags
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy ranges of the sheet to the clipboard",
		Example: `  gridclip copy --range A1:C10
  gridclip copy --range A1:A5 --range C1:C5 --header --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCopy(cmd, f)
		},
	}
	cmd.Flags().StringSliceVarP(&f.ranges, "range", "r", nil, "range to copy in A1 or r0c0 form (repeatable)")
	cmd.Flags().BoolVar(&f.header, "header", false, "prefix the copied text with column names")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "print the text instead of writing the clipboard")
	cmd.Flags().BoolVar(&f.timings, "timings", false, "print phase timings to stderr")
	_ = cmd.MarkFlagRequired("range")
	return cmd
}

func (a *app) runCopy(cmd *cobra.Command, f copyFlags) error {
	ranges, err := parseRanges(f.ranges)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := a.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cfg := s.copy
	if cmd.Flags().Changed("header") {
		cfg.IncludeHeaderWhenCopying = f.header
	}

	var (
		out  = clipboard.NewMemory("")
		clip clipboard.Clipboard = clipboard.System{Terminal: cmd.ErrOrStderr()}
	)
	if f.stdout {
		clip = out
	}
	opts := append(s.managerOptions(timingsWriter(cmd, f.timings)), copypaste.WithClipboard(clip))
	mgr := copypaste.New(s.sheet, cfg, opts...)
	defer mgr.Close()

	s.sheet.SetSelectedRanges(ranges)
	if err := mgr.Copy(ctx); err != nil {
		return err
	}

	if f.stdout {
		_, err = io.WriteString(cmd.OutOrStdout(), out.Text())
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "copied %s\n", joinA1(ranges))
	return nil
}

// parseRange accepts A1 notation ("B2:C4") or the r0c0 form.
func parseRange(s string) (grid.Range, error) {
	if r, err := grid.ParseA1(s); err == nil {
		return r, nil
	}
	r, err := grid.ParseRange(s)
	if err != nil {
		return grid.Range{}, fmt.Errorf("invalid range %q", s)
	}
	return r, nil
}

func parseRanges(in []string) ([]grid.Range, error) {
	out := make([]grid.Range, 0, len(in))
	for _, s := range in {
		r, err := parseRange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func joinA1(ranges []grid.Range) string {
	var s string
	for i, r := range ranges {
		if i > 0 {
			s += ", "
		}
		s += r.A1()
	}
	return s
}

func timingsWriter(cmd *cobra.Command, on bool) io.Writer {
	if !on {
		return nil
	}
	return cmd.ErrOrStderr()
}
