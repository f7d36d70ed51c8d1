package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/ui/styles"
)

func (a *app) sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List stored sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			infos, err := s.repo.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sheets")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("NAME", "COLUMNS", "ROWS", "LOCKED", "UPDATED").
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return styles.HeaderStyle
					}
					return styles.CellStyle
				})
			for _, info := range infos {
				locked := ""
				if info.Locked {
					locked = "yes"
				}
				t.Row(info.Name, strconv.Itoa(info.Columns), strconv.Itoa(info.Rows), locked,
					info.UpdatedAt.Format("2006-01-02 15:04"))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.repo.Delete(ctx, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "deleted %q\n", args[0])
			return nil
		},
	})
	return cmd
}
