package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/infrastructure/sqlite"
	"github.com/zjrosen/gridclip/internal/sheetio"
)

func (a *app) importCmd() *cobra.Command {
	var (
		tab   string
		as    string
		force bool
		lock  bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an xlsx, csv or tsv file as a sheet",
		Long: `Import reads a spreadsheet file into the database. The first row names
the columns and the column types are inferred from the values below it.`,
		Example: `  gridclip import prices.xlsx --tab Q3 --as prices
  gridclip import people.csv --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := sheetio.Import(args[0], sheetio.Options{Sheet: tab, Name: as})
			if err != nil {
				return err
			}

			s, err := a.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if !force {
				_, _, err := s.repo.Load(ctx, snap.Name)
				var notFound *sqlite.SheetNotFoundError
				switch {
				case err == nil:
					return fmt.Errorf("sheet %q already exists (use --force to replace it)", snap.Name)
				case !errors.As(err, &notFound):
					return err
				}
			}
			if err := s.repo.Save(ctx, snap, lock); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "imported %q: %d columns, %d rows\n",
				snap.Name, len(snap.Columns), len(snap.Rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "workbook tab to read (default: first)")
	cmd.Flags().StringVar(&as, "as", "", "sheet name (default: file name)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing sheet")
	cmd.Flags().BoolVar(&lock, "lock", false, "lock the column schema")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:     "export FILE",
		Short:   "Export the sheet to an xlsx, csv or tsv file",
		Example: `  gridclip export --sheet prices prices.xlsx --tab Q3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			snap, _, err := s.repo.Load(ctx, a.cfg.Storage.Sheet)
			if err != nil {
				return err
			}
			if err := sheetio.Export(args[0], snap, sheetio.Options{Sheet: tab, Name: snap.Name}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %q to %s\n", snap.Name, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "workbook tab to write (default: sheet name)")
	return cmd
}
