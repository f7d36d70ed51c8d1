package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/config"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/ui/gridview"
	"github.com/zjrosen/gridclip/internal/watcher"
)

// ownWriteGrace covers the window between a save and its fsnotify events.
const ownWriteGrace = 2 * time.Second

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the sheet in the terminal grid (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	mgr := copypaste.New(s.sheet, s.copy, s.managerOptions(nil)...)
	defer mgr.Close()

	opts := gridview.Options{
		Store:      s.repo,
		SaveHeader: a.saveHeader,
	}

	// Reload when another process writes the database. The view works
	// without it, so a watcher failure is only logged.
	w, err := watcher.New(watcher.DefaultConfig(s.db.Path()))
	if err != nil {
		log.Warn(log.CatWatcher, "file watcher unavailable", "error", err)
	} else {
		changes, err := w.Start()
		if err != nil {
			log.Warn(log.CatWatcher, "file watcher unavailable", "error", err)
		} else {
			opts.Changes = changes
			opts.BeforeSave = func() { w.IgnoreOwnWrites(ownWriteGrace) }
		}
		defer func() { _ = w.Stop() }()
	}

	model := gridview.New(ctx, s.sheet, mgr, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running grid view: %w", err)
	}
	if m, ok := final.(gridview.Model); ok && m.Dirty() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "unsaved changes discarded (ctrl+s saves)")
	}
	return nil
}

// saveHeader persists the include-header toggle into the config file.
func (a *app) saveHeader(on bool) error {
	cb := a.cfg.Clipboard
	cb.IncludeHeaderWhenCopying = on
	if err := config.SaveClipboard(a.configPath, cb); err != nil {
		return err
	}
	a.cfg.Clipboard = cb
	return nil
}
