package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/infrastructure/sqlite"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/tracing"
)

// session is an open sheet database plus the tracing provider for one run.
type session struct {
	db      *sqlite.DB
	repo    *sqlite.SheetRepository
	sheet   *grid.Sheet
	tracing *tracing.Provider
	copy    copypaste.Config
}

// openSession opens the configured database. When load is set the configured
// sheet is opened too, starting empty if it has never been saved.
func (a *app) openSession(ctx context.Context, load bool) (*session, error) {
	cpCfg, err := a.cfg.CopyPaste()
	if err != nil {
		return nil, err
	}

	db, err := sqlite.NewDB(a.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &session{db: db, repo: db.SheetRepository(), copy: cpCfg}

	if load {
		s.sheet, err = s.repo.Open(ctx, a.cfg.Storage.Sheet)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s.tracing, err = tracing.NewProvider(a.cfg.TracingProvider())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	return s, nil
}

// managerOptions are the options every host passes to copypaste.New.
func (s *session) managerOptions(timings io.Writer) []copypaste.Option {
	opts := []copypaste.Option{copypaste.WithTracer(s.tracing.Tracer())}
	if timings != nil {
		opts = append(opts, copypaste.WithTimingObserver(tracing.ObserverFunc(func(t tracing.Timings) {
			_, _ = fmt.Fprintln(timings, t.String())
		})))
	}
	return opts
}

func (s *session) Close() error {
	var errs []error
	if s.tracing != nil {
		if err := s.tracing.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		log.ErrorErr(log.CatDB, "closing session", err)
		return err
	}
	return nil
}
