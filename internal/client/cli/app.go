package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/coursekeeper/internal/client/assets"
	"github.com/dmitrijs2005/coursekeeper/internal/client/client"
	"github.com/dmitrijs2005/coursekeeper/internal/client/config"
	"github.com/dmitrijs2005/coursekeeper/internal/client/draft"
	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/coursekeeper/internal/client/services"
	"github.com/dmitrijs2005/coursekeeper/internal/filex"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
)

type App struct {
	config *config.Config
	svc    services.CurriculumService
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	latest      atomic.Pointer[draft.Tree]
	unsubscribe func()
	closers     []func() error
}

// NewApp builds the client for cfg. Missing course id and token are asked
// for interactively.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	a := &App{config: cfg, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	if cfg.CourseID == "" {
		id, err := GetSimpleText(a.reader, "Course id", a.out)
		if err != nil {
			return nil, fmt.Errorf("read course id: %w", err)
		}
		cfg.CourseID = id
	}

	if cfg.AccessToken == "" {
		token, err := GetToken(a.out, "Access token: ")
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
		cfg.AccessToken = token
	}
	tokens := newPromptTokens(cfg.AccessToken, func() (string, error) {
		return GetToken(a.out, "Session expired. New access token: ")
	})

	ledger, err := a.openLedger(ctx)
	if err != nil {
		return nil, err
	}

	backend := client.NewRESTClient(cfg.BackendURL, cfg.RequestTimeout, tokens)
	media := assets.NewManager(backend, ledger, log)

	svc, err := services.NewCurriculumService(models.Course{ID: cfg.CourseID}, backend, media,
		services.WithLogger(log),
		services.WithConfirm(a.confirm))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.bind(svc)
	return a, nil
}

func (a *App) openLedger(ctx context.Context) (uploads.Repository, error) {
	dsn := a.config.LedgerDSN
	if dsn == "" {
		return assets.NewMemoryLedger(), nil
	}
	if strings.Contains(dsn, config.StateDir+"/") {
		if _, err := filex.EnsureSubDir(config.StateDir); err != nil {
			return nil, err
		}
	}

	db, repo, err := uploads.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	return repo, nil
}

// bind connects the app to svc and starts following its snapshots.
func (a *App) bind(svc services.CurriculumService) {
	a.svc = svc
	t := svc.Snapshot()
	a.latest.Store(&t)
	a.unsubscribe = svc.Subscribe(func(t draft.Tree) {
		a.latest.Store(&t)
	})
}

func (a *App) confirm(_ context.Context, prompt string) bool {
	return GetConfirmation(a.reader, prompt, a.out)
}

func (a *App) status() string {
	t := a.latest.Load()
	if t == nil {
		return ""
	}
	return fmt.Sprintf("(%s | %s)", shortID(a.config.CourseID), summary(*t))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run loads the outline, releases uploads left over from an earlier session
// and serves the REPL until the user quits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "coursekeeper (type 'help' for commands)")

	if n, err := a.svc.SweepUploads(ctx); err != nil {
		a.log.Warn(ctx, "sweep of leftover uploads incomplete", "released", n, "error", err)
	} else if n > 0 {
		fmt.Fprintf(a.out, "Released %d unused upload(s) from a previous session.\n", n)
	}

	if err := a.Load(ctx, nil); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

// report prints the outcome's warnings.
func (a *App) report(out services.Outcome) {
	for _, w := range out.Warnings {
		fmt.Fprintln(a.out, "Warning:", w)
	}
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}
