package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"freegrab/pkg/auth"
	"freegrab/pkg/buyer"
	"freegrab/pkg/config"
	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/metrics"
	"freegrab/pkg/retry"
	"freegrab/pkg/session"
	"freegrab/pkg/ui"

	"github.com/google/uuid"
	"golang.org/x/term"
)

// app holds the process-level dependencies of a run so tests can replace them
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  *os.File

	// sleeper overrides the executor's wall clock when set
	sleeper retry.Sleeper

	newManager func() (*auth.Manager, error)
	isTerminal func(*os.File) bool
	readSecret func(*os.File) ([]byte, error)
}

func newApp() *app {
	return &app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		stdin:      os.Stdin,
		newManager: auth.NewManager,
		isTerminal: ui.IsTerminal,
		readSecret: func(f *os.File) ([]byte, error) {
			return term.ReadPassword(int(f.Fd()))
		},
	}
}

func (a *app) run(ctx context.Context, opts *options, flags map[string]interface{}) error {
	cfg, err := config.Load(opts.configFile, flags)
	if err != nil {
		return err
	}

	base, err := logger.Initialize(&cfg.Logging, a.stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := base.WithField("run_id", uuid.NewString())
	logger.SetLogger(log)

	manager, err := a.newManager()
	if err != nil {
		// saved accounts are optional
		log.WithError(err).Warn("credential store unavailable")
		manager = nil
	}

	cred, err := a.resolveCredential(cfg, manager)
	if err != nil {
		return err
	}
	log.DebugWithFields("credential resolved", map[string]interface{}{
		"source": cred.source.String(),
		"cookie": auth.MaskSecret(cred.cookie),
	})

	client := marketplace.NewClient(cfg.Marketplace, cred.cookie, log)
	console := a.newConsole(cfg, client)

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, log); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	sess, err := session.Bootstrap(ctx, client, cred.cookie, log)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	console.Info("Signed in as", fmt.Sprintf("%s (%d)", sess.UserName, sess.UserID))

	if opts.saveAuth {
		a.saveCredential(cfg, manager, cred, console, log)
	}

	b := buyer.New(client, sess, buyer.Options{
		Query: marketplace.SearchQuery{
			Category:    cfg.Search.Category,
			Subcategory: cfg.Search.Subcategory,
		},
		Reporter: console,
		Sleeper:  a.sleeper,
		Logger:   log,
	})

	summary, err := b.Run(ctx)
	if err != nil {
		log.WithError(err).ErrorWithFields("run aborted", map[string]interface{}{
			"purchased": summary.Purchased,
			"pages":     summary.Pages,
		})
		return err
	}
	return nil
}

func (a *app) newConsole(cfg *config.Config, client *marketplace.Client) *ui.Console {
	color := false
	if f, ok := a.stdout.(*os.File); ok {
		color = ui.ColorEnabled(f, cfg.Output.Color)
	}

	var notifier *ui.Notifier
	if cfg.Notifications.Enabled {
		notifier = ui.NewNotifier()
	}

	return ui.NewConsole(a.stdout, ui.ConsoleOptions{
		Color:           color,
		Hyperlinks:      cfg.Output.Hyperlinks,
		ItemURL:         client.ItemURL,
		Notifier:        notifier,
		NotifyRateLimit: cfg.Notifications.OnRateLimit,
		NotifyComplete:  cfg.Notifications.OnComplete,
	})
}

// saveCredential stores a cookie that just passed Bootstrap. Failures are
// reported but never end the run.
func (a *app) saveCredential(cfg *config.Config, manager *auth.Manager, cred credential, console *ui.Console, log logger.Logger) {
	if cred.source == sourceStore {
		log.Debug("credential already stored")
		return
	}
	if manager == nil {
		console.Error("Could not save credentials", auth.ErrStoreUnavailable)
		return
	}

	account := &auth.Account{Name: cfg.Session.Account, Cookie: cred.cookie}
	if err := manager.Store(account); err != nil {
		console.Error("Could not save credentials", err)
		return
	}
	saved := auth.SanitizeAccount(account)
	log.InfoWithFields("credential saved", map[string]interface{}{
		"account": saved.Name,
		"cookie":  saved.Cookie,
	})
	console.Info("Saved credentials for", account.Name)
}
