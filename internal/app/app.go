package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/config"
	"github.com/travel-assistant/concierge/internal/prefs"
	"github.com/travel-assistant/concierge/internal/session"
	"github.com/travel-assistant/concierge/internal/ui"
	"github.com/travel-assistant/concierge/internal/workspace"
)

// ErrNotSignedIn is returned when the console starts without a session.
var ErrNotSignedIn = errors.New("not signed in: run `concierge login` first")

// Options configure the concierge application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses the config's prefs_path
	BaseURL    string        // overrides the config's base_url
	PollEvery  time.Duration // zero uses the config's poll_interval
	LogStderr  bool          // log to stderr instead of the log file
}

// Env is the wired workspace shared by the console and the CLI commands.
type Env struct {
	Config    config.Config
	Logger    *slog.Logger
	Session   *session.Manager
	Client    *adminapi.Client
	Workspace *workspace.Workspace

	logFile io.Closer
}

// Setup loads configuration, opens the log and builds the workspace.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		cfg.BaseURL = u
	}
	if opts.PrefsPath != "" {
		cfg.PrefsPath = opts.PrefsPath
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	var (
		out     io.Writer = os.Stderr
		logFile io.Closer
	)
	if !opts.LogStderr {
		f, err := OpenLogFile(cfg.LogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "concierge: %v; logging to stderr\n", err)
			cfg.LogPath = ""
		} else {
			out, logFile = f, f
		}
	} else {
		cfg.LogPath = ""
	}
	logger := NewLogger(out, cfg.LogLevel, cfg.LogFormat)

	env, err := Bootstrap(cfg, logger)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, err
	}
	env.logFile = logFile
	return env, nil
}

// Bootstrap restores the session and builds the API client and workspace.
func Bootstrap(cfg config.Config, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sess := session.NewManager(cfg.SessionPath, logger)
	if err := sess.Init(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	clientOpts := cfg.ClientOptions()
	clientOpts.Tokens = sess
	clientOpts.OnUnauthorized = sess.Invalidate
	clientOpts.Logger = logger
	client, err := adminapi.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	ws := workspace.New(client, sess, workspace.Options{
		Logger:       logger,
		FetchTimeout: cfg.Timeout,
	})
	return &Env{
		Config:    cfg,
		Logger:    logger,
		Session:   sess,
		Client:    client,
		Workspace: ws,
	}, nil
}

// Close stops the stores and closes the log file.
func (e *Env) Close() {
	e.Workspace.Close()
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

// Run boots the console until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	if !env.Session.Authenticated() {
		return ErrNotSignedIn
	}

	userPrefs, err := prefs.Load(env.Config.PrefsPath)
	if err != nil {
		env.Logger.Warn("load preferences", "error", err)
	}

	env.Logger.Info("console starting",
		"base_url", env.Client.BaseURL(),
		"admin", env.Session.CurrentUserID(),
		"poll_interval", env.Config.PollInterval,
	)
	StartPoller(ctx, env.Workspace, env.Config.PollInterval, env.Logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Workspace: env.Workspace,
		Prefs:     userPrefs,
		PrefsPath: env.Config.PrefsPath,
		Tick:      ui.DefaultUIInterval,
		LogPath:   env.Config.LogPath,
	})
}
