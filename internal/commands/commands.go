package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"updatenotifier/internal/config"
	"updatenotifier/internal/logger"
	"updatenotifier/internal/notice"
	"updatenotifier/internal/output"
	"updatenotifier/internal/registry"
	"updatenotifier/internal/store"
	"updatenotifier/internal/store/factory"
	"updatenotifier/internal/transport"
	"updatenotifier/internal/ui"
	"updatenotifier/internal/update"
)

// Options is the resolved configuration for one command run.
type Options struct {
	Config config.Config
	Styled bool
	Logger *slog.Logger

	logCloser io.Closer
}

// Close flushes the log file, if any.
func (o Options) Close() error {
	if o.logCloser == nil {
		return nil
	}
	return o.logCloser.Close()
}

// loadOptions reads the config file and applies any flags the user set.
func loadOptions(cmd *cobra.Command) (Options, error) {
	path, explicit := ConfigPath, ConfigPath != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("registry") {
		cfg.RegistryURL, _ = flags.GetString("registry")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("interval") {
		cfg.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("state-backend") {
		cfg.State.Backend, _ = flags.GetString("state-backend")
	}
	if flags.Changed("state-path") {
		cfg.State.Path, _ = flags.GetString("state-path")
	}
	if flags.Changed("color") {
		cfg.Color, _ = flags.GetString("color")
	}
	if flags.Changed("install-hint") {
		cfg.InstallHint, _ = flags.GetString("install-hint")
	}
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}

	// lipgloss only emits colors on a detected terminal
	if strings.EqualFold(cfg.Color, config.ColorAlways) {
		lipgloss.SetColorProfile(termenv.ANSI256)
	}

	cfg.Log.Verbose = Verbose
	log, closer := logger.New(cfg.Log)

	return Options{
		Config:    cfg,
		Styled:    cfg.Styled(term.IsTerminal(int(os.Stdout.Fd()))),
		Logger:    log,
		logCloser: closer,
	}, nil
}

func newClient(cfg config.Config) (*registry.Client, error) {
	hc, err := transport.NewClient(cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return registry.NewClient(cfg.RegistryURL,
		registry.WithHTTPClient(hc),
		registry.WithUserAgent(cfg.UserAgent)), nil
}

func formatter(opts Options) notice.Formatter {
	return notice.Formatter{
		RegistryURL: opts.Config.RegistryURL,
		InstallHint: opts.Config.InstallHint,
		Styled:      opts.Styled,
	}
}

// RunCheck performs the throttled check and prints a notice if one is due.
func RunCheck(ctx context.Context, w io.Writer, opts Options, name, current string) error {
	client, err := newClient(opts.Config)
	if err != nil {
		return err
	}
	st, err := factory.New(ctx, opts.Config.State)
	if err != nil {
		return err
	}
	defer st.Close()

	checker := &update.Checker{
		Fetcher: client,
		Store:   st,
		Notice:  formatter(opts),
		Out:     w,
		Logger:  opts.Logger,
	}
	if !output.JSONMode {
		return checker.CheckVersion(ctx, name, current, opts.Config.Interval)
	}

	// JSON mode captures the plain notice and reports it in the envelope
	var captured bytes.Buffer
	checker.Out = &captured
	checker.Notice.Styled = false
	if err := checker.CheckVersion(ctx, name, current, opts.Config.Interval); err != nil {
		return err
	}
	return output.Print(w, checkView{
		Name:            name,
		CurrentVersion:  current,
		UpdateAvailable: captured.Len() > 0,
		Notice:          captured.String(),
	}, func() {})
}

type checkView struct {
	Name            string `json:"name"`
	CurrentVersion  string `json:"current_version"`
	UpdateAvailable bool   `json:"update_available"`
	Notice          string `json:"notice,omitempty"`
}

// RunLatest prints the registry's latest version for name.
func RunLatest(ctx context.Context, w io.Writer, opts Options, name string) error {
	client, err := newClient(opts.Config)
	if err != nil {
		return err
	}
	latest, err := client.FetchLatest(ctx, name)
	if err != nil {
		return err
	}
	return output.Print(w, map[string]string{"name": name, "latest": latest}, func() {
		fmt.Fprintln(w, latest)
	})
}

// RunNotice prints the notice for the given versions.
func RunNotice(w io.Writer, opts Options, name, current, latest string) error {
	f := formatter(opts)
	var printErr error
	err := output.Print(w, map[string]string{"notice": notice.Formatter{
		RegistryURL: f.RegistryURL,
		InstallHint: f.InstallHint,
	}.Format(name, current, latest)}, func() {
		printErr = f.Print(w, name, current, latest)
	})
	if err != nil {
		return err
	}
	return printErr
}

type stateView struct {
	Name          string     `json:"name"`
	AppID         string     `json:"app_id"`
	Found         bool       `json:"found"`
	Unreadable    string     `json:"unreadable,omitempty"`
	LastChecked   *time.Time `json:"last_checked,omitempty"`
	LatestVersion string     `json:"latest_version,omitempty"`
}

// RunState shows the stored state for name.
func RunState(ctx context.Context, w io.Writer, opts Options, name string) error {
	st, err := factory.New(ctx, opts.Config.State)
	if err != nil {
		return err
	}
	defer st.Close()

	view := stateView{Name: name, AppID: store.AppID(name)}
	state, err := st.Get(ctx, view.AppID)
	switch {
	case err == nil:
		view.Found = true
		view.LastChecked = &state.LastChecked
		view.LatestVersion = state.LatestVersion
	case errors.Is(err, store.ErrNotFound):
	default:
		// the next check treats this like no state, so report it instead of failing
		view.Unreadable = err.Error()
	}

	return output.Print(w, view, func() {
		ui.ShowHeader(w, name)
		if view.Unreadable != "" {
			ui.ShowWarning(w, "Stored state is unreadable, the next check will run: %s", view.Unreadable)
			return
		}
		if !view.Found {
			ui.ShowInfo(w, "No check recorded yet")
			return
		}
		ui.ShowField(w, "App ID", view.AppID)
		ui.ShowField(w, "Last checked", state.LastChecked.Local().Format(time.RFC3339))
		if view.LatestVersion != "" {
			ui.ShowField(w, "Latest", view.LatestVersion)
		}
		next := state.LastChecked.Add(opts.Config.Interval)
		if time.Now().Before(next) {
			ui.ShowField(w, "Next check", next.Local().Format(time.RFC3339))
		} else {
			ui.ShowField(w, "Next check", "due")
		}
	})
}
