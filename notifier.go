// Package updatenotifier tells a command-line program when a newer release
// of itself is published to the crates registry.
//
// Call CheckVersion once near startup and ignore the error so that a
// registry outage never gets in the way of the program's real work:
//
//	updatenotifier.CheckVersion("mytool", version, 24*time.Hour)
package updatenotifier

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"updatenotifier/internal/notice"
	"updatenotifier/internal/registry"
	"updatenotifier/internal/store"
	"updatenotifier/internal/store/filestore"
	"updatenotifier/internal/transport"
	"updatenotifier/internal/update"
)

// Errors returned by CheckVersion. Use errors.As to tell them apart.
type (
	TransportError         = registry.TransportError
	MalformedResponseError = registry.MalformedResponseError
	RegistryError          = registry.RegistryError
	PersistenceError       = update.PersistenceError
)

// Store persists the last-checked time per package.
type Store = store.Store

// CheckState is the value kept in a Store.
type CheckState = store.CheckState

// ErrNotFound is what a Store returns from Get when nothing was saved.
var ErrNotFound = store.ErrNotFound

// Notifier runs throttled version checks. Build one with New.
type Notifier struct {
	checker *update.Checker
}

type options struct {
	registryURL string
	userAgent   string
	httpClient  *http.Client
	store       store.Store
	out         io.Writer
	logger      *slog.Logger
	formatter   notice.Formatter
	now         func() time.Time
}

// Option configures a Notifier.
type Option func(*options)

// WithRegistryURL points the notifier at another crates-compatible registry,
// such as a test server.
func WithRegistryURL(u string) Option {
	return func(o *options) {
		o.registryURL = u
		o.formatter.RegistryURL = u
	}
}

// WithUserAgent sets the User-Agent sent to the registry.
func WithUserAgent(ua string) Option { return func(o *options) { o.userAgent = ua } }

// WithHTTPClient replaces the default HTTP/2 client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithStore replaces the default JSON file store.
func WithStore(s Store) Option { return func(o *options) { o.store = s } }

// WithOutput redirects the notice, which goes to stdout by default.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithLogger enables debug logging of check decisions.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithInstallHint sets the install command shown in the notice; "{name}" is
// replaced by the package name.
func WithInstallHint(hint string) Option { return func(o *options) { o.formatter.InstallHint = hint } }

// WithStyled turns terminal colors in the notice on or off.
func WithStyled(styled bool) Option { return func(o *options) { o.formatter.Styled = styled } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New builds a Notifier. Without options it queries crates.io and keeps its
// state in the user's config directory.
func New(opts ...Option) (*Notifier, error) {
	o := options{
		registryURL: registry.DefaultBaseURL,
		formatter:   notice.Formatter{RegistryURL: registry.DefaultBaseURL},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		hc, err := transport.NewClient(transport.DefaultTimeout)
		if err != nil {
			return nil, err
		}
		o.httpClient = hc
	}
	if o.store == nil {
		fs, err := filestore.New("")
		if err != nil {
			return nil, err
		}
		o.store = fs
	}

	client := registry.NewClient(o.registryURL,
		registry.WithHTTPClient(o.httpClient),
		registry.WithUserAgent(o.userAgent))

	return &Notifier{checker: &update.Checker{
		Fetcher: client,
		Store:   o.store,
		Notice:  o.formatter,
		Out:     o.out,
		Logger:  o.logger,
		Now:     o.now,
	}}, nil
}

// CheckVersion checks the registry for name unless the last check was less
// than interval ago, printing a notice when the latest published version
// differs from currentVersion.
func (n *Notifier) CheckVersion(ctx context.Context, name, currentVersion string, interval time.Duration) error {
	return n.checker.CheckVersion(ctx, name, currentVersion, interval)
}

// Close releases the store.
func (n *Notifier) Close() error { return n.checker.Store.Close() }

// CheckVersion runs one check with the default Notifier.
func CheckVersion(name, currentVersion string, interval time.Duration) error {
	return CheckVersionContext(context.Background(), name, currentVersion, interval)
}

// CheckVersionContext is CheckVersion with a caller-supplied context.
func CheckVersionContext(ctx context.Context, name, currentVersion string, interval time.Duration) error {
	n, err := New()
	if err != nil {
		return err
	}
	defer n.Close()
	return n.CheckVersion(ctx, name, currentVersion, interval)
}
