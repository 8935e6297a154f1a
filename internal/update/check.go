package update

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"updatenotifier/internal/notice"
	"updatenotifier/internal/store"
)

// LatestFetcher returns the newest published version of a package.
// *registry.Client implements it.
type LatestFetcher interface {
	FetchLatest(ctx context.Context, name string) (string, error)
}

// Checker throttles registry lookups through a Store and prints a notice
// when the registry reports a version different from the running one.
type Checker struct {
	Fetcher LatestFetcher
	Store   store.Store
	Notice  notice.Formatter
	Out     io.Writer
	Logger  *slog.Logger
	Now     func() time.Time
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c *Checker) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// CheckVersion looks up name in the registry unless it was checked less
// than interval ago.
//
// An unreadable or missing state always leads to a check. Registry and
// transport failures are returned as-is and leave the stored state
// untouched, so the next call tries again. On success the state is
// rewritten with the time taken after the registry answered, even if the
// notice could not be written.
func (c *Checker) CheckVersion(ctx context.Context, name, currentVersion string, interval time.Duration) error {
	log := c.logger().With("package", name)
	appID := store.AppID(name)

	state, err := c.Store.Get(ctx, appID)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Debug("ignoring unreadable check state", "error", err)
	}

	decidedAt := c.now()
	if Decide(state, found, decidedAt, interval) == DecisionSkip {
		log.Debug("skipping update check",
			"elapsed", decidedAt.Sub(state.LastChecked).String(), "interval", interval.String())
		return nil
	}

	latest, err := c.Fetcher.FetchLatest(ctx, name)
	if err != nil {
		log.Debug("update check failed", "error", err)
		return err
	}
	log.Debug("fetched latest version", "current", currentVersion, "latest", latest)

	if latest != currentVersion {
		// a closed stdout must not stop the state write, or every run would
		// go back to the registry
		if err := c.Notice.Print(c.out(), name, currentVersion, latest); err != nil {
			log.Debug("could not print update notice", "error", err)
		}
	}

	checkedAt := c.now()
	if err := c.Store.Set(ctx, appID, store.CheckState{LastChecked: checkedAt, LatestVersion: latest}); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	log.Debug("recorded update check", "last_checked", checkedAt)
	return nil
}
