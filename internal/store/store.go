// Package store defines where the last-checked timestamp lives.
package store

import (
	"context"
	"errors"
	"time"
)

// AppSuffix is appended to a package name to form its application identifier.
const AppSuffix = "-update-notifier"

// ErrNotFound is returned by Get when no state has been written for the key.
var ErrNotFound = errors.New("check state not found")

// CheckState is what survives between invocations for one package.
// LatestVersion is informational; the throttle only reads LastChecked.
type CheckState struct {
	LastChecked   time.Time `json:"last_checked"`
	LatestVersion string    `json:"latest_version,omitempty"`
}

// Store is a key-value store of CheckState keyed by application identifier.
// Access is read-then-write with no locking: concurrent writers race and the
// last one wins.
type Store interface {
	Get(ctx context.Context, appID string) (CheckState, error)
	Set(ctx context.Context, appID string, state CheckState) error
	Close() error
}

// AppID derives the application identifier for a package name.
func AppID(name string) string {
	return name + AppSuffix
}
