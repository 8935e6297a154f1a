package update

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"updatenotifier/internal/registry"
	"updatenotifier/internal/store"
	"updatenotifier/internal/store/filestore"
)

func TestDecide(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		state    store.CheckState
		found    bool
		interval time.Duration
		want     Decision
	}{
		{"no state", store.CheckState{}, false, 1000 * time.Hour, DecisionCheck},
		{"elapsed equals interval", store.CheckState{LastChecked: now.Add(-1000 * time.Second)}, true, 1000 * time.Second, DecisionCheck},
		{"elapsed exceeds interval", store.CheckState{LastChecked: now.AddDate(-25, 0, 0)}, true, 1000 * time.Second, DecisionCheck},
		{"elapsed below interval", store.CheckState{LastChecked: now.Add(-999 * time.Second)}, true, 1000 * time.Second, DecisionSkip},
		{"zero interval", store.CheckState{LastChecked: now}, true, 0, DecisionCheck},
		{"clock moved backwards", store.CheckState{LastChecked: now.Add(time.Hour)}, true, time.Second, DecisionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.state, tt.found, now, tt.interval); got != tt.want {
				t.Errorf("Decide() = %q, want %q", got, tt.want)
			}
		})
	}
}

// fakeRegistry serves body for every request and counts hits.
func fakeRegistry(t *testing.T, status int, body string) (*registry.Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return registry.NewClient(srv.URL), &hits
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newChecker(t *testing.T, fetcher LatestFetcher, now *clock) (*Checker, *bytes.Buffer, *filestore.Store) {
	t.Helper()
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	var out bytes.Buffer
	return &Checker{
		Fetcher: fetcher,
		Store:   fs,
		Out:     &out,
		Now:     now.Now,
	}, &out, fs
}

func TestCheckVersion_UpdateAvailable(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"id":229435,"crate":"noUpdate","num":"0.1.3"}]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, out, fs := newChecker(t, client, now)

	if err := c.CheckVersion(context.Background(), "noUpdate", "0.1.2", 0); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
	for _, want := range []string{"noUpdate", "0.1.2", "0.1.3"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	st, err := fs.Get(context.Background(), "noUpdate-update-notifier")
	if err != nil {
		t.Fatalf("state not written: %v", err)
	}
	if !st.LastChecked.Equal(now.t) {
		t.Errorf("LastChecked = %v, want %v", st.LastChecked, now.t)
	}
	if st.LatestVersion != "0.1.3" {
		t.Errorf("LatestVersion = %q, want %q", st.LatestVersion, "0.1.3")
	}
}

func TestCheckVersion_SameVersion(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, out, fs := newChecker(t, client, now)

	if err := c.CheckVersion(context.Background(), "sameVersion", "0.1.3", 0); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
	st, err := fs.Get(context.Background(), "sameVersion-update-notifier")
	if err != nil {
		t.Fatalf("state not written: %v", err)
	}
	if !st.LastChecked.Equal(now.t) {
		t.Errorf("LastChecked = %v, want %v", st.LastChecked, now.t)
	}
}

func TestCheckVersion_IntervalNotExceeded(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, out, _ := newChecker(t, client, now)
	ctx := context.Background()

	if err := c.CheckVersion(ctx, "notExceeded", "0.1.2", 0); err != nil {
		t.Fatalf("first CheckVersion: %v", err)
	}
	printed := out.Len()

	now.t = now.t.Add(time.Second)
	if err := c.CheckVersion(ctx, "notExceeded", "0.1.2", 1000*1000*time.Second); err != nil {
		t.Fatalf("second CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request total, got %d", n)
	}
	if out.Len() != printed {
		t.Errorf("skip path printed output")
	}
}

func TestCheckVersion_IntervalExceeded(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, _, fs := newChecker(t, client, now)
	ctx := context.Background()

	old := now.t.AddDate(-25, 0, 0)
	if err := fs.Set(ctx, "intervalExceeded-update-notifier", store.CheckState{LastChecked: old}); err != nil {
		t.Fatal(err)
	}
	if err := c.CheckVersion(ctx, "intervalExceeded", "0.1.2", 1000*time.Second); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestCheckVersion_InclusiveBoundary(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, _, fs := newChecker(t, client, now)
	ctx := context.Background()

	if err := fs.Set(ctx, "edge-update-notifier", store.CheckState{LastChecked: now.t.Add(-1000 * time.Second)}); err != nil {
		t.Fatal(err)
	}
	if err := c.CheckVersion(ctx, "edge", "0.1.3", 1000*time.Second); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request at the boundary, got %d", n)
	}
}

func TestCheckVersion_NoStateIgnoresInterval(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Now()}
	c, _, _ := newChecker(t, client, now)

	if err := c.CheckVersion(context.Background(), "fresh", "0.1.3", 100000*time.Hour); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestCheckVersion_CorruptStateChecks(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[{"num":"0.1.3"}]}`)
	now := &clock{t: time.Now()}
	c, _, fs := newChecker(t, client, now)

	if err := os.WriteFile(fs.Path("corrupt-update-notifier"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.CheckVersion(context.Background(), "corrupt", "0.1.3", time.Hour); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
	if _, err := fs.Get(context.Background(), "corrupt-update-notifier"); err != nil {
		t.Errorf("corrupt state was not replaced: %v", err)
	}
}

func TestCheckVersion_RegistryErrorKeepsState(t *testing.T) {
	client, _ := fakeRegistry(t, http.StatusNotFound, `{"errors":[{"detail":"Not Found"}]}`)
	now := &clock{t: time.Now()}
	c, out, fs := newChecker(t, client, now)

	err := c.CheckVersion(context.Background(), "kefjhkajvcnklsajdfhwksajnceknc", "0.1.0", 0)
	var regErr *registry.RegistryError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected *registry.RegistryError, got %T (%v)", err, err)
	}
	if err.Error() != "Not Found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "Not Found")
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
	if _, err := fs.Get(context.Background(), "kefjhkajvcnklsajdfhwksajnceknc-update-notifier"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("state must not be written on failure, Get() err = %v", err)
	}
}

func TestCheckVersion_FailureDoesNotTouchExistingState(t *testing.T) {
	client, hits := fakeRegistry(t, http.StatusOK, `{"versions":[]}`)
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, _, fs := newChecker(t, client, now)
	ctx := context.Background()

	prev := now.t.Add(-48 * time.Hour)
	if err := fs.Set(ctx, "empty-update-notifier", store.CheckState{LastChecked: prev}); err != nil {
		t.Fatal(err)
	}

	err := c.CheckVersion(ctx, "empty", "1.0.0", time.Hour)
	var malformed *registry.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *registry.MalformedResponseError, got %T (%v)", err, err)
	}

	// the next call retries instead of being throttled
	if err := c.CheckVersion(ctx, "empty", "1.0.0", time.Hour); err == nil {
		t.Fatal("expected second call to hit the registry and fail again")
	}
	if n := atomic.LoadInt32(hits); n != 2 {
		t.Errorf("expected 2 requests, got %d", n)
	}
	st, err := fs.Get(ctx, "empty-update-notifier")
	if err != nil {
		t.Fatal(err)
	}
	if !st.LastChecked.Equal(prev) {
		t.Errorf("LastChecked changed to %v, want %v", st.LastChecked, prev)
	}
}

type stubFetcher struct {
	latest string
	calls  int
	onCall func()
}

func (s *stubFetcher) FetchLatest(ctx context.Context, name string) (string, error) {
	s.calls++
	if s.onCall != nil {
		s.onCall()
	}
	return s.latest, nil
}

func TestCheckVersion_TimestampTakenAfterFetch(t *testing.T) {
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	fetchDone := now.t.Add(3 * time.Second)
	fetcher := &stubFetcher{latest: "1.0.0", onCall: func() { now.t = fetchDone }}
	c, _, fs := newChecker(t, fetcher, now)

	if err := c.CheckVersion(context.Background(), "slow", "1.0.0", 0); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	st, err := fs.Get(context.Background(), "slow-update-notifier")
	if err != nil {
		t.Fatal(err)
	}
	if !st.LastChecked.Equal(fetchDone) {
		t.Errorf("LastChecked = %v, want time after fetch %v", st.LastChecked, fetchDone)
	}
}

type failingStore struct {
	getErr error
	setErr error
	sets   int
}

func (f *failingStore) Get(ctx context.Context, appID string) (store.CheckState, error) {
	return store.CheckState{}, f.getErr
}

func (f *failingStore) Set(ctx context.Context, appID string, st store.CheckState) error {
	f.sets++
	return f.setErr
}

func (f *failingStore) Close() error { return nil }

func TestCheckVersion_PersistenceError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	fs := &failingStore{getErr: errors.New("permission denied"), setErr: diskFull}
	fetcher := &stubFetcher{latest: "2.0.0"}
	var out bytes.Buffer
	c := &Checker{Fetcher: fetcher, Store: fs, Out: &out}

	err := c.CheckVersion(context.Background(), "tool", "1.0.0", time.Hour)
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *PersistenceError, got %T (%v)", err, err)
	}
	if !errors.Is(err, diskFull) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("read failure must fall through to a check, calls = %d", fetcher.calls)
	}
	if !strings.Contains(out.String(), "2.0.0") {
		t.Errorf("notice should be printed before the write fails, got %q", out.String())
	}
}

func TestCheckVersion_SkipDoesNotWrite(t *testing.T) {
	fs := &recordingStore{state: store.CheckState{LastChecked: time.Now()}}
	fetcher := &stubFetcher{latest: "2.0.0"}
	c := &Checker{Fetcher: fetcher, Store: fs, Out: &bytes.Buffer{}}

	if err := c.CheckVersion(context.Background(), "tool", "1.0.0", time.Hour); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if fetcher.calls != 0 || fs.sets != 0 {
		t.Errorf("skip path did work: fetches=%d sets=%d", fetcher.calls, fs.sets)
	}
}

type recordingStore struct {
	state store.CheckState
	sets  int
}

func (r *recordingStore) Get(ctx context.Context, appID string) (store.CheckState, error) {
	return r.state, nil
}

func (r *recordingStore) Set(ctx context.Context, appID string, st store.CheckState) error {
	r.sets++
	r.state = st
	return nil
}

func (r *recordingStore) Close() error { return nil }

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestCheckVersion_NoticeWriteFailureStillRecords(t *testing.T) {
	now := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &stubFetcher{latest: "2.0.0"}
	c, _, fs := newChecker(t, fetcher, now)
	c.Out = brokenWriter{}
	ctx := context.Background()

	if err := c.CheckVersion(ctx, "piped", "1.0.0", time.Hour); err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	st, err := fs.Get(ctx, "piped-update-notifier")
	if err != nil {
		t.Fatalf("state not written after notice failure: %v", err)
	}
	if !st.LastChecked.Equal(now.t) || st.LatestVersion != "2.0.0" {
		t.Errorf("unexpected state %+v", st)
	}

	// the recorded check throttles the next run
	if err := c.CheckVersion(ctx, "piped", "1.0.0", time.Hour); err != nil {
		t.Fatalf("second CheckVersion: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}
}
