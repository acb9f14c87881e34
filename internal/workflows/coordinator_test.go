package workflows_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"samplegraph/internal/logging"
	"samplegraph/internal/workflows"
)

// statusServer serves an in-progress run for validate until released.
type statusServer struct {
	running atomic.Bool
	calls   atomic.Int64
	server  *httptest.Server
}

func newStatusServer(t *testing.T) *statusServer {
	t.Helper()
	s := &statusServer{}
	s.running.Store(true)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if r.URL.Query().Get("workflow") == string(workflows.ClassValidate) && s.running.Load() {
			fmt.Fprint(w, `{"runs":[{"id":99,"status":"in_progress","html_url":"https://ci.example.test/runs/99"}]}`)
			return
		}
		fmt.Fprint(w, `{"runs":[]}`)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func newCoordinator(s *statusServer, opts ...workflows.StatusOption) *workflows.Coordinator {
	base := []workflows.StatusOption{workflows.WithCacheTTL(time.Millisecond)}
	status := workflows.NewStatusClient(s.server.URL, "", logging.NewNop(), append(base, opts...)...)
	return workflows.NewCoordinator(workflows.DefaultMatrix(), status, logging.NewNop(),
		workflows.WithPollInterval(5*time.Millisecond))
}

func TestCheckAndWaitShortCircuitsWhenIdle(t *testing.T) {
	s := newStatusServer(t)
	s.running.Store(false)

	coord := newCoordinator(s)
	ok, reason := coord.CheckAndWait(context.Background(), workflows.ClassCollect, time.Second)
	if !ok || reason != "No conflicts" {
		t.Fatalf("got (%v, %q), want (true, No conflicts)", ok, reason)
	}
	// One status probe per conflicting class, no polling.
	if got := s.calls.Load(); got != int64(len(workflows.DefaultMatrix().ConflictsWith(workflows.ClassCollect))) {
		t.Errorf("status calls = %d, want one per conflicting class", got)
	}
}

func TestCheckAndWaitTimesOutNamingRun(t *testing.T) {
	s := newStatusServer(t)

	coord := newCoordinator(s)
	ok, reason := coord.CheckAndWait(context.Background(), workflows.ClassCollect, 30*time.Millisecond)
	if ok {
		t.Fatal("expected timeout, got proceed")
	}
	want := "Timeout waiting for validate (run 99): https://ci.example.test/runs/99"
	if reason != want {
		t.Fatalf("reason = %q, want %q", reason, want)
	}
}

func TestCheckAndWaitProceedsOnceConflictFinishes(t *testing.T) {
	s := newStatusServer(t)
	go func() {
		time.Sleep(20 * time.Millisecond)
		s.running.Store(false)
	}()

	coord := newCoordinator(s)
	ok, reason := coord.CheckAndWait(context.Background(), workflows.ClassCollect, 2*time.Second)
	if !ok {
		t.Fatalf("expected proceed after conflict finished, got %q", reason)
	}
}

func TestCheckAndWaitUnknownClassProceeds(t *testing.T) {
	s := newStatusServer(t)

	coord := newCoordinator(s)
	ok, reason := coord.CheckAndWait(context.Background(), workflows.Class("unmapped"), time.Second)
	if !ok || reason != "No conflicts" {
		t.Fatalf("got (%v, %q), want short circuit", ok, reason)
	}
	if s.calls.Load() != 0 {
		t.Error("unmapped class must not query the status API")
	}
}

func TestCheckAndWaitDryRunProceeds(t *testing.T) {
	s := newStatusServer(t)

	coord := newCoordinator(s, workflows.WithDryRun(true))
	ok, _ := coord.CheckAndWait(context.Background(), workflows.ClassCollect, time.Second)
	if !ok {
		t.Fatal("dry run must always proceed")
	}
	if s.calls.Load() != 0 {
		t.Error("dry run must not query the status API")
	}
}

func TestTimeoutReasonNamesClass(t *testing.T) {
	s := newStatusServer(t)

	coord := newCoordinator(s)
	_, reason := coord.CheckAndWait(context.Background(), workflows.ClassCollect, 10*time.Millisecond)
	if !strings.Contains(reason, string(workflows.ClassValidate)) {
		t.Fatalf("reason %q does not name the conflicting class", reason)
	}
}
