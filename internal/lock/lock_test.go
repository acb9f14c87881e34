package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"samplegraph/internal/lock"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	l := lock.New(dir, "checkpoint")
	ctx := context.Background()

	ok, err := l.Acquire(ctx, time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquisition to succeed")
	}

	info, exists, err := l.ReadInfo()
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if !exists {
		t.Fatal("expected lock record to exist")
	}
	if info.Holder != l.Holder() {
		t.Fatalf("expected holder %q, got %q", l.Holder(), info.Holder)
	}
	if info.AcquiredAt.IsZero() {
		t.Fatal("expected acquisition timestamp")
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, exists, _ := l.ReadInfo(); exists {
		t.Fatal("expected lock record to be gone after release")
	}
}

func TestSecondAcquirerFailsWithinTimeout(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := lock.New(dir, "checkpoint")
	if ok, err := first.Acquire(ctx, time.Second); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	second := lock.New(dir, "checkpoint", lock.WithPollInterval(10*time.Millisecond))
	start := time.Now()
	ok, err := second.Acquire(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatal("expected second acquisition to fail while lock is held")
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("second acquirer returned before its timeout: %v", elapsed)
	}
}

func TestStaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := lock.New(dir, "checkpoint")
	if ok, err := first.Acquire(ctx, time.Second); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	// Age the record past the staleness threshold.
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(first.Path(), old, old); err != nil {
		t.Fatalf("age lock record: %v", err)
	}

	second := lock.New(dir, "checkpoint", lock.WithPollInterval(time.Minute))
	start := time.Now()
	ok, err := second.Acquire(ctx, 10*time.Second)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if !ok {
		t.Fatal("expected stale lock to be reclaimed")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("reclaim waited instead of retrying immediately: %v", elapsed)
	}

	info, exists, err := second.ReadInfo()
	if err != nil || !exists {
		t.Fatalf("ReadInfo after reclaim: exists=%v err=%v", exists, err)
	}
	if info.Holder != second.Holder() {
		t.Fatalf("expected reclaimer to own the record, got %q", info.Holder)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	l := lock.New(t.TempDir(), "checkpoint")
	if err := l.Release(); err != nil {
		t.Fatalf("releasing an absent lock should not error: %v", err)
	}
	if _, exists, _ := l.ReadInfo(); exists {
		t.Fatal("release must not create a record")
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	l := lock.New(dir, "checkpoint", lock.WithDryRun(true))

	ok, err := l.Acquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("dry-run acquire errored: %v", err)
	}
	if !ok {
		t.Fatal("dry-run acquire must report success")
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Fatal("dry-run acquire must not create a lock record")
	}

	if err := l.Release(); err != nil {
		t.Fatalf("dry-run release errored: %v", err)
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	first := lock.New(dir, "checkpoint")
	if ok, err := first.Acquire(context.Background(), time.Second); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	second := lock.New(dir, "checkpoint", lock.WithPollInterval(10*time.Millisecond))
	if _, err := second.Acquire(ctx, time.Minute); err == nil {
		t.Fatal("expected context cancellation to surface")
	}
}
