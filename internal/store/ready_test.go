package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWaitReadySucceedsAfterRetries(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := WaitReady(context.Background(), probe, 5, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 probe attempts, got %d", calls)
	}
}

func TestWaitReadyFailsAfterAttemptBudget(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		return errors.New("connection refused")
	}

	err := WaitReady(context.Background(), probe, 3, time.Millisecond, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 probe attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected attempt count in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected probe cause in error, got %v", err)
	}
}

func TestWaitReadyStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	probe := func(context.Context) error {
		return errors.New("connection refused")
	}

	err := WaitReady(ctx, probe, 100, time.Hour, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWaitReadyRequiresProbe(t *testing.T) {
	if err := WaitReady(context.Background(), nil, 1, time.Millisecond, nil); err == nil {
		t.Fatal("expected missing probe error")
	}
}

func TestWaitReadyLogsAttempts(t *testing.T) {
	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, format)
	}
	probe := func(context.Context) error {
		return errors.New("connection refused")
	}

	_ = WaitReady(context.Background(), probe, 2, time.Millisecond, logf)
	if len(lines) != 2 {
		t.Fatalf("expected one log line per failed attempt, got %d", len(lines))
	}
}
