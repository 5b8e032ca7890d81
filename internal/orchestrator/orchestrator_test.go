package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func collect(ch <-chan Snapshot) []Snapshot {
	var snaps []Snapshot
	for s := range ch {
		snaps = append(snaps, s)
	}
	return snaps
}

func TestRunEmitsHeartbeatsAndResult(t *testing.T) {
	interval := 10 * time.Millisecond
	o := New(interval)

	stages := []Stage{{
		Name:    "work",
		Percent: 50,
		Label:   "Working",
		Work: func(ctx context.Context, input interface{}) (interface{}, error) {
			time.Sleep(3 * interval)
			return 42, nil
		},
	}}

	snaps := collect(o.Run(context.Background(), stages))

	if len(snaps) < 4 {
		t.Fatalf("expected at least 4 snapshots over 3 intervals, got %d", len(snaps))
	}

	final := snaps[len(snaps)-1]
	if final.Status != StatusSucceeded {
		t.Fatalf("expected final succeeded, got %s (err=%v)", final.Status, final.Err)
	}
	if final.Percent != 100 {
		t.Errorf("final percent = %d, want 100", final.Percent)
	}
	if final.Result != 42 {
		t.Errorf("final result = %v, want 42", final.Result)
	}

	for _, s := range snaps[:len(snaps)-1] {
		if s.Status != StatusRunning {
			t.Errorf("non-final snapshot has status %s", s.Status)
		}
		if s.Stage != "work" {
			t.Errorf("snapshot stage = %q", s.Stage)
		}
	}
}

func TestRunProgressMonotone(t *testing.T) {
	o := New(5 * time.Millisecond)

	stages := []Stage{
		{Name: "a", Percent: 20, Label: "A", Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
			time.Sleep(12 * time.Millisecond)
			return "a", nil
		}},
		{Name: "b", Percent: 60, Label: "B", Work: func(ctx context.Context, in interface{}) (interface{}, error) {
			if in != "a" {
				t.Errorf("stage b received %v, want output of stage a", in)
			}
			time.Sleep(12 * time.Millisecond)
			return "b", nil
		}},
	}

	snaps := collect(o.Run(context.Background(), stages))

	prev := -1
	for _, s := range snaps {
		if s.Percent < prev {
			t.Fatalf("progress went backwards: %d after %d", s.Percent, prev)
		}
		prev = s.Percent
	}
	if snaps[len(snaps)-1].Result != "b" {
		t.Errorf("final result = %v", snaps[len(snaps)-1].Result)
	}
}

func TestRunFailFast(t *testing.T) {
	o := New(5 * time.Millisecond)
	boom := errors.New("boom")
	secondRan := false

	stages := []Stage{
		{Name: "first", Percent: 30, Label: "First", Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
			return nil, boom
		}},
		{Name: "second", Percent: 80, Label: "Second", Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
			secondRan = true
			return nil, nil
		}},
	}

	snaps := collect(o.Run(context.Background(), stages))

	final := snaps[len(snaps)-1]
	if final.Status != StatusFailed {
		t.Fatalf("expected failed terminal snapshot, got %s", final.Status)
	}
	if !errors.Is(final.Err, boom) {
		t.Errorf("terminal error = %v, want wrapped boom", final.Err)
	}
	if final.Stage != "first" {
		t.Errorf("terminal stage = %q, want first", final.Stage)
	}
	if secondRan {
		t.Error("second stage must not run after a failure")
	}
}

func TestRunContextCancel(t *testing.T) {
	o := New(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	stages := []Stage{{
		Name:    "slow",
		Percent: 50,
		Label:   "Slow",
		Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}}

	ch := o.Run(ctx, stages)
	<-ch // first heartbeat
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // channel closed after cancellation
			}
		case <-deadline:
			t.Fatal("channel not closed after context cancellation")
		}
	}
}

func TestNewClampsInterval(t *testing.T) {
	o := New(0)
	if o.interval <= 0 {
		t.Error("zero interval must be clamped to a positive default")
	}
}
