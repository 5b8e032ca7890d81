package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// Status of a pipeline as seen in a snapshot
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// frames rotate through heartbeat snapshot labels while a stage works.
var frames = []string{"▪ ▫ ▫", "▫ ▪ ▫", "▫ ▫ ▪"}

// Stage is one unit of pipeline work. Work receives the previous stage's
// result (nil for the first stage) and its return value feeds the next one.
type Stage struct {
	// Name identifies the stage in snapshots
	Name string
	// Percent reported while the stage is running
	Percent int
	// Label shown to the user while the stage is running
	Label string
	// Work does the actual job. It must honor ctx cancellation.
	Work func(ctx context.Context, input interface{}) (interface{}, error)
}

// Snapshot is one observation of a running pipeline. While a stage works,
// heartbeat snapshots carry a rotating frame in Label; when the pipeline
// finishes, the final snapshot carries either Result or Err.
type Snapshot struct {
	Stage   string
	Status  Status
	Percent int
	Label   string
	Result  interface{}
	Err     error
}

// Orchestrator runs pipelines of background stages and reports progress at
// a fixed heartbeat interval.
type Orchestrator struct {
	interval time.Duration
}

// New creates an orchestrator with the given heartbeat interval.
func New(interval time.Duration) *Orchestrator {
	if interval <= 0 {
		interval = time.Second
	}
	return &Orchestrator{interval: interval}
}

// Run executes the stages in order on a background goroutine and returns a
// channel of snapshots. The channel is unbuffered, so the pipeline's
// progress reporting is paced by the consumer; stage work itself runs
// concurrently and is never blocked by a slow reader of a previous stage's
// heartbeats. The channel is closed after the terminal snapshot.
//
// A stage error stops the pipeline immediately and the terminal snapshot
// carries the error; no later stage is started. Context cancellation has
// the same effect with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, stages []Stage) <-chan Snapshot {
	out := make(chan Snapshot)

	go func() {
		defer close(out)

		var input interface{}
		for _, stage := range stages {
			result, err := o.runStage(ctx, stage, input, out)
			if err != nil {
				o.emit(ctx, out, Snapshot{
					Stage:   stage.Name,
					Status:  StatusFailed,
					Percent: stage.Percent,
					Label:   stage.Label,
					Err:     err,
				})
				return
			}
			input = result
		}

		o.emit(ctx, out, Snapshot{
			Status:  StatusSucceeded,
			Percent: 100,
			Label:   "done",
			Result:  input,
		})
	}()

	return out
}

// runStage starts the stage's work on its own goroutine and emits heartbeat
// snapshots until the work finishes. The result travels through a buffered
// single-slot channel, so the worker goroutine can always hand off and exit
// even if the pipeline was cancelled meanwhile.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, input interface{}, out chan<- Snapshot) (interface{}, error) {
	type outcome struct {
		result interface{}
		err    error
	}
	slot := make(chan outcome, 1)

	go func() {
		result, err := stage.Work(ctx, input)
		slot <- outcome{result: result, err: err}
	}()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	frame := 0
	o.emit(ctx, out, o.heartbeat(stage, frame))

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case done := <-slot:
			if done.err != nil {
				return nil, fmt.Errorf("stage %s: %w", stage.Name, done.err)
			}
			return done.result, nil
		case <-ticker.C:
			frame++
			o.emit(ctx, out, o.heartbeat(stage, frame))
		}
	}
}

func (o *Orchestrator) heartbeat(stage Stage, frame int) Snapshot {
	return Snapshot{
		Stage:   stage.Name,
		Status:  StatusRunning,
		Percent: stage.Percent,
		Label:   fmt.Sprintf("%s %s", stage.Label, frames[frame%len(frames)]),
	}
}

// emit delivers a snapshot unless the context is already cancelled.
func (o *Orchestrator) emit(ctx context.Context, out chan<- Snapshot, s Snapshot) {
	select {
	case out <- s:
	case <-ctx.Done():
	}
}
