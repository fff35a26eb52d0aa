// Package batch scores many applications concurrently, isolating each
// application's failure from the rest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/ingest"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// ErrorTag classifies a failed application.
type ErrorTag string

const (
	TagMalformedInput        ErrorTag = "MALFORMED_INPUT"
	TagUnrecognizedStructure ErrorTag = "UNRECOGNIZED_STRUCTURE"
	TagMissingCapability     ErrorTag = "MISSING_CAPABILITY"
	TagTimeout               ErrorTag = "TIMEOUT"
	TagProcessingError       ErrorTag = "PROCESSING_ERROR"
)

// Classify maps an error to its tag.
func Classify(err error) ErrorTag {
	switch {
	case errors.Is(err, ingest.ErrMalformedInput):
		return TagMalformedInput
	case errors.Is(err, ingest.ErrUnrecognizedStructure):
		return TagUnrecognizedStructure
	case errors.Is(err, pipeline.ErrMissingCapability):
		return TagMissingCapability
	case errors.Is(err, context.DeadlineExceeded):
		return TagTimeout
	default:
		return TagProcessingError
	}
}

// Input is one application payload. Name labels it in reports and is the
// application id when the payload has none.
type Input struct {
	Name string
	Raw  []byte
}

// Failure records why one input could not be scored.
type Failure struct {
	Index   int
	Name    string
	Tag     ErrorTag
	Message string
	At      time.Time
}

// Outcome is the result for one input. Exactly one of State and Failure is
// set.
type Outcome struct {
	Index   int
	Name    string
	State   *pipeline.DecisionState
	Failure *Failure
	Elapsed time.Duration
}

// Stats summarises a batch.
type Stats struct {
	Total        int
	Succeeded    int
	Failed       int
	AverageScore float64
	MinScore     float64
	MaxScore     float64
	SuccessRate  float64 // percent
}

// Report is the result of one batch, outcomes in input order.
type Report struct {
	Outcomes       []Outcome
	Errors         []Failure
	ErrorCounts    map[ErrorTag]int
	DecisionCounts map[scoring.Decision]int
	Stats          Stats
	Elapsed        time.Duration
}

// PipelineFactory builds one pipeline per worker.
type PipelineFactory func() (*pipeline.Pipeline, error)

// Options tunes a Processor. Zero values take defaults.
type Options struct {
	Workers int
	Timeout time.Duration

	// Amount and Term override the requested loan of every application.
	Amount float64
	Term   int
}

const (
	defaultWorkers = 4
	defaultTimeout = 30 * time.Second
)

// Processor scores batches of applications.
type Processor struct {
	newPipeline PipelineFactory
	opts        Options
}

// NewProcessor creates a Processor.
func NewProcessor(factory PipelineFactory, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Processor{newPipeline: factory, opts: opts}
}

// Process scores every input. A failed input is recorded and never stops the
// batch; cancelling ctx fails the inputs not yet started.
func (p *Processor) Process(ctx context.Context, inputs []Input) Report {
	start := time.Now()
	log := logger.FromContext(ctx)
	log.Info().Int("applications", len(inputs)).Int("workers", p.opts.Workers).Msg("Batch started")

	outcomes := make([]Outcome, len(inputs))
	work := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(p.opts.Workers, max(len(inputs), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, inputs, outcomes, work)
		}()
	}

	for i := range inputs {
		work <- i
	}
	close(work)
	wg.Wait()

	report := buildReport(outcomes, time.Since(start))
	log.Info().
		Int("succeeded", report.Stats.Succeeded).
		Int("failed", report.Stats.Failed).
		Dur("elapsed", report.Elapsed).
		Msg("Batch finished")
	return report
}

func (p *Processor) worker(ctx context.Context, inputs []Input, outcomes []Outcome, work <-chan int) {
	pl, buildErr := p.newPipeline()
	if buildErr == nil && pl == nil {
		buildErr = fmt.Errorf("pipeline factory returned nil: %w", pipeline.ErrMissingCapability)
	}

	for i := range work {
		started := time.Now()
		var state *pipeline.DecisionState
		err := buildErr
		if err == nil {
			state, err = p.scoreOne(ctx, pl, inputs[i])
		}

		out := Outcome{Index: i, Name: inputs[i].Name, Elapsed: time.Since(started)}
		if err != nil {
			out.Failure = &Failure{
				Index:   i,
				Name:    inputs[i].Name,
				Tag:     Classify(err),
				Message: err.Error(),
				At:      time.Now(),
			}
			log := logger.FromContext(ctx)
			log.Warn().Str("input", inputs[i].Name).Str("tag", string(out.Failure.Tag)).Err(err).Msg("Application failed")
		} else {
			out.State = state
		}
		outcomes[i] = out
	}
}

type scored struct {
	state *pipeline.DecisionState
	err   error
}

// scoreOne runs one application under the per-application timeout. The
// pipeline is synchronous, so it runs in its own goroutine and is abandoned
// if the deadline passes first.
func (p *Processor) scoreOne(ctx context.Context, pl *pipeline.Pipeline, in Input) (*pipeline.DecisionState, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan scored, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scored{err: fmt.Errorf("panic while scoring: %v", r)}
			}
		}()
		app, err := ingest.ParseApplicationWithFallbackID(in.Raw, in.Name)
		if err != nil {
			done <- scored{err: err}
			return
		}
		if p.opts.Amount > 0 {
			app.RequestedAmount = p.opts.Amount
		}
		if p.opts.Term > 0 {
			app.RequestedTerm = p.opts.Term
		}
		state, err := pl.Decide(ctx, app)
		done <- scored{state: state, err: err}
	}()

	select {
	case res := <-done:
		return res.state, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scoring %q: %w", in.Name, ctx.Err())
	}
}

func buildReport(outcomes []Outcome, elapsed time.Duration) Report {
	r := Report{
		Outcomes:       outcomes,
		ErrorCounts:    make(map[ErrorTag]int),
		DecisionCounts: make(map[scoring.Decision]int),
		Elapsed:        elapsed,
	}
	r.Stats.Total = len(outcomes)

	var total float64
	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, o := range outcomes {
		if o.Failure != nil {
			r.Errors = append(r.Errors, *o.Failure)
			r.ErrorCounts[o.Failure.Tag]++
			continue
		}
		res := o.State.Result
		r.DecisionCounts[res.Decision]++
		total += res.Score
		minScore = math.Min(minScore, res.Score)
		maxScore = math.Max(maxScore, res.Score)
		r.Stats.Succeeded++
	}
	r.Stats.Failed = len(r.Errors)

	if r.Stats.Succeeded > 0 {
		r.Stats.AverageScore = math.Round(total/float64(r.Stats.Succeeded)*10) / 10
		r.Stats.MinScore = minScore
		r.Stats.MaxScore = maxScore
	}
	if r.Stats.Total > 0 {
		r.Stats.SuccessRate = math.Round(float64(r.Stats.Succeeded)/float64(r.Stats.Total)*1000) / 10
	}
	return r
}
