package scenario

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/slides"
	"github.com/zjrosen/perch/internal/tracing"
	"github.com/zjrosen/perch/internal/tree"
)

// Frame is the deck as it stood after one step. Frame 0 is the starting deck.
type Frame struct {
	Step    int
	Desc    string
	Titles  []string
	Dump    string
	Records int // change records the scene list observer received for this step
}

// Runner replays scenarios.
type Runner struct {
	render     tree.RenderOptions
	editorOpts []slides.Option
	tracer     trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRenderOptions sets how frame dumps are rendered.
func WithRenderOptions(opts tree.RenderOptions) RunnerOption {
	return func(r *Runner) { r.render = opts }
}

// WithEditorOptions passes options to every editor the runner creates.
func WithEditorOptions(opts ...slides.Option) RunnerOption {
	return func(r *Runner) { r.editorOpts = append(r.editorOpts, opts...) }
}

// WithTracer records a span per run and a child span per step.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{tracer: noop.NewTracerProvider().Tracer("noop")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run builds a fresh editor from sc.Deck and applies each step as one edit
// turn. It returns the frames produced so far together with a *StepError
// when a step cannot be applied, and stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (frames []Frame, err error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, tracing.SpanScenarioRun, trace.WithAttributes(
		attribute.String(tracing.AttrScenarioName, sc.Name),
		attribute.Int(tracing.AttrDeckSize, len(sc.Deck)),
	))
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrFrames, len(frames)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	ed, err := slides.New(sc.Deck, r.editorOpts...)
	if err != nil {
		return nil, fmt.Errorf("building deck: %w", err)
	}

	records := 0
	sub := ed.Post.Scenes.Observe(func(recs []tree.Record) {
		records += len(recs)
	})
	defer sub.Cancel()

	frames = []Frame{r.frame(ed, 0, "start", 0)}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		records = 0
		stepErr := r.step(ctx, ed, i+1, st, &records)
		if stepErr != nil {
			err := &StepError{Step: i + 1, Op: st.Op, Err: stepErr}
			log.ErrorErr(log.CatScenario, "Step failed", err, "scenario", sc.Name)
			return frames, err
		}
		frames = append(frames, r.frame(ed, i+1, st.String(), records))
	}

	log.Debug(log.CatScenario, "Scenario finished", "name", sc.Name, "frames", len(frames))
	return frames, nil
}

// step applies st as one edit turn inside its own span. records is filled
// by the scene list observer when the turn flushes.
func (r *Runner) step(ctx context.Context, ed *slides.Editor, index int, st Step, records *int) error {
	_, span := r.tracer.Start(ctx, tracing.SpanScenarioStep, trace.WithAttributes(
		attribute.Int(tracing.AttrStepIndex, index),
		attribute.String(tracing.AttrStepOp, string(st.Op)),
		attribute.String(tracing.AttrStepDesc, st.String()),
	))
	defer span.End()

	var err error
	ed.Document().Turn(func() {
		err = apply(ed, st)
	})
	span.SetAttributes(
		attribute.Int(tracing.AttrRecords, *records),
		attribute.Int(tracing.AttrDeckSize, ed.Post.Scenes.Len()),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *Runner) frame(ed *slides.Editor, step int, desc string, records int) Frame {
	return Frame{
		Step:    step,
		Desc:    desc,
		Titles:  ed.Titles(),
		Dump:    ed.Render(r.render),
		Records: records,
	}
}

func apply(ed *slides.Editor, st Step) error {
	switch st.Op {
	case OpAdd:
		_, err := ed.AddScene(st.Title)
		return err
	case OpInsert:
		_, _, err := ed.InsertScene(*st.At, st.Title)
		return err
	case OpMove:
		if !ed.MoveScene(*st.From, *st.To) {
			return fmt.Errorf("%w: cannot move %d to %d in a deck of %d",
				ErrStepFailed, *st.From, *st.To, len(ed.Titles()))
		}
		return nil
	case OpRemove:
		_, err := ed.RemoveScene(*st.Index)
		return err
	case OpButton:
		_, err := ed.AddButton(*st.Scene, st.Label)
		return err
	case OpRename:
		return ed.RenameScene(*st.Index, st.Title)
	}
	return fmt.Errorf("%w: unknown op %q", ErrInvalid, st.Op)
}
