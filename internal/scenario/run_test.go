package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/perch/internal/slides"
	"github.com/zjrosen/perch/internal/tracing"
	"github.com/zjrosen/perch/internal/tree"
)

func TestRun_Reorder(t *testing.T) {
	sc, err := Builtin("reorder")
	require.NoError(t, err)

	frames, err := NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, frames, 6)

	want := [][]string{
		{"Intro", "Body", "Outro"},
		{"Intro", "Body", "Outro", "Credits"},
		{"Cover", "Intro", "Body", "Outro", "Credits"},
		{"Intro", "Body", "Cover", "Outro", "Credits"},
		{"Intro", "Cover", "Outro", "Credits"},
		{"Opening", "Cover", "Outro", "Credits"},
	}
	for i, f := range frames {
		require.Equal(t, i, f.Step)
		require.Equal(t, want[i], f.Titles, "frame %d", i)
	}

	records := make([]int, len(frames))
	for i, f := range frames {
		records[i] = f.Records
	}
	require.Equal(t, []int{0, 1, 1, 2, 1, 0}, records, "a move is a removal plus an insertion")
	require.Equal(t, "start", frames[0].Desc)
	require.Equal(t, `rename 0 to "Opening"`, frames[5].Desc)
}

func TestRun_Buttons(t *testing.T) {
	sc, err := Builtin("buttons")
	require.NoError(t, err)

	frames, err := NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)

	last := frames[len(frames)-1]
	require.Equal(t, "post\n"+
		"  scene \"Body\"\n"+
		"    button \"Back\"\n"+
		"  scene \"Intro\"\n"+
		"    button \"Next\"\n"+
		"    button \"Finish\"\n", last.Dump)
}

func TestRun_ShowAnchors(t *testing.T) {
	sc := &Scenario{Name: "anchors", Deck: []string{"A"}}

	frames, err := NewRunner(WithRenderOptions(tree.RenderOptions{ShowAnchors: true})).
		Run(context.Background(), sc)
	require.NoError(t, err)
	require.Equal(t, "post\n  scene \"A\"\n    ~anchor\n  ~anchor\n", frames[0].Dump)
}

func TestRun_StepFailure(t *testing.T) {
	three := 3
	zero := 0
	sc := &Scenario{
		Name: "bad",
		Deck: []string{"A", "B"},
		Steps: []Step{
			{Op: OpAdd, Title: "C"},
			{Op: OpMove, From: &zero, To: &three},
		},
	}

	frames, err := NewRunner().Run(context.Background(), sc)
	require.ErrorIs(t, err, ErrStepFailed)
	require.Len(t, frames, 2, "frames before the failing step are kept")

	var se *StepError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 2, se.Step)
	require.Equal(t, OpMove, se.Op)
}

func TestRun_RemoveOutOfRange(t *testing.T) {
	five := 5
	sc := &Scenario{Name: "bad", Deck: []string{"A"}, Steps: []Step{{Op: OpRemove, Index: &five}}}

	_, err := NewRunner().Run(context.Background(), sc)
	require.ErrorIs(t, err, slides.ErrSceneIndex)
}

func TestRun_ValidatesFirst(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []Step{{Op: OpMove}}}

	frames, err := NewRunner().Run(context.Background(), sc)
	require.ErrorIs(t, err, ErrInvalid)
	require.Nil(t, frames)
}

func TestRun_Cancelled(t *testing.T) {
	sc, err := Builtin("reorder")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames, err := NewRunner().Run(ctx, sc)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, frames, 1)
}

func TestRun_Spans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	three, zero := 3, 0
	sc := &Scenario{
		Name: "traced",
		Deck: []string{"A", "B"},
		Steps: []Step{
			{Op: OpAdd, Title: "C"},
			{Op: OpMove, From: &zero, To: &three},
		},
	}
	_, err := NewRunner(WithTracer(tp.Tracer("test"))).Run(context.Background(), sc)
	require.ErrorIs(t, err, ErrStepFailed)

	spans := exp.GetSpans()
	require.Len(t, spans, 3)
	// Children end before their parent.
	add, move, run := spans[0], spans[1], spans[2]
	require.Equal(t, tracing.SpanScenarioRun, run.Name)
	require.Equal(t, codes.Error, run.Status.Code)
	require.Equal(t, tracing.SpanScenarioStep, add.Name)
	require.Equal(t, run.SpanContext.SpanID(), add.Parent.SpanID())
	require.Equal(t, run.SpanContext.SpanID(), move.Parent.SpanID())

	attrs := func(s tracetest.SpanStub) map[attribute.Key]attribute.Value {
		out := make(map[attribute.Key]attribute.Value)
		for _, kv := range s.Attributes {
			out[kv.Key] = kv.Value
		}
		return out
	}
	addAttrs := attrs(add)
	require.Equal(t, "add", addAttrs[tracing.AttrStepOp].AsString())
	require.EqualValues(t, 1, addAttrs[tracing.AttrRecords].AsInt64())
	require.EqualValues(t, 3, addAttrs[tracing.AttrDeckSize].AsInt64())
	require.Equal(t, codes.Error, move.Status.Code)
	require.EqualValues(t, 2, attrs(run)[tracing.AttrFrames].AsInt64())
}
