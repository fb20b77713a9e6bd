package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObserver_BatchesPerFlush(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")

	var batches [][]Record
	obs := doc.NewObserver(func(records []Record, _ *Observer) {
		batches = append(batches, records)
	})
	obs.Observe(p)

	a, b := doc.CreateElement("a"), doc.CreateElement("b")
	require.NoError(t, p.Append(a))
	require.NoError(t, p.Append(b))
	a.Remove()

	require.Empty(t, batches, "nothing is delivered synchronously")
	require.True(t, doc.Pending())

	require.Equal(t, 1, doc.Flush())
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 3)
	require.Equal(t, []*Node{a}, batches[0][0].Added)
	require.Equal(t, []*Node{a}, batches[0][2].Removed)
	require.Equal(t, b, batches[0][2].NextSibling)
	require.False(t, doc.Pending())

	require.Equal(t, 0, doc.Flush())
}

func TestObserver_OnlyObservedTargets(t *testing.T) {
	doc := NewDocument()
	p, q := doc.CreateElement("p"), doc.CreateElement("q")
	count := 0
	obs := doc.NewObserver(func(records []Record, _ *Observer) { count += len(records) })
	obs.Observe(p)
	obs.Observe(p)

	require.NoError(t, q.Append(doc.CreateElement("x")))
	doc.Flush()
	require.Equal(t, 0, count)

	require.NoError(t, p.Append(doc.CreateElement("y")))
	doc.Flush()
	require.Equal(t, 1, count, "observing twice does not duplicate records")
}

func TestObserver_MoveAcrossParentsRecordsBoth(t *testing.T) {
	doc := NewDocument()
	p, q := doc.CreateElement("p"), doc.CreateElement("q")
	a := doc.CreateElement("a")
	require.NoError(t, p.Append(a))

	var targets []*Node
	obs := doc.NewObserver(func(records []Record, _ *Observer) {
		for _, r := range records {
			targets = append(targets, r.Target)
		}
	})
	obs.Observe(p)
	obs.Observe(q)

	require.NoError(t, q.Append(a))
	doc.Flush()

	require.Equal(t, []*Node{p, q}, targets)
}

func TestFlush_ObserverCreationOrder(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	var order []string
	first := doc.NewObserver(func([]Record, *Observer) { order = append(order, "first") })
	second := doc.NewObserver(func([]Record, *Observer) { order = append(order, "second") })
	second.Observe(p)
	first.Observe(p)

	require.NoError(t, p.Append(doc.CreateElement("x")))
	doc.Flush()

	require.Equal(t, []string{"first", "second"}, order)
}

func TestFlush_CallbackMutationsDeliveredInLaterPass(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	var sizes []int
	obs := doc.NewObserver(func(records []Record, _ *Observer) {
		sizes = append(sizes, len(records))
		if len(sizes) == 1 {
			require.NoError(t, p.Append(doc.CreateElement("echo")))
			require.Equal(t, 0, doc.Flush(), "nested flush is ignored")
		}
	})
	obs.Observe(p)

	require.NoError(t, p.Append(doc.CreateElement("x")))
	require.Equal(t, 2, doc.Flush())
	require.Equal(t, []int{1, 1}, sizes)
}

func TestFlush_PassLimitLeavesRecordsPending(t *testing.T) {
	doc := NewDocument(WithMaxFlushPasses(3))
	p := doc.CreateElement("p")
	calls := 0
	obs := doc.NewObserver(func([]Record, *Observer) {
		calls++
		require.NoError(t, p.Append(doc.CreateElement("again")))
	})
	obs.Observe(p)

	require.NoError(t, p.Append(doc.CreateElement("x")))
	require.Equal(t, 3, doc.Flush())
	require.Equal(t, 3, calls)
	require.True(t, doc.Pending())
}

func TestObserver_DisconnectAndTakeRecords(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	called := false
	obs := doc.NewObserver(func([]Record, *Observer) { called = true })
	obs.Observe(p)
	require.True(t, obs.Observing())

	require.NoError(t, p.Append(doc.CreateElement("x")))
	require.Len(t, obs.TakeRecords(), 1)
	doc.Flush()
	require.False(t, called, "taken records are not delivered again")

	require.NoError(t, p.Append(doc.CreateElement("y")))
	obs.Disconnect()
	doc.Flush()
	require.False(t, called)
	require.False(t, obs.Observing())
}

func TestTurn_FlushesAfterFn(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	var got []Record
	obs := doc.NewObserver(func(records []Record, _ *Observer) { got = records })
	obs.Observe(p)

	n := doc.Turn(func() {
		require.NoError(t, p.Append(doc.CreateElement("a"), doc.CreateElement("b")))
		require.Nil(t, got)
	})

	require.Equal(t, 1, n)
	require.Len(t, got, 2)
}
