package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}

func TestAppendPrepend_Order(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b, c, d := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c"), doc.CreateElement("d")

	require.NoError(t, p.Append(a, b))
	require.NoError(t, p.Prepend(c, d))

	require.Equal(t, []string{"c", "d", "a", "b"}, names(p.Children()))
	require.Equal(t, p, a.Parent())
	require.Equal(t, 2, a.Index())
}

func TestInsertBefore(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	require.NoError(t, p.Append(a, b))

	require.NoError(t, p.InsertBefore(c, b))
	require.Equal(t, []string{"a", "c", "b"}, names(p.Children()))

	// Moving within the same parent.
	require.NoError(t, p.InsertBefore(b, a))
	require.Equal(t, []string{"b", "a", "c"}, names(p.Children()))

	// nil ref appends.
	require.NoError(t, p.InsertBefore(b, nil))
	require.Equal(t, []string{"a", "c", "b"}, names(p.Children()))

	// Before itself is a no-op.
	require.NoError(t, p.InsertBefore(c, c))
	require.Equal(t, []string{"a", "c", "b"}, names(p.Children()))
}

func TestInsertAllBefore(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	x, y := doc.CreateElement("x"), doc.CreateElement("y")
	require.NoError(t, p.Append(a, b, c))

	require.NoError(t, p.InsertAllBefore(b, x, b, y))
	require.Equal(t, []string{"a", "x", "b", "y", "c"}, names(p.Children()))

	require.NoError(t, p.InsertAllBefore(nil, a, x))
	require.Equal(t, []string{"b", "y", "c", "a", "x"}, names(p.Children()))

	require.ErrorIs(t, p.InsertAllBefore(doc.CreateElement("stray"), y), ErrNotChild)
}

func TestInsertAfter(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	require.NoError(t, p.Append(a, b, c))

	require.NoError(t, p.InsertAfter(a, c))
	require.Equal(t, []string{"b", "c", "a"}, names(p.Children()))

	require.NoError(t, p.InsertAfter(a, nil))
	require.Equal(t, []string{"a", "b", "c"}, names(p.Children()))
}

func TestInsert_MovesBetweenParents(t *testing.T) {
	doc := NewDocument()
	p, q := doc.CreateElement("p"), doc.CreateElement("q")
	a := doc.CreateElement("a")
	require.NoError(t, p.Append(a))

	require.NoError(t, q.Append(a))

	require.Equal(t, 0, p.ChildCount())
	require.Equal(t, q, a.Parent())
}

func TestInsert_Errors(t *testing.T) {
	doc := NewDocument()
	other := NewDocument()
	p := doc.CreateElement("p")
	child := doc.CreateElement("child")
	require.NoError(t, p.Append(child))
	anchor := doc.CreateAnchor()
	stranger := doc.CreateElement("stranger")

	require.ErrorIs(t, p.Append(nil), ErrNilNode)
	require.ErrorIs(t, child.Append(p), ErrHierarchy, "cycle")
	require.ErrorIs(t, p.Append(p), ErrHierarchy, "self")
	require.ErrorIs(t, anchor.Append(doc.CreateElement("x")), ErrHierarchy)
	require.ErrorIs(t, p.Append(other.CreateElement("x")), ErrWrongDocument)
	require.ErrorIs(t, p.InsertBefore(doc.CreateElement("x"), stranger), ErrNotChild)
	require.ErrorIs(t, p.Append(doc.Root()), ErrHierarchy)

	require.Equal(t, []string{"child"}, names(p.Children()), "failed inserts leave the tree unchanged")
}

func TestSiblings(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	require.NoError(t, p.Append(a, b, c))

	require.Equal(t, b, a.NextSibling())
	require.Nil(t, c.NextSibling())
	require.Equal(t, b, c.PreviousSibling())
	require.Nil(t, a.PreviousSibling())

	detached := doc.CreateElement("d")
	require.Nil(t, detached.NextSibling())
	require.Nil(t, detached.PreviousSibling())
	require.Equal(t, -1, detached.Index())
}

func TestRemove(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	a, b := doc.CreateElement("a"), doc.CreateElement("b")
	require.NoError(t, p.Append(a, b))

	a.Remove()
	a.Remove()

	require.Nil(t, a.Parent())
	require.Equal(t, []string{"b"}, names(p.Children()))

	p.RemoveChildren()
	require.Equal(t, 0, p.ChildCount())
}

func TestContainsAndIsConnected(t *testing.T) {
	doc := NewDocument()
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	require.NoError(t, a.Append(b))
	require.NoError(t, b.Append(c))

	require.True(t, a.Contains(c))
	require.True(t, c.Contains(c))
	require.False(t, c.Contains(a))
	require.False(t, c.IsConnected())

	require.NoError(t, doc.Root().Append(a))
	require.True(t, c.IsConnected())
}

func TestDescendantsAndWalk(t *testing.T) {
	doc := NewDocument()
	a, b, c, d := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c"), doc.CreateElement("d")
	require.NoError(t, a.Append(b, d))
	require.NoError(t, b.Append(c))

	require.Equal(t, []string{"b", "c", "d"}, names(slices.Collect(a.Descendants())))

	var visited []string
	a.Walk(func(n *Node) bool {
		visited = append(visited, n.Name())
		return n != b
	})
	require.Equal(t, []string{"a", "b", "d"}, visited, "returning false prunes the subtree")

	var first []string
	for n := range a.Descendants() {
		first = append(first, n.Name())
		break
	}
	require.Equal(t, []string{"b"}, first)
}

func TestMarkers(t *testing.T) {
	doc := NewDocument()
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	require.NoError(t, a.Append(b))
	require.NoError(t, b.Append(c))

	c.AddMarker("m")
	c.AddMarker("m")
	a.AddMarker("m")

	require.Equal(t, []string{"m"}, c.Markers())
	require.Equal(t, []*Node{c}, a.WithMarker("m"), "self is excluded")

	c.RemoveMarker("m")
	require.False(t, c.HasMarker("m"))
	require.Empty(t, a.WithMarker("m"))
}

func TestValues(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("n")
	type key struct{}

	require.Nil(t, n.Value(key{}))
	n.SetValue(key{}, 42)
	require.Equal(t, 42, n.Value(key{}))
	n.DeleteValue(key{})
	require.Nil(t, n.Value(key{}))
}
