package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/perch/internal/tree"
)

func TestParse_RoundTripsRender(t *testing.T) {
	outline := "post\n" +
		"  scene \"Intro\" [__ctrl_2__ __ctrl_3__]\n" +
		"    button \"Next\"\n" +
		"    ~anchor\n" +
		"  scene \"with \\\"quotes\\\"\"\n" +
		"  ~anchor\n"

	tr := Parse(t, outline)

	require.Len(t, tr.Roots, 1)
	got := tree.Render(tr.Roots[0], tree.RenderOptions{ShowAnchors: true, ShowMarkers: true})
	require.Equal(t, outline, got)
	require.True(t, tr.Node("Intro").HasMarker("__ctrl_3__"))
	require.Equal(t, `with "quotes"`, tr.Node(`with "quotes"`).Label())
}

func TestParse_SeveralRoots(t *testing.T) {
	tr := Parse(t, "\na\n  b\n\nc\n")

	require.Len(t, tr.Roots, 2)
	require.Equal(t, []*tree.Node{tr.Node("a"), tr.Node("c")}, tr.Doc.Root().Children())
	require.Same(t, tr.Node("a"), tr.Node("b").Parent())
}

func TestParse_DedentClosesSubtrees(t *testing.T) {
	tr := Parse(t, "a\n  b\n    c\n  d\n")

	require.Equal(t, []*tree.Node{tr.Node("b"), tr.Node("d")}, tr.Node("a").Children())
	require.Equal(t, []*tree.Node{tr.Node("c")}, tr.Node("b").Children())
}
