package testutil

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Parse builds a tree from an outline in the format tree.Render produces
// with two-space indentation: one node per line, `~anchor` for anchors,
// `name "label"` for labeled elements and an optional `[m1 m2]` marker
// suffix. Blank lines are skipped.
func Parse(t *testing.T, outline string) *Tree {
	t.Helper()

	type frame struct {
		depth int
		spec  *NodeSpec
	}
	var roots []*NodeSpec
	var stack []frame

	for i, line := range strings.Split(outline, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)
		require.Zero(t, indent%2, "line %d: indent must be a multiple of two", i+1)
		depth := indent / 2

		spec := parseLine(t, i+1, trimmed)

		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			require.Zero(t, depth, "line %d: first node must not be indented", i+1)
			roots = append(roots, spec)
		} else {
			parent := stack[len(stack)-1]
			require.Equal(t, parent.depth+1, depth, "line %d: indented more than one level", i+1)
			require.False(t, parent.spec.anchor, "line %d: anchors cannot have children", i+1)
			parent.spec.children = append(parent.spec.children, NodeSpec{})
			last := &parent.spec.children[len(parent.spec.children)-1]
			*last = *spec
			spec = last
		}
		stack = append(stack, frame{depth: depth, spec: spec})
	}

	b := NewBuilder(t)
	for _, r := range roots {
		b.With(*r)
	}
	return b.Build()
}

func parseLine(t *testing.T, lineNo int, s string) *NodeSpec {
	t.Helper()

	var markers []string
	if strings.HasSuffix(s, "]") {
		if open := strings.LastIndex(s, " ["); open >= 0 {
			markers = strings.Fields(s[open+2 : len(s)-1])
			s = s[:open]
		}
	}

	if s == "~anchor" {
		require.Empty(t, markers, "line %d: anchors carry no markers", lineNo)
		spec := Anchor()
		return &spec
	}

	name, rest, hasLabel := strings.Cut(s, " ")
	spec := Element(name, Markers(markers...))
	if hasLabel {
		label, err := strconv.Unquote(rest)
		require.NoError(t, err, "line %d: label must be a quoted string", lineNo)
		spec.label = label
	}
	return &spec
}
