package tree

import "strings"

// RenderOptions controls Render output.
type RenderOptions struct {
	ShowAnchors bool
	ShowMarkers bool
	Indent      string
}

// Render returns an indented outline of n and its descendants, one node
// per line.
func Render(n *Node, opts RenderOptions) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var b strings.Builder
	var visit func(*Node, int)
	visit = func(cur *Node, depth int) {
		if cur.kind == KindAnchor && !opts.ShowAnchors {
			return
		}
		b.WriteString(strings.Repeat(opts.Indent, depth))
		b.WriteString(cur.String())
		if opts.ShowMarkers && len(cur.markers) > 0 {
			b.WriteString(" [")
			b.WriteString(strings.Join(cur.markers, " "))
			b.WriteString("]")
		}
		b.WriteByte('\n')
		for _, child := range cur.children {
			visit(child, depth+1)
		}
	}
	visit(n, 0)
	return b.String()
}
