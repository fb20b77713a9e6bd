// Package testutil builds node trees for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/perch/internal/tree"
)

// Builder accumulates node specs and mounts them under a document root.
type Builder struct {
	t     *testing.T
	doc   *tree.Document
	specs []NodeSpec
}

// NewBuilder creates a builder over a fresh document.
func NewBuilder(t *testing.T, opts ...tree.Option) *Builder {
	t.Helper()
	return &Builder{t: t, doc: tree.NewDocument(opts...)}
}

// With adds a top-level node.
func (b *Builder) With(spec NodeSpec) *Builder {
	b.specs = append(b.specs, spec)
	return b
}

// Build creates every node, appends the top-level ones to the document root
// and flushes, so observers created afterwards start from a clean queue.
func (b *Builder) Build() *Tree {
	b.t.Helper()
	tr := &Tree{t: b.t, Doc: b.doc, keys: make(map[string]*tree.Node)}
	for _, spec := range b.specs {
		n := tr.create(spec)
		require.NoError(b.t, b.doc.Root().Append(n))
		tr.Roots = append(tr.Roots, n)
	}
	b.doc.Flush()
	return tr
}

// Tree is a built document with its nodes indexed by key.
type Tree struct {
	t     *testing.T
	Doc   *tree.Document
	Roots []*tree.Node
	keys  map[string]*tree.Node
}

// Node returns the node registered under key and fails the test if there is none.
// When several nodes share a key the first in document order wins.
func (tr *Tree) Node(key string) *tree.Node {
	tr.t.Helper()
	n, ok := tr.keys[key]
	require.True(tr.t, ok, "no node with key %q", key)
	return n
}

func (tr *Tree) create(spec NodeSpec) *tree.Node {
	tr.t.Helper()
	var n *tree.Node
	if spec.anchor {
		n = tr.Doc.CreateAnchor()
	} else {
		n = tr.Doc.CreateElement(spec.name)
		n.SetLabel(spec.label)
		for _, m := range spec.markers {
			n.AddMarker(m)
		}
	}
	if k := spec.lookupKey(); k != "" {
		if _, dup := tr.keys[k]; !dup {
			tr.keys[k] = n
		}
	}
	for _, child := range spec.children {
		require.NoError(tr.t, n.Append(tr.create(child)))
	}
	return n
}
