package testutil

// NodeSpec describes a node to build, with its subtree.
type NodeSpec struct {
	name     string
	label    string
	key      string
	anchor   bool
	markers  []string
	children []NodeSpec
}

// NodeOption configures a NodeSpec.
type NodeOption func(*NodeSpec)

// Element describes an element node. Its lookup key defaults to its label,
// or its name when it has no label.
func Element(name string, opts ...NodeOption) NodeSpec {
	spec := NodeSpec{name: name}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// Anchor describes an anchor node. Anchors are only found by an explicit Key.
func Anchor(opts ...NodeOption) NodeSpec {
	spec := NodeSpec{anchor: true}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// Label sets the node's label.
func Label(label string) NodeOption {
	return func(s *NodeSpec) { s.label = label }
}

// Key sets the name Tree.Node finds the node by.
func Key(key string) NodeOption {
	return func(s *NodeSpec) { s.key = key }
}

// Markers adds markers to the node.
func Markers(markers ...string) NodeOption {
	return func(s *NodeSpec) { s.markers = append(s.markers, markers...) }
}

// Children appends child specs.
func Children(children ...NodeSpec) NodeOption {
	return func(s *NodeSpec) { s.children = append(s.children, children...) }
}

func (s NodeSpec) lookupKey() string {
	switch {
	case s.key != "":
		return s.key
	case s.anchor:
		return ""
	case s.label != "":
		return s.label
	}
	return s.name
}
