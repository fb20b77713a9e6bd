package slides

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/zjrosen/perch/internal/attach"
	"github.com/zjrosen/perch/internal/collection"
	"github.com/zjrosen/perch/internal/tree"
)

// Post holds the deck's scenes.
type Post struct {
	root   *tree.Node
	Scenes *collection.Collection[*Scene]
}

func newPost(e *Editor) (*Post, error) {
	p := &Post{root: e.doc.CreateElement("post")}
	if err := e.root.Append(p.root); err != nil {
		return nil, fmt.Errorf("mounting post: %w", err)
	}
	if err := e.store.Attach(p); err != nil {
		return nil, fmt.Errorf("attaching post: %w", err)
	}
	scenes, err := collection.New[*Scene](e.store, p.root)
	if err != nil {
		return nil, err
	}
	p.Scenes = scenes
	return p, nil
}

// Root implements attach.Controller.
func (p *Post) Root() *tree.Node { return p.root }

// MarshalJSON encodes the post as its list of scenes.
func (p *Post) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Scenes *collection.Collection[*Scene] `json:"scenes"`
	}{p.Scenes})
}

// Scene is one slide of the deck.
type Scene struct {
	store   *attach.Store
	root    *tree.Node
	id      uuid.UUID
	title   string
	Buttons *collection.Collection[*Button]
}

func newScene(e *Editor, title string) (*Scene, error) {
	s := &Scene{
		store: e.store,
		root:  e.doc.CreateElement("scene"),
		id:    uuid.New(),
		title: title,
	}
	s.root.SetLabel(title)
	if err := e.store.Attach(s); err != nil {
		return nil, fmt.Errorf("attaching scene %q: %w", title, err)
	}
	buttons, err := collection.New[*Button](e.store, s.root)
	if err != nil {
		return nil, err
	}
	s.Buttons = buttons
	return s, nil
}

// Root implements attach.Controller.
func (s *Scene) Root() *tree.Node { return s.root }

// ID returns the scene's stable identity.
func (s *Scene) ID() uuid.UUID { return s.id }

// Title implements View.
func (s *Scene) Title() string { return s.title }

// SetTitle renames the scene.
func (s *Scene) SetTitle(title string) {
	s.title = title
	s.root.SetLabel(title)
}

// Next returns the scene after s, if any.
func (s *Scene) Next() (*Scene, bool) {
	return attach.Next[*Scene](s.store, s.root)
}

// Previous returns the scene before s, if any.
func (s *Scene) Previous() (*Scene, bool) {
	return attach.Previous[*Scene](s.store, s.root)
}

// AddButton appends a new button to the scene.
func (s *Scene) AddButton(label string) (*Button, error) {
	b := &Button{
		store: s.store,
		root:  s.root.Document().CreateElement("button"),
		label: label,
	}
	b.root.SetLabel(label)
	if err := s.store.Attach(b); err != nil {
		return nil, fmt.Errorf("attaching button %q: %w", label, err)
	}
	s.Buttons.Insert(b)
	return b, nil
}

// MarshalJSON encodes the scene with its buttons.
func (s *Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string                          `json:"id"`
		Title   string                          `json:"title"`
		Buttons *collection.Collection[*Button] `json:"buttons"`
	}{s.id.String(), s.title, s.Buttons})
}

// Button is a labeled control inside a scene.
type Button struct {
	store *attach.Store
	root  *tree.Node
	label string
}

// Root implements attach.Controller.
func (b *Button) Root() *tree.Node { return b.root }

// Title implements View.
func (b *Button) Title() string { return b.label }

// Scene returns the scene the button currently sits in.
func (b *Button) Scene() (*Scene, error) {
	return attach.Over[*Scene](b.store, b)
}

// Editor returns the editor the button belongs to.
func (b *Button) Editor() (*Editor, error) {
	return attach.Over[*Editor](b.store, b)
}

// Caption describes the button with its scene's title, as shown in the
// deck outline.
func (b *Button) Caption() (string, error) {
	s, err := b.Scene()
	if err != nil {
		return "", err
	}
	return s.Title() + " / " + b.label, nil
}

// MarshalJSON encodes the button's label.
func (b *Button) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string `json:"label"`
	}{b.label})
}
