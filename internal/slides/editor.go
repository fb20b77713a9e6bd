// Package slides is a small slide deck editor built on attached controllers.
//
// The document holds one editor node, which holds a post. The post keeps its
// scenes in a live collection, and every scene keeps its buttons the same way:
//
//	#root
//	  editor
//	    post
//	      scene "Intro"
//	        button "Next"
//	      scene "Body"
//
// Controllers find each other through the tree rather than through fields: a
// Button looks its Scene and Editor up with attach.Over, and the editor lists
// every titled thing in the deck with attach.Under[View].
package slides

import (
	"errors"
	"fmt"

	"github.com/zjrosen/perch/internal/attach"
	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tag"
	"github.com/zjrosen/perch/internal/tree"
)

// ErrSceneIndex is returned when an index names no scene.
var ErrSceneIndex = errors.New("scene index out of range")

// View is implemented by every controller that shows a title in the deck.
type View interface {
	attach.Controller
	Title() string
}

// Editor is the top-level controller. It owns the document and the store
// every other controller in the deck is attached to.
type Editor struct {
	doc   *tree.Document
	store *attach.Store
	root  *tree.Node
	Post  *Post
}

// Option configures an Editor.
type Option func(*options)

type options struct {
	treeOpts []tree.Option
}

// WithMaxFlushPasses bounds observer delivery passes per flush.
func WithMaxFlushPasses(n int) Option {
	return func(o *options) {
		o.treeOpts = append(o.treeOpts, tree.WithMaxFlushPasses(n))
	}
}

// New creates an editor with an empty post and one scene per title.
func New(titles []string, opts ...Option) (*Editor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := tag.New()
	if err := tag.Declare[*Scene, View](reg); err != nil {
		return nil, fmt.Errorf("declaring scene view: %w", err)
	}
	if err := tag.Declare[*Button, View](reg); err != nil {
		return nil, fmt.Errorf("declaring button view: %w", err)
	}

	doc := tree.NewDocument(o.treeOpts...)
	e := &Editor{
		doc:   doc,
		store: attach.NewStore(attach.WithRegistry(reg)),
		root:  doc.CreateElement("editor"),
	}
	if err := doc.Root().Append(e.root); err != nil {
		return nil, fmt.Errorf("mounting editor: %w", err)
	}
	if err := e.store.Attach(e); err != nil {
		return nil, fmt.Errorf("attaching editor: %w", err)
	}

	post, err := newPost(e)
	if err != nil {
		return nil, err
	}
	e.Post = post

	for _, t := range titles {
		if _, err := e.AddScene(t); err != nil {
			return nil, err
		}
	}
	// Construction is not an edit; drop the records it produced.
	doc.Flush()

	log.Debug(log.CatSlides, "Editor created", "scenes", len(titles))
	return e, nil
}

// Root implements attach.Controller.
func (e *Editor) Root() *tree.Node { return e.root }

// Document returns the editor's document.
func (e *Editor) Document() *tree.Document { return e.doc }

// Store returns the store the deck's controllers are attached to.
func (e *Editor) Store() *attach.Store { return e.store }

// Scenes returns the scenes in order.
func (e *Editor) Scenes() []*Scene { return e.Post.Scenes.Slice() }

// Scene returns the scene at index. Negative indices count from the end.
func (e *Editor) Scene(index int) (*Scene, error) {
	s, ok := e.Post.Scenes.At(index)
	if !ok {
		return nil, fmt.Errorf("scene %d of %d: %w", index, e.Post.Scenes.Len(), ErrSceneIndex)
	}
	return s, nil
}

// AddScene appends a new scene.
func (e *Editor) AddScene(title string) (*Scene, error) {
	s, _, err := e.InsertScene(e.Post.Scenes.Len(), title)
	return s, err
}

// InsertScene creates a scene and places it at index, with the same index
// rules as collection.InsertAt. It returns the scene and its index.
func (e *Editor) InsertScene(index int, title string) (*Scene, int, error) {
	s, err := newScene(e, title)
	if err != nil {
		return nil, -1, err
	}
	at := e.Post.Scenes.InsertAt(index, s)
	if at < 0 {
		e.store.Detach(s)
		return nil, -1, fmt.Errorf("inserting scene %q at %d: %w", title, index, ErrSceneIndex)
	}
	log.Debug(log.CatSlides, "Scene inserted", "id", s.ID(), "title", title, "index", at)
	return s, at, nil
}

// MoveScene moves the scene at from to index to.
func (e *Editor) MoveScene(from, to int) bool {
	ok := e.Post.Scenes.Move(from, to)
	if ok {
		log.Debug(log.CatSlides, "Scene moved", "from", from, "to", to)
	}
	return ok
}

// RemoveScene takes the scene at index out of the deck and detaches it and
// its buttons from the store.
func (e *Editor) RemoveScene(index int) (*Scene, error) {
	s, err := e.Scene(index)
	if err != nil {
		return nil, err
	}
	for _, b := range s.Buttons.Slice() {
		e.store.Detach(b)
	}
	e.Post.Scenes.Remove(s)
	e.store.Detach(s)
	log.Debug(log.CatSlides, "Scene removed", "id", s.ID(), "title", s.Title())
	return s, nil
}

// RenameScene sets the title of the scene at index.
func (e *Editor) RenameScene(index int, title string) error {
	s, err := e.Scene(index)
	if err != nil {
		return err
	}
	s.SetTitle(title)
	return nil
}

// AddButton appends a button labeled label to the scene at index.
func (e *Editor) AddButton(index int, label string) (*Button, error) {
	s, err := e.Scene(index)
	if err != nil {
		return nil, err
	}
	return s.AddButton(label)
}

// Titles returns the scene titles in order.
func (e *Editor) Titles() []string {
	scenes := e.Post.Scenes.Slice()
	out := make([]string, len(scenes))
	for i, s := range scenes {
		out[i] = s.Title()
	}
	return out
}

// Views returns every titled controller in the deck in document order.
func (e *Editor) Views() []View {
	return attach.Under[View](e.store, e)
}

// Render returns an outline of the post.
func (e *Editor) Render(opts tree.RenderOptions) string {
	return tree.Render(e.Post.root, opts)
}

// Flush delivers pending change records to collection observers.
func (e *Editor) Flush() int { return e.doc.Flush() }
