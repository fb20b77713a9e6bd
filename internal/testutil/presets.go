package testutil

// Deck describes a post holding one scene per title, followed by the
// post's collection anchor (key "post-anchor"). Each scene ends with its
// own anchor.
//
// Structure:
//
//	post
//	  scene "Intro"
//	    ~anchor
//	  ~anchor
func Deck(titles ...string) NodeSpec {
	scenes := make([]NodeSpec, 0, len(titles)+1)
	for _, title := range titles {
		scenes = append(scenes, Element("scene", Label(title), Children(Anchor())))
	}
	scenes = append(scenes, Anchor(Key("post-anchor")))
	return Element("post", Children(scenes...))
}
