// Package scenario loads scripted deck edits from YAML and replays them
// against a slides editor, one tree dump per step.
package scenario

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/perch/internal/log"
)

var (
	// ErrInvalid is wrapped by every validation error.
	ErrInvalid = errors.New("invalid scenario")

	// ErrStepFailed is wrapped when a valid step cannot be applied to the deck.
	ErrStepFailed = errors.New("step failed")
)

// Op names a step's edit.
type Op string

const (
	OpAdd    Op = "add"
	OpInsert Op = "insert"
	OpMove   Op = "move"
	OpRemove Op = "remove"
	OpButton Op = "button"
	OpRename Op = "rename"
)

// Scenario is a starting deck plus the edits applied to it.
type Scenario struct {
	Name  string   `yaml:"name"`
	Deck  []string `yaml:"deck"`
	Steps []Step   `yaml:"steps"`
}

// Step is a single edit. Which fields are required depends on Op.
type Step struct {
	Op    Op     `yaml:"op"`
	Title string `yaml:"title,omitempty"`
	Label string `yaml:"label,omitempty"`
	At    *int   `yaml:"at,omitempty"`
	From  *int   `yaml:"from,omitempty"`
	To    *int   `yaml:"to,omitempty"`
	Index *int   `yaml:"index,omitempty"`
	Scene *int   `yaml:"scene,omitempty"`
}

// StepError reports which step of a scenario went wrong.
type StepError struct {
	Step int // 1-based
	Op   Op
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := Parse(bytes.NewReader(data))
	if err != nil {
		log.ErrorErr(log.CatScenario, "Failed to load scenario", err, "path", path)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatScenario, "Loaded scenario", "path", path, "name", sc.Name, "steps", len(sc.Steps))
	return sc, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: parsing YAML: %w", ErrInvalid, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step names a known op and carries the fields
// that op needs.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("%w: missing required field: name", ErrInvalid)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return &StepError{Step: i + 1, Op: st.Op, Err: fmt.Errorf("%w: %w", ErrInvalid, err)}
		}
	}
	return nil
}

func (st Step) validate() error {
	var missing []string
	need := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}

	switch st.Op {
	case OpAdd:
		need("title", st.Title != "")
	case OpInsert:
		need("title", st.Title != "")
		need("at", st.At != nil)
	case OpMove:
		need("from", st.From != nil)
		need("to", st.To != nil)
	case OpRemove:
		need("index", st.Index != nil)
	case OpButton:
		need("scene", st.Scene != nil)
		need("label", st.Label != "")
	case OpRename:
		need("index", st.Index != nil)
		need("title", st.Title != "")
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing %v", missing)
	}
	return nil
}

// Fingerprint identifies the scenario's content: two scenarios that decode
// to the same name, deck and steps share a fingerprint however their YAML
// was laid out.
func (sc *Scenario) Fingerprint() string {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// String describes the step in one line, e.g. "move 0 -> 2".
func (st Step) String() string {
	switch st.Op {
	case OpAdd:
		return fmt.Sprintf("add %q", st.Title)
	case OpInsert:
		return fmt.Sprintf("insert %q at %d", st.Title, deref(st.At))
	case OpMove:
		return fmt.Sprintf("move %d -> %d", deref(st.From), deref(st.To))
	case OpRemove:
		return fmt.Sprintf("remove %d", deref(st.Index))
	case OpButton:
		return fmt.Sprintf("button %q on %d", st.Label, deref(st.Scene))
	case OpRename:
		return fmt.Sprintf("rename %d to %q", deref(st.Index), st.Title)
	}
	return string(st.Op)
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
