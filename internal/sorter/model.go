// Package sorter implements the interactive scene sorter: a Bubble Tea
// program that edits a slides deck and shows the live tree underneath it.
package sorter

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/perch/internal/collection"
	"github.com/zjrosen/perch/internal/config"
	"github.com/zjrosen/perch/internal/keys"
	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/pubsub"
	"github.com/zjrosen/perch/internal/slides"
	"github.com/zjrosen/perch/internal/tree"
	"github.com/zjrosen/perch/internal/ui/styles"
)

// Mode is what the sorter's keyboard input currently drives.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeInsert
	ModeRename
	ModeButton
)

func (m Mode) prompt() string {
	switch m {
	case ModeAdd:
		return "New scene: "
	case ModeInsert:
		return "Insert scene: "
	case ModeRename:
		return "Rename to: "
	case ModeButton:
		return "Button label: "
	}
	return ""
}

// Model is the sorter's Bubble Tea model.
type Model struct {
	editor *slides.Editor
	keys   keys.KeyMap
	styles styles.Styles
	help   help.Model
	input  textinput.Model

	mode        Mode
	cursor      int
	showAnchors bool
	showHelp    bool

	activity    []string
	maxActivity int
	status      string
	err         error

	changes  *pubsub.Broker[string]
	changesL *pubsub.ContinuousListener[string]
	logs     *log.LogListener
	sub      *collection.Subscription

	savePath      string
	width, height int
}

// New creates a sorter over ed. Deck edits are saved to savePath ("" disables
// saving). The model's listeners stop when ctx is cancelled; Close releases
// the rest.
func New(ctx context.Context, ed *slides.Editor, cfg config.Config, savePath string) Model {
	in := textinput.New()
	in.CharLimit = 64

	m := Model{
		editor:      ed,
		keys:        keys.DefaultKeyMap(),
		styles:      styles.New(cfg.Theme),
		help:        help.New(),
		input:       in,
		showAnchors: cfg.Sorter.ShowAnchors,
		maxActivity: cfg.Sorter.ActivityLines,
		changes:     pubsub.NewBroker[string](),
		logs:        log.NewListener(ctx),
		savePath:    savePath,
	}
	m.changesL = pubsub.NewContinuousListener(ctx, m.changes)

	broker := m.changes
	m.sub = ed.Post.Scenes.Observe(func(recs []tree.Record) {
		broker.Publish(pubsub.ChildrenChangedEvent, Summarize(recs, ed.Titles()))
	})
	return m
}

// Close stops observing the deck and shuts the change broker down.
func (m Model) Close() {
	m.sub.Cancel()
	m.changes.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.changesL.Listen(), m.logs.Listen())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pubsub.Event[string]:
		switch msg.Type {
		case pubsub.ChildrenChangedEvent:
			m.pushActivity(msg.Payload)
			return m, m.changesL.Listen()
		case pubsub.LogEntryEvent:
			m.pushActivity(strings.TrimRight(msg.Payload, "\n"))
			return m, m.logs.Listen()
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode != ModeNormal {
			return m, nil
		}
		return m.handleMouseMsg(msg), nil

	case tea.KeyMsg:
		if m.mode != ModeNormal {
			return m.updateInput(msg)
		}
		next, cmd := m.updateNormal(msg)
		next.editor.Flush()
		return next, cmd
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := m.editor.Post.Scenes.Len()
	m.err = nil
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 && m.editor.MoveScene(m.cursor, m.cursor-1) {
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < n-1 && m.editor.MoveScene(m.cursor, m.cursor+1) {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		return m.startInput(ModeAdd, "")
	case key.Matches(msg, m.keys.Insert):
		return m.startInput(ModeInsert, "")
	case key.Matches(msg, m.keys.Rename):
		if s, err := m.editor.Scene(m.cursor); err == nil {
			return m.startInput(ModeRename, s.Title())
		}
	case key.Matches(msg, m.keys.Button):
		if n > 0 {
			return m.startInput(ModeButton, "")
		}

	case key.Matches(msg, m.keys.Delete):
		if n == 0 {
			break
		}
		if s, err := m.editor.RemoveScene(m.cursor); err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("Deleted %q", s.Title())
			m.cursor = min(m.cursor, n-2)
			m.cursor = max(m.cursor, 0)
		}

	case key.Matches(msg, m.keys.Save):
		m = m.save()

	case key.Matches(msg, m.keys.ToggleAnchors):
		m.showAnchors = !m.showAnchors
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// handleMouseMsg selects a scene on left-click release and scrolls the
// selection with the wheel.
func (m Model) handleMouseMsg(msg tea.MouseMsg) Model {
	n := m.editor.Post.Scenes.Len()
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		if m.cursor > 0 {
			m.cursor--
		}
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		if m.cursor < n-1 {
			m.cursor++
		}
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
		for i := range n {
			if z := zone.Get(sceneZoneID(i)); z != nil && z.InBounds(msg) {
				m.cursor = i
				break
			}
		}
	}
	return m
}

func (m Model) startInput(mode Mode, value string) (Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		m = m.apply(mode, value)
		m.editor.Flush()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) apply(mode Mode, value string) Model {
	var err error
	switch mode {
	case ModeAdd:
		if _, err = m.editor.AddScene(value); err == nil {
			m.cursor = m.editor.Post.Scenes.Len() - 1
		}
	case ModeInsert:
		var at int
		if _, at, err = m.editor.InsertScene(m.cursor, value); err == nil {
			m.cursor = at
		}
	case ModeRename:
		err = m.editor.RenameScene(m.cursor, value)
	case ModeButton:
		_, err = m.editor.AddButton(m.cursor, value)
	}
	if err != nil {
		log.ErrorErr(log.CatUI, "Edit failed", err, "value", value)
		m.err = err
	}
	return m
}

func (m Model) save() Model {
	if m.savePath == "" {
		m.status = "No config file to save to"
		return m
	}
	if err := config.SaveDeck(m.savePath, m.editor.Titles()); err != nil {
		m.err = err
		return m
	}
	m.status = "Saved deck to " + m.savePath
	return m
}

func (m *Model) pushActivity(line string) {
	if m.maxActivity <= 0 {
		return
	}
	m.activity = append(m.activity, line)
	if over := len(m.activity) - m.maxActivity; over > 0 {
		m.activity = m.activity[over:]
	}
}

// Editor returns the deck being sorted.
func (m Model) Editor() *slides.Editor { return m.editor }

// Cursor returns the index of the selected scene.
func (m Model) Cursor() int { return m.cursor }

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// Activity returns the activity lines, oldest first.
func (m Model) Activity() []string { return m.activity }

// Summarize describes one batch of scene list records, e.g.
// "+1 -1: Intro, Body, Outro".
func Summarize(recs []tree.Record, titles []string) string {
	var added, removed int
	for _, r := range recs {
		added += len(r.Added)
		removed += len(r.Removed)
	}
	return fmt.Sprintf("+%d -%d: %s", added, removed, strings.Join(titles, ", "))
}
