// Package tui is the terminal player: a bubbletea program that renders
// scenes, takes choices by number, and saves through a slot store.
package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/session"
)

type sessionState int

const (
	statePlaying sessionState = iota
	stateEnded
	stateError
)

const autosaveSlot = "autosave"

type model struct {
	state     sessionState
	engine    *game.Engine
	store     *session.FileStore
	player    *game.State
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	notice    string
	width     int
	height    int
}

var (
	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D7FF"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F5F5F")).
			Strikethrough(true)

	pickedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD75F"))
)

// NewModel builds the player model. The store may be nil, in which case
// /save and /load are unavailable and autosave is off.
func NewModel(eng *game.Engine, store *session.FileStore) model {
	ti := textinput.New()
	ti.Placeholder = "Choice number, or /save, /load, /restart, /quit"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	m := model{
		state:     statePlaying,
		engine:    eng,
		store:     store,
		textInput: ti,
	}
	m.player = eng.NewGame()
	m.appendScene()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleInput(input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := int(float64(msg.Width) * 0.75)
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(logWidth, msg.Height-6)
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = msg.Height - 6
		}
		m.viewport.SetContent(m.gameLog)
		m.viewport.GotoBottom()
	}

	// Ended sessions still take command input (/restart, /quit).
	if m.state == statePlaying || m.state == stateEnded {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleInput(input string) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case input == "/quit":
		return m, tea.Quit

	case input == "/restart":
		m.player = m.engine.NewGame()
		m.state = statePlaying
		m.gameLog = ""
		m.appendScene()
		return m, nil

	case input == "/save" || strings.HasPrefix(input, "/save "):
		return m.handleSave(slotArg(input, "/save")), nil

	case input == "/load" || strings.HasPrefix(input, "/load "):
		return m.handleLoad(slotArg(input, "/load")), nil
	}

	if m.state != statePlaying {
		m.notice = "The story has ended. /restart to play again."
		return m, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		m.notice = "Type a choice number, or /save, /load, /restart, /quit."
		return m, nil
	}

	p, err := m.engine.Present(m.player)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	idx := n - 1
	if idx < 0 || idx >= len(p.Choices) {
		m.notice = fmt.Sprintf("Pick a number between 1 and %d.", len(p.Choices))
		return m, nil
	}

	label := p.Choices[idx].Label
	outcome, err := m.engine.Choose(m.player, idx)
	if err != nil {
		var ce *game.ChoiceError
		if errors.As(err, &ce) && ce.Kind == game.ChoiceDisabled {
			m.notice = "That path is closed to you right now."
			return m, nil
		}
		m.err = err
		m.state = stateError
		return m, nil
	}

	m.gameLog += "\n" + pickedStyle.Render("> "+label) + "\n\n"
	m.appendScene()

	if outcome.Ended {
		m.state = stateEnded
	} else if m.store != nil {
		if err := m.store.Save(autosaveSlot, m.player, m.engine.Story()); err != nil {
			m.notice = "Autosave failed: " + err.Error()
		}
	}
	return m, nil
}

func (m model) handleSave(slot string) model {
	if m.store == nil {
		m.notice = "No save directory configured."
		return m
	}
	if err := m.store.Save(slot, m.player, m.engine.Story()); err != nil {
		m.notice = "Save failed: " + err.Error()
		return m
	}
	m.notice = "Saved to slot " + slot + "."
	return m
}

func (m model) handleLoad(slot string) model {
	if m.store == nil {
		m.notice = "No save directory configured."
		return m
	}
	st, err := m.store.Load(slot, m.engine.Story())
	if err != nil {
		m.notice = "Load failed: " + err.Error()
		return m
	}
	m.player = st
	if m.engine.Status(st) == game.StatusEnded {
		m.state = stateEnded
	} else {
		m.state = statePlaying
	}
	m.gameLog = ""
	m.appendScene()
	m.notice = "Loaded slot " + slot + "."
	return m
}

// appendScene renders the current scene and its choices into the log.
func (m *model) appendScene() {
	p, err := m.engine.Present(m.player)
	if err != nil {
		m.err = err
		m.state = stateError
		return
	}

	logWidth := m.viewport.Width
	if logWidth == 0 {
		logWidth = 80
	}

	var b strings.Builder
	b.WriteString(sceneStyle.Width(logWidth).Render(p.Text))
	b.WriteString("\n\n")
	for i, ch := range p.Choices {
		line := fmt.Sprintf("  %d. %s", i+1, ch.Label)
		if ch.Enabled {
			b.WriteString(choiceStyle.Render(line))
		} else {
			b.WriteString(disabledStyle.Render(line + " (unavailable)"))
		}
		b.WriteString("\n")
	}
	if p.Ended {
		b.WriteString(helpStyle.Render("  THE END"))
		b.WriteString("\n")
	}

	m.gameLog += b.String()
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) View() string {
	var s string

	switch m.state {
	case statePlaying, stateEnded:
		logView := m.viewport.View()
		stateView := m.renderState()

		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			logView,
			stateView,
		)

		help := helpStyle.Render("Type a choice number. Commands: /save [slot], /load [slot], /restart, /quit.")
		if m.state == stateEnded {
			help = helpStyle.Render("The story has ended. /restart to play again, /quit to leave.")
		}

		parts := []string{mainView, "\n" + m.textInput.View()}
		if m.notice != "" {
			parts = append(parts, noticeStyle.Render(m.notice))
		}
		parts = append(parts, "\n"+help)

		s = lipgloss.JoinVertical(lipgloss.Left, parts...)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.player == nil {
		return ""
	}

	scene := titleStyle.Render("SCENE") + "\n" + m.player.Scene + "\n\n"

	statsTitle := titleStyle.Render("STATS") + "\n"
	stats := ""
	for _, def := range m.engine.Story().Stats {
		stats += fmt.Sprintf("%s: %d\n", def.Name, m.player.Stat(def.Name))
	}
	if stats == "" {
		stats = "(none)\n"
	}
	stats += "\n"

	invTitle := titleStyle.Render("INVENTORY") + "\n"
	inventory := ""
	if len(m.player.Inventory) == 0 {
		inventory = "(empty)\n"
	} else {
		for _, item := range sortedItems(m.player.Inventory) {
			inventory += fmt.Sprintf("- %s x%d\n", item, m.player.Inventory[item])
		}
	}
	inventory += "\n"

	flagTitle := titleStyle.Render("FLAGS") + "\n"
	flags := ""
	for _, f := range m.player.FlagList() {
		flags += "- " + f + "\n"
	}
	if flags == "" {
		flags = "(none)\n"
	}

	content := scene + statsTitle + stats + invTitle + inventory + flagTitle + flags

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func sortedItems(inv map[string]int) []string {
	items := make([]string, 0, len(inv))
	for item := range inv {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

func slotArg(input, cmd string) string {
	slot := strings.TrimSpace(strings.TrimPrefix(input, cmd))
	if slot == "" {
		return autosaveSlot
	}
	return slot
}

// Run starts the player in the alternate screen and blocks until it exits.
func Run(eng *game.Engine, store *session.FileStore) error {
	p := tea.NewProgram(NewModel(eng, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
