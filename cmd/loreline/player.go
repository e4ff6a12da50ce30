package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loreline/engine-go/pkg/driver"
	"loreline/engine-go/pkg/interpreter"
	"loreline/engine-go/pkg/runtime"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Padding(0, 1)
	speakerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	narratorStyle = lipgloss.NewStyle().Italic(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	optionStyle   = lipgloss.NewStyle()
	disabledStyle = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	endStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

type playerKeymap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Save    key.Binding
	Quit    key.Binding
}

func defaultPlayerKeymap() playerKeymap {
	return playerKeymap{
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Confirm: key.NewBinding(key.WithKeys("enter", " ")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	}
}

type playerModel struct {
	title      string
	in         *interpreter.Interpreter
	story      *driver.Story
	sink       *eventSink
	savePath   string
	keys       playerKeymap
	transcript []string
	cursor     int
	status     string
	err        error
	width      int
	height     int
}

func newPlayerModel(title string, in *interpreter.Interpreter, story *driver.Story, sink *eventSink, savePath string) *playerModel {
	m := &playerModel{
		title:    title,
		in:       in,
		story:    story,
		sink:     sink,
		savePath: savePath,
		keys:     defaultPlayerKeymap(),
		width:    80,
		height:   24,
	}
	m.consume()
	return m
}

func (m *playerModel) Init() tea.Cmd {
	return nil
}

// consume moves a freshly emitted dialogue line into the transcript and
// resets the option cursor when a choice arrived.
func (m *playerModel) consume() {
	if ev := m.sink.dialogue; ev != nil {
		m.transcript = append(m.transcript, renderDialogue(m.in, *ev))
	}
	if ev := m.sink.choice; ev != nil {
		m.cursor = firstEnabled(ev.Options)
	}
}

func renderDialogue(in *interpreter.Interpreter, ev interpreter.DialogueEvent) string {
	if ev.Speaker == "" {
		return narratorStyle.Render(ev.Text)
	}
	name := ev.Speaker
	if v, err := in.GetCharacterField(ev.Speaker, "name"); err == nil {
		if s := runtime.Stringify(v); s != "" {
			name = s
		}
	}
	return speakerStyle.Render(name+":") + " " + ev.Text
}

func firstEnabled(options []interpreter.PresentedOption) int {
	for i, opt := range options {
		if opt.Enabled {
			return i
		}
	}
	return 0
}

func (m *playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			m.save()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			return m.confirm()
		}
	}
	return m, nil
}

func (m *playerModel) moveCursor(delta int) {
	ev := m.sink.choice
	if ev == nil || len(ev.Options) == 0 {
		return
	}
	n := len(ev.Options)
	i := m.cursor
	for range ev.Options {
		i = (i + delta + n) % n
		if ev.Options[i].Enabled {
			m.cursor = i
			return
		}
	}
}

func (m *playerModel) confirm() (tea.Model, tea.Cmd) {
	switch {
	case m.sink.advance != nil:
		adv := m.sink.advance
		m.sink.clear()
		if err := adv.Call(); err != nil {
			m.err = err
			return m, nil
		}
		m.consume()
	case m.sink.sel != nil:
		ev, sel := m.sink.choice, m.sink.sel
		picked := m.cursor
		if picked >= len(ev.Options) || !ev.Options[picked].Enabled {
			return m, nil
		}
		m.transcript = append(m.transcript, selectedStyle.Render("> "+ev.Options[picked].Text))
		m.sink.clear()
		if err := sel.Choose(picked); err != nil {
			m.err = err
			return m, nil
		}
		m.consume()
	case m.sink.finished:
		return m, tea.Quit
	}
	return m, nil
}

func (m *playerModel) save() {
	if m.savePath == "" {
		m.status = "no --save file configured"
		return
	}
	snap, err := m.in.Save()
	if err != nil {
		m.status = err.Error()
		return
	}
	data, err := snap.Encode()
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := os.WriteFile(m.savePath, data, 0o644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved to %s", m.savePath)
}

func (m *playerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	lines := m.transcript
	// Keep the tail of the transcript on screen, leaving room for the
	// choice list and status line.
	reserved := 6
	if ev := m.sink.choice; ev != nil {
		reserved += len(ev.Options)
	}
	if max := m.height - reserved; max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if ev := m.sink.choice; ev != nil {
		b.WriteString("\n")
		for i, opt := range ev.Options {
			marker := "  "
			style := optionStyle
			if !opt.Enabled {
				style = disabledStyle
			} else if i == m.cursor {
				marker = "> "
				style = selectedStyle
			}
			b.WriteString(style.Render(marker + opt.Text))
			b.WriteString("\n")
		}
	}

	if m.sink.finished {
		b.WriteString("\n")
		b.WriteString(endStyle.Render("The End"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.hints()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *playerModel) hints() string {
	switch {
	case m.sink.choice != nil:
		return "up/down select, enter confirm, ctrl+s save, q quit"
	case m.sink.finished:
		return "enter or q to quit"
	default:
		return "enter continue, ctrl+s save, q quit"
	}
}
