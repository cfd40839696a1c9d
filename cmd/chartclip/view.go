package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/chartclip"
	clerrors "github.com/wippyai/chartclip/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type focus int

const (
	focusInput focus = iota
	focusNotes
)

type viewerModel struct {
	codec         *chartclip.Codec
	readClipboard func() (string, error)

	input    textinput.Model
	notes    viewport.Model
	ready    bool
	focus    focus
	info     chartclip.Info
	sel      chartclip.Selection
	err      error
	decoded  bool
	headerHt int
}

type clipboardMsg struct {
	text string
	err  error
}

func newViewerModel(codec *chartclip.Codec, initial string, readClipboard func() (string, error)) *viewerModel {
	ti := textinput.New()
	ti.Placeholder = "ChartClip:2:..."
	ti.Prompt = "payload: "
	ti.Focus()
	ti.SetValue(strings.TrimSpace(initial))

	m := &viewerModel{
		codec:         codec,
		readClipboard: readClipboard,
		input:         ti,
		headerHt:      6,
	}
	if initial != "" {
		m.decode()
	}
	return m
}

func (m *viewerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *viewerModel) pasteClipboard() tea.Msg {
	text, err := m.readClipboard()
	return clipboardMsg{text: text, err: err}
}

func (m *viewerModel) decode() {
	m.info, m.sel, m.err = m.codec.Inspect(strings.TrimSpace(m.input.Value()))
	m.decoded = true
	if m.ready {
		m.notes.SetContent(m.content())
		m.notes.GotoTop()
	}
}

func (m *viewerModel) content() string {
	if m.err != nil {
		return errorStyle.Render(describeError(m.err))
	}
	if len(m.sel) == 0 {
		return "(empty selection)"
	}
	return renderGrid(m.sel)
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		h := max(msg.Height-m.headerHt-2, 3)
		if !m.ready {
			m.notes = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.notes.Width, m.notes.Height = msg.Width, h
		}
		m.notes.SetContent(m.content())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "q":
			if m.focus == focusNotes {
				return m, tea.Quit
			}

		case "enter":
			if m.focus == focusInput {
				m.decode()
				return m, nil
			}

		case "ctrl+r":
			return m, m.pasteClipboard

		case "tab":
			if m.focus == focusInput {
				m.focus = focusNotes
				m.input.Blur()
			} else {
				m.focus = focusInput
				cmds = append(cmds, m.input.Focus())
			}
			return m, tea.Batch(cmds...)
		}

	case clipboardMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("read clipboard: %w", msg.err)
			m.decoded = true
			if m.ready {
				m.notes.SetContent(m.content())
			}
			return m, nil
		}
		m.input.SetValue(strings.TrimSpace(msg.text))
		m.decode()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else if m.ready {
		m.notes, cmd = m.notes.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "Starting viewer..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ChartClip Viewer"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case !m.decoded:
		b.WriteString(helpStyle.Render("paste a payload and press enter"))
	case m.err != nil:
		b.WriteString(errorStyle.Render("rejected: " + string(clerrors.KindOf(m.err))))
	default:
		b.WriteString(infoStyle.Render(fmt.Sprintf("version %d • %d notes • %d compressed bytes • %d stream bytes",
			m.info.Version, m.info.Notes, m.info.CompressedBytes, m.info.StreamBytes)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.notes.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter decode • ctrl+r paste clipboard • tab switch focus • ↑/↓ scroll • esc quit"))
	return b.String()
}

func describeError(err error) string {
	var b strings.Builder
	kind := clerrors.KindOf(err)
	if kind != "" {
		fmt.Fprintf(&b, "%s\n\n", kind)
	}
	b.WriteString(err.Error())
	return b.String()
}

var kindGlyphs = map[chartclip.Kind]byte{
	chartclip.KindTap:  'o',
	chartclip.KindHold: 'H',
	chartclip.KindMine: 'x',
	chartclip.KindRoll: 'R',
	chartclip.KindLift: 'L',
	chartclip.KindFake: 'F',
}

// renderGrid draws sel as a lane grid, one line per row that starts or ends
// a note. Sustained notes show '|' on rows they pass through and '_' on
// their end row.
func renderGrid(sel chartclip.Selection) string {
	if len(sel) == 0 {
		return ""
	}
	lanes := 4
	var rows []uint64
	for _, n := range sel {
		lanes = max(lanes, int(n.Column)+1)
		rows = append(rows, n.Row)
		if n.Kind.Sustained() {
			rows = append(rows, n.EndRow)
		}
	}
	slices.Sort(rows)
	rows = slices.Compact(rows)

	width := len(fmt.Sprint(rows[len(rows)-1]))
	var b strings.Builder
	for _, row := range rows {
		line := []byte(strings.Repeat(".", lanes))
		for _, n := range sel {
			switch {
			case n.Row == row:
				line[n.Column] = kindGlyphs[n.Kind]
			case n.Kind.Sustained() && n.EndRow == row && line[n.Column] == '.':
				line[n.Column] = '_'
			case n.Kind.Sustained() && n.Row < row && row < n.EndRow && line[n.Column] == '.':
				line[n.Column] = '|'
			}
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("%*d", width, row)))
		b.WriteString("  ")
		b.Write(line)
		b.WriteString("\n")
	}
	return b.String()
}

func runViewer(codec *chartclip.Codec, initial string, readClipboard func() (string, error)) error {
	p := tea.NewProgram(newViewerModel(codec, initial, readClipboard), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
