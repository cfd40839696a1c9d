package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/chartclip"
	clerrors "github.com/wippyai/chartclip/errors"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestViewerUpdate(t *testing.T) {
	payload, err := chartclip.Encode(scenario())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		msgs     []tea.Msg
		focus    focus
		decoded  bool
		notes    int
		errKind  clerrors.Kind
		errText  string
		quit     bool
		input    string
		viewText string
	}{
		{
			name:  "initial state",
			focus: focusInput,
		},
		{
			name:    "enter decodes typed payload",
			msgs:    []tea.Msg{keyRunes(payload), tea.KeyMsg{Type: tea.KeyEnter}},
			focus:   focusInput,
			decoded: true,
			notes:   3,
			input:   payload,
		},
		{
			name:    "enter rejects garbage",
			msgs:    []tea.Msg{keyRunes("nope"), tea.KeyMsg{Type: tea.KeyEnter}},
			focus:   focusInput,
			decoded: true,
			errKind: clerrors.KindInvalidPrefix,
		},
		{
			name:    "clipboard payload",
			msgs:    []tea.Msg{clipboardMsg{text: payload + "\n"}},
			focus:   focusInput,
			decoded: true,
			notes:   3,
			input:   payload,
		},
		{
			name:    "clipboard read error",
			msgs:    []tea.Msg{clipboardMsg{err: errors.New("no display")}},
			focus:   focusInput,
			decoded: true,
			errText: "read clipboard: no display",
		},
		{
			name:  "tab focuses notes",
			msgs:  []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}},
			focus: focusNotes,
		},
		{
			name:  "tab twice focuses input",
			msgs:  []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}},
			focus: focusInput,
		},
		{
			name:  "q types into input",
			msgs:  []tea.Msg{keyRunes("q")},
			focus: focusInput,
			input: "q",
		},
		{
			name:  "q quits from notes",
			msgs:  []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}, keyRunes("q")},
			focus: focusNotes,
			quit:  true,
		},
		{
			name:  "esc quits",
			msgs:  []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}},
			focus: focusInput,
			quit:  true,
		},
		{
			name:  "ctrl+c quits",
			msgs:  []tea.Msg{tea.KeyMsg{Type: tea.KeyCtrlC}},
			focus: focusInput,
			quit:  true,
		},
		{
			name:     "enter ignored in notes",
			msgs:     []tea.Msg{tea.WindowSizeMsg{Width: 80, Height: 24}, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter}},
			focus:    focusNotes,
			viewText: "paste a payload and press enter",
		},
		{
			name:     "window size after decode",
			msgs:     []tea.Msg{clipboardMsg{text: payload}, tea.WindowSizeMsg{Width: 80, Height: 24}},
			focus:    focusInput,
			decoded:  true,
			notes:    3,
			input:    payload,
			viewText: "3 notes",
		},
		{
			name:     "rejection shown in view",
			msgs:     []tea.Msg{tea.WindowSizeMsg{Width: 80, Height: 24}, clipboardMsg{text: "ChartClip:9:AAAA"}},
			focus:    focusInput,
			decoded:  true,
			errKind:  clerrors.KindUnsupportedVersion,
			viewText: "rejected: unsupported_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newViewerModel(chartclip.New(), "", func() (string, error) { return "", nil })

			var cmd tea.Cmd
			for _, msg := range tt.msgs {
				var next tea.Model
				next, cmd = m.Update(msg)
				m = next.(*viewerModel)
			}

			if m.focus != tt.focus {
				t.Errorf("focus = %v, want %v", m.focus, tt.focus)
			}
			if m.decoded != tt.decoded {
				t.Errorf("decoded = %v, want %v", m.decoded, tt.decoded)
			}
			if len(m.sel) != tt.notes {
				t.Errorf("notes = %d, want %d", len(m.sel), tt.notes)
			}
			switch {
			case tt.errKind != "":
				if kind := clerrors.KindOf(m.err); kind != tt.errKind {
					t.Errorf("error kind = %q (%v), want %q", kind, m.err, tt.errKind)
				}
			case tt.errText != "":
				if m.err == nil || m.err.Error() != tt.errText {
					t.Errorf("err = %v, want %q", m.err, tt.errText)
				}
			case m.err != nil:
				t.Errorf("unexpected error: %v", m.err)
			}
			if tt.quit && !isQuit(cmd) {
				t.Error("expected quit command")
			}
			if tt.input != "" && m.input.Value() != tt.input {
				t.Errorf("input = %q, want %q", m.input.Value(), tt.input)
			}
			if tt.viewText != "" && !strings.Contains(m.View(), tt.viewText) {
				t.Errorf("view lacks %q:\n%s", tt.viewText, m.View())
			}
		})
	}
}

func TestViewerPasteClipboard(t *testing.T) {
	payload, err := chartclip.Encode(scenario())
	if err != nil {
		t.Fatal(err)
	}
	reads := 0
	m := newViewerModel(chartclip.New(), "", func() (string, error) {
		reads++
		return payload, nil
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("ctrl+r returned no command")
	}
	msg := cmd()
	if _, ok := msg.(clipboardMsg); !ok {
		t.Fatalf("command produced %T, want clipboardMsg", msg)
	}
	if reads != 1 {
		t.Errorf("clipboard read %d times, want 1", reads)
	}

	m.Update(msg)
	if !m.decoded || m.err != nil || len(m.sel) != 3 {
		t.Errorf("decoded = %v, err = %v, notes = %d", m.decoded, m.err, len(m.sel))
	}
}

func TestViewerInitialPayload(t *testing.T) {
	payload, err := chartclip.Encode(scenario())
	if err != nil {
		t.Fatal(err)
	}
	m := newViewerModel(chartclip.New(), "  "+payload+"\n", nil)
	if !m.decoded || m.err != nil || len(m.sel) != 3 {
		t.Errorf("decoded = %v, err = %v, notes = %d", m.decoded, m.err, len(m.sel))
	}
	if m.View() != "Starting viewer..." {
		t.Errorf("view before size = %q", m.View())
	}
}
