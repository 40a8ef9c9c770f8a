package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func update(t *testing.T, m progressModel, msg tea.Msg) (progressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(progressModel)
	if !ok {
		t.Fatalf("Update returned %T, want progressModel", next)
	}
	return pm, cmd
}

func TestProgressModelCounts(t *testing.T) {
	m := newProgressModel("Diagonalizing")

	m, _ = update(t, m, progressMsg{done: 5, total: 20})
	m, _ = update(t, m, progressMsg{done: 3, total: 20})
	if m.done != 5 || m.total != 20 {
		t.Errorf("after out-of-order reports: done=%d total=%d, want 5/20", m.done, m.total)
	}

	view := m.View()
	for _, want := range []string{"Diagonalizing", "25%", "5/20"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() = %q, missing %q", view, want)
		}
	}
}

func TestProgressModelEmptyTotal(t *testing.T) {
	m := newProgressModel("Sweeping")
	if view := m.View(); !strings.Contains(view, "0%") {
		t.Errorf("View() before any report = %q, want 0%%", view)
	}
}

func TestProgressModelDone(t *testing.T) {
	m := newProgressModel("Sweeping")
	m, cmd := update(t, m, progressDoneMsg{})
	if !m.finished {
		t.Error("model should be finished")
	}
	if cmd == nil {
		t.Error("done should quit the program")
	}
	if m.View() != "" {
		t.Errorf("finished view = %q, want empty", m.View())
	}
}

func TestProgressModelCancel(t *testing.T) {
	m := newProgressModel("Sweeping")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.cancelled {
		t.Error("ctrl+c should cancel")
	}
	if cmd == nil {
		t.Error("ctrl+c should quit the program")
	}

	m = newProgressModel("Sweeping")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.cancelled || cmd != nil {
		t.Error("other keys should be ignored")
	}
}

func TestProgressModelWidth(t *testing.T) {
	tests := []struct {
		termWidth int
		want      int
	}{
		{20, minBarWidth},
		{60, 60 - len("Bands") - 24},
		{400, maxBarWidth},
	}
	for _, tt := range tests {
		m, _ := update(t, newProgressModel("Bands"), tea.WindowSizeMsg{Width: tt.termWidth, Height: 40})
		if m.width != tt.want {
			t.Errorf("width for terminal %d = %d, want %d", tt.termWidth, m.width, tt.want)
		}
	}
}
