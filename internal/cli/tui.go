package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Progress bar styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
	maxBarWidth     = 60
)

// =============================================================================
// progressModel - Grid and sweep progress
// =============================================================================

// progressMsg reports that done of total work items have finished.
type progressMsg struct{ done, total int }

// progressDoneMsg ends the view.
type progressDoneMsg struct{}

// progressModel is the bubbletea model for a determinate progress bar.
type progressModel struct {
	title     string
	done      int
	total     int
	width     int
	start     time.Time
	finished  bool
	cancelled bool
}

func newProgressModel(title string) progressModel {
	return progressModel{title: title, width: defaultBarWidth, start: time.Now()}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		// Workers report concurrently, so counts can arrive out of order.
		if msg.total > 0 {
			m.total = msg.total
		}
		if msg.done > m.done {
			m.done = msg.done
		}
	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		w := msg.Width - len(m.title) - 24
		m.width = max(minBarWidth, min(w, maxBarWidth))
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished || m.cancelled {
		return ""
	}
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	filled := int(frac * float64(m.width))

	var b strings.Builder
	b.WriteString(StyleDim.Render(m.title))
	b.WriteString(" ")
	b.WriteString(barFullStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", m.width-filled)))
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%3.0f%%", frac*100)))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %d/%d · %s", m.done, m.total, time.Since(m.start).Round(time.Second))))
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Running work under the progress view
// =============================================================================

// progressSink is handed to work running under a progress view.
type progressSink struct {
	// logger prints above the progress bar.
	logger *log.Logger

	// report forwards pipeline progress; nil when no view is shown.
	report func(done, total int)
}

// runWithProgress runs fn while drawing a progress bar on stderr. Without
// a terminal fn runs plainly with the given logger. Pressing ctrl+c
// cancels the context fn receives.
func runWithProgress(ctx context.Context, logger *log.Logger, title string, fn func(context.Context, *progressSink) error) error {
	if !isTerminal(os.Stderr) {
		return fn(ctx, &progressSink{logger: logger})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	sink := &progressSink{logger: logger.With(), report: throttled(p)}
	sink.logger.SetOutput(programWriter{p})

	errc := make(chan error, 1)
	go func() {
		err := fn(ctx, sink)
		p.Send(progressDoneMsg{})
		errc <- err
	}()

	final, runErr := p.Run()
	if m, ok := final.(progressModel); ok && m.cancelled {
		cancel()
	}
	err := <-errc
	if err == nil && runErr != nil && ctx.Err() == nil {
		logger.Debug("progress view failed", "err", runErr)
	}
	return err
}

// throttled sends at most one progress message per percent.
func throttled(p *tea.Program) func(done, total int) {
	var (
		mu   sync.Mutex
		last = -1
	)
	return func(done, total int) {
		pct := 100
		if total > 0 {
			pct = done * 100 / total
		}
		mu.Lock()
		if pct == last {
			mu.Unlock()
			return
		}
		last = pct
		mu.Unlock()
		p.Send(progressMsg{done: done, total: total})
	}
}

// programWriter prints log lines above a running program's view.
type programWriter struct{ p *tea.Program }

func (w programWriter) Write(b []byte) (int, error) {
	w.p.Println(strings.TrimRight(string(b), "\n"))
	return len(b), nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
