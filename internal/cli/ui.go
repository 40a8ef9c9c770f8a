package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Run Output
// =============================================================================

// printStats prints run statistics on a single line, ending with whether
// the result came from the cache.
func printStats(cached bool, parts ...string) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	fmt.Println(statsLine(parts, statusStyle.Render(status)))
}

func statsLine(parts []string, status string) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	if len(parts) > 0 {
		b.WriteString(StyleDim.Render(" · "))
	}
	b.WriteString(status)
	return b.String()
}

// printChernTable prints the invariants of each isolated band set.
func printChernTable(sets []hio.BandSet) {
	if len(sets) == 0 {
		return
	}
	fmt.Println(chernTable(sets))
}

func chernTable(sets []hio.BandSet) string {
	withWinding := false
	for _, s := range sets {
		if len(s.Wannier) > 0 {
			withWinding = true
		}
	}

	headers := []string{"Bands", "C"}
	if withWinding {
		headers = append(headers, "Winding")
	}
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		row := []string{setRange(s), formatChern(s.Chern)}
		if withWinding {
			row = append(row, fmt.Sprintf("%d", s.Winding))
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader.Padding(0, 1)
			}
			return styleTableCell
		}).
		Render()
}

func setRange(s hio.BandSet) string {
	if s.Size == 1 {
		return fmt.Sprintf("%d", s.Lowest)
	}
	return fmt.Sprintf("%d-%d", s.Lowest, s.Lowest+s.Size-1)
}

// formatChern prints a Chern number as an integer when it is within 1e-3
// of one, and with three decimals otherwise (an unconverged grid).
func formatChern(c float64) string {
	r := math.Round(c)
	if math.Abs(c-r) < 1e-3 {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("%.3f", c)
}

// printSaved lists the files a saved run wrote.
func printSaved(res *pipeline.Result) {
	if res.Path == "" {
		return
	}
	dir := filepath.Dir(res.Path)
	printFile(res.Path)
	for _, name := range artifactFiles(res.Bundle, res.Artifacts) {
		printFile(filepath.Join(dir, name))
	}
	printNextStep("Redraw with", fmt.Sprintf("%s plot %s", appName, res.Path))
}

// artifactFiles returns the sorted file names of a run's figures.
func artifactFiles(b *hio.Bundle, artifacts map[string][]byte) []string {
	names := make([]string, 0, len(artifacts))
	for artifact := range artifacts {
		names = append(names, pipeline.ArtifactFileName(b, artifact))
	}
	sort.Strings(names)
	return names
}
