package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/catalog"
	"github.com/qmatter/hofstadter/pkg/errors"
	hio "github.com/qmatter/hofstadter/pkg/io"
)

// runsCommand creates the runs command for browsing the run catalog.
func (c *CLI) runsCommand() *cobra.Command {
	var filter catalog.Filter

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the runs recorded in the catalog, newest first.

Every saved bands or butterfly run is recorded with its parameters, the
Chern numbers of its isolated band sets and the path of its bundle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), func(cat catalog.Catalog) error {
				runs, err := cat.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No runs recorded")
					return nil
				}
				fmt.Println(runsTable(runs, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Program, "program", "", "only runs of this program: band_structure, butterfly")
	cmd.Flags().StringVarP(&filter.Lattice, "lattice", "l", "", "only runs on this lattice")
	cmd.Flags().IntVarP(&filter.Q, "q", "q", 0, "only runs with this flux denominator")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 0, "maximum number of runs (default 50)")

	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			return c.withCatalog(cmd.Context(), func(cat catalog.Catalog) error {
				run, err := cat.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				printRun(run)
				return nil
			})
		},
	}
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove a run from the catalog (its files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			return c.withCatalog(cmd.Context(), func(cat catalog.Catalog) error {
				if err := cat.Delete(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Deleted run %s", id)
				return nil
			})
		},
	}
}

// withCatalog opens the configured catalog for the duration of fn.
func (c *CLI) withCatalog(ctx context.Context, fn func(catalog.Catalog) error) error {
	cat, err := c.openCatalog(ctx)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()
	return fn(cat)
}

func parseRunID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id %q", s)
	}
	return id, nil
}

// =============================================================================
// Formatting
// =============================================================================

func runsTable(runs []catalog.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.Program,
			r.Lattice,
			fluxLabel(r),
			formatFloats(r.T),
			formatCherns(r.Chern),
			formatRelativeTime(r.Created, now),
			r.Elapsed.Round(time.Millisecond).String(),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Program", "Lattice", "Flux", "t", "C", "Created", "Elapsed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader.Padding(0, 1)
			}
			switch col {
			case 0:
				return styleTableCell.Foreground(colorCyan)
			case 6, 7:
				return styleTableCell.Foreground(colorDim)
			}
			return styleTableCell
		}).
		Render()
}

func printRun(r *catalog.Run) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Run %s", r.ID)))
	printKeyValue("Program", r.Program)
	printKeyValue("Lattice", r.Lattice)
	printKeyValue("Flux", fluxLabel(*r))
	printKeyValue("t", formatFloats(r.T))
	if r.Samples > 0 {
		printKeyValue("Samples", strconv.Itoa(r.Samples))
	}
	if len(r.Chern) > 0 {
		printKeyValue("Chern", formatCherns(r.Chern))
	}
	printKeyValue("Created", r.Created.Local().Format(time.DateTime))
	printKeyValue("Elapsed", r.Elapsed.Round(time.Millisecond).String())
	if r.Version != "" {
		printKeyValue("Version", r.Version)
	}
	printFile(r.Path)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func fluxLabel(r catalog.Run) string {
	if r.Program == string(hio.ProgramButterfly) {
		return fmt.Sprintf("q = %d", r.Q)
	}
	return fmt.Sprintf("%d/%d", r.P, r.Q)
}

func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func formatCherns(v []float64) string {
	if len(v) == 0 {
		return "—"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatChern(x)
	}
	return strings.Join(parts, " ")
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
