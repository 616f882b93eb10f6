package command

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/joeycumines/goap/internal/goap"
	"golang.org/x/term"
)

// Color modes, as accepted by the color config option.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderer writes command output, styled with lipgloss when enabled.
type renderer struct {
	w      io.Writer
	styled bool
	// raw bypasses color downsampling, for color=always on a non-terminal.
	raw bool
}

// newRenderer resolves the color mode for w. In auto mode output is styled
// only when w is a terminal.
func newRenderer(w io.Writer, mode string) (*renderer, error) {
	r := &renderer{w: w}
	switch mode {
	case colorAuto, "":
		r.styled = isTerminal(w)
	case colorAlways:
		r.styled = true
		r.raw = true
	case colorNever:
	default:
		return nil, fmt.Errorf("invalid color mode: %q", mode)
	}
	return r, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *renderer) print(s string) {
	if r.styled && !r.raw {
		_, _ = lipgloss.Fprint(r.w, s)
		return
	}
	_, _ = fmt.Fprint(r.w, s)
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// planReport is the outcome of planning one scenario file.
type planReport struct {
	File   string
	Name   string
	Result goap.Result
	Err    error
}

// planSteps renders the steps of a plan as table rows: step number, action
// name, action cost and running total.
func planSteps(res goap.Result) [][]string {
	rows := make([][]string, 0, len(res.Actions))
	var total float64
	for i, a := range res.Actions {
		total += a.Cost()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			goap.Name(a),
			formatCost(a.Cost()),
			formatCost(total),
		})
	}
	return rows
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

var planHeaders = []string{"STEP", "ACTION", "COST", "TOTAL"}

// writePlan writes the human readable report for one scenario.
func (r *renderer) writePlan(rep planReport) {
	var b strings.Builder
	title := rep.File
	if rep.Name != "" {
		title = fmt.Sprintf("%s (%s)", rep.Name, rep.File)
	}
	b.WriteString(r.style(titleStyle, "== "+title))
	b.WriteByte('\n')

	switch {
	case rep.Err != nil:
		b.WriteString(r.style(failureStyle, "error: "+rep.Err.Error()))
		b.WriteByte('\n')

	case !rep.Result.Found():
		b.WriteString(r.style(failureStyle, "no plan found"))
		b.WriteString(r.style(mutedStyle, fmt.Sprintf(" (explored %d)", rep.Result.Explored)))
		b.WriteByte('\n')

	default:
		rows := planSteps(rep.Result)
		if r.styled {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(borderStyle).
				Headers(planHeaders...).
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle.Padding(0, 1)
					}
					return cellStyle
				})
			b.WriteString(t.String())
			b.WriteByte('\n')
		} else {
			tw := tabwriter.NewWriter(&b, 0, 8, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, strings.Join(planHeaders, "\t"))
			for _, row := range rows {
				_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			_ = tw.Flush()
		}
		b.WriteString(r.style(successStyle, "cost: "+formatCost(rep.Result.Cost)))
		b.WriteString(r.style(mutedStyle, fmt.Sprintf("  explored: %d  leaves: %d", rep.Result.Explored, rep.Result.Leaves)))
		b.WriteByte('\n')
	}

	r.print(b.String())
}

// event writes one agent notification line.
func (r *renderer) event(ok bool, format string, args ...any) {
	s := successStyle
	if !ok {
		s = failureStyle
	}
	r.print(r.style(s, fmt.Sprintf(format, args...)) + "\n")
}

// facts writes a world state, one fact per line.
func (r *renderer) facts(title string, ws goap.WorldState) {
	var b strings.Builder
	b.WriteString(r.style(titleStyle, title))
	b.WriteByte('\n')
	for _, k := range ws.Keys() {
		_, _ = fmt.Fprintf(&b, "  %s: %v\n", k, ws[k])
	}
	r.print(b.String())
}

// changes writes the names of the facts that differ between before and
// after.
func (r *renderer) changes(before, after goap.WorldState) {
	if after.Equal(before) {
		r.print(r.style(mutedStyle, "changed: none") + "\n")
		return
	}
	r.print(r.style(titleStyle, "changed:") + " " + strings.Join(before.Diff(after), ", ") + "\n")
}

// stepNames joins the action names of a plan, for single line output.
func stepNames(plan []goap.Action) string {
	names := make([]string, len(plan))
	for i, a := range plan {
		names[i] = goap.Name(a)
	}
	return strings.Join(names, " -> ")
}
