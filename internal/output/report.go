/*
PURPOSE:
  Human-readable console report: one block per prompt and a summary box at the end.

REQUIREMENTS:
  User-specified:
  - Print each question, its response and the time taken.
  - Print the total time for all questions and the average time per question.

  Implementation-discovered:
  - Failed prompts print their error instead of a response.
  - The summary also lists every provisioning outcome so a failed pull is visible
    next to the numbers it explains.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (PrintResult), internal/cli (PrintSummary)
  - Uses: internal/model, github.com/charmbracelet/lipgloss

ERROR HANDLING:
  - Write errors on the console are ignored.

IMPLEMENTATION RULES:
  - Times are printed in seconds with two decimals.
  - lipgloss drops colour automatically when stdout is not a terminal.

USAGE:
  output.PrintResult(os.Stdout, result)
  output.PrintSummary(os.Stdout, summary)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/model/summary.go
  - internal/engine/runner.go

MAINTENANCE:
  - Keep the "Total time"/"Average time" wording; scripts grep for it.
*/

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/daryltucker/ollama-loadtest/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// PrintResult writes the question/answer block for one result.
func PrintResult(w io.Writer, r model.GenerationResult) {
	if !r.Success {
		fmt.Fprintf(w, "%s %s\n\n", failStyle.Render("Error:"), r.Error)
		return
	}
	fmt.Fprintf(w, "Question: %s\n", r.Prompt)
	fmt.Fprintf(w, "Response: %s\n", r.Response)
	fmt.Fprintf(w, "Time taken: %.2f seconds\n\n", r.Latency.Seconds())
}

// RenderSummary formats the end-of-run summary box.
func RenderSummary(s model.RunSummary) string {
	lines := []string{
		titleStyle.Render("Load test summary"),
		fmt.Sprintf("Run: %s", s.RunID),
	}
	if s.Device != "" {
		lines = append(lines, fmt.Sprintf("Device: %s", s.Device))
	}
	for _, o := range s.Provisioning {
		status := okStyle.Render("ok")
		if !o.OK() {
			status = failStyle.Render("failed")
		}
		lines = append(lines, fmt.Sprintf("Model %s (%s): %s, %s", o.Model.Name, o.Model.Role, o.Action, status))
	}

	counts := fmt.Sprintf("Succeeded: %d  Failed: %d", s.Successful, s.Failed)
	if s.Failed > 0 {
		counts = failStyle.Render(counts)
	} else {
		counts = okStyle.Render(counts)
	}

	lines = append(lines,
		counts,
		fmt.Sprintf("Total time for %d questions: %.2f seconds", s.Dispatched, s.TotalElapsed.Seconds()),
		fmt.Sprintf("Average time per question: %.2f seconds", s.AverageLatency.Seconds()),
	)

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// PrintSummary writes RenderSummary to w.
func PrintSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderSummary(s))
}
