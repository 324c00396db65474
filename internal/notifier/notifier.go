package notifier

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/printer"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

const (
	borderColor = "\033[38;5;39m"
	resetColor  = "\033[0m"
	padding     = 2
)

// DisplayUpdates prints a box listing every available update in set.
// Nothing is printed when there is none.
func DisplayUpdates(set *models.UpdateSet) {
	if set == nil || len(set.Response) == 0 {
		return
	}
	renderBox(logger.Out(), updateLines(set))
}

func updateLines(set *models.UpdateSet) []string {
	p := printer.NewColorPrinter()

	slugs := utils.Keys(set.Response)
	sort.Strings(slugs)

	title := "Update Available!"
	if len(slugs) > 1 {
		title = fmt.Sprintf("%d Updates Available!", len(slugs))
	}

	lines := []string{p.Success("%s", title)}
	for _, slug := range slugs {
		d := set.Response[slug]
		lines = append(lines, fmt.Sprintf("%s %s -> %s",
			p.Info("%s", slug), p.Error("%s", utils.OrDash(d.OldVersion)), p.Success("%s", d.NewVersion)))
	}

	upgradeCmd := "plugup upgrade --all"
	if len(slugs) == 1 {
		upgradeCmd = "plugup upgrade " + slugs[0]
	}
	lines = append(lines, fmt.Sprintf("%s%s%s", p.Warning("Run "), p.Success("%s", upgradeCmd), p.Warning(" to update.")))
	return lines
}

func renderBox(w io.Writer, lines []string) {
	maxWidth := utils.GetMaxWidth(lines) + padding*2
	topBottomBorder := borderColor + "╭" + strings.Repeat("─", maxWidth) + "╮" + resetColor
	sideBorder := borderColor + "│" + resetColor

	_, _ = fmt.Fprintln(w, topBottomBorder)
	for _, line := range lines {
		width := utils.VisibleWidth(line)
		paddingLeft := (maxWidth - width) / 2
		paddingRight := maxWidth - width - paddingLeft
		_, _ = fmt.Fprintf(w, "%s%s%s%s%s\n", sideBorder, strings.Repeat(" ", paddingLeft), line, strings.Repeat(" ", paddingRight), sideBorder)
	}
	_, _ = fmt.Fprintln(w, borderColor+"╰"+strings.Repeat("─", maxWidth)+"╯"+resetColor)
}
