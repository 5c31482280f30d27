package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/dynalayout/pkg/graph"
)

// Terminal colours (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleLink renders URLs such as the serve address.
	StyleLink = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	styleValue       = lipgloss.NewStyle().Foreground(colorBright)
	styleFresh       = lipgloss.NewStyle().Foreground(colorMuted)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorMuted).Bold(true).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

// status is the kind of a one-line message; each kind has its own icon
// and colour.
type status int

const (
	statusSuccess status = iota
	statusError
	statusWarning
	statusInfo
)

var statusIcons = [...]struct {
	icon  string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorOK)},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorFail)},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorWarn)},
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorMuted)},
}

func statusLine(s status, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if s == statusWarning {
		msg = statusIcons[s].style.Render(msg)
	}
	return statusIcons[s].style.Render(statusIcons[s].icon) + " " + msg
}

func printSuccess(format string, args ...any) { fmt.Println(statusLine(statusSuccess, format, args...)) }
func printError(format string, args ...any)   { fmt.Println(statusLine(statusError, format, args...)) }
func printWarning(format string, args ...any) { fmt.Println(statusLine(statusWarning, format, args...)) }
func printInfo(format string, args ...any)    { fmt.Println(statusLine(statusInfo, format, args...)) }

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path written by the command.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

func printStats(nodeCount, edgeCount int, cached bool) {
	fmt.Println(statsLine(nodeCount, edgeCount, cached))
}

// statsLine summarises a graph as "12 nodes · 14 edges · cached". Zero
// counts are left out.
func statsLine(nodeCount, edgeCount int, cached bool) string {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if cached {
		parts = append(parts, statusIcons[statusSuccess].style.Render(iconCached))
	} else {
		parts = append(parts, styleFresh.Render(iconFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// levelTable renders the hierarchy summary of a layout, coarsest level
// first, with the level column highlighted.
func levelTable(levels []graph.LevelStat) string {
	rows := make([][]string, len(levels))
	for i, l := range levels {
		rows[i] = []string{
			strconv.Itoa(l.Level),
			strconv.Itoa(l.Nodes),
			strconv.Itoa(l.Edges),
			strconv.Itoa(l.Iterations),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Level", "Nodes", "Edges", "Iterations").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleTableHeader
			case col == 0:
				return styleTableCell.Foreground(colorAccent)
			}
			return styleTableCell
		}).
		Render()
}

func printLevelTable(levels []graph.LevelStat) {
	if len(levels) > 0 {
		fmt.Println(levelTable(levels))
	}
}

// printNextStep suggests the command that continues the workflow.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
