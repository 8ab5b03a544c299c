package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a color scheme for the live view.
type Theme struct {
	Name   string
	Header lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Warn   lipgloss.Color
	Graph  lipgloss.Color
	Border lipgloss.Color
	Help   lipgloss.Color
}

var Themes = []Theme{
	{
		Name:   "default",
		Header: lipgloss.Color("86"),
		Label:  lipgloss.Color("245"),
		Value:  lipgloss.Color("252"),
		Warn:   lipgloss.Color("214"),
		Graph:  lipgloss.Color("49"),
		Border: lipgloss.Color("240"),
		Help:   lipgloss.Color("240"),
	},
	{
		Name:   "paper",
		Header: lipgloss.Color("236"),
		Label:  lipgloss.Color("243"),
		Value:  lipgloss.Color("235"),
		Warn:   lipgloss.Color("130"),
		Graph:  lipgloss.Color("25"),
		Border: lipgloss.Color("250"),
		Help:   lipgloss.Color("248"),
	},
	{
		Name:   "amber",
		Header: lipgloss.Color("214"),
		Label:  lipgloss.Color("137"),
		Value:  lipgloss.Color("223"),
		Warn:   lipgloss.Color("196"),
		Graph:  lipgloss.Color("208"),
		Border: lipgloss.Color("94"),
		Help:   lipgloss.Color("94"),
	},
}

// styleSet is the rendered style bundle for one theme.
type styleSet struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	warn   lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
}

func newStyleSet(t Theme) styleSet {
	return styleSet{
		canvas: lipgloss.NewStyle().Padding(1, 2),
		stats:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Border).Padding(1, 2).Width(42),
		header: lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Value),
		warn:   lipgloss.NewStyle().Foreground(t.Warn),
		graph:  lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Help).MarginTop(2),
	}
}
