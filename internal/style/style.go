package style

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// --- Reusable Colors ---
var (
	colorPink      = lipgloss.Color("205")
	colorDarkGray  = lipgloss.Color("240")
	colorLightGray = lipgloss.Color("229")
	colorBlue      = lipgloss.Color("57")
	colorCyan      = lipgloss.Color("212")
	colorPurple    = lipgloss.Color("99")
	colorRed       = lipgloss.Color("196")
	colorGreen     = lipgloss.Color("42")
)

// --- General Purpose Styles ---
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	HelpStyle    = lipgloss.NewStyle().Faint(true)
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	DocStyle     = lipgloss.NewStyle().Margin(1, 2)
)

// --- Catalog Styles ---
var (
	BaseStyle          = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorDarkGray)
	HighlightFontStyle = lipgloss.NewStyle().Foreground(colorCyan)

	ActiveTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorLightGray).Background(colorBlue).Padding(0, 1)
	InactiveTabStyle = lipgloss.NewStyle().Foreground(colorDarkGray).Padding(0, 1)
)

// --- Form Styles ---
var (
	FormStyle         = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(colorPurple).Padding(0, 1)
	LabelStyle        = lipgloss.NewStyle().Width(10).Foreground(colorPurple)
	FocusedLabelStyle = lipgloss.NewStyle().Width(10).Bold(true).Foreground(colorCyan)
	FieldErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).PaddingLeft(10)
)

// --- Common Components ---

// NewSpinner creates a spinner with a consistent style.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPink)
	return s
}

// NewTableStyles returns the default styles for tables, with our custom selection style.
func NewTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorDarkGray).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(colorLightGray).Background(colorBlue).Bold(false)
	return styles
}
