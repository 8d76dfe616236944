// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.TerminalColor
	ColorSecondary  lipgloss.TerminalColor
	ColorForeground lipgloss.TerminalColor
	ColorMuted      lipgloss.TerminalColor
	ColorBackground lipgloss.TerminalColor
	ColorSurface    lipgloss.TerminalColor
	ColorSuccess    lipgloss.TerminalColor
	ColorWarning    lipgloss.TerminalColor
	ColorError      lipgloss.TerminalColor
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Chat styles.
	ChatSenderStyle  lipgloss.Style
	ChatOwnStyle     lipgloss.Style
	ChatTimeStyle    lipgloss.Style
	ChatDayStyle     lipgloss.Style
	ChatContentStyle lipgloss.Style

	// Notification panel styles.
	NotifUnreadStyle  lipgloss.Style
	NotifReadStyle    lipgloss.Style
	NotifLinkStyle    lipgloss.Style
	NotifTimeStyle    lipgloss.Style
	NotifBadgeStyle   lipgloss.Style
	PanelTitleStyle   lipgloss.Style
	PanelBorderStyle  lipgloss.Style
	PanelSelectedItem lipgloss.Style

	// Status bar styles.
	StatusBarStyle      lipgloss.Style
	StatusOnlineStyle   lipgloss.Style
	StatusPendingStyle  lipgloss.Style
	StatusOfflineStyle  lipgloss.Style
	StatusDegradedStyle lipgloss.Style

	// Toast styles.
	ToastSuccessStyle lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
	ToastInfoStyle    lipgloss.Style

	HelpStyle  lipgloss.Style
	ErrorStyle lipgloss.Style
)

// ColorPool is used for deterministic color hashing of sender names.
var ColorPool []lipgloss.TerminalColor

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ChatSenderStyle = lipgloss.NewStyle().
		Bold(true)
	ChatOwnStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	ChatTimeStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ChatDayStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Bold(true)
	ChatContentStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)

	NotifUnreadStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	NotifReadStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	NotifLinkStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Underline(true)
	NotifTimeStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	NotifBadgeStyle = lipgloss.NewStyle().
		Background(ColorError).
		Foreground(ColorBackground).
		Padding(0, 1).
		Bold(true)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	PanelBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 1)
	PanelSelectedItem = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorForeground)

	StatusBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorForeground).
		Padding(0, 1)
	StatusOnlineStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusPendingStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusOfflineStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusDegradedStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	ToastSuccessStyle = toastBase().BorderForeground(ColorSuccess)
	ToastWarningStyle = toastBase().BorderForeground(ColorWarning)
	ToastErrorStyle = toastBase().BorderForeground(ColorError)
	ToastInfoStyle = toastBase().BorderForeground(ColorPrimary)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	ColorPool = []lipgloss.TerminalColor{
		ColorPrimary,
		ColorSecondary,
		ColorSuccess,
		ColorWarning,
		ColorError,
		ColorMuted,
	}
}

func toastBase() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) lipgloss.TerminalColor {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
