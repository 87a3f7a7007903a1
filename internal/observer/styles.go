package observer

import (
	"github.com/MKhiriev/farmlink/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	stateStyles = map[models.ConnectionState]lipgloss.Style{
		models.StateConnected:    badgeStyle.Foreground(lipgloss.Color("2")),
		models.StateConnecting:   badgeStyle.Foreground(lipgloss.Color("3")),
		models.StateReconnecting: badgeStyle.Foreground(lipgloss.Color("3")),
		models.StateDisconnected: badgeStyle.Faint(true),
	}

	stateLabels = map[models.ConnectionState]string{
		models.StateConnected:    "● live",
		models.StateConnecting:   "○ connecting",
		models.StateReconnecting: "○ reconnecting",
		models.StateDisconnected: "○ offline",
	}

	toastStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Faint(true)
)

// Badge renders status as a short coloured label.
func Badge(status models.ConnectionStatus) string {
	style, ok := stateStyles[status.State]
	if !ok {
		style = badgeStyle
	}
	label, ok := stateLabels[status.State]
	if !ok {
		label = string(status.State)
	}
	return style.Render(label)
}
