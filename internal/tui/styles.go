package tui

import (
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pendingStyle = lipgloss.NewStyle().Faint(true)

	healthStyles = map[models.Health]lipgloss.Style{
		models.HealthSynced:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.HealthSyncing:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.HealthDegraded: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)
