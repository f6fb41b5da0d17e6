package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, status, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		b.WriteString(data)
		b.WriteString("\n")
	} else {
		b.WriteString("-\n")
	}

	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(hotKeys))

	return appStyle.Render(b.String())
}

// renderStatus is the one-line sync summary: health, queue depth and, when
// degraded, what went wrong and when the next attempt is due.
func renderStatus(s models.SyncStatus, spinner string, now time.Time) string {
	health := s.Health()
	line := healthStyles[health].Render(string(health))
	if s.State == models.SyncSyncing {
		line += " " + spinner
	}
	if !s.Online {
		line += "  offline"
	}
	if s.Pending > 0 {
		line += fmt.Sprintf("  %d pending", s.Pending)
	}
	if s.PermanentFailures > 0 {
		line += fmt.Sprintf("  %d failed", s.PermanentFailures)
	}
	if s.LastError != "" {
		line += "  " + errorStyle.Render(s.LastError)
	}
	if s.State == models.SyncBackoffWait && !s.NextAttemptAt.IsZero() {
		wait := s.NextAttemptAt.Sub(now).Round(time.Second)
		if wait < 0 {
			wait = 0
		}
		line += fmt.Sprintf("  retry in %s", wait)
	}
	return line
}

// failureReport renders evicted changes as plain text for the clipboard.
func failureReport(failures []models.FailedEntry) string {
	var b strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&b, "%s %s %s %s: %s (attempts: %d)\n",
			f.FailedAt.UTC().Format(time.RFC3339), f.Change.Op, f.Change.Type, f.Change.ID, f.Reason, f.RetryCount)
	}
	return b.String()
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
