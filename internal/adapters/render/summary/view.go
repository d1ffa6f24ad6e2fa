package summary

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ofckit/ofc/internal/application"
	"github.com/ofckit/ofc/internal/domain"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func renderCycleView(summary application.Summary, s styles) string {
	title := "Presence Sync"
	if summary.DryRun {
		title += " (dry run)"
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf(
			"scanned: %d  present: %d  arrived: %d  departed: %d",
			summary.Scanned, summary.Present, summary.Arrived, summary.Departed,
		)),
	}

	if len(summary.Actions) == 0 {
		lines = append(lines, s.empty.Render("Nothing to do."))
	} else {
		for _, action := range summary.Actions {
			lines = append(lines, actionLine(action, s))
		}
	}

	lines = append(lines, s.section.Render(resultLine(summary, s)))
	for _, message := range summary.Errors {
		lines = append(lines, s.warning.Render("error: "+message))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func actionLine(action domain.Action, s styles) string {
	var verb string
	switch action.Kind {
	case domain.ActionSetPresent:
		verb = s.present.Render("set  ")
	case domain.ActionClearAbsent:
		verb = s.absent.Render("clear")
	case domain.ActionSkipBreak:
		verb = s.skip.Render("skip ")
	default:
		verb = s.detail.Render(string(action.Kind))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		verb,
		" ",
		s.person.Render(string(action.Person)),
		" ",
		s.meta.Render(action.Reason),
	)
}

func resultLine(summary application.Summary, s styles) string {
	if summary.DryRun {
		return s.detail.Render(fmt.Sprintf("would skip %d, decided %d actions", summary.Skipped, len(summary.Actions)))
	}

	line := fmt.Sprintf("updated: %d  skipped: %d  failed: %d", summary.Applied, summary.Skipped, summary.Failed)
	if summary.Duration > 0 {
		line += fmt.Sprintf("  (%s)", summary.Duration.Round(time.Millisecond))
	}
	if summary.Failed > 0 {
		return s.warning.Render(line)
	}

	return s.detail.Render(line)
}

func renderOverview(people []domain.Person, snapshot domain.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Office Roster"),
		s.header.Render(fmt.Sprintf("people: %d  present: %d", len(people), len(snapshot.Present))),
	}

	if len(people) == 0 {
		lines = append(lines, s.empty.Render("Roster is empty."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, person := range people {
		lines = append(lines, personLine(person, snapshot, s))
	}

	lines = append(lines, s.section.Render(snapshotAgeLine(snapshot, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func personLine(person domain.Person, snapshot domain.Snapshot, s styles) string {
	marker := s.absent.Render("o absent ")
	if snapshot.IsPresent(person.ID) {
		marker = s.present.Render("* present")
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		marker,
		" ",
		s.person.Render(personLabel(person)),
		" ",
		s.meta.Render(person.Address),
	)
}

func personLabel(person domain.Person) string {
	if person.DisplayName != "" {
		return person.DisplayName
	}

	return string(person.ID)
}

func snapshotAgeLine(snapshot domain.Snapshot, opts RenderOptions, s styles) string {
	if snapshot.TakenAt.IsZero() {
		return s.empty.Render("No scan recorded yet.")
	}

	line := "last scan: " + formatAge(snapshot.TakenAt, opts.Now)
	if !opts.Now.IsZero() && opts.StaleAfter > 0 && opts.Now.Sub(snapshot.TakenAt) > opts.StaleAfter {
		return s.detail.Render(line) + " " + s.warning.Render("[stale]")
	}

	return s.detail.Render(line)
}

func formatAge(takenAt, now time.Time) string {
	if now.IsZero() {
		return takenAt.Format(time.RFC3339)
	}

	age := now.Sub(takenAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		minutes := int(math.Round(age.Minutes()))
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case age < 48*time.Hour:
		hours := int(math.Round(age.Hours()))
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return takenAt.Format("15:04 on 02 Jan")
	}
}
