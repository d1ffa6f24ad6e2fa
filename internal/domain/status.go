package domain

import "strings"

// RemoteStatus is the chat profile status as the provider currently
// holds it. It is externally mutable, so it must be re-read right
// before any decision that depends on it.
type RemoteStatus struct {
	Text  string
	Emoji string
}

func (s RemoteStatus) IsClear() bool {
	return s.Text == "" && s.Emoji == ""
}

// DefaultBreakIndicators mirrors the indicator list the office has
// historically used; the configured list replaces it wholesale.
var DefaultBreakIndicators = []string{"lunch", "almuerzo", "comida", "break"}

// BreakGuard decides whether a status mutation must be suppressed
// because the person is on a meal or rest break. Pure: the decision is
// a case-insensitive substring match on the status text only, the
// emoji is informational.
type BreakGuard struct {
	indicators []string
}

func NewBreakGuard(indicators []string) BreakGuard {
	cleaned := make([]string, 0, len(indicators))
	for _, indicator := range indicators {
		indicator = strings.ToLower(strings.TrimSpace(indicator))
		if indicator == "" {
			continue
		}
		cleaned = append(cleaned, indicator)
	}

	return BreakGuard{indicators: cleaned}
}

func (g BreakGuard) OnBreak(statusText string) bool {
	if statusText == "" {
		return false
	}

	lowered := strings.ToLower(statusText)
	for _, indicator := range g.indicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}

	return false
}
