package domain

type ActionKind string

const (
	ActionSetPresent  ActionKind = "set_present"
	ActionClearAbsent ActionKind = "clear_absent"
	ActionSkipBreak   ActionKind = "skip_break"
)

// Action is one decided status mutation (or suppression) for one
// person. Actions live for a single cycle; they are never persisted.
type Action struct {
	Person PersonID   `json:"person"`
	Kind   ActionKind `json:"kind"`
	Reason string     `json:"reason"`
}
