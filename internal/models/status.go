package models

// Status tones.
const (
	ToneInfo    = "info"
	ToneWarning = "warning"
	ToneError   = "error"
)

// Status is a user-facing message about the last load.
type Status struct {
	Tone    string `json:"tone"`
	Message string `json:"message"`
}
