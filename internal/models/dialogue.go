package models

// DialogueTurn is one exchange in a dialogue session. The client resends the
// full history on every turn; turns are request-scoped and never persisted.
type DialogueTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Speaker constants for DialogueTurn.
const (
	SpeakerUser    = "user"
	SpeakerPersona = "persona"
)

// Dialogue mode constants.
const (
	ModeDebate    = "debate"
	ModeSocratic  = "socratic"
	ModeChallenge = "challenge"
)

// KnownMode reports whether mode is one of the supported dialogue modes.
func KnownMode(mode string) bool {
	switch mode {
	case ModeDebate, ModeSocratic, ModeChallenge:
		return true
	}
	return false
}
