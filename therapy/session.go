package therapy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionState is the in-memory record of one conversational session.
// Active starts true and becomes false exactly once, when the session ends.
type SessionState struct {
	ID           string
	Active       bool
	Transcript   string
	StartTime    string
	ClientName   string
	FirstSession bool
}

func newSessionState() *SessionState {
	return &SessionState{
		ID:        uuid.NewString(),
		Active:    true,
		StartTime: time.Now().UTC().Format(time.RFC3339),
	}
}

// addInteraction appends one user/assistant exchange to the transcript.
func (s *SessionState) addInteraction(personaName, userMessage, reply string) {
	s.Transcript += fmt.Sprintf("\nUser: %s", userMessage)
	s.Transcript += fmt.Sprintf("\n%s: %s\n\n", personaName, reply)
}

// end clears the transcript and deactivates the session. Terminal: the state
// is never reactivated.
func (s *SessionState) end() {
	s.Transcript = ""
	s.Active = false
}
