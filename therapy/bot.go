// Package therapy implements the conversational therapist session: prompt
// construction, session-state tracking, and file-backed history persistence.
package therapy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/arhammxo/eli/therapy/sessionfile"
)

// Responder generates one completion from system instructions plus a single
// user-role message.
type Responder interface {
	Generate(ctx context.Context, instructions, prompt string) (string, error)
}

// NotesGenerator produces structured notes over a finished transcript.
type NotesGenerator interface {
	GenerateNotes(ctx context.Context, instructions, transcript string) (SessionNotes, error)
}

// fallbackReply is returned whenever the remote call fails; provider errors
// never reach the client.
const fallbackReply = "I apologize, but I'm having trouble formulating my response right now. Could we pause for a moment and try again?"

const endedReply = "Session has ended. Please start a new session."

// Options configures a Bot. Zero values fall back to the defaults noted on
// each field.
type Options struct {
	SessionFile    string // required
	TrackNames     bool
	Persona        Persona // zero value -> DefaultPersona
	DefaultContent string  // zero value -> DefaultHistoryHeader

	// Notes, when non-nil, enables structured session notes written to
	// NotesFile at session end.
	Notes     NotesGenerator
	NotesFile string
}

// Bot drives one conversational session end-to-end.
type Bot struct {
	persona     Persona
	responder   Responder
	files       *sessionfile.Manager
	logger      *slog.Logger
	sessionFile string
	trackNames  bool
	notes       NotesGenerator
	notesFile   string

	session *SessionState

	// Derived once from the history file at construction time.
	priorSessions string
	hasPrevious   bool
	priorName     string
}

// NewBot loads prior history through the file accessor and derives the
// first-session flag and any previously recorded client name. A failed read
// is logged and treated as empty history.
func NewBot(responder Responder, files *sessionfile.Manager, logger *slog.Logger, opts Options) *Bot {
	if opts.Persona.Name == "" {
		opts.Persona = DefaultPersona()
	}
	if opts.DefaultContent == "" {
		opts.DefaultContent = DefaultHistoryHeader
	}

	b := &Bot{
		persona:     opts.Persona,
		responder:   responder,
		files:       files,
		logger:      logger,
		sessionFile: opts.SessionFile,
		trackNames:  opts.TrackNames,
		notes:       opts.Notes,
		notesFile:   opts.NotesFile,
		session:     newSessionState(),
	}

	res := files.Read(opts.SessionFile)
	if !res.Success {
		logger.Error("failed to load previous sessions", "error", res.Error)
	} else {
		b.priorSessions = res.Data
	}

	b.hasPrevious = HasPreviousSessions(b.priorSessions, opts.DefaultContent)
	if b.trackNames {
		b.priorName = LastClientName(b.priorSessions)
	}

	b.session.FirstSession = !b.hasPrevious
	if !b.session.FirstSession {
		b.session.ClientName = b.priorName
	}

	logger.Info("session initialized",
		"session_id", b.session.ID,
		"first_session", b.session.FirstSession,
		"track_names", b.trackNames)
	return b
}

// ClientName returns the currently known client name, if any.
func (b *Bot) ClientName() string { return b.session.ClientName }

// FirstSession reports whether no prior history existed at startup.
func (b *Bot) FirstSession() bool { return b.session.FirstSession }

// StartSession resets the session state and generates the opening greeting.
// The reply is recorded under a synthetic "New session started" user line.
func (b *Bot) StartSession(ctx context.Context) string {
	b.session = newSessionState()
	b.session.FirstSession = !b.hasPrevious
	if !b.session.FirstSession {
		b.session.ClientName = b.priorName
	}

	response := b.generate(ctx, buildStartPrompt(b.promptContext()))
	b.session.addInteraction(b.persona.Name, "New session started", response)
	return response
}

// Chat handles one client message. The returned flag is true once the
// session has ended; further calls return a fixed ended message.
func (b *Bot) Chat(ctx context.Context, userMessage string) (string, bool) {
	if !b.session.Active {
		return endedReply, true
	}

	// A name can only be volunteered after the opening exchange asked for it.
	if b.trackNames && b.session.FirstSession && b.session.ClientName == "" && len(b.session.Transcript) > 0 {
		if name := ExtractName(userMessage); name != "" {
			b.session.ClientName = name
			b.logger.Debug("extracted client name", "name", name)
		}
	}

	if IsGoodbye(userMessage) {
		return b.endSession(ctx, userMessage), true
	}

	response := b.generate(ctx, buildTurnPrompt(b.promptContext(), userMessage))

	// The persona once signalled goodbyes by replying with a literal "null".
	// Kept as a guard on the exact trimmed completion only; substring
	// detection on the client message above is the primary path.
	if strings.TrimSpace(response) == "null" {
		b.logger.Warn("model returned the null goodbye sentinel")
		return b.endSession(ctx, userMessage), true
	}

	b.session.addInteraction(b.persona.Name, userMessage, response)
	return response, false
}

// endSession generates the farewell, persists the session, and deactivates
// the state.
func (b *Bot) endSession(ctx context.Context, userMessage string) string {
	goodbye := b.generate(ctx, buildGoodbyePrompt(b.promptContext(), userMessage))
	b.session.addInteraction(b.persona.Name, userMessage, goodbye)
	b.saveSession()
	b.writeNotes(ctx)
	b.session.end()
	return goodbye
}

// generate calls the remote API and converts any failure into the fixed
// apology reply.
func (b *Bot) generate(ctx context.Context, prompt string) string {
	system := buildSystemPrompt(b.persona, b.promptContext())
	response, err := b.responder.Generate(ctx, system, prompt)
	if err != nil {
		b.logger.Error("error generating response", "error", err)
		return fallbackReply
	}
	return response
}

// saveSession overwrites the history file with the prior content plus this
// session's block. A failed write is logged; the session still ends.
func (b *Bot) saveSession() {
	name := b.session.ClientName
	if name == "" {
		name = b.priorName
	}

	updated := ComposeHistory(b.priorSessions, b.session.StartTime, name, b.session.Transcript, b.trackNames)
	if res := b.files.Write(b.sessionFile, updated); !res.Success {
		b.logger.Error("failed to save session", "error", res.Error)
	}
}

// writeNotes generates and persists structured session notes. Best effort:
// failures are logged and never block session teardown.
func (b *Bot) writeNotes(ctx context.Context) {
	if b.notes == nil || b.notesFile == "" {
		return
	}

	notes, err := b.notes.GenerateNotes(ctx, sessionNotesPrompt, b.session.Transcript)
	if err != nil {
		b.logger.Error("failed to generate session notes", "error", err)
		return
	}

	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		b.logger.Error("failed to marshal session notes", "error", err)
		return
	}
	if res := b.files.Write(b.notesFile, string(data)+"\n"); !res.Success {
		b.logger.Error("failed to write session notes", "error", res.Error)
	}
}

func (b *Bot) promptContext() promptContext {
	return promptContext{
		FirstSession:  b.session.FirstSession,
		ClientName:    b.session.ClientName,
		PriorSessions: b.priorSessions,
		Transcript:    b.session.Transcript,
		TrackNames:    b.trackNames,
	}
}
