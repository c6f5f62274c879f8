package therapy

import (
	"fmt"
	"strings"
)

// promptContext carries the per-session facts the prompt builders embed.
type promptContext struct {
	FirstSession    bool
	ClientName      string
	PriorSessions   string
	Transcript      string
	TrackNames      bool
}

// buildSystemPrompt concatenates the persona blocks with a session context
// block. The context block differs between the name-tracking and plain
// variants; the behavioral rules always close the prompt.
func buildSystemPrompt(p Persona, pc promptContext) string {
	var b strings.Builder

	b.WriteString(p.Personality)
	b.WriteString("\n\n")
	b.WriteString(p.RelationshipGuidelines)
	b.WriteString("\n\n")
	b.WriteString(p.AuthenticityMarkers)
	b.WriteString("\n\n")

	if pc.TrackNames {
		sessionType := "RETURNING_SESSION_GREETING"
		instructions := p.ReturningGreeting
		prior := pc.PriorSessions
		if pc.FirstSession {
			sessionType = "FIRST_SESSION_INTRODUCTION"
			instructions = p.FirstSessionIntro
			prior = "None"
		}

		fmt.Fprintf(&b, `Previous Session Context:
Is First Session: %t
Client Name: %s
Previous Sessions: %s
Current Session Type: %s

Session Instructions:
%s
`, pc.FirstSession, nameOrNone(pc.ClientName), prior, sessionType, instructions)

		b.WriteString("\nRemember to:\n")
		b.WriteString("- Maintain your warm, authentic presence throughout\n")
		b.WriteString("- Show natural thoughtfulness in your responses\n")
		if pc.FirstSession {
			b.WriteString("- Ask for their name warmly\n")
		} else {
			b.WriteString("- Use their name naturally\n")
		}
		b.WriteString("- Keep your therapeutic wisdom wrapped in genuine warmth\n")
	} else {
		fmt.Fprintf(&b, `Previous Session Context:
%s

Continue the therapeutic conversation naturally, referencing previous sessions
when it helps the client feel seen and remembered.
`, pc.PriorSessions)
	}

	b.WriteString("\n")
	b.WriteString(p.Rules)
	return b.String()
}

// buildStartPrompt is the scripted user-role message that opens a session.
func buildStartPrompt(pc promptContext) string {
	if !pc.TrackNames {
		return `Begin a new therapy session with genuine warmth and presence.
Welcome the client, optionally referencing previous sessions when there are any.
Use natural, caring language.`
	}

	if pc.FirstSession {
		return `Begin a new first-time therapy session with genuine warmth and presence.
This is a first-time session, so:
- Introduce yourself as Eli
- Ask for their name warmly
- Create a welcoming, safe space
- Explain how the sessions work
- Use natural, caring language`
	}

	return fmt.Sprintf(`Begin a returning therapy session with genuine warmth and presence.
The client's name is %s.
Acknowledge previous sessions while focusing on the present moment.
Show your authentic therapeutic style in welcoming them back.`, nameOrNone(pc.ClientName))
}

// buildTurnPrompt wraps a live client message with the current session facts.
func buildTurnPrompt(pc promptContext, userMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Current session context:
Is First Session: %t
Client Name: %s
Session History: %s

Remember to:
- Respond with genuine therapeutic warmth
- Show thoughtful consideration
- Reference previous context naturally when relevant
- Maintain your authentic presence
`, pc.FirstSession, nameOrNone(pc.ClientName), pc.Transcript)

	if pc.ClientName != "" {
		fmt.Fprintf(&b, "- Use their name (%s) naturally and occasionally\n", pc.ClientName)
	}

	fmt.Fprintf(&b, `
Current client share: %s

Take a moment to consider your response, showing authentic therapeutic presence.`, userMessage)
	return b.String()
}

// buildGoodbyePrompt asks for a closing farewell for the client's last message.
func buildGoodbyePrompt(pc promptContext, userMessage string) string {
	var b strings.Builder
	b.WriteString(`The client is saying goodbye.
Create a warm, caring goodbye that:
- Acknowledges their participation
- Shows genuine care
- Leaves the door open for future sessions
- Maintains your authentic therapeutic presence
`)
	if pc.ClientName != "" {
		fmt.Fprintf(&b, "- Uses their name (%s) naturally in farewell\n", pc.ClientName)
	}
	fmt.Fprintf(&b, "\nTheir closing message: %s", userMessage)
	return b.String()
}

func nameOrNone(name string) string {
	if name == "" {
		return "None"
	}
	return name
}
