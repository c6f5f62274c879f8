package therapy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arhammxo/eli/therapy/sessionfile"
)

type responderFunc func(ctx context.Context, instructions, prompt string) (string, error)

func (f responderFunc) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	return f(ctx, instructions, prompt)
}

type notesFunc func(ctx context.Context, instructions, transcript string) (SessionNotes, error)

func (f notesFunc) GenerateNotes(ctx context.Context, instructions, transcript string) (SessionNotes, error) {
	return f(ctx, instructions, transcript)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedResponder numbers its replies and answers goodbye prompts with a
// fixed farewell, so transcripts are deterministic.
func scriptedResponder() Responder {
	n := 0
	return responderFunc(func(_ context.Context, _, prompt string) (string, error) {
		if strings.Contains(prompt, "The client is saying goodbye.") {
			return "Take care until next time.", nil
		}
		n++
		return fmt.Sprintf("reply-%d", n), nil
	})
}

func newTestBot(t *testing.T, path string, opts Options) *Bot {
	t.Helper()
	files := sessionfile.NewManager(testLogger(), true, DefaultHistoryHeader)
	if opts.SessionFile == "" {
		opts.SessionFile = path
	}
	return NewBot(scriptedResponder(), files, testLogger(), opts)
}

func TestFirstSessionEndToEnd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	bot := newTestBot(t, path, Options{TrackNames: true})

	if !bot.FirstSession() {
		t.Fatalf("expected first session with no file present")
	}
	if bot.ClientName() != "" {
		t.Fatalf("unexpected client name %q", bot.ClientName())
	}

	opening := bot.StartSession(context.Background())
	if opening != "reply-1" {
		t.Fatalf("opening=%q", opening)
	}

	reply, ended := bot.Chat(context.Background(), "I'm Taylor")
	if ended {
		t.Fatalf("session ended early")
	}
	if reply != "reply-2" {
		t.Fatalf("reply=%q", reply)
	}
	if bot.ClientName() != "Taylor" {
		t.Fatalf("client name=%q, want Taylor", bot.ClientName())
	}

	if _, ended = bot.Chat(context.Background(), "I've been feeling anxious"); ended {
		t.Fatalf("goodbye wrongly detected")
	}

	farewell, ended := bot.Chat(context.Background(), "goodbye")
	if !ended {
		t.Fatalf("goodbye not detected")
	}
	if farewell != "Take care until next time." {
		t.Fatalf("farewell=%q", farewell)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	content := string(b)
	if !strings.HasPrefix(content, DefaultHistoryHeader) {
		t.Fatalf("default header not preserved as prefix:\n%q", content)
	}
	if !strings.Contains(content, "Client Name: Taylor\n") {
		t.Fatalf("client name line missing:\n%q", content)
	}
	if !strings.Contains(content, "--- Session: ") {
		t.Fatalf("session delimiter missing:\n%q", content)
	}

	// The ended session refuses further turns.
	reply, ended = bot.Chat(context.Background(), "hello again")
	if !ended || reply != endedReply {
		t.Fatalf("got (%q, %v) after session end", reply, ended)
	}

	// A second run against the same file is a returning session and recovers
	// the persisted name.
	bot2 := newTestBot(t, path, Options{TrackNames: true})
	if bot2.FirstSession() {
		t.Fatalf("expected returning session on second run")
	}
	if bot2.ClientName() != "Taylor" {
		t.Fatalf("recovered name=%q, want Taylor", bot2.ClientName())
	}
}

func TestSessionPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	bot := newTestBot(t, path, Options{TrackNames: true})

	_ = bot.StartSession(context.Background())
	_, _ = bot.Chat(context.Background(), "I'm Riley")
	_, _ = bot.Chat(context.Background(), "work has been heavy")
	_, _ = bot.Chat(context.Background(), "bye")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	content := string(b)

	// Recover the recorded start time, then the rest of the file must match
	// exactly: header, one session block, the turns in order.
	lines := strings.Split(content, "\n")
	var start string
	for _, line := range lines {
		if strings.HasPrefix(line, "--- Session: ") {
			start = strings.TrimSuffix(strings.TrimPrefix(line, "--- Session: "), " ---")
			break
		}
	}
	if start == "" {
		t.Fatalf("no session delimiter in:\n%q", content)
	}

	want := DefaultHistoryHeader +
		fmt.Sprintf("\n\n--- Session: %s ---\n", start) +
		"Client Name: Riley\n" +
		"\nUser: New session started\nEli: reply-1\n\n" +
		"\nUser: I'm Riley\nEli: reply-2\n\n" +
		"\nUser: work has been heavy\nEli: reply-3\n\n" +
		"\nUser: bye\nEli: Take care until next time.\n\n"
	if content != want {
		t.Fatalf("history mismatch:\ngot:\n%q\nwant:\n%q", content, want)
	}
}

func TestChatFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	files := sessionfile.NewManager(testLogger(), true, DefaultHistoryHeader)
	failing := responderFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("429 too many requests")
	})
	bot := NewBot(failing, files, testLogger(), Options{SessionFile: path, TrackNames: true})

	if got := bot.StartSession(context.Background()); got != fallbackReply {
		t.Fatalf("opening=%q, want apology fallback", got)
	}
	reply, ended := bot.Chat(context.Background(), "I feel stuck")
	if ended {
		t.Fatalf("provider failure must not end the session")
	}
	if reply != fallbackReply {
		t.Fatalf("reply=%q, want apology fallback", reply)
	}
}

func TestCorruptHistoryFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatalf("write corrupt history: %v", err)
	}

	// An undecodable history file is treated as empty history: the session
	// runs as a first session with no recovered name.
	bot := newTestBot(t, path, Options{TrackNames: true})
	if !bot.FirstSession() {
		t.Fatalf("expected first session over corrupt history")
	}
	if bot.ClientName() != "" {
		t.Fatalf("unexpected client name %q", bot.ClientName())
	}

	_ = bot.StartSession(context.Background())
	if _, ended := bot.Chat(context.Background(), "goodbye"); !ended {
		t.Fatalf("session did not end")
	}

	// The persisted file is rebuilt from the empty prior content.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if !strings.HasPrefix(string(b), "\n\n--- Session: ") {
		t.Fatalf("expected empty prior content prefix:\n%q", string(b))
	}
}

func TestNullSentinelEndsSession(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	files := sessionfile.NewManager(testLogger(), true, DefaultHistoryHeader)
	resp := responderFunc(func(_ context.Context, _, prompt string) (string, error) {
		if strings.Contains(prompt, "The client is saying goodbye.") {
			return "Goodbye for now.", nil
		}
		return "null", nil
	})
	bot := NewBot(resp, files, testLogger(), Options{SessionFile: path, TrackNames: false})

	_ = bot.StartSession(context.Background())
	reply, ended := bot.Chat(context.Background(), "that's everything for today")
	if !ended {
		t.Fatalf("null completion must end the session")
	}
	if reply != "Goodbye for now." {
		t.Fatalf("reply=%q", reply)
	}
}

func TestTrackNamesOffOmitsClientNameLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	bot := newTestBot(t, path, Options{TrackNames: false})

	_ = bot.StartSession(context.Background())
	if _, ended := bot.Chat(context.Background(), "goodbye"); !ended {
		t.Fatalf("goodbye not detected with name tracking off")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if strings.Contains(string(b), "Client Name:") {
		t.Fatalf("client-name line present with tracking off:\n%q", string(b))
	}
}

func TestNameNotExtractedBeforeOpeningExchange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ps.txt")
	bot := newTestBot(t, path, Options{TrackNames: true})

	// No StartSession: transcript is empty, so the first message is not
	// treated as a name reply.
	_, _ = bot.Chat(context.Background(), "Jordan")
	if bot.ClientName() != "" {
		t.Fatalf("name extracted before the opening exchange: %q", bot.ClientName())
	}
}

func TestSessionNotesWrittenOnEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ps.txt")
	notesPath := filepath.Join(dir, "ps.notes.json")

	files := sessionfile.NewManager(testLogger(), true, DefaultHistoryHeader)
	var gotTranscript string
	notes := notesFunc(func(_ context.Context, _, transcript string) (SessionNotes, error) {
		gotTranscript = transcript
		return SessionNotes{
			Summary:   "Client introduced themselves and said goodbye.",
			KeyThemes: []string{"introductions"},
			Mood:      "calm",
		}, nil
	})
	bot := NewBot(scriptedResponder(), files, testLogger(), Options{
		SessionFile: path,
		TrackNames:  true,
		Notes:       notes,
		NotesFile:   notesPath,
	})

	_ = bot.StartSession(context.Background())
	_, _ = bot.Chat(context.Background(), "bye")

	if !strings.Contains(gotTranscript, "User: New session started") {
		t.Fatalf("notes generator did not receive the transcript: %q", gotTranscript)
	}

	b, err := os.ReadFile(notesPath)
	if err != nil {
		t.Fatalf("read notes: %v", err)
	}
	var decoded SessionNotes
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("notes are not valid JSON: %v", err)
	}
	if decoded.Mood != "calm" {
		t.Fatalf("decoded notes=%+v", decoded)
	}
}

func TestNotesFailureDoesNotBlockPersistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ps.txt")
	files := sessionfile.NewManager(testLogger(), true, DefaultHistoryHeader)
	notes := notesFunc(func(context.Context, string, string) (SessionNotes, error) {
		return SessionNotes{}, errors.New("500 internal server error")
	})
	bot := NewBot(scriptedResponder(), files, testLogger(), Options{
		SessionFile: path,
		TrackNames:  true,
		Notes:       notes,
		NotesFile:   filepath.Join(dir, "ps.notes.json"),
	})

	_ = bot.StartSession(context.Background())
	if _, ended := bot.Chat(context.Background(), "goodbye"); !ended {
		t.Fatalf("session did not end")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history not persisted: %v", err)
	}
	if !strings.Contains(string(b), "--- Session: ") {
		t.Fatalf("session block missing:\n%q", string(b))
	}
}
