package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/arhammxo/eli/therapy"
)

type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	SessionFile string
	TrackNames  bool
	AutoCreate  bool
	Verbose     bool

	Notes     bool
	NotesFile string

	APIKey string

	DefaultContent string
}

func (c Config) Validate() error {
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.SessionFile == "" {
		return errors.New("missing -file")
	}
	if c.MaxTokens <= 0 {
		return errors.New("max-tokens must be > 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("temperature must be in [0, 2]")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:          "gpt-5-mini",
		MaxTokens:      4096,
		Temperature:    0.9,
		SessionFile:    "ps.txt",
		TrackNames:     true,
		AutoCreate:     true,
		DefaultContent: therapy.DefaultHistoryHeader,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use (e.g. gpt-5-mini)")
	fs.Int64Var(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Max output tokens per response")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	fs.StringVar(&cfg.SessionFile, "file", cfg.SessionFile, "Path to the session history file")
	fs.BoolVar(&cfg.TrackNames, "track-names", cfg.TrackNames, "Track the client's name across sessions")
	fs.BoolVar(&cfg.AutoCreate, "auto-create", cfg.AutoCreate, "Create the session file when it is missing")
	fs.BoolVar(&cfg.Notes, "notes", false, "Write structured session notes at session end")
	fs.StringVar(&cfg.NotesFile, "notes-file", "", "Optional path for session notes (default: <file>.notes.json)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose (debug) logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.SessionFile = filepath.Clean(cfg.SessionFile)
	if cfg.NotesFile == "" {
		cfg.NotesFile = cfg.SessionFile + ".notes.json"
	}
	cfg.NotesFile = filepath.Clean(cfg.NotesFile)
	return cfg, nil
}
