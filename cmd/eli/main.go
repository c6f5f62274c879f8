// Eli is a line-oriented console therapist chat client. It keeps one session
// per run and appends the finished transcript to a flat history file.
//
// Usage:
//
//	export OPENAI_API_KEY="your-api-key"
//	eli [-file ps.txt] [-model gpt-5-mini] [-notes]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arhammxo/eli/therapy"
	"github.com/arhammxo/eli/therapy/provider"
	"github.com/arhammxo/eli/therapy/sessionfile"
)

func main() {
	// Missing .env is fine; the environment may already carry the key.
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.New(apiKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, logger)
	files := sessionfile.NewManager(logger, cfg.AutoCreate, cfg.DefaultContent)

	opts := therapy.Options{
		SessionFile:    cfg.SessionFile,
		TrackNames:     cfg.TrackNames,
		DefaultContent: cfg.DefaultContent,
	}
	if cfg.Notes {
		opts.Notes = client
		opts.NotesFile = cfg.NotesFile
	}
	bot := therapy.NewBot(client, files, logger, opts)

	fmt.Println("\n=== Starting New Therapy Session ===")
	fmt.Println()
	fmt.Println(bot.StartSession(ctx))

	runLoop(ctx, bot)
}

// runLoop feeds console lines into the bot until the session ends or the
// context is cancelled by an interrupt.
func runLoop(ctx context.Context, bot *therapy.Bot) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Print("\n> ")

		var input string
		select {
		case <-ctx.Done():
			fmt.Println("\n\n=== Session Interrupted ===")
			fmt.Println()
			return
		case err := <-scanErr:
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nAn error occurred: %v\nPlease try again.\n", err)
			}
			// Stdin closed: nothing more to read.
			fmt.Println("\n\n=== Session Interrupted ===")
			fmt.Println()
			return
		case input = <-lines:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		response, ended := bot.Chat(ctx, input)
		fmt.Printf("\n%s\n", response)

		if ended {
			fmt.Println("\n=== Session Ended ===")
			fmt.Println()
			return
		}
	}
}
