// ABOUTME: Entry point for the audio analyzer player
// ABOUTME: Parses CLI flags, sets up logging and runs the player application
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/pdugic/audio-analyzer/internal/app"
	"github.com/pdugic/audio-analyzer/internal/version"
)

var CLI struct {
	Server           string        `help:"Feed address, host:port or ws:// URL (skip mDNS)" env:"ANALYZER_URL"`
	Name             string        `help:"Player name (default: hostname-analyzer-player)"`
	Encoding         string        `help:"Frame encoding to request: raw, base64, wav or mixed"`
	SampleRate       int           `help:"Rate raw PCM chunks are played at" default:"44100"`
	SafetyOffset     time.Duration `help:"Minimum lead before a new buffer starts" default:"50ms"`
	MaxLead          time.Duration `help:"Drop buffers once this much audio is queued (negative disables)" default:"2s"`
	DiscoveryTimeout time.Duration `help:"How long to browse for a feed" default:"30s"`
	LogFile          string        `help:"Log file path" default:"audio-analyzer.log"`
	NoTUI            bool          `help:"Disable TUI, use streaming logs instead"`
	Autoplay         bool          `help:"Start playing without a key press (always on with --no-tui)"`
	NullOutput       bool          `help:"Render to the wall clock instead of a sound card"`
	Version          bool          `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("audio-analyzer"),
		kong.Description("Play the filtered audio stream of an analysis feed."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	if CLI.Version {
		fmt.Println(version.String())
		os.Exit(0)
	}

	useTUI := !CLI.NoTUI

	f, err := os.OpenFile(CLI.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	playerName := CLI.Name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-analyzer-player", hostname)
	}

	log.Printf("Starting %s: %s", version.String(), playerName)

	player := app.New(app.Config{
		ServerAddr:       CLI.Server,
		Name:             playerName,
		Encoding:         CLI.Encoding,
		SampleRate:       CLI.SampleRate,
		SafetyOffset:     CLI.SafetyOffset,
		MaxLead:          CLI.MaxLead,
		Autoplay:         CLI.Autoplay || !useTUI,
		UseTUI:           useTUI,
		NullOutput:       CLI.NullOutput,
		DiscoveryTimeout: CLI.DiscoveryTimeout,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down...", sig)
		player.Stop()
	}()

	if err := player.Start(); err != nil {
		log.Printf("Player error: %v", err)
		if useTUI {
			fmt.Fprintf(os.Stderr, "Player error: %v\n", err)
		}
		os.Exit(1)
	}

	log.Printf("Player stopped")
}
