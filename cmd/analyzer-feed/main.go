// ABOUTME: Entry point for the development analysis feed
// ABOUTME: Parses CLI flags and streams an audio file or tone to players
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

	"github.com/pdugic/audio-analyzer/internal/feed"
	"github.com/pdugic/audio-analyzer/internal/version"
)

var CLI struct {
	Audio        string        `arg:"" optional:"" help:"Audio file to stream (MP3, FLAC, WAV, Ogg). Plays a test tone if omitted"`
	Port         int           `help:"WebSocket server port" default:"8927"`
	Name         string        `help:"Feed name (default: hostname-analyzer-feed)"`
	Encoding     string        `help:"Default frame encoding: raw, base64, wav or mixed" enum:"raw,base64,wav,mixed" default:"raw"`
	ChunkSize    int           `help:"Samples per frame" default:"4096"`
	ToneDuration time.Duration `help:"Length of the test tone (0 = endless)" default:"0s"`
	Speed        float64       `help:"Pacing multiplier, 1 = real time" default:"1"`
	LogFile      string        `help:"Log file path" default:"analyzer-feed.log"`
	NoMDNS       bool          `name:"no-mdns" help:"Disable mDNS advertisement"`
	TUI          bool          `help:"Show connected players in a TUI"`
	Version      bool          `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("analyzer-feed"),
		kong.Description("Stream filtered audio frames to analyzer players."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	if CLI.Version {
		fmt.Println(version.String())
		os.Exit(0)
	}

	f, err := os.OpenFile(CLI.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if CLI.TUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	encoding, err := feed.ParseEncoding(CLI.Encoding)
	if err != nil {
		log.Fatalf("%v", err)
	}

	feedName := CLI.Name
	if feedName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		feedName = fmt.Sprintf("%s-analyzer-feed", hostname)
	}

	log.Printf("Starting %s feed: %s on port %d", version.String(), feedName, CLI.Port)
	log.Printf("Logging to: %s", CLI.LogFile)

	srv := feed.New(feed.Config{
		Port:         CLI.Port,
		Name:         feedName,
		AudioFile:    CLI.Audio,
		ToneDuration: CLI.ToneDuration,
		Encoding:     encoding,
		ChunkSize:    CLI.ChunkSize,
		Speed:        CLI.Speed,
		EnableMDNS:   !CLI.NoMDNS,
		UseTUI:       CLI.TUI,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Feed error: %v", err)
	}

	log.Printf("Feed stopped")
}
