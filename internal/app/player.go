// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates discovery, the feed connection, the playback session and the UI
package app

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/pdugic/audio-analyzer/internal/client"
	"github.com/pdugic/audio-analyzer/internal/discovery"
	"github.com/pdugic/audio-analyzer/internal/playback"
	"github.com/pdugic/audio-analyzer/internal/protocol"
	"github.com/pdugic/audio-analyzer/internal/ui"
	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/output"
)

const (
	defaultStatusInterval   = 5 * time.Second
	defaultDiscoveryTimeout = 30 * time.Second
	tuiStatsInterval        = 500 * time.Millisecond
	drainPollInterval       = 100 * time.Millisecond
)

// Config holds player configuration
type Config struct {
	ServerAddr string // empty means discover via mDNS
	Name       string
	Encoding   string // frame encoding requested from the feed

	SampleRate   int
	SafetyOffset time.Duration
	MaxLead      time.Duration

	Autoplay   bool // start Running without a key press
	UseTUI     bool
	NullOutput bool // render to the wall clock instead of a sound card

	StatusInterval   time.Duration
	DiscoveryTimeout time.Duration
}

// Player represents the main player application
type Player struct {
	config    Config
	session   *playback.Session
	client    *client.Client
	discovery *discovery.Manager
	control   *ui.PlaybackControl
	tuiProg   *tea.Program
	server    string

	bytesIn  atomic.Int64
	finished atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new player
func New(config Config) *Player {
	if config.StatusInterval <= 0 {
		config.StatusInterval = defaultStatusInterval
	}
	if config.DiscoveryTimeout <= 0 {
		config.DiscoveryTimeout = defaultDiscoveryTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs the player until the stream drains, the user quits or Stop is called
func (p *Player) Start() error {
	device, err := p.openDevice()
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	session, err := playback.NewSession(device, playback.Config{
		SampleRate:   p.config.SampleRate,
		SafetyOffset: p.config.SafetyOffset,
		MaxLead:      p.config.MaxLead,
	})
	if err != nil {
		device.Close()
		return fmt.Errorf("failed to create session: %w", err)
	}
	p.session = session
	defer session.Close()

	if p.config.Autoplay {
		session.Play()
	}

	if p.config.UseTUI {
		p.control = ui.NewPlaybackControl()
		p.tuiProg, _ = ui.Run(p.control)
	}

	addr, err := p.resolveServer()
	if err != nil {
		return err
	}

	if err := p.connect(addr); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer p.client.Close()

	g, gctx := errgroup.WithContext(p.ctx)

	g.Go(func() error {
		p.pumpChunks(gctx)
		if !p.config.UseTUI {
			p.waitForDrain(gctx)
			p.cancel()
		}
		return nil
	})

	g.Go(func() error {
		p.statusLoop(gctx)
		return nil
	})

	if p.tuiProg != nil {
		g.Go(func() error {
			p.handleControls(gctx)
			return nil
		})
		g.Go(func() error {
			p.tuiStatsLoop(gctx)
			return nil
		})
		g.Go(func() error {
			go func() {
				<-gctx.Done()
				p.tuiProg.Quit()
			}()
			_, err := p.tuiProg.Run()
			p.cancel()
			if err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// openDevice opens the sound card, falling back to the null output
func (p *Player) openDevice() (output.Device, error) {
	rate := p.config.SampleRate
	if rate <= 0 {
		rate = audio.DefaultSampleRate
	}

	if p.config.NullOutput {
		log.Printf("Using null output at %dHz", rate)
		return output.NewNull(rate), nil
	}

	device, err := output.NewOto(rate)
	if err != nil {
		log.Printf("Audio device unavailable (%v), using null output", err)
		return output.NewNull(rate), nil
	}
	return device, nil
}

// resolveServer returns the configured address or the first discovered feed
func (p *Player) resolveServer() (string, error) {
	if p.config.ServerAddr != "" {
		return p.config.ServerAddr, nil
	}

	p.discovery = discovery.NewManager(discovery.Config{ServiceName: p.config.Name})
	defer p.discovery.Stop()

	log.Printf("Browsing for analysis feeds...")

	ctx, cancel := context.WithTimeout(p.ctx, p.config.DiscoveryTimeout)
	defer cancel()

	server, err := p.discovery.WaitForServer(ctx)
	if err != nil {
		return "", err
	}

	if p.config.Encoding == "" {
		p.config.Encoding = server.Encoding
	}
	return server.URL(), nil
}

// connect establishes connection to the feed
func (p *Player) connect(addr string) error {
	p.client = client.NewClient(client.Config{
		ServerAddr: addr,
		Encoding:   p.config.Encoding,
	})

	if err := p.client.Connect(); err != nil {
		return err
	}

	p.server = addr
	log.Printf("Connected to feed: %s", addr)

	return nil
}

// pumpChunks feeds every arrival into the session in order
func (p *Player) pumpChunks(ctx context.Context) {
	for {
		select {
		case chunk := <-p.client.Chunks:
			p.ingest(chunk)

		case fin := <-p.client.Finished:
			p.markFinished(fin)

		case <-p.client.Done():
			// Drain what the reader already queued
			for {
				select {
				case chunk := <-p.client.Chunks:
					p.ingest(chunk)
				case fin := <-p.client.Finished:
					p.markFinished(fin)
				default:
					log.Printf("Feed connection ended")
					return
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

func (p *Player) markFinished(fin protocol.Finished) {
	p.finished.Store(true)
	log.Printf("Feed finished (%d frames)", fin.Frames)
}

func (p *Player) ingest(chunk client.Chunk) {
	if b, ok := chunk.Data.(playback.OwnedBytes); ok {
		p.bytesIn.Add(int64(len(b)))
	} else if s, ok := chunk.Data.(playback.Base64Text); ok {
		p.bytesIn.Add(int64(len(s)))
	}

	if err := p.session.IngestChunk(chunk.Data); err != nil {
		log.Printf("Rejected chunk: %v", err)
	}
}

// waitForDrain blocks until queued audio has played out
func (p *Player) waitForDrain(ctx context.Context) {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		stats := p.session.Stats()
		if stats.State != playback.Running || stats.Lead <= 0 {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// statusLoop reports the incoming data rate
func (p *Player) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(p.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := p.bytesIn.Swap(0)
			rate := int64(float64(n) / p.config.StatusInterval.Seconds())
			log.Print(incomingStatus(rate))

			if p.tuiProg != nil {
				p.tuiProg.Send(ui.StatusMsg{BytesPerSec: &rate})
			}

		case <-ctx.Done():
			return
		}
	}
}

func incomingStatus(bytesPerSec int64) string {
	if bytesPerSec == 0 {
		return "NO DATA incoming"
	}
	return fmt.Sprintf("DATA incoming (%d bytes/sec)", bytesPerSec)
}

// handleControls applies play/pause gestures from the TUI
func (p *Player) handleControls(ctx context.Context) {
	for {
		select {
		case <-p.control.Toggle:
			p.toggle()

		case <-p.control.Quit:
			p.cancel()
			return

		case <-ctx.Done():
			return
		}
	}
}

// toggle flips between Running and Suspended
func (p *Player) toggle() {
	if p.session.State() == playback.Running {
		p.session.Pause()
	} else {
		p.session.Play()
	}
	log.Printf("Output %s", p.session.State())
}

// tuiStatsLoop pushes session statistics to the TUI
func (p *Player) tuiStatsLoop(ctx context.Context) {
	ticker := time.NewTicker(tuiStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			msg := statusFromStats(p.session.Stats(), p.session.Config().SampleRate)
			connected := p.client.IsConnected()
			msg.Connected = &connected
			msg.ServerName = p.server
			msg.Finished = p.finished.Load()
			p.tuiProg.Send(msg)

		case <-ctx.Done():
			return
		}
	}
}

func statusFromStats(stats playback.Stats, sampleRate int) ui.StatusMsg {
	return ui.StatusMsg{
		State:      stats.State.String(),
		SampleRate: sampleRate,
		Stats: &ui.StatsSnapshot{
			Received:       stats.Received,
			Discarded:      stats.Discarded,
			Scheduled:      stats.Scheduled,
			Dropped:        stats.Dropped,
			Unrecognized:   stats.Unrecognized,
			DecodeFailures: stats.DecodeFailures,
			Lead:           stats.Lead,
		},
	}
}

// Stats returns session statistics, zero before Start
func (p *Player) Stats() playback.Stats {
	if p.session == nil {
		return playback.Stats{}
	}
	return p.session.Stats()
}

// Stop stops the player; Start returns once its goroutines exit
func (p *Player) Stop() {
	p.cancel()
}
