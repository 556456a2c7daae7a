// ABOUTME: Development feed server standing in for the analysis service
// ABOUTME: Streams paced audio frames to each websocket client after start_stream
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pdugic/audio-analyzer/internal/discovery"
	"github.com/pdugic/audio-analyzer/internal/protocol"
)

const (
	// DefaultChunkSize is the number of samples per frame
	DefaultChunkSize = 4096

	// DefaultPath is the websocket endpoint
	DefaultPath = "/stream"

	startTimeout = 10 * time.Second
)

// Config holds server configuration
type Config struct {
	Port         int
	Name         string
	Path         string
	AudioFile    string        // MP3, FLAC, WAV or Ogg. Empty = test tone
	ToneDuration time.Duration // length of the test tone, 0 = endless
	Encoding     Encoding      // default when start_stream names none
	ChunkSize    int
	Speed        float64 // pacing multiplier, 1 = real time
	EnableMDNS   bool
	UseTUI       bool
}

// Server streams one source per connected client
type Server struct {
	config   Config
	serverID string
	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux
	listener   net.Listener

	clients   map[string]*ClientInfo
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager
	tui         *FeedTUI
	startTime   time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// ClientInfo describes a connected player
type ClientInfo struct {
	ID       string
	Addr     string
	Encoding Encoding
	Frames   int
	Started  time.Time
}

// New creates a new feed server
func New(config Config) *Server {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	if config.Encoding == "" {
		config.Encoding = EncodingRaw
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Local development tool; browsers on any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[string]*ClientInfo),
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.mux.HandleFunc(config.Path, s.handleWebSocket)

	return s
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens and serves until Stop is called or the TUI quits
func (s *Server) Start() error {
	log.Printf("Feed starting: %s (ID: %s)", s.config.Name, s.serverID)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Path:        s.config.Path,
			Encoding:    string(s.config.Encoding),
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}

	if s.config.UseTUI {
		s.tui = NewFeedTUI()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.config.Name, port, s.sourceTitle()); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		go s.tuiUpdateLoop(port)
	}

	s.httpServer = &http.Server{Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	log.Printf("WebSocket feed listening on %s%s", listener.Addr(), s.config.Path)

	var tuiQuit <-chan struct{}
	if s.tui != nil {
		tuiQuit = s.tui.QuitChan()
	}

	var serverErr error
	select {
	case <-s.ctx.Done():
		log.Printf("Feed shutting down...")
	case <-tuiQuit:
		log.Printf("TUI quit requested, shutting down...")
	case err := <-errChan:
		serverErr = err
	}

	s.cancel()

	if s.tui != nil {
		s.tui.Stop()
	}
	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Feed stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop ends Start and every client stream
func (s *Server) Stop() {
	s.stopOnce.Do(s.cancel)
}

// Clients returns a snapshot of connected players ordered by start time
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	out := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

func (s *Server) sourceTitle() string {
	if s.config.AudioFile == "" {
		return "Test Tone"
	}
	return titleFromPath(s.config.AudioFile)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	id := r.Header.Get("X-Client-Id")
	if id == "" {
		id = uuid.New().String()
	}

	log.Printf("New WebSocket connection from %s (client %s)", r.RemoteAddr, id)

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn, id, r.RemoteAddr)
}

// readStart waits for start_stream and returns the requested encoding
func (s *Server) readStart(conn *websocket.Conn) (Encoding, error) {
	conn.SetReadDeadline(time.Now().Add(startTimeout))
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("failed to read start_stream: %w", err)
		}

		var msg struct {
			Type    string               `json:"type"`
			Payload protocol.StartStream `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ignoring malformed message: %v", err)
			continue
		}
		if msg.Type != protocol.TypeStartStream {
			log.Printf("Ignoring %s before start_stream", msg.Type)
			continue
		}

		if msg.Payload.Encoding == "" {
			return s.config.Encoding, nil
		}
		return ParseEncoding(msg.Payload.Encoding)
	}
}

func (s *Server) handleConnection(conn *websocket.Conn, id, addr string) {
	defer conn.Close()

	encoding, err := s.readStart(conn)
	if err != nil {
		log.Printf("Client %s: %v", id, err)
		s.sendError(conn, err)
		return
	}

	source, err := Open(s.config.AudioFile, s.config.ToneDuration)
	if err != nil {
		log.Printf("Client %s: %v", id, err)
		s.sendError(conn, err)
		return
	}
	defer source.Close()

	info := &ClientInfo{ID: id, Addr: addr, Encoding: encoding, Started: time.Now()}
	s.clientsMu.Lock()
	s.clients[id] = info
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, id)
		s.clientsMu.Unlock()
	}()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	// Detect the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Printf("Streaming %s to %s (%s, %d samples per frame)", source.Title(), id, encoding, s.config.ChunkSize)

	frames, err := s.stream(ctx, conn, source, encoding, info)
	if err != nil {
		log.Printf("Client %s: stream ended: %v", id, err)
		return
	}

	conn.WriteJSON(protocol.Message{Type: protocol.TypeFinished, Payload: protocol.Finished{Frames: frames}})
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	log.Printf("Client %s: finished after %d frames", id, frames)
}

// stream sends frames paced against the source sample rate and returns the frame count
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, source Source, enc Encoding, info *ClientInfo) (int, error) {
	buf := make([]int16, s.config.ChunkSize)
	rate := source.SampleRate()
	start := time.Now()
	frames := 0
	sent := 0 // samples

	for {
		n, readErr := source.Read(buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return frames, readErr
		}

		if n > 0 {
			timePos := float64(sent) / float64(rate)
			msgType, data, err := encodeFrame(enc, frames, buf[:n], rate, timePos)
			if err != nil {
				return frames, err
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return frames, fmt.Errorf("write failed: %w", err)
			}

			sent += n
			frames++
			s.clientsMu.Lock()
			info.Frames = frames
			s.clientsMu.Unlock()
		}

		if readErr != nil {
			return frames, nil
		}

		// Pace to real time
		due := start.Add(time.Duration(float64(sent) / float64(rate) / s.config.Speed * float64(time.Second)))
		select {
		case <-time.After(time.Until(due)):
		case <-ctx.Done():
			return frames, ctx.Err()
		}
	}
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	conn.WriteJSON(protocol.Message{Type: protocol.TypeError, Payload: protocol.Error{Message: err.Error()}})
}

// tuiUpdateLoop pushes client snapshots to the TUI
func (s *Server) tuiUpdateLoop(port int) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tui.Update(FeedStatus{
				Name:    s.config.Name,
				Port:    port,
				Uptime:  time.Since(s.startTime),
				Title:   s.sourceTitle(),
				Clients: s.Clients(),
			})
		case <-s.ctx.Done():
			return
		}
	}
}
