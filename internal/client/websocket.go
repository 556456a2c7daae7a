// ABOUTME: WebSocket client for the analysis audio stream
// ABOUTME: Handles connection, stream start, and routing frames into chunks
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pdugic/audio-analyzer/internal/playback"
	"github.com/pdugic/audio-analyzer/internal/protocol"
)

// DefaultPath is the websocket endpoint served by the feed
const DefaultPath = "/stream"

// Config holds client configuration
type Config struct {
	ServerAddr string // host:port or a full ws:// URL
	Path       string // used when ServerAddr has no path (default: /stream)
	Encoding   string // requested frame encoding, empty lets the feed choose
}

// Chunk is one arrival, ready for Session.IngestChunk
type Chunk struct {
	Data       any     // playback.OwnedBytes or playback.Base64Text
	SampleRate int     // advertised rate, 0 when unknown
	TimePos    float64 // seconds since stream start, 0 for binary frames
}

// Client represents a WebSocket client
type Client struct {
	id     string
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels
	Chunks   chan Chunk
	Finished chan protocol.Finished

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = DefaultPath
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:       uuid.New().String(),
		config:   config,
		Chunks:   make(chan Chunk, 100),
		Finished: make(chan protocol.Finished, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the client identifier sent with the dial
func (c *Client) ID() string {
	return c.id
}

// URL returns the websocket URL the client dials
func (c *Client) URL() string {
	addr := c.config.ServerAddr
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		u, err := url.Parse(addr)
		if err == nil {
			if u.Path == "" || u.Path == "/" {
				u.Path = c.config.Path
			}
			return u.String()
		}
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: c.config.Path}
	return u.String()
}

// Connect dials the feed and requests the stream
func (c *Client) Connect() error {
	target := c.URL()
	log.Printf("Connecting to %s", target)

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	header := http.Header{"X-Client-Id": {c.id}}

	conn, _, err := dialer.DialContext(c.ctx, target, header)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	msg := protocol.Message{Type: protocol.TypeStartStream}
	if c.config.Encoding != "" {
		msg.Payload = protocol.StartStream{Encoding: c.config.Encoding}
	}
	if err := c.sendJSON(msg); err != nil {
		c.Close()
		return fmt.Errorf("failed to send start_stream: %w", err)
	}

	log.Printf("Stream requested (client %s)", c.id)

	go c.readMessages()

	return nil
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.deliver(Chunk{Data: playback.OwnedBytes(data)})
		case websocket.TextMessage:
			c.handleJSONMessage(data)
		}
	}
}

// deliver hands a chunk to the consumer, dropping it once the client stops
func (c *Client) deliver(chunk Chunk) {
	select {
	case c.Chunks <- chunk:
	case <-c.ctx.Done():
		log.Printf("WebSocket: Context done, dropping chunk")
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeAudioFrame:
		var frame protocol.AudioFrame
		if err := json.Unmarshal(msg.Payload, &frame); err != nil {
			log.Printf("Failed to parse audio_frame: %v", err)
			return
		}
		c.deliver(Chunk{
			Data:       playback.Base64Text(frame.FilteredRawData),
			SampleRate: frame.SampleRate,
			TimePos:    frame.TimePos,
		})

	case protocol.TypeFinished:
		var fin protocol.Finished
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &fin); err != nil {
				// the stream still ended; only the frame count is lost
				log.Printf("Failed to parse finished: %v", err)
			}
		}
		log.Printf("Stream finished after %d frames", fin.Frames)
		select {
		case c.Finished <- fin:
		default:
		}

	case protocol.TypeError:
		var e protocol.Error
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &e); err != nil {
				log.Printf("Failed to parse error message: %v", err)
				return
			}
		}
		log.Printf("Feed error: %s", e.Message)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		log.Printf("Connection closed")
	}
	c.cancel()
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
