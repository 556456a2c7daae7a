// ABOUTME: Tests for WebSocket client implementation
// ABOUTME: Tests URL building, stream start, and message routing
package client

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pdugic/audio-analyzer/internal/playback"
	"github.com/pdugic/audio-analyzer/internal/protocol"
)

func TestNewClient(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:8927"})
	if client == nil {
		t.Fatal("expected client to be created")
	}

	if client.config.Path != DefaultPath {
		t.Errorf("expected default path %s, got %s", DefaultPath, client.config.Path)
	}
	if client.ID() == "" {
		t.Error("expected client id")
	}
	if client.IsConnected() {
		t.Error("expected new client to be disconnected")
	}
}

func TestClientURL(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected string
	}{
		{"host port", "localhost:8927", "ws://localhost:8927/stream"},
		{"ws url without path", "ws://10.0.0.2:9000", "ws://10.0.0.2:9000/stream"},
		{"ws url with path", "ws://10.0.0.2:9000/feed", "ws://10.0.0.2:9000/feed"},
		{"secure", "wss://example.com", "wss://example.com/stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Config{ServerAddr: tt.addr})
			if got := c.URL(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

// newFeed starts a server that checks for start_stream and then runs script
func newFeed(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("failed to read start message: %v", err)
			return
		}
		if msg.Type != protocol.TypeStartStream {
			t.Errorf("expected start_stream, got %s", msg.Type)
			return
		}

		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsAddr(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func receive(t *testing.T, c *Client) Chunk {
	t.Helper()
	select {
	case chunk := <-c.Chunks:
		return chunk
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chunk")
	}
	return Chunk{}
}

func TestClientRoutesFrames(t *testing.T) {
	srv := newFeed(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3, 4})
		conn.WriteJSON(protocol.Message{
			Type: protocol.TypeAudioFrame,
			Payload: protocol.AudioFrame{
				SampleRate:      44100,
				TimePos:         0.5,
				FilteredRawData: "AQIDBA==",
			},
		})
		conn.WriteJSON(protocol.Message{Type: protocol.TypeFinished, Payload: protocol.Finished{Frames: 2}})
		conn.ReadMessage()
	})

	c := NewClient(Config{ServerAddr: wsAddr(srv)})
	if err := c.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	binary := receive(t, c)
	owned, ok := binary.Data.(playback.OwnedBytes)
	if !ok {
		t.Fatalf("expected OwnedBytes, got %T", binary.Data)
	}
	if len(owned) != 4 {
		t.Errorf("expected 4 bytes, got %d", len(owned))
	}

	text := receive(t, c)
	b64, ok := text.Data.(playback.Base64Text)
	if !ok {
		t.Fatalf("expected Base64Text, got %T", text.Data)
	}
	if b64 != "AQIDBA==" {
		t.Errorf("unexpected payload %q", b64)
	}
	if text.SampleRate != 44100 || text.TimePos != 0.5 {
		t.Errorf("unexpected frame metadata: %+v", text)
	}

	select {
	case fin := <-c.Finished:
		if fin.Frames != 2 {
			t.Errorf("expected 2 frames, got %d", fin.Frames)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finished")
	}
}

func TestClientRequestsEncoding(t *testing.T) {
	got := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg struct {
			Type    string               `json:"type"`
			Payload protocol.StartStream `json:"payload"`
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		json.Unmarshal(data, &msg)
		got <- msg.Payload.Encoding
	}))
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), Encoding: "wav"})
	if err := c.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	select {
	case enc := <-got:
		if enc != "wav" {
			t.Errorf("expected wav encoding, got %q", enc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for start_stream")
	}
}

func TestClientDoneOnServerClose(t *testing.T) {
	srv := newFeed(t, func(conn *websocket.Conn) {})

	c := NewClient(Config{ServerAddr: wsAddr(srv)})
	if err := c.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected client to stop when the server hangs up")
	}

	if c.IsConnected() {
		t.Error("expected client to be disconnected")
	}
}

func TestClientConnectFails(t *testing.T) {
	c := NewClient(Config{ServerAddr: "127.0.0.1:1"})
	if err := c.Connect(); err == nil {
		c.Close()
		t.Fatal("expected dial error")
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestClientLogsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
		finished bool
	}{
		{"finished", `{"type":"finished","payload":{"frames":"many"}}`, "Failed to parse finished", true},
		{"error", `{"type":"error","payload":{"message":42}}`, "Failed to parse error message", false},
		{"finished without payload", `{"type":"finished"}`, "Stream finished after 0 frames", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLog(t)
			c := NewClient(Config{ServerAddr: "localhost:8927"})
			defer c.Close()

			c.handleJSONMessage([]byte(tt.message))

			if !strings.Contains(logs.String(), tt.expected) {
				t.Errorf("expected log %q, got %q", tt.expected, logs.String())
			}

			select {
			case fin := <-c.Finished:
				if !tt.finished {
					t.Errorf("unexpected finished signal %+v", fin)
				}
			default:
				if tt.finished {
					t.Error("expected finished signal despite the bad payload")
				}
			}
		})
	}
}
