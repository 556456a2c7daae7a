// ABOUTME: Tests for the playback session
// ABOUTME: End-to-end ingest scenarios, gating, close semantics and error handling
package playback

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
	"sync"
	"testing"
)

func newRunningSession(t *testing.T, dev *fakeDevice) *Session {
	t.Helper()

	s, err := NewSession(dev, Config{SampleRate: 44100})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	s.Play()
	if s.State() != Running {
		t.Fatalf("expected running session, got %s", s.State())
	}
	return s
}

func pcmChunk(samples int, value int16) []byte {
	data := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(value))
	}
	return data
}

func wavChunk(sampleRate int, samples []int16) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36)+dataLen)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

func TestNewSessionDefaults(t *testing.T) {
	s, err := NewSession(&fakeDevice{}, Config{})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	cfg := s.Config()
	if cfg.SampleRate != 44100 {
		t.Errorf("expected default rate 44100, got %d", cfg.SampleRate)
	}
	if cfg.SafetyOffset != DefaultSafetyOffset {
		t.Errorf("expected default offset, got %v", cfg.SafetyOffset)
	}
	if cfg.MaxLead != DefaultMaxLead {
		t.Errorf("expected default max lead, got %v", cfg.MaxLead)
	}
	if s.State() != Suspended {
		t.Errorf("expected new session suspended, got %s", s.State())
	}
	if s.ID() == "" {
		t.Error("expected session id")
	}
}

func TestIndependentSessions(t *testing.T) {
	devA, devB := &fakeDevice{}, &fakeDevice{}
	a := newRunningSession(t, devA)
	b := newRunningSession(t, devB)

	a.IngestChunk(pcmChunk(4410, 0))
	a.IngestChunk(pcmChunk(4410, 0))
	b.IngestChunk(pcmChunk(4410, 0))

	if got := devB.calls()[0].at; math.Abs(got-0.05) > epsilon {
		t.Errorf("expected session B to start its own clock at 0.05, got %f", got)
	}
}

// Scenario A: two 100ms raw buffers back to back at t0 = 0
func TestIngestScenarioBackToBack(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	chunk := pcmChunk(4410, 1000)
	if err := s.IngestChunk(chunk); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.IngestChunk(chunk); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	calls := dev.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 scheduled buffers, got %d", len(calls))
	}

	if math.Abs(calls[0].at-0.05) > epsilon {
		t.Errorf("expected first buffer at 0.05, got %f", calls[0].at)
	}
	if calls[1].at < 0.15-epsilon {
		t.Errorf("expected second buffer at >= 0.15, got %f", calls[1].at)
	}
	if calls[1].at < calls[0].at+calls[0].buf.Duration()-epsilon {
		t.Error("buffers overlap")
	}
}

// Scenario B: 10 bytes without the container magic
func TestIngestScenarioTenBytes(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.IngestChunk([]byte("0123456789"))

	calls := dev.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scheduled buffer, got %d", len(calls))
	}
	if len(calls[0].buf.Samples) != 5 {
		t.Errorf("expected 5 samples, got %d", len(calls[0].buf.Samples))
	}
	if calls[0].buf.SampleRate != 44100 {
		t.Errorf("expected session rate, got %d", calls[0].buf.SampleRate)
	}
}

// Scenario C: 11 bytes, trailing byte ignored
func TestIngestScenarioElevenBytes(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.IngestChunk(OwnedBytes("0123456789A"))

	calls := dev.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scheduled buffer, got %d", len(calls))
	}
	if len(calls[0].buf.Samples) != 5 {
		t.Errorf("expected 5 samples, got %d", len(calls[0].buf.Samples))
	}
}

func TestIngestContainerUsesOwnRate(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.IngestChunk(wavChunk(22050, make([]int16, 2205)))
	s.IngestChunk(pcmChunk(4410, 0))

	calls := dev.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 scheduled buffers, got %d", len(calls))
	}
	if calls[0].buf.SampleRate != 22050 {
		t.Errorf("expected container rate 22050, got %d", calls[0].buf.SampleRate)
	}
	if math.Abs(calls[1].at-0.15) > epsilon {
		t.Errorf("expected raw buffer chained at 0.15, got %f", calls[1].at)
	}
}

func TestIngestBase64AndView(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	raw := pcmChunk(10, 500)
	if err := s.IngestChunk(base64.StdEncoding.EncodeToString(raw)); err != nil {
		t.Fatalf("base64 ingest failed: %v", err)
	}

	backing := append(make([]byte, 6), raw...)
	if err := s.IngestChunk(View{Buf: backing, Offset: 6, Length: len(raw)}); err != nil {
		t.Fatalf("view ingest failed: %v", err)
	}

	calls := dev.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 scheduled buffers, got %d", len(calls))
	}
	for i, c := range calls {
		if len(c.buf.Samples) != 10 {
			t.Errorf("buffer %d: expected 10 samples, got %d", i, len(c.buf.Samples))
		}
	}
}

func TestIngestInvalidInput(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	err := s.IngestChunk(Base64Text("%%%"))
	if !Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	err = s.IngestChunk(12345)
	if !Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	// Session keeps working
	if err := s.IngestChunk(pcmChunk(4, 0)); err != nil {
		t.Errorf("expected ingest to recover, got %v", err)
	}
	if len(dev.calls()) != 1 {
		t.Errorf("expected 1 scheduled buffer, got %d", len(dev.calls()))
	}
}

func TestIngestUnrecognizedDropped(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	for _, chunk := range [][]byte{{}, {0x01}} {
		if err := s.IngestChunk(chunk); err != nil {
			t.Errorf("expected no error for short chunk, got %v", err)
		}
	}

	if len(dev.calls()) != 0 {
		t.Errorf("expected nothing scheduled, got %d", len(dev.calls()))
	}
	if s.Stats().Unrecognized != 2 {
		t.Errorf("expected 2 unrecognized, got %d", s.Stats().Unrecognized)
	}
}

func TestIngestDecodeFailureContinues(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	if err := s.IngestChunk([]byte("RIFF\x00\x00\x00\x00WAVEjunk")); err != nil {
		t.Errorf("expected decode failure to be swallowed, got %v", err)
	}
	s.IngestChunk(pcmChunk(100, 0))

	stats := s.Stats()
	if stats.DecodeFailures != 1 {
		t.Errorf("expected 1 decode failure, got %d", stats.DecodeFailures)
	}
	if stats.Scheduled != 1 {
		t.Errorf("expected playback to continue, got %d scheduled", stats.Scheduled)
	}
}

func TestIngestWhileSuspendedIsDiscarded(t *testing.T) {
	dev := &fakeDevice{}
	s, err := NewSession(dev, Config{})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	for i := 0; i < 20; i++ {
		s.IngestChunk(pcmChunk(441, 100))
	}

	if len(dev.calls()) != 0 {
		t.Fatalf("expected zero scheduled buffers while suspended, got %d", len(dev.calls()))
	}
	if s.Stats().Discarded != 20 {
		t.Errorf("expected 20 discarded, got %d", s.Stats().Discarded)
	}

	// Discarded chunks are not replayed on play
	s.Play()
	if len(dev.calls()) != 0 {
		t.Errorf("expected discarded chunks not to be queued, got %d", len(dev.calls()))
	}
}

func TestIngestAfterPause(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.IngestChunk(pcmChunk(441, 0))
	s.Pause()
	s.IngestChunk(pcmChunk(441, 0))

	if len(dev.calls()) != 1 {
		t.Errorf("expected only the running chunk scheduled, got %d", len(dev.calls()))
	}
}

func TestIngestWhenResumeDenied(t *testing.T) {
	dev := &fakeDevice{denyResume: true}
	s, _ := NewSession(dev, Config{})

	s.Play()
	s.IngestChunk(pcmChunk(441, 0))

	if s.State() != Suspended {
		t.Errorf("expected suspended, got %s", s.State())
	}
	if len(dev.calls()) != 0 {
		t.Errorf("expected no scheduling without resume, got %d", len(dev.calls()))
	}
}

func TestCloseIsTerminal(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.Close()
	if s.State() != Closed {
		t.Fatalf("expected closed, got %s", s.State())
	}
	s.Close()
	if s.State() != Closed {
		t.Fatalf("expected closed after second close, got %s", s.State())
	}

	s.IngestChunk(pcmChunk(441, 0))
	s.Play()
	s.IngestChunk(pcmChunk(441, 0))

	if len(dev.calls()) != 0 {
		t.Errorf("expected no buffers after close, got %d", len(dev.calls()))
	}
	if dev.closes != 1 {
		t.Errorf("expected device closed once, got %d", dev.closes)
	}
}

func TestConcurrentIngestNeverOverlaps(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := NewSession(dev, Config{MaxLead: -1})
	s.Play()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.IngestChunk(pcmChunk(100+w*10+i, 0))
			}
		}(w)
	}
	wg.Wait()

	calls := dev.calls()
	if len(calls) != 400 {
		t.Fatalf("expected 400 scheduled buffers, got %d", len(calls))
	}
	for i := 1; i < len(calls); i++ {
		if calls[i].at < calls[i-1].at+calls[i-1].buf.Duration()-epsilon {
			t.Fatalf("buffer %d overlaps its predecessor", i)
		}
	}
}

func TestSessionStats(t *testing.T) {
	dev := &fakeDevice{}
	s := newRunningSession(t, dev)

	s.IngestChunk(pcmChunk(4410, 0))

	stats := s.Stats()
	if stats.State != Running {
		t.Errorf("expected running, got %s", stats.State)
	}
	if stats.Received != 1 || stats.BytesReceived != 8820 {
		t.Errorf("unexpected receive stats: %+v", stats)
	}
	if math.Abs(stats.Lead-0.15) > epsilon {
		t.Errorf("expected lead 0.15, got %f", stats.Lead)
	}
	if math.Abs(stats.Seconds-0.1) > epsilon {
		t.Errorf("expected 0.1s scheduled, got %f", stats.Seconds)
	}
}
