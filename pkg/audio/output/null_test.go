// ABOUTME: Tests for the headless output
// ABOUTME: Tests clock advancement, suspension and close
package output

import (
	"testing"
	"time"
)

func TestNullImplementsDevice(t *testing.T) {
	var _ Device = (*Null)(nil)
	var _ Device = (*Oto)(nil)
}

func TestNullStartsSuspended(t *testing.T) {
	n := NewNull(1000)
	defer n.Close()

	time.Sleep(50 * time.Millisecond)

	if n.Now() != 0 {
		t.Errorf("expected clock to stay at 0 while suspended, got %f", n.Now())
	}
}

func TestNullAdvancesWhileRunning(t *testing.T) {
	n := NewNull(1000)
	defer n.Close()

	if err := n.Resume(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := n.Suspend(); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}

	stopped := n.Now()
	if stopped < 0.05 {
		t.Errorf("expected clock to advance ~0.1s, got %f", stopped)
	}

	time.Sleep(50 * time.Millisecond)

	if n.Now() != stopped {
		t.Errorf("expected clock frozen at %f after suspend, got %f", stopped, n.Now())
	}
}

func TestNullClose(t *testing.T) {
	n := NewNull(1000)

	if err := n.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Second close is a no-op
	if err := n.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}

	if err := n.Resume(); err == nil {
		t.Error("expected resume after close to fail")
	}

	if err := n.Schedule(constBuffer(10, 1000, 1), 0); err == nil {
		t.Error("expected schedule after close to fail")
	}
}
