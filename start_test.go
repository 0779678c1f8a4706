package piaware

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	// use a high port to avoid conflicts
	exp, _ := newTestExporter(t, fake.URL,
		WithPort(19001),
		WithPollingInterval(100*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		close(started)
		done <- exp.Start(ctx)
	}()

	<-started
	time.Sleep(50 * time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
		// expected: still blocking
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// neither polls nor serves when the context is already cancelled.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	exp, _ := newTestExporter(t, fake.URL,
		WithPort(19002),
		WithPollingInterval(100*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- exp.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}

	for sub, s := range exp.States() {
		if s.String() != "N/A" {
			t.Errorf("%s = %v, want N/A without polling", sub, s)
		}
	}
}

// TestStart_ServesMetrics verifies the metrics endpoint reflects polled states.
func TestStart_ServesMetrics(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	exp, _ := newTestExporter(t, fake.URL,
		WithPort(19003),
		WithPollingInterval(50*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- exp.Start(ctx)
	}()

	want := `piaware_radio_state{piaware_radio_state="green"} 1`
	deadline := time.Now().Add(5 * time.Second)
	var body string
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://localhost:19003/metrics")
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			body = string(data)
			if strings.Contains(body, want) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-done

	if !strings.Contains(body, want) {
		t.Errorf("metrics never contained %q, last body:\n%s", want, body)
	}
}

// TestStart_PortInUse verifies Start fails fast when the metrics port is taken.
func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":19004")
	if err != nil {
		t.Skipf("could not occupy test port: %v", err)
	}
	defer ln.Close()

	fake := newFakePiAware(t, http.StatusOK, allGreenBody)
	exp, _ := newTestExporter(t, fake.URL, WithPort(19004))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := exp.Start(ctx); err == nil {
		t.Error("Start() expected error for port in use, got nil")
	}
}

// TestStart_MultipleSequentialRuns verifies that a new Exporter can bind the
// same port after the previous one shuts down.
func TestStart_MultipleSequentialRuns(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	for i := 0; i < 3; i++ {
		exp, _ := newTestExporter(t, fake.URL,
			WithPort(19005),
			WithPollingInterval(50*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- exp.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("iteration %d: Start() error = %v", i, err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("iteration %d: Start() did not return", i)
		}
	}
}
