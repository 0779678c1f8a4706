package piaware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/piaware-exporter/state"
)

func TestWithStateCallback_InvokedOnTransition(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, `{"radio": {"status": "green"}, "gps": {"status": "amber"}}`)

	var (
		mu      sync.Mutex
		changes []StateChange
	)
	cb := func(c StateChange) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
	}

	exp, _ := newTestExporter(t, fake.URL, WithStateCallback(cb))

	if err := exp.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(changes) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(changes))
	}
	if changes[0].Subsystem != state.Radio || changes[0].From != state.Unavailable || changes[0].To != state.Green {
		t.Errorf("changes[0] = %+v, want radio N/A -> green", changes[0])
	}
	if changes[1].Subsystem != state.GPS || changes[1].To != state.Amber {
		t.Errorf("changes[1] = %+v, want gps -> amber", changes[1])
	}
	if changes[0].At.IsZero() {
		t.Error("At should not be zero")
	}
}

func TestWithStateCallback_NotInvokedWithoutChange(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	var calls atomic.Int32
	exp, _ := newTestExporter(t, fake.URL, WithStateCallback(func(StateChange) {
		calls.Add(1)
	}))

	_ = exp.Poll(context.Background())
	first := calls.Load()

	_ = exp.Poll(context.Background())
	if calls.Load() != first {
		t.Errorf("callback invoked %d more times for an unchanged document", calls.Load()-first)
	}
}

func TestWithStateCallback_InvokedOnUnavailable(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	var toUnavailable atomic.Int32
	exp, _ := newTestExporter(t, fake.URL, WithStateCallback(func(c StateChange) {
		if c.To == state.Unavailable {
			toUnavailable.Add(1)
		}
	}))

	_ = exp.Poll(context.Background())
	fake.set(http.StatusInternalServerError, ``)
	_ = exp.Poll(context.Background())

	if got := toUnavailable.Load(); got != int32(len(state.Subsystems)) {
		t.Errorf("callback saw %d transitions to N/A, want %d", got, len(state.Subsystems))
	}
}

func TestWithStateCallback_OrderPreserved(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, `{"mlat": {"status": "red"}}`)

	var (
		mu    sync.Mutex
		order []int
	)
	record := func(n int) func(StateChange) {
		return func(StateChange) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, n)
		}
	}

	exp, _ := newTestExporter(t, fake.URL,
		WithStateCallback(record(1)),
		WithStateCallback(record(2)),
		WithStateCallback(record(3)),
	)

	_ = exp.Poll(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("callback order = %v, want [1 2 3]", order)
	}
}

func TestWithStateCallback_SeesNewStateInMetrics(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, `{"adept": {"status": "amber"}}`)

	var seen state.State
	var exp *Exporter
	exp, _ = newTestExporter(t, fake.URL, WithStateCallback(func(c StateChange) {
		seen = exp.States()[c.Subsystem]
	}))

	_ = exp.Poll(context.Background())

	if seen != state.Amber {
		t.Errorf("state visible inside callback = %v, want amber", seen)
	}
}

func TestWithStateCallback_PanicRecovery(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	panicCb := func(StateChange) {
		panic("intentional test panic")
	}

	var normalCalls atomic.Int32
	normalCb := func(StateChange) {
		normalCalls.Add(1)
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	exp, _ := newTestExporter(t, fake.URL,
		WithStateCallback(panicCb),
		WithStateCallback(normalCb), // should still be called after panic
		WithLogger(logger),
	)

	if err := exp.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if got := normalCalls.Load(); got != int32(len(state.Subsystems)) {
		t.Errorf("subsequent callback ran %d times, want %d", got, len(state.Subsystems))
	}

	out := logBuf.String()
	if !strings.Contains(out, "state callback panicked") {
		t.Errorf("panic should have been logged, got: %s", out)
	}
	if !strings.Contains(out, "correlation_id=") {
		t.Errorf("panic log should carry a correlation id, got: %s", out)
	}

	assertStates(t, exp, allStates(state.Green))
}

func TestWithStateCallback_InvokedFromStart(t *testing.T) {
	fake := newFakePiAware(t, http.StatusOK, allGreenBody)

	done := make(chan struct{})
	var once sync.Once
	exp, _ := newTestExporter(t, fake.URL,
		WithPort(19201),
		WithPollingInterval(50*time.Millisecond),
		WithStateCallback(func(StateChange) {
			once.Do(func() { close(done) })
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = exp.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for callback")
	}
}
