package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/piaware-exporter/state"
)

func TestNewMemoryStore_AllUnavailable(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	all := store.GetAll()
	if len(all) != len(state.Subsystems) {
		t.Fatalf("GetAll() = %v items, want %v", len(all), len(state.Subsystems))
	}

	for i, entry := range all {
		if entry.Subsystem != state.Subsystems[i] {
			t.Errorf("GetAll()[%d].Subsystem = %v, want %v", i, entry.Subsystem, state.Subsystems[i])
		}
		if entry.State != state.Unavailable {
			t.Errorf("GetAll()[%d].State = %v, want %v", i, entry.State, state.Unavailable)
		}
		if entry.Metric != entry.Subsystem.MetricName() {
			t.Errorf("GetAll()[%d].Metric = %q, want %q", i, entry.Metric, entry.Subsystem.MetricName())
		}
		if !entry.UpdatedAt.IsZero() {
			t.Errorf("GetAll()[%d].UpdatedAt = %v, want zero", i, entry.UpdatedAt)
		}
	}
}

func TestMemoryStore_Set(t *testing.T) {
	store := NewMemoryStore()

	change, changed := store.Set(state.MLAT, state.Green)
	if !changed {
		t.Fatal("Set() changed = false, want true")
	}
	if change.From != state.Unavailable || change.To != state.Green {
		t.Errorf("Set() change = %v -> %v, want N/A -> green", change.From, change.To)
	}

	entry, ok := store.Get(state.MLAT)
	if !ok {
		t.Fatal("Get() ok = false")
	}
	if entry.State != state.Green {
		t.Errorf("Get().State = %v, want %v", entry.State, state.Green)
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("Get().UpdatedAt should be set after a write")
	}

	// other subsystems are untouched
	for _, sub := range []state.Subsystem{state.Radio, state.PiAware, state.FlightAware, state.GPS} {
		entry, _ := store.Get(sub)
		if entry.State != state.Unavailable {
			t.Errorf("Get(%v).State = %v, want %v", sub, entry.State, state.Unavailable)
		}
	}
}

func TestMemoryStore_SetSameValueIsNotAChange(t *testing.T) {
	store := NewMemoryStore()

	store.Set(state.GPS, state.Red)
	if _, changed := store.Set(state.GPS, state.Red); changed {
		t.Error("Set() with unchanged value reported a change")
	}
}

func TestMemoryStore_SetUnknownSubsystem(t *testing.T) {
	store := NewMemoryStore()

	if _, changed := store.Set(state.Subsystem(42), state.Green); changed {
		t.Error("Set() on unknown subsystem reported a change")
	}
	if _, ok := store.Get(state.Subsystem(42)); ok {
		t.Error("Get() on unknown subsystem ok = true")
	}
	if len(store.GetAll()) != len(state.Subsystems) {
		t.Error("Set() on unknown subsystem added an entry")
	}
}

func TestMemoryStore_SetAll(t *testing.T) {
	store := NewMemoryStore()
	store.Set(state.Radio, state.Green)
	store.Set(state.GPS, state.Amber)

	changes := store.SetAll(state.Unavailable)
	if len(changes) != 2 {
		t.Fatalf("SetAll() changes = %d, want 2", len(changes))
	}

	for _, entry := range store.GetAll() {
		if entry.State != state.Unavailable {
			t.Errorf("%v state = %v, want %v", entry.Subsystem, entry.State, state.Unavailable)
		}
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go func() {
		store.Set(state.Radio, state.Amber)
	}()

	select {
	case entry := <-ch:
		if entry.Subsystem != state.Radio {
			t.Errorf("received Subsystem = %v, want %v", entry.Subsystem, state.Radio)
		}
		if entry.State != state.Amber {
			t.Errorf("received State = %v, want %v", entry.State, state.Amber)
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_SubscribeOnlyReceivesChanges(t *testing.T) {
	store := NewMemoryStore()
	ch := store.Subscribe()

	// initial value is already N/A, so no notification
	store.Set(state.Radio, state.Unavailable)

	select {
	case entry := <-ch:
		t.Errorf("unexpected notification for unchanged state: %+v", entry)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	go func() {
		store.Set(state.PiAware, state.Green)
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}

	// second call is a no-op
	store.Unsubscribe(ch)
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	done := make(chan bool)

	go func() {
		states := []state.State{state.Green, state.Red}
		for i := 0; i < 300; i++ {
			store.Set(state.GPS, states[i%2])
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Set() blocked on slow subscriber")
	}
}

// TestMemoryStore_SetAllIsAtomic verifies readers never see a snapshot where
// SetAll has been applied to only some subsystems.
func TestMemoryStore_SetAllIsAtomic(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			store.SetAll(state.Green)
			store.SetAll(state.Red)
		}
	}()

	for i := 0; i < 1000; i++ {
		all := store.GetAll()
		first := all[0].State
		for _, entry := range all[1:] {
			if entry.State != first {
				close(stop)
				wg.Wait()
				t.Fatalf("torn snapshot: %v = %v, %v = %v", all[0].Subsystem, first, entry.Subsystem, entry.State)
			}
		}
	}

	close(stop)
	wg.Wait()
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sub := state.Subsystems[id%len(state.Subsystems)]
			for j := 0; j < numUpdates; j++ {
				store.Set(sub, state.States[j%len(state.States)])
			}
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()
}
