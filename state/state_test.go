package state

import (
	"encoding/json"
	"testing"
)

func TestState_ZeroValueIsUnavailable(t *testing.T) {
	var s State
	if s != Unavailable {
		t.Errorf("zero State = %v, want %v", s, Unavailable)
	}
	if s.String() != "N/A" {
		t.Errorf("zero State.String() = %q, want %q", s.String(), "N/A")
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status string
		want   State
	}{
		{"green", Green},
		{"amber", Amber},
		{"red", Red},
		{"", Red},
		{"GREEN", Red},
		{"yellow", Red},
		{"N/A", Red},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := FromStatus(tt.status); got != tt.want {
				t.Errorf("FromStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestParse_RoundTripsLabels(t *testing.T) {
	for _, s := range States {
		got, err := Parse(s.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s.String(), err)
		}
		if got != s {
			t.Errorf("Parse(%q) = %v, want %v", s.String(), got, s)
		}
	}

	if _, err := Parse("purple"); err == nil {
		t.Error("Parse(\"purple\") expected error, got nil")
	}
}

func TestState_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]State{"gps": Unavailable, "mlat": Amber})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"gps":"N/A","mlat":"amber"}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}

	if _, err := State(42).MarshalText(); err == nil {
		t.Error("MarshalText() on invalid state expected error, got nil")
	}
}

func TestSubsystems_Table(t *testing.T) {
	tests := []struct {
		sub    Subsystem
		key    string
		metric string
	}{
		{Radio, "radio", "piaware_radio_state"},
		{PiAware, "piaware", "piaware_service_state"},
		{FlightAware, "adept", "piaware_connect_to_flightaware_state"},
		{MLAT, "mlat", "piaware_mlat_state"},
		{GPS, "gps", "piaware_gps_state"},
	}

	if len(Subsystems) != len(tests) {
		t.Fatalf("len(Subsystems) = %d, want %d", len(Subsystems), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if tt.sub.Key() != tt.key {
				t.Errorf("Key() = %q, want %q", tt.sub.Key(), tt.key)
			}
			if tt.sub.MetricName() != tt.metric {
				t.Errorf("MetricName() = %q, want %q", tt.sub.MetricName(), tt.metric)
			}
			if tt.sub.Help() == "" {
				t.Error("Help() is empty")
			}

			parsed, err := ParseSubsystem(tt.key)
			if err != nil {
				t.Fatalf("ParseSubsystem(%q) error = %v", tt.key, err)
			}
			if parsed != tt.sub {
				t.Errorf("ParseSubsystem(%q) = %v, want %v", tt.key, parsed, tt.sub)
			}
		})
	}
}

func TestParseSubsystem_Unknown(t *testing.T) {
	if _, err := ParseSubsystem("dump1090"); err == nil {
		t.Error("ParseSubsystem(\"dump1090\") expected error, got nil")
	}
	if got := Subsystem(99).String(); got != "Subsystem(99)" {
		t.Errorf("String() = %q, want %q", got, "Subsystem(99)")
	}
}
