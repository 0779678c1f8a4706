package state

import "fmt"

// Subsystem identifies one of the PiAware components reported in status.json.
type Subsystem uint8

const (
	// Radio is the SDR receiver, reported under the "radio" key.
	Radio Subsystem = iota

	// PiAware is the piaware service itself, under the "piaware" key.
	PiAware

	// FlightAware is the connection to FlightAware, under the "adept" key.
	FlightAware

	// MLAT is multilateration, under the "mlat" key.
	MLAT

	// GPS is the optional GPS receiver, under the "gps" key.
	GPS
)

// Subsystems lists every Subsystem in export order.
var Subsystems = []Subsystem{Radio, PiAware, FlightAware, MLAT, GPS}

type subsystemInfo struct {
	key    string
	metric string
	help   string
}

var subsystemTable = [...]subsystemInfo{
	Radio:       {key: "radio", metric: "piaware_radio_state", help: "Radio Status"},
	PiAware:     {key: "piaware", metric: "piaware_service_state", help: "PiAware Service Status"},
	FlightAware: {key: "adept", metric: "piaware_connect_to_flightaware_state", help: "FlightAware Connection Status"},
	MLAT:        {key: "mlat", metric: "piaware_mlat_state", help: "MLAT Status"},
	GPS:         {key: "gps", metric: "piaware_gps_state", help: "GPS Status"},
}

func (s Subsystem) info() subsystemInfo {
	if int(s) >= len(subsystemTable) {
		return subsystemInfo{}
	}
	return subsystemTable[s]
}

// Key returns the top-level status.json key for the subsystem.
func (s Subsystem) Key() string { return s.info().key }

// MetricName returns the exported metric name.
func (s Subsystem) MetricName() string { return s.info().metric }

// Help returns the metric help text.
func (s Subsystem) Help() string { return s.info().help }

// String returns the status.json key, or a placeholder for unknown values.
func (s Subsystem) String() string {
	if k := s.Key(); k != "" {
		return k
	}
	return fmt.Sprintf("Subsystem(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Subsystem) MarshalText() ([]byte, error) {
	if s.Key() == "" {
		return nil, fmt.Errorf("invalid subsystem %d", uint8(s))
	}
	return []byte(s.Key()), nil
}

// ParseSubsystem looks up a Subsystem by its status.json key.
func ParseSubsystem(key string) (Subsystem, error) {
	for _, s := range Subsystems {
		if s.Key() == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown subsystem %q", key)
}
