// Package tracing normalises raw per-device sensor traces (WiFi signal
// scans or GPS fixes) into the dense (timestamp x dimension) matrices
// the similarity stage consumes, following mp::tracing_data in the
// original reference.
package tracing

// SignalMeasurement is a single signal-strength sample: one access
// point observed by one device at one timestamp.
type SignalMeasurement struct {
	Timestamp     int64
	AccessPointID int
	SignalStrength int
}

// SignalDevice carries the sorted-by-timestamp measurement stream for
// one device.
type SignalDevice struct {
	Name string
	Data []SignalMeasurement // sorted ascending by Timestamp
}

// SignalData is the raw, sparse input collected from WiFi scans: a
// shared access-point name table plus one measurement stream per
// device.
type SignalData struct {
	AccessPoints []string // bssid names, indexed by AccessPointID
	Devices      []SignalDevice
}

// LocationMeasurement is a single GPS fix.
type LocationMeasurement struct {
	Timestamp        int64
	Lat, Lng, Alt float64
}

// LocationDevice carries the sorted-by-timestamp fix stream for one device.
type LocationDevice struct {
	Name string
	Data []LocationMeasurement // sorted ascending by Timestamp
}

// LocationData is the raw, sparse input collected from GPS fixes.
type LocationData struct {
	Devices []LocationDevice
}
