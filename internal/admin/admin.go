// Package admin exposes the read-only HTTP surface of a running box:
// health and readiness probes, Prometheus metrics, and JSON views of
// the object tree, the profile table, and EEPROM usage.
package admin

// View is the box state the HTTP handlers read. Implementations take
// their own locks and return independent snapshots.
type View interface {
	Health() Health
	Objects() []ObjectInfo
	Profiles() []ProfileInfo
	Storage() Storage
}

// Health is the live summary served at /health.
type Health struct {
	DeviceID      string `json:"device_id"`
	UptimeMS      uint32 `json:"uptime_ms"`
	ActiveProfile int8   `json:"active_profile"`
	Objects       int    `json:"objects"`
}

// ObjectInfo describes one resident object.
type ObjectInfo struct {
	Chain string `json:"chain"`
	Type  uint8  `json:"type"`
	Flags string `json:"flags"`
	Value string `json:"value,omitempty"`
}

// ProfileInfo describes one profile slot.
type ProfileInfo struct {
	ID       int8   `json:"id"`
	InUse    bool   `json:"in_use"`
	Active   bool   `json:"active"`
	Used     uint16 `json:"used_bytes"`
	Capacity uint16 `json:"capacity_bytes"`
}

// Storage summarizes the EEPROM image backing the box.
type Storage struct {
	Size     uint16 `json:"size_bytes"`
	Used     uint32 `json:"used_bytes"`
	Profiles int    `json:"profiles_in_use"`
	Dirty    bool   `json:"dirty"`
}
