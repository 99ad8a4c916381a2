package telemetry

import "encoding/json"

// Record is one health snapshot. Field names are the wire format the
// collector expects.
type Record struct {
	DeviceID       string `json:"device_id"`
	Timestamp      int64  `json:"timestamp"` // epoch seconds, 0 before clock sync
	SignalStrength int    `json:"wifi_rssi"` // dBm
	FreeMemory     uint64 `json:"free_heap"` // bytes
	Uptime         uint64 `json:"uptime"`    // ms since agent start
}

// Marshal encodes the record as compact JSON.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
