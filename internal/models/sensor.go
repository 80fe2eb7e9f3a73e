package models

import "time"

// SensorSnapshot is the latest bedroom telemetry reported by the appliance.
type SensorSnapshot struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
}

// SensorReading pairs a snapshot with the moment the client received it.
type SensorReading struct {
	SensorSnapshot
	ReceivedAt time.Time `json:"received_at"`
}
