package models

import "time"

// Observation is one hourly row of meter telemetry. Phase3Power is the
// forecast target; the remaining channels are exogenous inputs.
type Observation struct {
	Timestamp       time.Time
	Phase2Current   float64
	Phase2Voltage   float64
	Phase3Frequency float64
	Phase3PF        float64
	Phase3Power     float64
	Phase3Voltage   float64
}

// Reading is a raw meter sample as delivered by the gateway, before
// alignment to hourly observations.
type Reading struct {
	Meter           string    `json:"meter"`
	Timestamp       time.Time `json:"timestamp"`
	Phase2Current   float64   `json:"phase2_current"`
	Phase2Voltage   float64   `json:"phase2_voltage"`
	Phase3Frequency float64   `json:"phase3_frequency"`
	Phase3PF        float64   `json:"phase3_pf"`
	Phase3Power     float64   `json:"phase3_power"`
	Phase3Voltage   float64   `json:"phase3_voltage"`
}

// Observation converts a reading to an hourly observation row.
func (r *Reading) Observation() *Observation {
	return &Observation{
		Timestamp:       r.Timestamp,
		Phase2Current:   r.Phase2Current,
		Phase2Voltage:   r.Phase2Voltage,
		Phase3Frequency: r.Phase3Frequency,
		Phase3PF:        r.Phase3PF,
		Phase3Power:     r.Phase3Power,
		Phase3Voltage:   r.Phase3Voltage,
	}
}
