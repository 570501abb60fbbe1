package forecast

// Model geometry. The tree model consumes one 17-feature vector; the
// sequence model consumes the trailing Lookback hours across the six
// telemetry channels. A window must cover Lookback plus the deepest lag
// before a run can start.
const (
	Lookback    = 72
	MaxLagHours = 24
	MinWindow   = Lookback + MaxLagHours

	DefaultHorizon = 24
)

// Channel names as stored and as the scaler addresses them.
const (
	ChPhase2Current   = "Phase2_current"
	ChPhase2Voltage   = "Phase2_voltage"
	ChPhase3Frequency = "Phase3_frequency"
	ChPhase3PF        = "Phase3_pf"
	ChPhase3Power     = "Phase3_power"
	ChPhase3Voltage   = "Phase3_voltage"
)

// TreeFeatures is the exact input order of the gradient-boosted tree
// model. Reordering breaks the model silently; treat as frozen.
var TreeFeatures = []string{
	ChPhase2Current,
	ChPhase2Voltage,
	ChPhase3Frequency,
	ChPhase3PF,
	ChPhase3Voltage,
	"hour",
	"dayofweek",
	"month",
	"quarter",
	"year",
	"dayofyear",
	"lag_1h",
	"lag_3h",
	"lag_24h",
	"roll_avg_3h",
	"roll_avg_6h",
	"roll_avg_24h",
}

// SequenceChannels is the channel order of each sequence model timestep.
// Also frozen.
var SequenceChannels = []string{
	ChPhase2Current,
	ChPhase2Voltage,
	ChPhase3Frequency,
	ChPhase3PF,
	ChPhase3Power,
	ChPhase3Voltage,
}
