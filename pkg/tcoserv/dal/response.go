package dal

// LineItem defines a single labelled amount of a cost breakdown
type LineItem struct {
	Label  string  `json:"label" yaml:"label"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// VehicleBreakdown defines the cost lines of one vehicle and their total
type VehicleBreakdown struct {
	Items []LineItem `json:"items" yaml:"items"`
	Total float64    `json:"total" yaml:"total"`
}

// Breakdown defines the cost lines of both vehicles
type Breakdown struct {
	EV  VehicleBreakdown `json:"ev" yaml:"ev"`
	Gas VehicleBreakdown `json:"gas" yaml:"gas"`
}

// Verdict classifies the sign of a TCO difference
type Verdict string

const (
	VerdictEVSaves     Verdict = "ev_saves"
	VerdictEVCostsMore Verdict = "ev_costs_more"
	VerdictBreakEven   Verdict = "break_even"
)

// VerdictOf classifies diff (EV minus gas). Only an exact zero is a break-even.
func VerdictOf(diff float64) Verdict {
	switch {
	case diff < 0:
		return VerdictEVSaves
	case diff > 0:
		return VerdictEVCostsMore
	default:
		return VerdictBreakEven
	}
}

// TCOResponse defines an HTTP response struct
type TCOResponse struct {
	Input     InputParameters `json:"input" yaml:"input"`
	Result    TCOResult       `json:"result" yaml:"result"`
	Breakdown Breakdown       `json:"breakdown" yaml:"breakdown"`
	Verdict   Verdict         `json:"verdict" yaml:"verdict"`
	Cached    bool            `json:"cached,omitempty" yaml:"cached,omitempty"`
}
