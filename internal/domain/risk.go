package domain

// Method identifies one of the supported risk scoring methods. Dispatch over
// methods is done through this enum rather than string lookups so the set of
// calculators is exhaustively checkable.
type Method string

const (
	MethodFramingham Method = "framingham"
	MethodSCORE      Method = "score"
	MethodACCAHA     Method = "acc_aha"

	// MethodAll selects every applicable calculator.
	MethodAll Method = "all"
)

// Methods lists the concrete scoring methods in response order.
var Methods = []Method{MethodFramingham, MethodSCORE, MethodACCAHA}

// IsValid validates a method selector, including the "all" pseudo-method.
func (m Method) IsValid() bool {
	switch m {
	case MethodFramingham, MethodSCORE, MethodACCAHA, MethodAll:
		return true
	default:
		return false
	}
}

// String returns the string representation of the method.
func (m Method) String() string {
	return string(m)
}

// DisplayName returns the clinical name of the method for warnings and
// reports.
func (m Method) DisplayName() string {
	switch m {
	case MethodFramingham:
		return "Framingham 2008"
	case MethodSCORE:
		return "SCORE2 2021"
	case MethodACCAHA:
		return "ACC/AHA 2013 Pooled Cohort"
	default:
		return string(m)
	}
}

// RiskCategory is the banded classification derived from a percent risk.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskModerate RiskCategory = "moderate"
	RiskHigh     RiskCategory = "high"
	RiskVeryHigh RiskCategory = "very_high"
)

// IsValid validates the risk category.
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskLow, RiskModerate, RiskHigh, RiskVeryHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c RiskCategory) String() string {
	return string(c)
}

// Shared category thresholds (10-year event probability, percent). The same
// bands apply to every method and to the aggregated overall estimate.
const (
	ThresholdModerate = 5.0
	ThresholdHigh     = 10.0
	ThresholdVeryHigh = 20.0
)

// Categorize maps a percent risk to its category. The mapping is total and
// monotonic: every percent in [0,100] maps to exactly one band.
func Categorize(percent float64) RiskCategory {
	switch {
	case percent < ThresholdModerate:
		return RiskLow
	case percent < ThresholdHigh:
		return RiskModerate
	case percent < ThresholdVeryHigh:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// ClampPercent restricts a computed probability to the valid [0,100] percent
// range. The survival transforms are bounded already; the clamp guards the
// published invariant at the type boundary.
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// RiskResult is the outcome of a single scoring method.
//
// Invariant: Percent is within [0,100] and Category == Categorize(Percent).
type RiskResult struct {
	Method   Method       `json:"method"`
	Percent  float64      `json:"percent"`
	Category RiskCategory `json:"category"`
}

// NewRiskResult builds a RiskResult from a raw percentage, enforcing the
// clamp and category invariants.
func NewRiskResult(method Method, percent float64) RiskResult {
	p := ClampPercent(percent)
	return RiskResult{
		Method:   method,
		Percent:  p,
		Category: Categorize(p),
	}
}

// OverallRisk is the aggregated estimate across the available methods.
type OverallRisk struct {
	Percent  float64      `json:"percent"`
	Category RiskCategory `json:"category"`
}

// AggregatedResult combines the per-method results with the conservative
// overall estimate and the ordered advisory warnings. Methods skipped by the
// applicability gate are absent; when no method applies, all three method
// fields and Overall are nil and Warnings explains why.
type AggregatedResult struct {
	Framingham *RiskResult  `json:"framingham,omitempty"`
	SCORE      *RiskResult  `json:"score,omitempty"`
	ACCAHA     *RiskResult  `json:"acc_aha,omitempty"`
	Overall    *OverallRisk `json:"overall,omitempty"`
	Warnings   []string     `json:"warnings"`
}

// Result returns the stored result for a method, or nil when the method was
// skipped.
func (a *AggregatedResult) Result(m Method) *RiskResult {
	switch m {
	case MethodFramingham:
		return a.Framingham
	case MethodSCORE:
		return a.SCORE
	case MethodACCAHA:
		return a.ACCAHA
	default:
		return nil
	}
}

// SetResult stores a method result in its response slot.
func (a *AggregatedResult) SetResult(r RiskResult) {
	switch r.Method {
	case MethodFramingham:
		a.Framingham = &r
	case MethodSCORE:
		a.SCORE = &r
	case MethodACCAHA:
		a.ACCAHA = &r
	}
}

// Available returns the results that were produced, in response order.
func (a *AggregatedResult) Available() []RiskResult {
	available := make([]RiskResult, 0, len(Methods))
	for _, m := range Methods {
		if r := a.Result(m); r != nil {
			available = append(available, *r)
		}
	}
	return available
}
