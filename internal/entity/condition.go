package entity

// conditionUnknownStr is the string representation for unknown conditions.
const conditionUnknownStr = "unknown"

// Condition identifies one experimental replay configuration of a clickstream.
type Condition string

const (
	// ConditionUnknown represents an unrecognized condition.
	ConditionUnknown Condition = ""
	// ConditionBaseline is the first unmodified replay.
	ConditionBaseline Condition = "baseline-1"
	// ConditionControl is the second unmodified replay. Differences between
	// the two baselines measure rendering noise rather than treatment effect.
	ConditionControl Condition = "baseline-2"
	// ConditionAllCookies replays with every cookie category enabled.
	ConditionAllCookies Condition = "all-cookies"
	// ConditionNoCookies replays with functional cookies disabled.
	ConditionNoCookies Condition = "no-cookies"
)

// Conditions lists every replay condition in execution order.
var Conditions = []Condition{
	ConditionBaseline,
	ConditionControl,
	ConditionAllCookies,
	ConditionNoCookies,
}

// String returns the string representation of the Condition.
func (c Condition) String() string {
	if c == ConditionUnknown {
		return conditionUnknownStr
	}
	return string(c)
}

// IsValid returns true if this is a known condition.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionBaseline, ConditionControl, ConditionAllCookies, ConditionNoCookies:
		return true
	default:
		return false
	}
}

// IsBaseline reports whether the condition is one of the unmodified replays.
func (c Condition) IsBaseline() bool {
	return c == ConditionBaseline || c == ConditionControl
}

// ParseCondition converts a string to a Condition.
func ParseCondition(s string) Condition {
	switch s {
	case "baseline-1", "baseline":
		return ConditionBaseline
	case "baseline-2", "control":
		return ConditionControl
	case "all-cookies", "allcookies":
		return ConditionAllCookies
	case "no-cookies", "nocookies":
		return ConditionNoCookies
	default:
		return ConditionUnknown
	}
}
