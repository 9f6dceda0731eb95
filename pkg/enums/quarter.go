package enums

import "fmt"

// Quarter identifies a fiscal quarter within a calendar year.
type Quarter string

const (
	QuarterQ1 Quarter = "Q1"
	QuarterQ2 Quarter = "Q2"
	QuarterQ3 Quarter = "Q3"
	QuarterQ4 Quarter = "Q4"
)

var validQuarters = []Quarter{QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4}

// String implements fmt.Stringer.
func (q Quarter) String() string {
	return string(q)
}

// IsValid reports whether the value is a known Quarter.
func (q Quarter) IsValid() bool {
	for _, candidate := range validQuarters {
		if candidate == q {
			return true
		}
	}
	return false
}

// Quarters returns Q1 through Q4 in calendar order.
func Quarters() []Quarter {
	out := make([]Quarter, len(validQuarters))
	copy(out, validQuarters)
	return out
}

// QuarterOfMonth returns the quarter containing the given month (1-12).
func QuarterOfMonth(month int) (Quarter, error) {
	switch {
	case month >= 1 && month <= 3:
		return QuarterQ1, nil
	case month >= 4 && month <= 6:
		return QuarterQ2, nil
	case month >= 7 && month <= 9:
		return QuarterQ3, nil
	case month >= 10 && month <= 12:
		return QuarterQ4, nil
	default:
		return "", fmt.Errorf("invalid month %d", month)
	}
}

// ParseQuarter converts raw input into a Quarter.
func ParseQuarter(value string) (Quarter, error) {
	for _, candidate := range validQuarters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quarter %q", value)
}
