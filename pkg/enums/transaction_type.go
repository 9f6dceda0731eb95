package enums

import "fmt"

// TransactionType classifies how revenue was generated.
type TransactionType string

const (
	TransactionTypeKit     TransactionType = "kit"
	TransactionTypeService TransactionType = "service"
	TransactionTypeOther   TransactionType = "other"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeKit,
	TransactionTypeService,
	TransactionTypeOther,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// Verbose returns the operator-facing label for the type.
func (t TransactionType) Verbose() string {
	switch t {
	case TransactionTypeKit:
		return "Kit Sale"
	case TransactionTypeService:
		return "Service Contract"
	case TransactionTypeOther:
		return "Other"
	default:
		return string(t)
	}
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// TransactionTypes returns every recognized type.
func TransactionTypes() []TransactionType {
	out := make([]TransactionType, len(validTransactionTypes))
	copy(out, validTransactionTypes)
	return out
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
