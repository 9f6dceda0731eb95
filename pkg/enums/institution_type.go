package enums

import "fmt"

// InstitutionType classifies the institution a customer belongs to.
type InstitutionType string

const (
	InstitutionTypeAcademic   InstitutionType = "academic"
	InstitutionTypeBiotech    InstitutionType = "biotech"
	InstitutionTypePharma     InstitutionType = "pharma"
	InstitutionTypeGovernment InstitutionType = "government"
	InstitutionTypeOther      InstitutionType = "other"
)

var validInstitutionTypes = []InstitutionType{
	InstitutionTypeAcademic,
	InstitutionTypeBiotech,
	InstitutionTypePharma,
	InstitutionTypeGovernment,
	InstitutionTypeOther,
}

// String implements fmt.Stringer.
func (i InstitutionType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InstitutionType.
func (i InstitutionType) IsValid() bool {
	for _, candidate := range validInstitutionTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInstitutionType converts raw input into an InstitutionType.
func ParseInstitutionType(value string) (InstitutionType, error) {
	for _, candidate := range validInstitutionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid institution type %q", value)
}
