package marine

import "fmt"

type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

func ParseValidationStatus(s string) (ValidationStatus, error) {
	switch v := ValidationStatus(s); v {
	case ValidationPending, ValidationValidated, ValidationRejected:
		return v, nil
	default:
		return "", fmt.Errorf("invalid validation status %q", s)
	}
}

type Source string

const (
	SourceUser  Source = "user"
	SourceOBIS  Source = "obis"
	SourceOther Source = "other"
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleHobbyist   Role = "hobbyist"
	RoleResearcher Role = "researcher"
)
