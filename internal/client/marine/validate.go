package marine

import (
	"github.com/garrettladley/marine/internal/validator"
)

const minPasswordLen = 8

var (
	_ validator.Validator = Credentials{}
	_ validator.Validator = Registration{}
	_ validator.Validator = PasswordResetConfirm{}
	_ validator.Validator = ObservationInput{}
	_ validator.Validator = ObservationPatch{}
)

func (c Credentials) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.Email(c.Email), "email", "invalid email address")
	errs.Check(c.Password != "", "password", "password is required")
	return errs.Result()
}

func (r Registration) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.MinLen(r.Username, 2), "username", "username must be at least 2 characters")
	errs.Check(validator.Email(r.Email), "email", "invalid email address")
	errs.Check(validator.MinLen(r.Password, minPasswordLen), "password", "password must be at least 8 characters")
	errs.Check(validator.OneOf(r.Role, RoleHobbyist, RoleResearcher), "role", "role must be hobbyist or researcher")
	return errs.Result()
}

func (p PasswordResetConfirm) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.Required(p.UID), "uidb64", "reset link is incomplete")
	errs.Check(validator.Required(p.Token), "token", "reset link is incomplete")
	errs.Check(validator.MinLen(p.NewPassword, minPasswordLen), "new_password", "password must be at least 8 characters")
	errs.Check(validator.StrongPassword(p.NewPassword), "new_password",
		"password must contain an uppercase letter, a lowercase letter and a number")
	errs.Check(p.ConfirmPassword == p.NewPassword, "re_new_password", "passwords do not match")
	return errs.Result()
}

func (in ObservationInput) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.Required(in.SpeciesName), "speciesName", "species name is required")
	errs.Check(validator.Required(in.LocationName), "locationName", "location name is required")
	errs.Check(validator.Between(in.Latitude, -90, 90), "latitude", "latitude must be between -90 and 90")
	errs.Check(validator.Between(in.Longitude, -180, 180), "longitude", "longitude must be between -180 and 180")
	errs.Check(!in.ObservationDatetime.IsZero(), "observationDatetime", "observation date is required")
	checkDepths(errs, in.DepthMin, in.DepthMax)
	checkSex(errs, in.Sex)
	return errs.Result()
}

func (p ObservationPatch) Validate() map[string]string {
	errs := make(validator.Fields)
	if p.SpeciesName != nil {
		errs.Check(validator.Required(*p.SpeciesName), "speciesName", "species name is required")
	}
	if p.LocationName != nil {
		errs.Check(validator.Required(*p.LocationName), "locationName", "location name is required")
	}
	errs.Check((p.Latitude == nil) == (p.Longitude == nil), "location", "latitude and longitude must be set together")
	if p.Latitude != nil {
		errs.Check(validator.Between(*p.Latitude, -90, 90), "latitude", "latitude must be between -90 and 90")
	}
	if p.Longitude != nil {
		errs.Check(validator.Between(*p.Longitude, -180, 180), "longitude", "longitude must be between -180 and 180")
	}
	if p.ObservationDatetime != nil {
		errs.Check(!p.ObservationDatetime.IsZero(), "observationDatetime", "observation date is required")
	}
	checkDepths(errs, p.DepthMin, p.DepthMax)
	checkSex(errs, p.Sex)
	return errs.Result()
}

func checkDepths(errs validator.Fields, lo, hi *float64) {
	if lo != nil && hi != nil {
		errs.Check(*lo <= *hi, "depthMax", "maximum depth must not be less than minimum depth")
	}
}

func checkSex(errs validator.Fields, sex *Sex) {
	if sex != nil {
		errs.Check(sex.Valid(), "sex", "sex must be male, female or unknown")
	}
}
