package marine

import (
	"strconv"
	"strings"
	"time"
)

type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}

const geometryPoint = "Point"

// Point is a GeoJSON point. Coordinates are ordered longitude, latitude.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewPoint(lat, lng float64) Point {
	return Point{Type: geometryPoint, Coordinates: [2]float64{lng, lat}}
}

func (p Point) Latitude() float64  { return p.Coordinates[1] }
func (p Point) Longitude() float64 { return p.Coordinates[0] }

type Observation struct {
	ID                  int64            `json:"id"`
	UserID              *int64           `json:"userId,omitempty"`
	SpeciesName         string           `json:"speciesName"`
	CommonName          *string          `json:"commonName,omitempty"`
	Location            Point            `json:"location"`
	ObservationDatetime time.Time        `json:"observationDatetime"`
	LocationName        string           `json:"locationName"`
	DepthMin            *float64         `json:"depthMin,omitempty"`
	DepthMax            *float64         `json:"depthMax,omitempty"`
	Bathymetry          *float64         `json:"bathymetry,omitempty"`
	Temperature         *float64         `json:"temperature,omitempty"`
	Visibility          *float64         `json:"visibility,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
	Image               *string          `json:"image,omitempty"`
	Validated           ValidationStatus `json:"validated"`
	Source              Source           `json:"source"`
	Sex                 *Sex             `json:"sex,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// FeatureID accepts both numeric and string GeoJSON feature ids.
type FeatureID int64

func (id *FeatureID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*id = FeatureID(n)
	return nil
}

type FeatureProperties struct {
	UserID              *int64           `json:"userId,omitempty"`
	SpeciesName         string           `json:"speciesName"`
	CommonName          *string          `json:"commonName,omitempty"`
	ObservationDatetime time.Time        `json:"observationDatetime"`
	LocationName        string           `json:"locationName"`
	DepthMin            *float64         `json:"depthMin,omitempty"`
	DepthMax            *float64         `json:"depthMax,omitempty"`
	Bathymetry          *float64         `json:"bathymetry,omitempty"`
	Temperature         *float64         `json:"temperature,omitempty"`
	Visibility          *float64         `json:"visibility,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
	Image               *string          `json:"image,omitempty"`
	Validated           ValidationStatus `json:"validated,omitempty"`
	Source              Source           `json:"source"`
	Sex                 *Sex             `json:"sex,omitempty"`
	CreatedAt           *time.Time       `json:"created_at,omitempty"`
	UpdatedAt           *time.Time       `json:"updated_at,omitempty"`
}

type Feature struct {
	Type       string            `json:"type"`
	ID         FeatureID         `json:"id"`
	Geometry   Point             `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Observation flattens the feature into an Observation.
func (f Feature) Observation() Observation {
	p := f.Properties
	o := Observation{
		ID:                  int64(f.ID),
		UserID:              p.UserID,
		SpeciesName:         p.SpeciesName,
		CommonName:          p.CommonName,
		Location:            f.Geometry,
		ObservationDatetime: p.ObservationDatetime,
		LocationName:        p.LocationName,
		DepthMin:            p.DepthMin,
		DepthMax:            p.DepthMax,
		Bathymetry:          p.Bathymetry,
		Temperature:         p.Temperature,
		Visibility:          p.Visibility,
		Notes:               p.Notes,
		Image:               p.Image,
		Validated:           p.Validated,
		Source:              p.Source,
		Sex:                 p.Sex,
	}
	if p.CreatedAt != nil {
		o.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		o.UpdatedAt = *p.UpdatedAt
	}
	return o
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func (fc *FeatureCollection) Observations() []Observation {
	out := make([]Observation, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.Observation())
	}
	return out
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type PasswordResetConfirm struct {
	UID             string `json:"uidb64"`
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"re_new_password"`
}

type ObservationInput struct {
	SpeciesName         string    `json:"speciesName"`
	CommonName          *string   `json:"commonName,omitempty"`
	Latitude            float64   `json:"-"`
	Longitude           float64   `json:"-"`
	ObservationDatetime time.Time `json:"observationDatetime"`
	LocationName        string    `json:"locationName"`
	DepthMin            *float64  `json:"depthMin,omitempty"`
	DepthMax            *float64  `json:"depthMax,omitempty"`
	Bathymetry          *float64  `json:"bathymetry,omitempty"`
	Temperature         *float64  `json:"temperature,omitempty"`
	Visibility          *float64  `json:"visibility,omitempty"`
	Notes               *string   `json:"notes,omitempty"`
	Sex                 *Sex      `json:"sex,omitempty"`
}

type createObservationRequest struct {
	ObservationInput
	Location Point `json:"location"`
}

// ObservationPatch carries a partial update; nil fields are left unchanged.
// Latitude and Longitude are only sent together.
type ObservationPatch struct {
	SpeciesName         *string    `json:"speciesName,omitempty"`
	CommonName          *string    `json:"commonName,omitempty"`
	Latitude            *float64   `json:"-"`
	Longitude           *float64   `json:"-"`
	ObservationDatetime *time.Time `json:"observationDatetime,omitempty"`
	LocationName        *string    `json:"locationName,omitempty"`
	DepthMin            *float64   `json:"depthMin,omitempty"`
	DepthMax            *float64   `json:"depthMax,omitempty"`
	Bathymetry          *float64   `json:"bathymetry,omitempty"`
	Temperature         *float64   `json:"temperature,omitempty"`
	Visibility          *float64   `json:"visibility,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	Sex                 *Sex       `json:"sex,omitempty"`
}

type updateObservationRequest struct {
	ObservationPatch
	Location *Point `json:"location,omitempty"`
}

type MapQuery struct {
	Latitude  *float64
	Longitude *float64
	// RadiusKm is sent only with a centre; the backend defaults to 50.
	RadiusKm float64
}
