package marine

type MarkerKind string

const (
	MarkerUser    MarkerKind = "user"
	MarkerCurated MarkerKind = "curated"
)

type Marker struct {
	ID        int64
	Kind      MarkerKind
	Latitude  float64
	Longitude float64
	Label     string
}

// Marker places the feature on a map. Anything not logged by a user is a
// curated record.
func (f Feature) Marker() Marker {
	m := Marker{
		ID:        int64(f.ID),
		Kind:      MarkerCurated,
		Latitude:  f.Geometry.Latitude(),
		Longitude: f.Geometry.Longitude(),
		Label:     f.Properties.SpeciesName,
	}
	if f.Properties.Source == SourceUser {
		m.Kind = MarkerUser
	}
	if f.Properties.Source == SourceOBIS && f.Properties.CommonName != nil && *f.Properties.CommonName != "" {
		m.Label = *f.Properties.CommonName
	}
	return m
}

func (fc *FeatureCollection) Markers() []Marker {
	out := make([]Marker, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.Marker())
	}
	return out
}
