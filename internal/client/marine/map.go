package marine

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type mapService struct {
	client *Client
}

func (q *MapQuery) values() url.Values {
	if q == nil || q.Latitude == nil || q.Longitude == nil {
		return nil
	}

	v := make(url.Values)
	v.Set("lat", strconv.FormatFloat(*q.Latitude, 'f', -1, 64))
	v.Set("lng", strconv.FormatFloat(*q.Longitude, 'f', -1, 64))
	if q.RadiusKm > 0 {
		v.Set("radius", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
	}
	return v
}

// Observations returns user sightings and curated records, optionally
// limited to a radius around a centre.
func (s *mapService) Observations(ctx context.Context, q *MapQuery) (*FeatureCollection, error) {
	const route = "/v1/map/observations/"

	var fc FeatureCollection
	if err := s.client.do(ctx, http.MethodGet, route, q.values(), nil, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
