package marine

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/garrettladley/marine/internal/validator"
	"github.com/garrettladley/marine/internal/xslog"
)

const observationsRoute = "/v1/observations/"

// maxListPages stops ListAll from following a next link that never ends.
const maxListPages = 1000

type observationService struct {
	client *Client
}

func observationRoute(id int64) string {
	return observationsRoute + strconv.FormatInt(id, 10) + "/"
}

func (s *observationService) List(ctx context.Context, params *ListParams) (*Page[Observation], error) {
	var page featurePage
	if err := s.client.do(ctx, http.MethodGet, observationsRoute, params.values(), nil, &page); err != nil {
		return nil, err
	}
	return page.observations(), nil
}

func (s *observationService) ListAll(ctx context.Context) ([]Observation, error) {
	var (
		all    []Observation
		params *ListParams
	)
	for range maxListPages {
		page, err := s.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)

		params, err = page.NextParams()
		if err != nil {
			return nil, err
		}
		if params == nil {
			break
		}
	}
	xslog.Or(ctx, s.client.logger).DebugContext(ctx, "listed observations", xslog.Count(len(all)))
	return all, nil
}

func (s *observationService) Create(ctx context.Context, in ObservationInput) (*Observation, error) {
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	req := createObservationRequest{
		ObservationInput: in,
		Location:         NewPoint(in.Latitude, in.Longitude),
	}
	var obs Observation
	if err := s.client.do(ctx, http.MethodPost, observationsRoute, nil, req, &obs); err != nil {
		return nil, err
	}
	return &obs, nil
}

func (s *observationService) Update(ctx context.Context, id int64, patch ObservationPatch) (*Observation, error) {
	if err := validator.Validate(patch); err != nil {
		return nil, err
	}

	req := updateObservationRequest{ObservationPatch: patch}
	if patch.Latitude != nil && patch.Longitude != nil {
		p := NewPoint(*patch.Latitude, *patch.Longitude)
		req.Location = &p
	}
	var obs Observation
	if err := s.client.do(ctx, http.MethodPatch, observationRoute(id), nil, req, &obs); err != nil {
		return nil, err
	}
	return &obs, nil
}

func (s *observationService) Delete(ctx context.Context, id int64) error {
	if err := s.client.do(ctx, http.MethodDelete, observationRoute(id), nil, nil, nil); err != nil {
		return err
	}
	xslog.Or(ctx, s.client.logger).DebugContext(ctx, "deleted observation", xslog.ObservationID(id))
	return nil
}

// FilterByStatus keeps the observations with the given status. An empty
// status keeps everything.
func FilterByStatus(obs []Observation, status ValidationStatus) []Observation {
	if status == "" {
		return obs
	}
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Validated == status {
			out = append(out, o)
		}
	}
	return out
}

// SortNewestFirst orders observations by creation time, newest first.
func SortNewestFirst(obs []Observation) {
	slices.SortStableFunc(obs, func(a, b Observation) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
}
