package marine

import (
	"fmt"
	"net/url"
	"strconv"
)

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) values() url.Values {
	if p == nil {
		return nil
	}

	v := make(url.Values)

	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}

	return v
}

// Page is a page of a paginated API listing.
type Page[T any] struct {
	Count    int
	Next     *string
	Previous *string
	Results  []T
}

func (p *Page[T]) HasMore() bool {
	return p.Next != nil && *p.Next != ""
}

// NextParams returns the params that fetch the page after p.
func (p *Page[T]) NextParams() (*ListParams, error) {
	if !p.HasMore() {
		return nil, nil
	}
	u, err := url.Parse(*p.Next)
	if err != nil {
		return nil, fmt.Errorf("parsing next page url: %w", err)
	}
	params := &ListParams{}
	if s := u.Query().Get("page"); s != "" {
		if params.Page, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("parsing next page number %q: %w", s, err)
		}
	}
	if s := u.Query().Get("page_size"); s != "" {
		if params.PageSize, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("parsing next page size %q: %w", s, err)
		}
	}
	return params, nil
}

// featurePage is the wire envelope of a paginated GeoJSON listing.
type featurePage struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  FeatureCollection `json:"results"`
}

func (p *featurePage) observations() *Page[Observation] {
	return &Page[Observation]{
		Count:    p.Count,
		Next:     p.Next,
		Previous: p.Previous,
		Results:  p.Results.Observations(),
	}
}
