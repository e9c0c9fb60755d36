package amadeus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"tripsearch/internal/domain"
)

const (
	poiRadiusKM = 20
	poiCategory = "SIGHTS"
)

// SearchAttractions finds the city's coordinate, then points of interest in
// the sights category around it, truncated to req.Limit.
func (c *Client) SearchAttractions(ctx context.Context, req domain.AttractionRequest) ([]domain.AttractionRecord, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultAttractions
	}

	geo, err := c.cityGeo(ctx, req.City.String())
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(geo.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(geo.Longitude, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(poiRadiusKM))
	q.Set("categories", poiCategory)
	q.Set("page[limit]", strconv.Itoa(limit))

	var resp poisResponse
	if err := c.get(ctx, "pois", "/v1/reference-data/locations/pois", q, &resp); err != nil {
		return nil, upstream(err)
	}

	n := min(len(resp.Data), limit)
	out := make([]domain.AttractionRecord, 0, n)
	for _, p := range resp.Data[:n] {
		rec := domain.AttractionRecord{Name: p.Name, Category: p.Category}
		if p.Rank.Valid {
			r := p.Rank.V
			rec.Rank = &r
		}
		if p.GeoCode != nil {
			rec.GeoCode = &domain.GeoCode{Latitude: p.GeoCode.Latitude, Longitude: p.GeoCode.Longitude}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) cityGeo(ctx context.Context, city string) (domain.GeoCode, error) {
	// Resolved codes may be airports (CDG, LHR), so both subtypes are asked for.
	locs, err := c.locations(ctx, city, "CITY", "AIRPORT")
	if err != nil {
		return domain.GeoCode{}, err
	}
	var fallback *domain.GeoCode
	for _, l := range locs {
		if l.Geo == nil {
			continue
		}
		if l.SubType == "CITY" {
			return *l.Geo, nil
		}
		if fallback == nil {
			fallback = l.Geo
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return domain.GeoCode{}, &domain.EmptyDatasetError{Msg: fmt.Sprintf("Could not find coordinates for city %s", city)}
}
