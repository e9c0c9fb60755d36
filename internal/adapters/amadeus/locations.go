package amadeus

import (
	"context"
	"net/url"
	"strings"

	"tripsearch/internal/domain"
)

// LookupLocations queries cities and airports by keyword; it backs the
// location resolver's primary lookup.
func (c *Client) LookupLocations(ctx context.Context, keyword string) ([]domain.Location, error) {
	return c.locations(ctx, keyword, "CITY", "AIRPORT")
}

func (c *Client) locations(ctx context.Context, keyword string, subTypes ...string) ([]domain.Location, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", strings.Join(subTypes, ","))

	var resp locationsResponse
	if err := c.get(ctx, "locations", "/v1/reference-data/locations", q, &resp); err != nil {
		return nil, upstream(err)
	}
	out := make([]domain.Location, 0, len(resp.Data))
	for _, d := range resp.Data {
		loc := domain.Location{IATACode: d.IATACode, ID: d.ID, Name: d.Name, SubType: d.SubType}
		if d.GeoCode != nil {
			loc.Geo = &domain.GeoCode{Latitude: d.GeoCode.Latitude, Longitude: d.GeoCode.Longitude}
		}
		out = append(out, loc)
	}
	return out, nil
}
