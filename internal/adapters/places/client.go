package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/domain"
)

const photoMaxWidth = 800

var detailFields = []string{"place_id", "name", "rating", "user_ratings_total", "formatted_address", "photos", "website"}

type Options struct {
	APIKey string
	// BaseURL overrides the Maps API host (tests).
	BaseURL string
	RPS     int
}

// Client resolves a free-text query to one Google place with details.
type Client struct {
	mc     *maps.Client
	fields []maps.PlaceDetailsFieldMask
}

func New(opt Options) (*Client, error) {
	if opt.APIKey == "" {
		return nil, errors.New("places: API key is required")
	}
	copts := []maps.ClientOption{maps.WithAPIKey(opt.APIKey)}
	if opt.BaseURL != "" {
		copts = append(copts, maps.WithBaseURL(opt.BaseURL))
	}
	if opt.RPS > 0 {
		copts = append(copts, maps.WithRateLimit(opt.RPS))
	}
	mc, err := maps.NewClient(copts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	fields := make([]maps.PlaceDetailsFieldMask, 0, len(detailFields))
	for _, f := range detailFields {
		m, err := maps.ParsePlaceDetailsFieldMask(f)
		if err != nil {
			return nil, fmt.Errorf("places: field mask %q: %w", f, err)
		}
		fields = append(fields, m)
	}
	return &Client{mc: mc, fields: fields}, nil
}

// FindPlace runs a text search, takes the first result and fetches its details.
// found=false with nil error means Google has no match.
func (c *Client) FindPlace(ctx context.Context, query string) (domain.PlaceDetails, bool, error) {
	start := time.Now()
	resp, err := c.mc.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	observability.ObserveExternal("google_places", "textsearch", statusOf(err), time.Since(start))
	if err != nil {
		if isZeroResults(err) {
			return domain.PlaceDetails{}, false, nil
		}
		return domain.PlaceDetails{}, false, fmt.Errorf("places text search: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].PlaceID == "" {
		return domain.PlaceDetails{}, false, nil
	}

	start = time.Now()
	res, err := c.mc.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: resp.Results[0].PlaceID,
		Fields:  c.fields,
	})
	observability.ObserveExternal("google_places", "details", statusOf(err), time.Since(start))
	if err != nil {
		if isZeroResults(err) {
			return domain.PlaceDetails{}, false, nil
		}
		return domain.PlaceDetails{}, false, fmt.Errorf("places details: %w", err)
	}

	return mapDetails(resp.Results[0].PlaceID, res), true, nil
}

func mapDetails(placeID string, r maps.PlaceDetailsResult) domain.PlaceDetails {
	d := domain.PlaceDetails{
		PlaceID: placeID,
		Name:    r.Name,
		Address: r.FormattedAddress,
		Website: r.Website,
	}
	if r.Rating > 0 {
		v := float64(r.Rating)
		d.Rating = &v
	}
	if r.UserRatingsTotal > 0 {
		n := r.UserRatingsTotal
		d.Reviews = &n
	}
	if len(r.Photos) > 0 {
		d.PhotoReference = r.Photos[0].PhotoReference
	}
	return d
}

// FetchPhoto downloads a photo through the Places photo endpoint. The API key
// stays server-side; callers only ever see the reference.
func (c *Client) FetchPhoto(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if ref == "" {
		return nil, "", errors.New("places: empty photo reference")
	}
	start := time.Now()
	resp, err := c.mc.PlacePhoto(ctx, &maps.PlacePhotoRequest{PhotoReference: ref, MaxWidth: photoMaxWidth})
	observability.ObserveExternal("google_places", "photo", statusOf(err), time.Since(start))
	if err != nil {
		return nil, "", fmt.Errorf("places photo: %w", err)
	}
	// Bad references come back as a non-image error body.
	if !strings.HasPrefix(resp.ContentType, "image/") {
		resp.Data.Close()
		return nil, "", fmt.Errorf("places photo: unexpected content type %q", resp.ContentType)
	}
	return resp.Data, resp.ContentType, nil
}

func statusOf(err error) int {
	if err == nil {
		return 200
	}
	return 0
}

// The maps client reports ZERO_RESULTS as an error; for enrichment it is a miss.
func isZeroResults(err error) bool {
	return err != nil && strings.Contains(strings.ToUpper(err.Error()), "ZERO_RESULTS")
}
