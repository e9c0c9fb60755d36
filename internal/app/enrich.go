package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/domain"
)

const (
	DefaultEnrichWorkers = 4
	DefaultEnrichTimeout = 8 * time.Second
	// DefaultPhotoBase is the API's own photo route; see http_server.
	DefaultPhotoBase = "/v1/photos/"
)

type MergerOptions struct {
	Workers  int
	Timeout  time.Duration // per lookup
	CacheTTL time.Duration // 0 disables caching
	// PhotoBase prefixes photo references to form the served image URL.
	PhotoBase string
}

// EnrichmentMerger decorates hotel offers with secondary place data.
// It never fails a search: lookup errors are logged and dropped.
type EnrichmentMerger struct {
	places    domain.PlaceFinder
	cache     domain.Cache
	ttl       time.Duration
	workers   int64
	timeout   time.Duration
	photoBase string
}

// NewEnrichmentMerger accepts a nil cache.
func NewEnrichmentMerger(p domain.PlaceFinder, cache domain.Cache, opt MergerOptions) *EnrichmentMerger {
	if opt.Workers <= 0 {
		opt.Workers = DefaultEnrichWorkers
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultEnrichTimeout
	}
	if opt.PhotoBase == "" {
		opt.PhotoBase = DefaultPhotoBase
	}
	return &EnrichmentMerger{
		places:    p,
		cache:     cache,
		ttl:       opt.CacheTTL,
		workers:   int64(opt.Workers),
		timeout:   opt.Timeout,
		photoBase: opt.PhotoBase,
	}
}

// Enrich looks up "<hotelName> <city>" and merges whatever is found into offer.
func (m *EnrichmentMerger) Enrich(ctx context.Context, offer domain.HotelOffer, hotelName string, city domain.LocationCode) domain.HotelOffer {
	if m == nil || m.places == nil || strings.TrimSpace(hotelName) == "" {
		return offer
	}
	d, found, err := m.lookup(ctx, hotelName, city)
	switch {
	case err != nil:
		observability.ObserveEnrichment("error")
		log.Warn().Err(err).Str("hotel", hotelName).Str("city", city.String()).Msg("enrichment lookup failed")
		return offer
	case !found:
		observability.ObserveEnrichment("miss")
		return offer
	}
	observability.ObserveEnrichment("hit")
	return Merge(offer, d, m.photoBase)
}

// EnrichAll enriches offers on a bounded pool. Output order matches input order.
func (m *EnrichmentMerger) EnrichAll(ctx context.Context, offers []domain.HotelOffer, city domain.LocationCode) []domain.HotelOffer {
	out := make([]domain.HotelOffer, len(offers))
	copy(out, offers)
	if m == nil || m.places == nil {
		return out
	}

	sem := semaphore.NewWeighted(m.workers)
	var wg sync.WaitGroup
	for i := range out {
		if err := sem.Acquire(ctx, 1); err != nil {
			// ctx is done; the rest keep their primary data.
			break
		}
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			out[i] = m.Enrich(ctx, out[i], out[i].Name, city)
		}()
	}
	wg.Wait()
	return out
}

func (m *EnrichmentMerger) lookup(ctx context.Context, name string, city domain.LocationCode) (domain.PlaceDetails, bool, error) {
	key := placeKey(city, name)
	if m.cache != nil && m.ttl > 0 {
		var d domain.PlaceDetails
		if ok, err := m.cache.Get(ctx, key, &d); err == nil && ok {
			observability.ObserveCache("places", "hit")
			return d, true, nil
		}
		observability.ObserveCache("places", "miss")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	d, found, err := m.places.FindPlace(ctx, name+" "+city.String())
	if err != nil || !found {
		return domain.PlaceDetails{}, false, err
	}

	if m.cache != nil && m.ttl > 0 {
		if err := m.cache.Set(ctx, key, d, m.ttl); err == nil {
			observability.ObserveCache("places", "set")
		}
	}
	return d, true, nil
}

func placeKey(city domain.LocationCode, name string) string {
	return fmt.Sprintf("place:%s:%s", city, strings.ToLower(strings.Join(strings.Fields(name), " ")))
}

// Merge attaches d to offer. Primary fields are kept; the image is replaced
// only when d carries a photo, by photoBase plus the escaped reference.
func Merge(offer domain.HotelOffer, d domain.PlaceDetails, photoBase string) domain.HotelOffer {
	e := &domain.Enrichment{
		Rating:         d.Rating,
		Reviews:        d.Reviews,
		Address:        d.Address,
		Website:        d.Website,
		PhotoReference: d.PhotoReference,
	}
	if d.PhotoReference != "" {
		e.PhotoURL = photoBase + url.PathEscape(d.PhotoReference)
		offer.Image = e.PhotoURL
	}
	offer.Enriched = e
	return offer
}
