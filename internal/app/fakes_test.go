package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tripsearch/internal/domain"
)

// ---- fakes ----

type fakeFlights struct {
	offers []domain.FlightOffer
	err    error
	calls  int32
	last   domain.FlightRequest
}

func (f *fakeFlights) SearchFlights(_ context.Context, req domain.FlightRequest) ([]domain.FlightOffer, error) {
	atomic.AddInt32(&f.calls, 1)
	f.last = req
	return f.offers, f.err
}

type fakeHotels struct {
	offers []domain.HotelOffer
	err    error
	calls  int32
	last   domain.HotelRequest
}

func (f *fakeHotels) SearchHotels(_ context.Context, req domain.HotelRequest) ([]domain.HotelOffer, error) {
	atomic.AddInt32(&f.calls, 1)
	f.last = req
	return f.offers, f.err
}

type fakeAttractions struct {
	recs  []domain.AttractionRecord
	err   error
	calls int32
	last  domain.AttractionRequest
}

func (f *fakeAttractions) SearchAttractions(_ context.Context, req domain.AttractionRequest) ([]domain.AttractionRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	f.last = req
	return f.recs, f.err
}

// fakePlaces answers by query; delay(query) lets tests scramble completion order.
type fakePlaces struct {
	mu      sync.Mutex
	byQuery map[string]domain.PlaceDetails
	fail    map[string]bool
	delay   func(query string) time.Duration
	queries []string
}

func (f *fakePlaces) FindPlace(ctx context.Context, query string) (domain.PlaceDetails, bool, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	d, ok := f.byQuery[query]
	fail := f.fail[query]
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(query)):
		case <-ctx.Done():
			return domain.PlaceDetails{}, false, ctx.Err()
		}
	}
	if fail {
		return domain.PlaceDetails{}, false, errors.New("places: REQUEST_DENIED")
	}
	return d, ok, nil
}

func (f *fakePlaces) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemCache() *memCache { return &memCache{m: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	b, ok := c.m[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.m[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

type fakeCompleter struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func ptr[T any](v T) *T { return &v }
