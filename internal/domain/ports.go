package domain

import (
	"context"
	"io"
	"time"
)

// LocationLookup is the primary location-lookup provider.
type LocationLookup interface {
	LookupLocations(ctx context.Context, keyword string) ([]Location, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, req FlightRequest) ([]FlightOffer, error)
}

// HotelSearcher returns primary (unenriched) hotel offers.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, req HotelRequest) ([]HotelOffer, error)
}

type AttractionSearcher interface {
	SearchAttractions(ctx context.Context, req AttractionRequest) ([]AttractionRecord, error)
}

// PlaceFinder is the secondary place-data provider. found=false with a nil
// error means the provider has nothing for the query.
type PlaceFinder interface {
	FindPlace(ctx context.Context, query string) (PlaceDetails, bool, error)
}

// PhotoFetcher streams a place photo by reference. The caller closes the body.
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, ref string) (body io.ReadCloser, contentType string, err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Completer is a language-model text completion.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
