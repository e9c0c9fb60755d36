package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/domain"
	"tripsearch/internal/resolve"
)

const DefaultProviderTimeout = 30 * time.Second

// Resolver maps free-text place names to location codes.
type Resolver interface {
	Resolve(ctx context.Context, text string) (domain.LocationCode, bool)
}

type FlightQuery struct {
	OriginCity      string
	DestinationCity string
	DepartureDate   string
	ReturnDate      string // empty for one-way
	Currency        string
	Adults          int
	NonStop         bool
}

type HotelQuery struct {
	City         string
	CheckInDate  string
	CheckOutDate string
	Adults       int
	Currency     string
}

type AttractionQuery struct {
	City  string
	Limit int
}

// SearchFacade resolves free-text queries, calls the providers and returns
// either records or one error message. Zero-valued query fields take defaults.
type SearchFacade struct {
	resolver    Resolver
	flights     domain.FlightSearcher
	hotels      domain.HotelSearcher
	attractions domain.AttractionSearcher
	merger      *EnrichmentMerger

	now     func() time.Time
	timeout time.Duration
}

// NewSearchFacade accepts a nil merger (hotels are returned unenriched).
func NewSearchFacade(r Resolver, f domain.FlightSearcher, h domain.HotelSearcher, a domain.AttractionSearcher, m *EnrichmentMerger) *SearchFacade {
	return &SearchFacade{
		resolver:    r,
		flights:     f,
		hotels:      h,
		attractions: a,
		merger:      m,
		now:         time.Now,
		timeout:     DefaultProviderTimeout,
	}
}

// WithClock sets the reference time used to infer years in dates.
func (s *SearchFacade) WithClock(now func() time.Time) *SearchFacade {
	s.now = now
	return s
}

func (s *SearchFacade) WithTimeout(d time.Duration) *SearchFacade {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *SearchFacade) SearchFlights(ctx context.Context, q FlightQuery) domain.Result[domain.FlightOffer] {
	ctx, lg := s.begin(ctx, "flights")

	req, err := s.flightRequest(ctx, q)
	if err != nil {
		return failed[domain.FlightOffer](lg, "flights", err)
	}
	lg.Debug().Str("origin", req.Origin.String()).Str("destination", req.Destination.String()).
		Str("departure", req.Departure.String()).Msg("searching flights")

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	offers, err := s.flights.SearchFlights(pctx, req)
	if err != nil {
		return failed[domain.FlightOffer](lg, "flights", err)
	}
	observability.ObserveSearch("flights", false)
	lg.Info().Int("offers", len(offers)).Msg("flight search done")
	return domain.OK(offers)
}

func (s *SearchFacade) SearchHotels(ctx context.Context, q HotelQuery) domain.Result[domain.HotelOffer] {
	ctx, lg := s.begin(ctx, "hotels")

	req, err := s.hotelRequest(ctx, q)
	if err != nil {
		return failed[domain.HotelOffer](lg, "hotels", err)
	}

	offers, err := s.searchHotels(ctx, req)
	if err != nil {
		return failed[domain.HotelOffer](lg, "hotels", err)
	}
	if s.merger != nil {
		offers = s.merger.EnrichAll(ctx, offers, req.City)
	}
	observability.ObserveSearch("hotels", false)
	lg.Info().Int("offers", len(offers)).Msg("hotel search done")
	return domain.OK(offers)
}

func (s *SearchFacade) searchHotels(ctx context.Context, req domain.HotelRequest) ([]domain.HotelOffer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.hotels.SearchHotels(ctx, req)
}

func (s *SearchFacade) SearchAttractions(ctx context.Context, q AttractionQuery) domain.Result[domain.AttractionRecord] {
	ctx, lg := s.begin(ctx, "attractions")

	limit := q.Limit
	if limit == 0 {
		limit = domain.DefaultAttractions
	}
	if limit < 0 {
		return failed[domain.AttractionRecord](lg, "attractions", &domain.ValidationError{Msg: fmt.Sprintf("Invalid limit: %d", q.Limit)})
	}
	city, ok := s.resolver.Resolve(ctx, q.City)
	if !ok {
		return failed[domain.AttractionRecord](lg, "attractions", unresolvedCity("city", q.City))
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	recs, err := s.attractions.SearchAttractions(pctx, domain.AttractionRequest{City: city, Limit: limit})
	if err != nil {
		return failed[domain.AttractionRecord](lg, "attractions", err)
	}
	observability.ObserveSearch("attractions", false)
	return domain.OK(recs)
}

// ---- request building ----

func (s *SearchFacade) flightRequest(ctx context.Context, q FlightQuery) (domain.FlightRequest, error) {
	currency, adults, err := commonParams(q.Currency, q.Adults)
	if err != nil {
		return domain.FlightRequest{}, err
	}
	origin, ok := s.resolver.Resolve(ctx, q.OriginCity)
	if !ok {
		return domain.FlightRequest{}, unresolvedCity("origin city", q.OriginCity)
	}
	dest, ok := s.resolver.Resolve(ctx, q.DestinationCity)
	if !ok {
		return domain.FlightRequest{}, unresolvedCity("destination city", q.DestinationCity)
	}

	ref := s.now()
	dep, ok := resolve.NormalizeDate(q.DepartureDate, ref)
	if !ok {
		return domain.FlightRequest{}, unresolvedDate("departure date", q.DepartureDate)
	}
	req := domain.FlightRequest{
		Origin:      origin,
		Destination: dest,
		Departure:   dep,
		Currency:    currency,
		Adults:      adults,
		NonStop:     q.NonStop,
		Max:         domain.MaxFlightOffers,
	}
	if strings.TrimSpace(q.ReturnDate) != "" {
		ret, ok := resolve.NormalizeDate(q.ReturnDate, ref)
		if !ok {
			return domain.FlightRequest{}, unresolvedDate("return date", q.ReturnDate)
		}
		if ret.Before(dep) {
			return domain.FlightRequest{}, &domain.ValidationError{Msg: "Return date must not be before departure date"}
		}
		req.Return = &ret
	}
	return req, nil
}

func (s *SearchFacade) hotelRequest(ctx context.Context, q HotelQuery) (domain.HotelRequest, error) {
	currency, adults, err := commonParams(q.Currency, q.Adults)
	if err != nil {
		return domain.HotelRequest{}, err
	}
	city, ok := s.resolver.Resolve(ctx, q.City)
	if !ok {
		return domain.HotelRequest{}, unresolvedCity("city", q.City)
	}

	ref := s.now()
	in, ok := resolve.NormalizeDate(q.CheckInDate, ref)
	if !ok {
		return domain.HotelRequest{}, unresolvedDate("check-in date", q.CheckInDate)
	}
	out, ok := resolve.NormalizeDate(q.CheckOutDate, ref)
	if !ok {
		return domain.HotelRequest{}, unresolvedDate("check-out date", q.CheckOutDate)
	}
	if !in.Before(out) {
		return domain.HotelRequest{}, &domain.ValidationError{Msg: "Check-out date must be after check-in date"}
	}
	return domain.HotelRequest{City: city, CheckIn: in, CheckOut: out, Adults: adults, Currency: currency}, nil
}

func commonParams(currency string, adults int) (string, int, error) {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		c = domain.DefaultCurrency
	}
	if !isCurrency(c) {
		return "", 0, &domain.ValidationError{Msg: fmt.Sprintf("Invalid currency code: %s", currency)}
	}
	if adults == 0 {
		adults = 1
	}
	if adults < 0 {
		return "", 0, &domain.ValidationError{Msg: fmt.Sprintf("Invalid number of adults: %d", adults)}
	}
	return c, adults, nil
}

func isCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func unresolvedCity(role, input string) error {
	return &domain.ResolutionError{What: "IATA code", Role: role, Input: input}
}

func unresolvedDate(role, input string) error {
	return &domain.ResolutionError{What: "date", Role: role, Input: input}
}

// ---- logging / outcome ----

func (s *SearchFacade) begin(ctx context.Context, op string) (context.Context, zerolog.Logger) {
	base := log.Logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	lg := base.With().Str("request_id", uuid.NewString()).Str("operation", op).Logger()
	return lg.WithContext(ctx), lg
}

func failed[T any](lg zerolog.Logger, op string, err error) domain.Result[T] {
	observability.ObserveSearch(op, true)
	lg.Warn().Err(err).Msg("search failed")
	return domain.Fail[T](err.Error())
}
