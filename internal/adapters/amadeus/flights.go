package amadeus

import (
	"context"
	"net/url"
	"strconv"

	"tripsearch/internal/domain"
)

// SearchFlights issues one flight-offers query (one-way or round trip) and
// maps at most req.Max offers. Zero offers is an empty list, not an error.
func (c *Client) SearchFlights(ctx context.Context, req domain.FlightRequest) ([]domain.FlightOffer, error) {
	limit := req.Max
	if limit <= 0 || limit > domain.MaxFlightOffers {
		limit = domain.MaxFlightOffers
	}
	adults := req.Adults
	if adults <= 0 {
		adults = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	q := url.Values{}
	q.Set("originLocationCode", req.Origin.String())
	q.Set("destinationLocationCode", req.Destination.String())
	q.Set("departureDate", req.Departure.String())
	if req.Return != nil {
		q.Set("returnDate", req.Return.String())
	}
	q.Set("adults", strconv.Itoa(adults))
	q.Set("currencyCode", currency)
	q.Set("max", strconv.Itoa(limit))
	if req.NonStop {
		q.Set("nonStop", "true")
	}

	var resp flightOffersResponse
	if err := c.get(ctx, "flight_offers", "/v2/shopping/flight-offers", q, &resp); err != nil {
		return nil, upstream(err)
	}

	out := make([]domain.FlightOffer, 0, min(limit, len(resp.Data)))
	for _, o := range resp.Data {
		if len(out) == limit {
			break
		}
		if f, ok := mapFlightOffer(o, req, currency); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func mapFlightOffer(o flightOffer, req domain.FlightRequest, currency string) (domain.FlightOffer, bool) {
	if len(o.Itineraries) == 0 {
		return domain.FlightOffer{}, false
	}
	outbound, ok := mapLeg(o.Itineraries[0], req.Origin.String(), req.Destination.String())
	if !ok {
		return domain.FlightOffer{}, false
	}

	f := domain.FlightOffer{
		Airline:   domain.UnknownAirline,
		Price:     o.Price.Total,
		Currency:  o.Price.Currency,
		FlightLeg: outbound,
	}
	if len(o.ValidatingAirlineCodes) > 0 && o.ValidatingAirlineCodes[0] != "" {
		f.Airline = o.ValidatingAirlineCodes[0]
	}
	if f.Price == "" {
		f.Price = o.Price.GrandTotal
	}
	if f.Currency == "" {
		f.Currency = currency
	}
	if len(o.Itineraries) > 1 {
		if ret, ok := mapLeg(o.Itineraries[1], req.Destination.String(), req.Origin.String()); ok {
			f.Return = &ret
		}
	}
	return f, true
}

// mapLeg spans first departure to last arrival; codes fall back to the request's.
func mapLeg(it itinerary, origin, destination string) (domain.FlightLeg, bool) {
	if len(it.Segments) == 0 {
		return domain.FlightLeg{}, false
	}
	first, last := it.Segments[0], it.Segments[len(it.Segments)-1]
	leg := domain.FlightLeg{
		Origin:      first.Departure.IATACode,
		Destination: last.Arrival.IATACode,
		Departure:   first.Departure.At,
		Arrival:     last.Arrival.At,
		Stops:       max(len(it.Segments)-1, 0),
		Duration:    it.Duration,
	}
	if leg.Origin == "" {
		leg.Origin = origin
	}
	if leg.Destination == "" {
		leg.Destination = destination
	}
	return leg, true
}
