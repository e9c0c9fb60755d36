package amadeus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tripsearch/internal/domain"
)

// SearchHotels lists hotel ids for the city, then fetches offers for up to
// ten of them in one batched call. Records are primary data only; enrichment
// happens in the app layer.
func (c *Client) SearchHotels(ctx context.Context, req domain.HotelRequest) ([]domain.HotelOffer, error) {
	city := req.City.String()

	q := url.Values{}
	q.Set("cityCode", city)
	var list hotelListResponse
	if err := c.get(ctx, "hotels_by_city", "/v1/reference-data/locations/hotels/by-city", q, &list); err != nil {
		return nil, upstream(err)
	}
	if len(list.Data) == 0 {
		return nil, &domain.EmptyDatasetError{Msg: fmt.Sprintf("No hotels found in city %s", city)}
	}

	ids := make([]string, 0, domain.MaxHotelIDsPerQuery)
	for _, h := range list.Data {
		if h.HotelID == "" {
			continue
		}
		ids = append(ids, h.HotelID)
		if len(ids) == domain.MaxHotelIDsPerQuery {
			break
		}
	}
	if len(ids) == 0 {
		return nil, &domain.EmptyDatasetError{Msg: fmt.Sprintf("No valid hotel IDs found in %s", city)}
	}

	adults := req.Adults
	if adults <= 0 {
		adults = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	q = url.Values{}
	q.Set("hotelIds", strings.Join(ids, ","))
	q.Set("checkInDate", req.CheckIn.String())
	q.Set("checkOutDate", req.CheckOut.String())
	q.Set("adults", strconv.Itoa(adults))
	q.Set("currency", currency)
	q.Set("roomQuantity", "1")

	var offers hotelOffersResponse
	if err := c.get(ctx, "hotel_offers", "/v3/shopping/hotel-offers", q, &offers); err != nil {
		return nil, upstream(err)
	}
	if len(offers.Data) == 0 {
		return nil, &domain.EmptyDatasetError{Msg: fmt.Sprintf("No hotel offers available for %s", city)}
	}

	n := min(len(offers.Data), domain.MaxHotelOffers)
	out := make([]domain.HotelOffer, 0, n)
	for _, h := range offers.Data[:n] {
		out = append(out, mapHotelOffer(h, currency))
	}
	return out, nil
}

func mapHotelOffer(h hotelOffer, currency string) domain.HotelOffer {
	ho := domain.HotelOffer{
		HotelID:   h.Hotel.HotelID,
		Name:      h.Hotel.Name,
		Address:   "?",
		Category:  h.Hotel.HotelCategory,
		Currency:  currency,
		Amenities: h.Hotel.Amenities,
	}
	if len(h.Hotel.Address.Lines) > 0 && h.Hotel.Address.Lines[0] != "" {
		ho.Address = h.Hotel.Address.Lines[0]
	}
	if len(h.Hotel.Media) > 0 {
		ho.Image = h.Hotel.Media[0].URI
	}
	if len(h.Offers) > 0 {
		o := h.Offers[0]
		ho.Price = o.Price.Total
		if o.Price.Currency != "" {
			ho.Currency = o.Price.Currency
		}
		ho.CheckIn = o.CheckInDate
		ho.CheckOut = o.CheckOutDate
	}
	return ho
}
