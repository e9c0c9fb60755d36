package amadeus

import (
	"strconv"
	"strings"
)

// Wire schemas for the Amadeus endpoints this package calls. Only the fields
// mapped into canonical records are declared; absent fields stay zero.

type geoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type locationsResponse struct {
	Data []struct {
		SubType  string   `json:"subType"`
		Name     string   `json:"name"`
		IATACode string   `json:"iataCode"`
		ID       string   `json:"id"`
		GeoCode  *geoCode `json:"geoCode"`
	} `json:"data"`
}

type flightEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type flightSegment struct {
	Departure   flightEndpoint `json:"departure"`
	Arrival     flightEndpoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
}

type itinerary struct {
	Duration string          `json:"duration"`
	Segments []flightSegment `json:"segments"`
}

type flightOffer struct {
	ID          string      `json:"id"`
	Itineraries []itinerary `json:"itineraries"`
	Price       struct {
		Currency   string `json:"currency"`
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
	} `json:"price"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type hotelOffer struct {
	Hotel struct {
		HotelID       string `json:"hotelId"`
		Name          string `json:"name"`
		CityCode      string `json:"cityCode"`
		HotelCategory string `json:"hotelCategory"`
		Address       struct {
			Lines []string `json:"lines"`
		} `json:"address"`
		Media []struct {
			URI string `json:"uri"`
		} `json:"media"`
		Amenities []string `json:"amenities"`
	} `json:"hotel"`
	Available bool `json:"available"`
	Offers    []struct {
		CheckInDate  string `json:"checkInDate"`
		CheckOutDate string `json:"checkOutDate"`
		Price        struct {
			Currency string `json:"currency"`
			Total    string `json:"total"`
		} `json:"price"`
	} `json:"offers"`
}

type hotelOffersResponse struct {
	Data []hotelOffer `json:"data"`
}

type poi struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Rank     flexInt  `json:"rank"`
	GeoCode  *geoCode `json:"geoCode"`
}

type poisResponse struct {
	Data []poi `json:"data"`
}

// flexInt decodes a JSON number or numeric string; anything else is absent.
type flexInt struct {
	V     int
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = flexInt{}
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		*f = flexInt{V: i, Valid: true}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt{V: int(fl), Valid: true}
		return nil
	}
	*f = flexInt{}
	return nil
}
