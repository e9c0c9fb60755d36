package domain

const (
	DefaultCurrency     = "USD"
	MaxFlightOffers     = 8
	MaxHotelOffers      = 8
	MaxHotelIDsPerQuery = 10
	DefaultAttractions  = 5
	UnknownAirline      = "unknown"
)

// ---- requests (normalized, built by the facade) ----

type FlightRequest struct {
	Origin      LocationCode
	Destination LocationCode
	Departure   CalendarDate
	Return      *CalendarDate
	Currency    string
	Adults      int
	NonStop     bool
	Max         int
}

type HotelRequest struct {
	City     LocationCode
	CheckIn  CalendarDate
	CheckOut CalendarDate
	Adults   int
	Currency string
}

type AttractionRequest struct {
	City  LocationCode
	Limit int
}

// ---- canonical records ----

// FlightLeg is one itinerary of an offer; the outbound leg is inlined in FlightOffer.
type FlightLeg struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Stops       int    `json:"stops"`
	Duration    string `json:"duration,omitempty"`
}

type FlightOffer struct {
	Airline  string `json:"airline"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	FlightLeg
	Return *FlightLeg `json:"return,omitempty"`
}

type HotelOffer struct {
	HotelID   string      `json:"hotel_id,omitempty"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Category  string      `json:"category,omitempty"`
	Price     string      `json:"price,omitempty"`
	Currency  string      `json:"currency"`
	CheckIn   string      `json:"check_in,omitempty"`
	CheckOut  string      `json:"check_out,omitempty"`
	Image     string      `json:"image,omitempty"`
	Amenities []string    `json:"amenities,omitempty"`
	Enriched  *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment holds fields sourced from the secondary place-data provider.
type Enrichment struct {
	Rating         *float64 `json:"rating,omitempty"`
	Reviews        *int     `json:"reviews,omitempty"`
	Address        string   `json:"address,omitempty"`
	Website        string   `json:"website,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"`
	PhotoURL       string   `json:"photo_url,omitempty"`
}

type AttractionRecord struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Rank     *int     `json:"rank,omitempty"`
	GeoCode  *GeoCode `json:"geo_code,omitempty"`
}

// PlaceDetails is what the secondary provider knows about one place. It
// holds no credentials, so it is safe to cache and to serve.
type PlaceDetails struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Reviews        *int     `json:"reviews,omitempty"`
	Address        string   `json:"address,omitempty"`
	Website        string   `json:"website,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"`
}

// TripIntent is the structured form of a free-text trip request.
type TripIntent struct {
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	DepartureDate string `json:"departure_date,omitempty"`
	ReturnDate    string `json:"return_date,omitempty"`
	City          string `json:"city,omitempty"`
	CheckIn       string `json:"check_in,omitempty"`
	CheckOut      string `json:"check_out,omitempty"`
	Adults        int    `json:"adults,omitempty"`
	Currency      string `json:"currency,omitempty"`
}
