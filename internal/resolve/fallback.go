package resolve

import "tripsearch/internal/domain"

// fallbackCodes maps lower-cased city names and aliases to location codes.
// "chenai" is a common misspelling kept on purpose.
var fallbackCodes = map[string]domain.LocationCode{
	// India
	"bangalore": "BLR",
	"bengaluru": "BLR",
	"bombay":    "BOM",
	"mumbai":    "BOM",
	"delhi":     "DEL",
	"new delhi": "DEL",
	"chenai":    "MAA",
	"chennai":   "MAA",
	"madras":    "MAA",
	"kolkata":   "CCU",
	"calcutta":  "CCU",
	"hyderabad": "HYD",
	"goa":       "GOI",

	// International
	"london":        "LHR",
	"new york":      "JFK",
	"new york city": "JFK",
	"nyc":           "JFK",
	"paris":         "CDG",
	"tokyo":         "NRT",
	"dubai":         "DXB",
	"singapore":     "SIN",
	"bangkok":       "BKK",
	"hong kong":     "HKG",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"los angeles":   "LAX",
	"san francisco": "SFO",
	"chicago":       "ORD",
	"miami":         "MIA",
	"amsterdam":     "AMS",
	"frankfurt":     "FRA",
	"madrid":        "MAD",
	"barcelona":     "BCN",
	"rome":          "FCO",
	"milan":         "MXP",
	"zurich":        "ZUR",
	"istanbul":      "IST",
	"doha":          "DOH",
	"kuwait":        "KWI",
	"riyadh":        "RUH",
	"cairo":         "CAI",
	"johannesburg":  "JNB",
	"nairobi":       "NBO",
	"lagos":         "LOS",
}

// FallbackCode looks up an already lower-cased, trimmed name.
func FallbackCode(name string) (domain.LocationCode, bool) {
	c, ok := fallbackCodes[name]
	return c, ok
}
