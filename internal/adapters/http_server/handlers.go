package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tripsearch/internal/app"
	"tripsearch/internal/domain"
	"tripsearch/internal/retry"
)

const maxIntentBody = 64 << 10

// Searcher is the search surface; *app.SearchFacade implements it.
type Searcher interface {
	SearchFlights(ctx context.Context, q app.FlightQuery) domain.Result[domain.FlightOffer]
	SearchHotels(ctx context.Context, q app.HotelQuery) domain.Result[domain.HotelOffer]
	SearchAttractions(ctx context.Context, q app.AttractionQuery) domain.Result[domain.AttractionRecord]
}

type IntentParser interface {
	Extract(ctx context.Context, text string) (domain.TripIntent, error)
}

type Handlers struct {
	Search Searcher
	Intent IntentParser
	// Photos backs /v1/photos; nil answers 404.
	Photos domain.PhotoFetcher
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/flights", h.searchFlights)
	s.mux.Get("/v1/hotels", h.searchHotels)
	s.mux.Get("/v1/attractions", h.searchAttractions)
	s.mux.Post("/v1/intent", h.extractIntent)
	s.mux.Get("/v1/photos/{ref}", h.photo)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON always answers 200; search failures travel in the body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// intParam returns 0 when the parameter is absent.
func intParam(r *http.Request, name string) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func (h *Handlers) searchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	adults, ok := intParam(r, "adults")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid adults", "adults must be an integer")
		return
	}
	nonStop := false
	if v := q.Get("non_stop"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid non_stop", "non_stop must be true or false")
			return
		}
		nonStop = b
	}

	res := h.Search.SearchFlights(r.Context(), app.FlightQuery{
		OriginCity:      q.Get("origin"),
		DestinationCity: q.Get("destination"),
		DepartureDate:   q.Get("departure"),
		ReturnDate:      q.Get("return"),
		Currency:        q.Get("currency"),
		Adults:          adults,
		NonStop:         nonStop,
	})
	writeJSON(w, r, res)
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	adults, ok := intParam(r, "adults")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid adults", "adults must be an integer")
		return
	}

	res := h.Search.SearchHotels(r.Context(), app.HotelQuery{
		City:         q.Get("city"),
		CheckInDate:  q.Get("check_in"),
		CheckOutDate: q.Get("check_out"),
		Adults:       adults,
		Currency:     q.Get("currency"),
	})
	writeJSON(w, r, res)
}

func (h *Handlers) searchAttractions(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
		return
	}
	res := h.Search.SearchAttractions(r.Context(), app.AttractionQuery{
		City:  r.URL.Query().Get("city"),
		Limit: limit,
	})
	writeJSON(w, r, res)
}

func (h *Handlers) extractIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBody)).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", `expected {"text": "..."}`)
		return
	}

	ti, err := h.Intent.Extract(r.Context(), body.Text)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeProblem(w, http.StatusBadRequest, "Invalid request", ve.Msg)
		case errors.Is(err, domain.ErrLLMUnavailable):
			writeProblem(w, http.StatusServiceUnavailable, "Intent extraction unavailable", "language model is not configured")
		case errors.Is(err, app.ErrNoIntent):
			writeProblem(w, http.StatusUnprocessableEntity, "No trip details", err.Error())
		case errors.Is(err, retry.ErrRateLimited):
			writeProblem(w, http.StatusTooManyRequests, "Rate limited", "language model is rate limited, try again later")
		default:
			log.Ctx(r.Context()).Error().Err(err).Msg("intent extraction failed")
			writeProblem(w, http.StatusBadGateway, "Upstream error", "intent extraction failed")
		}
		return
	}
	writeJSON(w, r, ti)
}

// photo streams a place photo so the provider key never reaches clients.
func (h *Handlers) photo(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath, so an escaped "/" in the reference arrives encoded.
	ref, err := url.PathUnescape(chi.URLParam(r, "ref"))
	if err != nil || h.Photos == nil || ref == "" {
		writeProblem(w, http.StatusNotFound, "Not found", "photos are not available")
		return
	}
	body, ct, err := h.Photos.FetchPhoto(r.Context(), ref)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("photo fetch failed")
		writeProblem(w, http.StatusBadGateway, "Upstream error", "photo could not be fetched")
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to stream photo")
	}
}
