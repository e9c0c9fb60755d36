package amadeus_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tripsearch/internal/adapters/amadeus"
	"tripsearch/internal/domain"
)

// fakeAmadeus serves the token endpoint and delegates everything else to routes.
func fakeAmadeus(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var tokenHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenHits, 1)
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "id" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client credentials are invalid"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":1799}`))
	})
	for path, h := range routes {
		h := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		})
	}
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &tokenHits
}

func newClient(t *testing.T, base string) *amadeus.Client {
	t.Helper()
	cl, err := amadeus.New(amadeus.Options{BaseURL: base, ClientID: "id", ClientSecret: "secret", RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func jsonBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := amadeus.New(amadeus.Options{ClientID: "id"}); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestBaseURLFor(t *testing.T) {
	if amadeus.BaseURLFor("production") != amadeus.ProductionBaseURL {
		t.Fatalf("production host expected")
	}
	if amadeus.BaseURLFor("test") != amadeus.TestBaseURL || amadeus.BaseURLFor("") != amadeus.TestBaseURL {
		t.Fatalf("sandbox host expected")
	}
}

func TestLookupLocations_RetriesRateLimitThenSuccess(t *testing.T) {
	var hits int32
	ts, tokenHits := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("subType") != "CITY,AIRPORT" || r.URL.Query().Get("keyword") != "Paris" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			switch atomic.AddInt32(&hits, 1) {
			case 1, 2:
				w.WriteHeader(http.StatusTooManyRequests)
			default:
				jsonBody(w, 200, `{"data":[{"subType":"CITY","name":"PARIS","iataCode":"PAR","id":"CPAR","geoCode":{"latitude":48.85,"longitude":2.35}}]}`)
			}
		},
	})
	cl := newClient(t, ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locs, err := cl.LookupLocations(ctx, "Paris")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(locs) != 1 || locs[0].Code() != "PAR" || locs[0].Geo == nil || locs[0].Geo.Latitude != 48.85 {
		t.Fatalf("unexpected locations: %+v", locs)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
	if atomic.LoadInt32(tokenHits) != 1 {
		t.Fatalf("token should be fetched once and reused, got %d", *tokenHits)
	}
}

func TestAPIError_DetailFromBody(t *testing.T) {
	ts, _ := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, r *http.Request) {
			jsonBody(w, 400, `{"errors":[{"status":400,"code":477,"title":"INVALID FORMAT","detail":"departureDate is in the past"}]}`)
		},
	})
	cl := newClient(t, ts.URL)

	_, err := cl.SearchFlights(context.Background(), domain.FlightRequest{Origin: "BOM", Destination: "CDG", Departure: "2020-01-01"})
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Error() != "Amadeus API error: departureDate is in the past" {
		t.Fatalf("unexpected message %q", ue.Error())
	}
	var ae *amadeus.APIError
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("expected wrapped APIError 400, got %v", err)
	}
}

func TestAPIError_RawBodyAndStatusFallback(t *testing.T) {
	e := &amadeus.APIError{Status: 502, Body: []byte("  upstream exploded ")}
	if e.Detail() != "upstream exploded" {
		t.Fatalf("got %q", e.Detail())
	}
	e = &amadeus.APIError{Status: 404}
	if e.Detail() != "Not Found" || !errors.Is(e, domain.ErrNotFound) || !errors.Is(e, amadeus.ErrNotFound) {
		t.Fatalf("404 should match not-found sentinels")
	}
}

func TestBadCredentials_SurfaceTokenError(t *testing.T) {
	ts, _ := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations": func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("API must not be reached without a token")
		},
	})
	cl, err := amadeus.New(amadeus.Options{BaseURL: ts.URL, ClientID: "wrong", ClientSecret: "x", RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = cl.LookupLocations(context.Background(), "Paris")
	if err == nil || !strings.Contains(err.Error(), "Client credentials are invalid") {
		t.Fatalf("expected token error detail, got %v", err)
	}
}

func TestGet_LongRetryAfterKeepsProviderDetail(t *testing.T) {
	var hits int32
	ts, _ := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations/hotels/by-city": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Header().Set("Retry-After", "30")
			jsonBody(w, http.StatusServiceUnavailable, `{"errors":[{"status":503,"title":"SERVICE UNAVAILABLE","detail":"Amadeus maintenance window"}]}`)
		},
	})
	cl := newClient(t, ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := cl.SearchHotels(ctx, domain.HotelRequest{City: "PAR", CheckIn: "2030-01-01", CheckOut: "2030-01-02"})
	elapsed := time.Since(start)

	if err == nil || err.Error() != "Amadeus API error: Amadeus maintenance window" {
		t.Fatalf("expected provider detail, got %v", err)
	}
	if elapsed > 250*time.Millisecond {
		t.Fatalf("should not wait for Retry-After, took %s", elapsed)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("5xx must not be retried, got %d calls", hits)
	}
}

func TestGet_ServerFaultNotRetried(t *testing.T) {
	var hits int32
	ts, _ := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			jsonBody(w, http.StatusInternalServerError, `{"errors":[{"status":500,"detail":"internal error"}]}`)
		},
	})
	cl := newClient(t, ts.URL)

	_, err := cl.SearchFlights(context.Background(), domain.FlightRequest{Origin: "BOM", Destination: "CDG", Departure: "2030-01-01"})
	var ae *amadeus.APIError
	if !errors.As(err, &ae) || ae.Status != 500 {
		t.Fatalf("expected APIError 500, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single call, got %d", hits)
	}
}

func TestGet_RateLimitBeyondDeadlineReturnsAPIError(t *testing.T) {
	var hits int32
	ts, _ := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Header().Set("Retry-After", "1")
			jsonBody(w, http.StatusTooManyRequests, `{"errors":[{"status":429,"detail":"Too many requests"}]}`)
		},
	})
	cl := newClient(t, ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := cl.LookupLocations(ctx, "Paris")
	var ae *amadeus.APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusTooManyRequests {
		t.Fatalf("expected APIError 429, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("wait past the deadline must not be attempted, got %d calls", hits)
	}
}
