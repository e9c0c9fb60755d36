//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"tripsearch/internal/adapters/amadeus"
	server "tripsearch/internal/adapters/http_server"
	"tripsearch/internal/adapters/places"
	redisad "tripsearch/internal/adapters/redis"
	"tripsearch/internal/app"
	"tripsearch/internal/domain"
	"tripsearch/internal/resolve"
)

// ---------- fake upstreams ----------

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func fakeAmadeus(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"access_token":"tok","token_type":"Bearer","expires_in":1799}`)
	})
	mux.HandleFunc("/v1/reference-data/locations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "Paris" {
			writeJSON(w, `{"data":[]}`)
			return
		}
		writeJSON(w, `{"data":[{"subType":"CITY","name":"PARIS","iataCode":"PAR","geoCode":{"latitude":48.85,"longitude":2.35}}]}`)
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{"hotelId":"HLPAR1"},{"hotelId":"HLPAR2"}]}`)
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[
		  {"hotel":{"hotelId":"HLPAR1","name":"Hotel Lutetia","address":{"lines":["45 Bd Raspail"]},"media":[{"uri":"http://img/lutetia.jpg"}]},
		   "offers":[{"checkInDate":"2030-03-10","checkOutDate":"2030-03-12","price":{"currency":"EUR","total":"900.00"}}]},
		  {"hotel":{"hotelId":"HLPAR2","name":"Le Petit Hotel","media":[{"uri":"http://img/petit.jpg"}]},
		   "offers":[{"price":{"currency":"EUR","total":"150.00"}}]}]}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func fakeGoogle(t *testing.T, searches *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(searches, 1)
		if r.URL.Query().Get("query") != "Hotel Lutetia PAR" {
			writeJSON(w, `{"status":"ZERO_RESULTS","results":[]}`)
			return
		}
		writeJSON(w, `{"status":"OK","results":[{"place_id":"lutetia"}]}`)
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"OK","result":{"place_id":"lutetia","rating":4.6,"user_ratings_total":2310,
		  "website":"https://www.hotellutetia.com","photos":[{"photo_reference":"REF1"}]}}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the test ----------

func TestHTTP_EndToEnd_HotelsEnrichedAndCached(t *testing.T) {
	// Start isolated Redis container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"},
		func(hc *docker.HostConfig) {
			hc.AutoRemove = true
			hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
		})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cache := redisad.New(fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp")), "", 0)
	t.Cleanup(func() { _ = cache.Close() })
	if err := pool.Retry(func() error { return cache.Ping(context.Background()) }); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	// Wire the real stack against fake upstreams
	var searches int32
	am, err := amadeus.New(amadeus.Options{BaseURL: fakeAmadeus(t).URL, ClientID: "id", ClientSecret: "secret", RPS: 100})
	if err != nil {
		t.Fatalf("amadeus: %v", err)
	}
	pc, err := places.New(places.Options{APIKey: "AIzaTestKey", BaseURL: fakeGoogle(t, &searches).URL})
	if err != nil {
		t.Fatalf("places: %v", err)
	}
	merger := app.NewEnrichmentMerger(pc, cache, app.MergerOptions{Workers: 2, CacheTTL: time.Minute})
	facade := app.NewSearchFacade(resolve.NewLocationResolver(am), am, am, am, merger).
		WithClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })

	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{Search: facade, Intent: app.NewIntentExtractor(nil), Photos: pc})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	get := func() []domain.HotelOffer {
		res, err := http.Get(ts.URL + "/v1/hotels?city=Paris&check_in=10th+March&check_out=12+Mar")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status %d", res.StatusCode)
		}
		var out []domain.HotelOffer
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	first := get()
	if len(first) != 2 {
		t.Fatalf("want 2 hotels, got %d", len(first))
	}
	if first[0].Name != "Hotel Lutetia" || first[0].Enriched == nil || first[0].Image != "/v1/photos/REF1" {
		t.Fatalf("first hotel not enriched: %+v", first[0])
	}
	if first[1].Image != "http://img/petit.jpg" || first[1].Enriched != nil {
		t.Fatalf("second hotel should keep primary data: %+v", first[1])
	}
	if got := atomic.LoadInt32(&searches); got != 2 {
		t.Fatalf("want 2 place searches, got %d", got)
	}

	second := get()
	if second[0].Image != first[0].Image {
		t.Fatalf("cached enrichment differs: %q vs %q", second[0].Image, first[0].Image)
	}
	// only the miss is looked up again
	if got := atomic.LoadInt32(&searches); got != 3 {
		t.Fatalf("want 3 place searches after cache hit, got %d", got)
	}
}
