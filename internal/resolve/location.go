package resolve

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"tripsearch/internal/domain"
)

// LocationResolver turns free-text place names into location codes using a
// live lookup first and the static fallback table second. Nothing is cached.
type LocationResolver struct {
	lookup domain.LocationLookup
}

// NewLocationResolver accepts a nil lookup, in which case only the table is used.
func NewLocationResolver(lookup domain.LocationLookup) *LocationResolver {
	return &LocationResolver{lookup: lookup}
}

func (r *LocationResolver) Resolve(ctx context.Context, text string) (domain.LocationCode, bool) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", false
	}
	if code, ok := domain.ParseLocationCode(name); ok {
		return code, true
	}

	if r.lookup != nil {
		if code, ok := r.lookupPrimary(ctx, name); ok {
			return code, true
		}
	}

	return FallbackCode(strings.ToLower(name))
}

func (r *LocationResolver) lookupPrimary(ctx context.Context, name string) (domain.LocationCode, bool) {
	locs, err := r.lookup.LookupLocations(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("keyword", name).Msg("location lookup failed, using fallback table")
		return "", false
	}
	if len(locs) == 0 {
		return "", false
	}
	code, ok := domain.ParseLocationCode(locs[0].Code())
	if !ok {
		log.Debug().Str("keyword", name).Str("code", locs[0].Code()).Msg("lookup returned non-IATA code")
	}
	return code, ok
}
