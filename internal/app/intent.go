package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tripsearch/internal/adapters/llm"
	"tripsearch/internal/domain"
)

var ErrNoIntent = errors.New("could not extract trip details")

const intentInstruction = `You extract travel search parameters from a user's trip request.
Reply with ONE JSON object and nothing else. Keys (omit any you cannot infer):
"origin" (departure city), "destination" (arrival city), "departure_date", "return_date",
"city" (city to stay in, usually the destination), "check_in", "check_out",
"adults" (integer), "currency" (ISO 4217 code).
Keep dates exactly as the user wrote them; do not invent a year.`

// IntentExtractor turns a free-text trip request into search arguments.
type IntentExtractor struct {
	llm domain.Completer
}

// NewIntentExtractor accepts a nil completer; Extract then reports
// domain.ErrLLMUnavailable.
func NewIntentExtractor(c domain.Completer) *IntentExtractor {
	return &IntentExtractor{llm: c}
}

func (x *IntentExtractor) Extract(ctx context.Context, text string) (domain.TripIntent, error) {
	if x == nil || x.llm == nil {
		return domain.TripIntent{}, domain.ErrLLMUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.TripIntent{}, &domain.ValidationError{Msg: "Trip request text is empty"}
	}

	reply, err := x.llm.Complete(ctx, intentInstruction, text)
	if err != nil {
		return domain.TripIntent{}, fmt.Errorf("intent completion: %w", err)
	}

	var ti domain.TripIntent
	if !llm.ExtractJSON(reply, &ti) {
		log.Ctx(ctx).Debug().Str("reply", reply).Msg("no JSON in model reply")
		return domain.TripIntent{}, ErrNoIntent
	}
	if ti.City == "" {
		ti.City = ti.Destination
	}
	if ti.CheckIn == "" {
		ti.CheckIn = ti.DepartureDate
	}
	if ti.CheckOut == "" {
		ti.CheckOut = ti.ReturnDate
	}
	ti.Currency = strings.ToUpper(strings.TrimSpace(ti.Currency))
	return ti, nil
}
