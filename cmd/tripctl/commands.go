package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/app"
	"tripsearch/internal/shared"
)

var (
	flagCurrency string
	flagAdults   int
	flagReturn   string
	flagNonStop  bool
	flagLimit    int
	flagVerbose  bool

	svc *shared.Services
)

var rootCmd = &cobra.Command{
	Use:          "tripctl",
	Short:        "Search flights, hotels and attractions from the command line",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := shared.Load()
		level := cfg.LogLevel
		if !flagVerbose {
			level = "warn"
		}
		log.Logger = observability.NewLogger("dev", level)

		s, err := shared.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		svc = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			svc.Close()
		}
	},
}

var flightsCmd = &cobra.Command{
	Use:     "flights <origin> <destination> <departure>",
	Short:   "Search flight offers",
	Example: `  tripctl flights Mumbai Paris "15th December" --return "22 Dec" --adults 2`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := svc.Search.SearchFlights(cmd.Context(), app.FlightQuery{
			OriginCity:      args[0],
			DestinationCity: args[1],
			DepartureDate:   args[2],
			ReturnDate:      flagReturn,
			Currency:        flagCurrency,
			Adults:          flagAdults,
			NonStop:         flagNonStop,
		})
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var hotelsCmd = &cobra.Command{
	Use:     "hotels <city> <check-in> <check-out>",
	Short:   "Search hotel offers, enriched with Google Places data when configured",
	Example: `  tripctl hotels Goa 2025-12-15 2025-12-18`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := svc.Search.SearchHotels(cmd.Context(), app.HotelQuery{
			City:         args[0],
			CheckInDate:  args[1],
			CheckOutDate: args[2],
			Adults:       flagAdults,
			Currency:     flagCurrency,
		})
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var attractionsCmd = &cobra.Command{
	Use:   "attractions <city>",
	Short: "List points of interest around a city",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := svc.Search.SearchAttractions(cmd.Context(), app.AttractionQuery{City: args[0], Limit: flagLimit})
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var intentCmd = &cobra.Command{
	Use:   "intent <text...>",
	Short: "Extract structured search arguments from a free-text trip request",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ti, err := svc.Intent.Extract(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), ti)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at LOG_LEVEL instead of warn")

	for _, c := range []*cobra.Command{flightsCmd, hotelsCmd} {
		c.Flags().StringVar(&flagCurrency, "currency", "USD", "ISO 4217 currency code")
		c.Flags().IntVar(&flagAdults, "adults", 1, "number of adult travellers")
	}
	flightsCmd.Flags().StringVar(&flagReturn, "return", "", "return date for a round trip")
	flightsCmd.Flags().BoolVar(&flagNonStop, "non-stop", false, "direct flights only")
	attractionsCmd.Flags().IntVar(&flagLimit, "limit", 5, "maximum number of attractions")

	rootCmd.AddCommand(flightsCmd, hotelsCmd, attractionsCmd, intentCmd)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
