package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Debug().Err(err).Msg("tripctl failed")
		os.Exit(1)
	}
}
