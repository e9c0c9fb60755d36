package shared

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusEnv          string
	AmadeusBaseURL      string
	AmadeusRPS          int

	PlacesKey string

	GroqKey        string
	GroqBaseURL    string
	GroqModel      string
	LLMMaxAttempts int

	RedisAddr string
	RedisDB   int
	RedisPass string

	Workers         int
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
}

var defaults = map[string]any{
	"APP_ENV":                  "prod",
	"LOG_LEVEL":                "info",
	"HTTP_ADDR":                ":8080",
	"METRICS_ADDR":             "",
	"AMADEUS_CLIENT_ID":        "",
	"AMADEUS_CLIENT_SECRET":    "",
	"AMADEUS_ENV":              "test",
	"AMADEUS_BASE_URL":         "",
	"AMADEUS_RPS":              5,
	"GOOGLE_PLACES_API_KEY":    "",
	"GROQ_API_KEY":             "",
	"GROQ_BASE_URL":            "https://api.groq.com/openai/v1",
	"GROQ_MODEL":               "llama-3.1-8b-instant",
	"LLM_MAX_ATTEMPTS":         3,
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"ENRICH_WORKERS":           4,
	"ENRICH_CACHE_TTL_SECONDS": 86400,
	"PROVIDER_TIMEOUT_SECONDS": 30,
}

// Load reads the environment, plus CONFIG_FILE when it is set.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	if f := v.GetString("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("config file not loaded")
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from v, filling defaults for unset keys.
func FromViper(v *viper.Viper) Config {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	c := Config{
		AppEnv:      v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		MetricsAddr: v.GetString("METRICS_ADDR"),

		AmadeusClientID:     v.GetString("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: v.GetString("AMADEUS_CLIENT_SECRET"),
		AmadeusEnv:          v.GetString("AMADEUS_ENV"),
		AmadeusBaseURL:      v.GetString("AMADEUS_BASE_URL"),
		AmadeusRPS:          v.GetInt("AMADEUS_RPS"),

		PlacesKey: v.GetString("GOOGLE_PLACES_API_KEY"),

		GroqKey:        v.GetString("GROQ_API_KEY"),
		GroqBaseURL:    v.GetString("GROQ_BASE_URL"),
		GroqModel:      v.GetString("GROQ_MODEL"),
		LLMMaxAttempts: v.GetInt("LLM_MAX_ATTEMPTS"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisPass: v.GetString("REDIS_PASSWORD"),
		RedisDB:   v.GetInt("REDIS_DB"),

		Workers:         v.GetInt("ENRICH_WORKERS"),
		CacheTTL:        time.Duration(v.GetInt("ENRICH_CACHE_TTL_SECONDS")) * time.Second,
		ProviderTimeout: time.Duration(v.GetInt("PROVIDER_TIMEOUT_SECONDS")) * time.Second,
	}
	c.warnMissing()
	return c
}

func (c Config) warnMissing() {
	if c.AmadeusClientID == "" || c.AmadeusClientSecret == "" {
		log.Warn().Msg("AMADEUS_CLIENT_ID/AMADEUS_CLIENT_SECRET are empty; searches will fail")
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty; hotel enrichment disabled")
	}
	if c.GroqKey == "" {
		log.Warn().Msg("GROQ_API_KEY is empty; intent extraction disabled")
	}
}
