// Package config loads the scheduler's tunable knobs: environment
// variables (including those from an optional .env file) over
// compiled-in defaults. No CLI flag or config file overrides them.
// Grounded in noah-isme-sma-adp-api/pkg/config's viper
// layering, adapted from an HTTP service's settings to the solver's GA
// and search parameters. No value here is required — every one has a
// sane default, so the scheduler runs with no environment at all.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// GA holds the population optimizer's tunables (spec §4.6).
type GA struct {
	PopulationSize     int
	Generations        int
	EliteFraction      float64
	SelectionFraction  float64
	MutationRate       float64
}

// Config is the fully resolved set of knobs passed into the Problem.
type Config struct {
	Seed            int64
	DailyCap        int
	Timeout         time.Duration
	LogLevel        string
	LogFormat       string
	GA              GA
}

// Load reads ".env" if present (ignored otherwise), layers environment
// variables on top of defaults, and returns the resolved Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Seed:      v.GetInt64("SEED"),
		DailyCap:  v.GetInt("DAILY_CAP"),
		Timeout:   v.GetDuration("TIMEOUT"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		GA: GA{
			PopulationSize:    v.GetInt("GA_POPULATION_SIZE"),
			Generations:       v.GetInt("GA_GENERATIONS"),
			EliteFraction:     v.GetFloat64("GA_ELITE_FRACTION"),
			SelectionFraction: v.GetFloat64("GA_SELECTION_FRACTION"),
			MutationRate:      v.GetFloat64("GA_MUTATION_RATE"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SEED", time.Now().UnixNano())
	v.SetDefault("DAILY_CAP", 3)
	v.SetDefault("TIMEOUT", "0s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("GA_POPULATION_SIZE", 50)
	v.SetDefault("GA_GENERATIONS", 100)
	v.SetDefault("GA_ELITE_FRACTION", 0.10)
	v.SetDefault("GA_SELECTION_FRACTION", 0.20)
	v.SetDefault("GA_MUTATION_RATE", 0.10)
}
