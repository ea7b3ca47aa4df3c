package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// DefaultRoster is the list of cities queried when none is configured.
var DefaultRoster = []string{"Sausar", "Pandhurna", "Chhindwara", "Nagpur", "Bengaluru", "Indore", "Pune"}

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string `validate:"required,url"`

	// Cities to track, in display order.
	Roster []string `validate:"required,min=1,dive,required"`

	// HTTPTimeout bounds each upstream request (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`
	// FetchRetries is the number of extra attempts for transient upstream failures.
	FetchRetries int `validate:"gte=0,lte=10"`
	// CircuitBreaker short-circuits fetches after repeated upstream failures (off by default).
	CircuitBreaker bool

	// RefreshInterval controls how often the dashboard is rebuilt (0 = only on demand).
	RefreshInterval time.Duration `validate:"gte=0"`

	AlertMode alert.Mode `validate:"oneof=accumulate replace"`

	// In-memory history retention.
	StoreMaxHistory int           // max number of readings per city (0 = unlimited)
	StoreMaxAge     time.Duration // max age of readings (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// rosterFile is the YAML shape of WEATHER_ROSTER_FILE.
type rosterFile struct {
	Cities []string `yaml:"cities"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherURL)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	cfg.FetchRetries = getenvInt("FETCH_RETRIES", 0)
	if cfg.CircuitBreaker, err = getenvBool("CIRCUIT_BREAKER", false); err != nil {
		return nil, err
	}

	// Refresh interval: default 15 minutes.
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	mode, err := alert.ParseMode(os.Getenv("ALERT_MODE"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_MODE: %w", err)
	}
	cfg.AlertMode = mode

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	roster, err := loadRoster()
	if err != nil {
		return nil, err
	}
	cfg.Roster = roster

	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("INFO: OPENWEATHER_API_KEY is not set; every fetch will fail")
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadRoster prefers WEATHER_ROSTER_FILE, then WEATHER_CITIES, then DefaultRoster.
func loadRoster() ([]string, error) {
	if path := os.Getenv("WEATHER_ROSTER_FILE"); path != "" {
		return LoadRosterFile(path)
	}
	if cities := common.SplitList(os.Getenv("WEATHER_CITIES")); len(cities) > 0 {
		return cities, nil
	}
	roster := make([]string, len(DefaultRoster))
	copy(roster, DefaultRoster)
	return roster, nil
}

// LoadRosterFile reads a YAML file of the form `cities: [Pune, Nagpur]`.
func LoadRosterFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}

	var cities []string
	for _, c := range rf.Cities {
		cities = append(cities, common.SplitList(c)...)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("roster file %s lists no cities", path)
	}
	return cities, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("INFO: ignoring invalid %s=%q: %v", key, v, err)
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
