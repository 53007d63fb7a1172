package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ent0n29/voiceeval/internal/roles"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config contains all runtime settings for the evaluation service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// SessionTTL of zero keeps sessions until their report arrives.
	SessionTTL            time.Duration
	LatestSessionFallback bool

	PublicKey string

	StoreDriver string
	DatabaseURL string

	LogJSON  bool
	LogDebug bool

	Roles []roles.Definition
}

var envKeys = map[string]string{
	"bind_addr":               "APP_BIND_ADDR",
	"shutdown_timeout":        "APP_SHUTDOWN_TIMEOUT",
	"metrics_namespace":       "APP_METRICS_NAMESPACE",
	"session_ttl":             "APP_SESSION_TTL",
	"latest_session_fallback": "APP_LATEST_SESSION_FALLBACK",
	"public_key":              "VAPI_PUBLIC_KEY",
	"store_driver":            "STORE_DRIVER",
	"database_url":            "DATABASE_URL",
	"log_json":                "LOG_JSON",
	"log_debug":               "LOG_DEBUG",
}

// Load reads the optional config file and the environment. Environment
// variables win over file values. Missing required values are an error.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("bind_addr", ":8000")
	v.SetDefault("shutdown_timeout", "15s")
	v.SetDefault("metrics_namespace", "voiceeval")
	v.SetDefault("session_ttl", "0s")
	v.SetDefault("latest_session_fallback", true)
	v.SetDefault("store_driver", StoreDriverPostgres)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		BindAddr:              strings.TrimSpace(v.GetString("bind_addr")),
		MetricsNamespace:      strings.TrimSpace(v.GetString("metrics_namespace")),
		LatestSessionFallback: v.GetBool("latest_session_fallback"),
		PublicKey:             strings.TrimSpace(v.GetString("public_key")),
		StoreDriver:           strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		DatabaseURL:           strings.TrimSpace(v.GetString("database_url")),
		LogJSON:               v.GetBool("log_json"),
		LogDebug:              v.GetBool("log_debug"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationOf(v, "shutdown_timeout")
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL, err = durationOf(v, "session_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg.Roles = DefaultRoles()
	if v.IsSet("roles") {
		var fromFile []roles.Definition
		if err := v.UnmarshalKey("roles", &fromFile); err != nil {
			return Config{}, fmt.Errorf("decoding roles: %w", err)
		}
		cfg.Roles = fromFile
	}
	for i := range cfg.Roles {
		env := AssistantEnvKey(cfg.Roles[i].ID)
		if err := v.BindEnv("assistant."+cfg.Roles[i].ID, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
		if id := strings.TrimSpace(v.GetString("assistant." + cfg.Roles[i].ID)); id != "" {
			cfg.Roles[i].AssistantID = id
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PublicKey == "" {
		return fmt.Errorf("VAPI_PUBLIC_KEY is required")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %q (expected postgres|sqlite|memory)", c.StoreDriver)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("APP_SESSION_TTL must be >= 0")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// AssistantEnvKey names the variable carrying a role's assistant id,
// e.g. team_lead -> ASSISTANT_ID_TEAM_LEAD.
func AssistantEnvKey(roleID string) string {
	return "ASSISTANT_ID_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(roleID), "-", "_"))
}

func durationOf(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", envKeys[key], err)
	}
	return d, nil
}

// DefaultRoles is the built-in role catalogue. Assistant ids come from the
// environment only.
func DefaultRoles() []roles.Definition {
	return []roles.Definition{
		{
			ID:          "project_manager",
			Title:       "Project Manager",
			Description: "Project delivery and team management evaluation",
			Criteria:    []string{"Problem Solving", "Leadership", "Communication", "Accountability", "Planning"},
			Scenario:    "We're 3 months behind schedule and 40% over budget on the Bangalore project. What happened and what's your plan?",
		},
		{
			ID:          "team_lead",
			Title:       "Team Lead",
			Description: "Technical leadership and team management",
			Criteria:    []string{"Mentoring", "Technical Decisions", "Communication", "Conflict Resolution", "Process"},
			Scenario:    "Team velocity dropped 35% and two senior developers resigned. What's happening?",
		},
		{
			ID:          "product_owner",
			Title:       "Product Owner",
			Description: "Product strategy and stakeholder management",
			Criteria:    []string{"Strategy", "Data-Driven", "Stakeholders", "User Focus", "Prioritization"},
			Scenario:    "Last 3 features failed adoption targets and churn is up 15%. Explain your strategy.",
		},
		{
			ID:          "sales_manager",
			Title:       "Sales Manager",
			Description: "Sales performance and team coaching",
			Criteria:    []string{"Sales Skills", "Coaching", "Accounts", "Forecasting", "Pressure"},
			Scenario:    "Missed quota by 30%, pipeline at 1.5x instead of 3x, three accounts at risk. What's your plan?",
		},
	}
}
