package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/secretbox"
)

// DefaultAPIBaseURL es el API remoto de Email EZ cuando nada lo pisa.
const DefaultAPIBaseURL = "https://emailez-api.azurewebsites.net"

type Config struct {
	// Bloque app (opcional en YAML).
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// API remoto consumido por el cliente HTTP.
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`

	Dashboard struct {
		Addr              string `yaml:"addr"`
		SessionCookie     string `yaml:"session_cookie"`
		Demo              bool   `yaml:"demo"` // usa fixtures en lugar del API remoto
		WorkspaceCacheTTL string `yaml:"workspace_cache_ttl"`
		CheckTokenExpiry  bool   `yaml:"check_token_expiry"`
	} `yaml:"dashboard"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// Envíos (send email / send test email) por usuario.
		Send struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"send"`
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	// Twin del API (solo dev/demos/tests).
	Twin struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"jwt_secret"`
		SeedFile  string `yaml:"seed_file"`
		// SecretKey sella las passwords SMTP en memoria (32 bytes en base64 o hex).
		// Vacío = clave efímera por proceso.
		SecretKey string `yaml:"secret_key"`
	} `yaml:"twin"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides por env.
// Un .env en el directorio actual se carga antes; si no existe se ignora.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()

	// Overrides por env + salvaguarda prod
	c.applyEnvOverrides()

	// Guardia dura: en prod nunca servimos datos demo.
	if strings.EqualFold(c.App.Env, "prod") {
		c.Dashboard.Demo = false
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":8090"
	}
	if c.Dashboard.SessionCookie == "" {
		c.Dashboard.SessionCookie = "__session"
	}
	if c.Dashboard.WorkspaceCacheTTL == "" {
		c.Dashboard.WorkspaceCacheTTL = "30s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "emailez"
	}
	if c.Rate.Send.Limit == 0 {
		c.Rate.Send.Limit = 20
	}
	if c.Rate.Send.Window == "" {
		c.Rate.Send.Window = "1m"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Twin.Addr == "" {
		c.Twin.Addr = ":8091"
	}
	if c.Twin.JWTSecret == "" {
		c.Twin.JWTSecret = "dev-twin-secret"
	}
}

// Validate chequea duraciones y valores enumerados.
func (c *Config) Validate() error {
	durs := map[string]string{
		"api.timeout":                   c.API.Timeout,
		"dashboard.workspace_cache_ttl": c.Dashboard.WorkspaceCacheTTL,
		"cache.memory.default_ttl":      c.Cache.Memory.DefaultTTL,
		"rate.send.window":              c.Rate.Send.Window,
	}
	for name, v := range durs {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind %q no soportado (memory|redis)", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return errors.New("config: cache.redis.addr requerido con cache.kind=redis")
	}
	if c.Rate.Send.Limit < 0 {
		return errors.New("config: rate.send.limit no puede ser negativo")
	}
	if c.Twin.SecretKey != "" {
		if _, err := secretbox.ParseKey(c.Twin.SecretKey); err != nil {
			return fmt.Errorf("config: twin.secret_key: %w", err)
		}
	}
	return nil
}

// APITimeout devuelve api.timeout ya parseado (validado en Load).
func (c *Config) APITimeout() time.Duration { return mustDur(c.API.Timeout, 30*time.Second) }

func (c *Config) WorkspaceCacheTTL() time.Duration {
	return mustDur(c.Dashboard.WorkspaceCacheTTL, 30*time.Second)
}

func (c *Config) MemoryCacheTTL() time.Duration { return mustDur(c.Cache.Memory.DefaultTTL, 2*time.Minute) }

func (c *Config) SendWindow() time.Duration { return mustDur(c.Rate.Send.Window, time.Minute) }

func mustDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("EMAILEZ_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// API: VITE_API_BASE_URL se mantiene por compat con el front existente;
	// EMAILEZ_API_BASE_URL tiene prioridad si ambas están.
	if v, ok := getEnvStr("VITE_API_BASE_URL"); ok {
		c.API.BaseURL = v
	}
	if v, ok := getEnvStr("EMAILEZ_API_BASE_URL"); ok {
		c.API.BaseURL = v
	}
	if v, ok := getEnvStr("EMAILEZ_API_TIMEOUT"); ok {
		c.API.Timeout = v
	}

	// DASHBOARD
	if v, ok := getEnvStr("DASHBOARD_ADDR"); ok {
		c.Dashboard.Addr = v
	}
	if v, ok := getEnvStr("DASHBOARD_SESSION_COOKIE"); ok {
		c.Dashboard.SessionCookie = v
	}
	if v, ok := getEnvBool("DASHBOARD_DEMO"); ok {
		c.Dashboard.Demo = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_SEND_LIMIT"); ok {
		c.Rate.Send.Limit = v
	}
	if v, ok := getEnvStr("RATE_SEND_WINDOW"); ok {
		c.Rate.Send.Window = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}

	// TWIN
	if v, ok := getEnvStr("TWIN_ADDR"); ok {
		c.Twin.Addr = v
	}
	if v, ok := getEnvStr("TWIN_JWT_SECRET"); ok {
		c.Twin.JWTSecret = v
	}
	if v, ok := getEnvStr("TWIN_SECRET_KEY"); ok {
		c.Twin.SecretKey = v
	}
}
