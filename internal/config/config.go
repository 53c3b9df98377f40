// Package config loads application configuration from environment
// variables.
package config

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Database and listen
// settings are required; the rest fall back to sensible defaults.
type Config struct {
    Env    string // application environment (e.g. "dev", "prod")
    Port   string // HTTP port to listen on
    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    DailyRequestLimit    int           // max active requests per municipality per day
    StorageTimeout       time.Duration // bound on every storage call
    GeoAPIBaseURL        string        // municipality directory base URL
    MunicipalityCacheTTL time.Duration // directory cache lifetime in Redis
}

// Load reads configuration from environment variables.  Missing
// required variables cause the program to exit with a fatal log
// message.
func Load() Config {
    return Config{
        Env:    must("APP_ENV"),
        Port:   must("APP_PORT"),
        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: must("DB_HOST"),
        DBPort: must("DB_PORT"),
        DBName: must("DB_NAME"),

        DailyRequestLimit:    envInt("DAILY_REQUEST_LIMIT", 10),
        StorageTimeout:       envDur("STORAGE_TIMEOUT", 10*time.Second),
        GeoAPIBaseURL:        envStr("GEOAPI_BASE_URL", "https://geoapi.pt"),
        MunicipalityCacheTTL: envDur("MUNICIPALITY_CACHE_TTL", time.Hour),
    }
}

// must retrieves a required environment variable or exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func envStr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envBool(key string, def bool) bool {
    switch os.Getenv(key) {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}
