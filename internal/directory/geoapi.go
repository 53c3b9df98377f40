// Package directory looks up the list of Portuguese municipalities
// from GeoAPI.pt.  The surrounding HTTP layer uses it to populate the
// municipality fields of a new request; the lifecycle service itself
// trusts the values it is given.
package directory

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const (
    municipalitiesPath = "/municipios"
    cacheKey           = "municipalities"
)

// Municipality is one entry of the directory.  GeoAPI.pt returns bare
// names; the code is derived locally and is stable for a given name.
type Municipality struct {
    Name string `json:"name"`
    Code string `json:"code"`
}

// Client fetches the municipality directory over HTTP.  When a Redis
// client is supplied, responses are cached under a single key so the
// external API is hit at most once per TTL.
type Client struct {
    baseURL  string
    http     *http.Client
    rdb      *redis.Client
    cacheTTL time.Duration
}

// NewClient returns a directory client.  rdb may be nil to disable
// caching.
func NewClient(baseURL string, rdb *redis.Client, cacheTTL time.Duration) *Client {
    if cacheTTL <= 0 {
        cacheTTL = time.Hour
    }
    return &Client{
        baseURL:  strings.TrimRight(baseURL, "/"),
        http:     &http.Client{Timeout: 10 * time.Second},
        rdb:      rdb,
        cacheTTL: cacheTTL,
    }
}

// Municipalities returns the full directory, from cache when possible.
func (c *Client) Municipalities(ctx context.Context) ([]Municipality, error) {
    if c.rdb != nil {
        if raw, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
            var cached []Municipality
            if err := json.Unmarshal(raw, &cached); err == nil {
                return cached, nil
            }
        }
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+municipalitiesPath, nil)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Accept", "application/json")

    resp, err := c.http.Do(req)
    if err != nil {
        return nil, fmt.Errorf("fetch municipalities: %w", err)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("fetch municipalities: unexpected status %d", resp.StatusCode)
    }

    // GeoAPI.pt returns a plain JSON array of municipality names.
    var names []string
    if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
        return nil, fmt.Errorf("decode municipalities: %w", err)
    }

    municipalities := make([]Municipality, 0, len(names))
    for _, name := range names {
        municipalities = append(municipalities, Municipality{Name: name, Code: DeriveCode(name)})
    }

    if c.rdb != nil && len(municipalities) > 0 {
        if raw, err := json.Marshal(municipalities); err == nil {
            if err := c.rdb.Set(ctx, cacheKey, raw, c.cacheTTL).Err(); err != nil {
                log.Printf("directory: cache write failed: %v", err)
            }
        }
    }
    return municipalities, nil
}

var nonLetters = regexp.MustCompile(`[^A-Za-zÀ-ÿ]`)

// DeriveCode builds a short stable code for a municipality name: up
// to four letters of the cleaned, upper-cased name followed by two
// digits of the name's hash.  Names without any letters fall back to
// an X-prefixed three digit hash.
func DeriveCode(name string) string {
    if name == "" {
        return "0000"
    }
    clean := strings.ToUpper(nonLetters.ReplaceAllString(name, ""))
    if clean == "" {
        return fmt.Sprintf("X%03d", absMod(hashCode(name), 1000))
    }
    runes := []rune(clean)
    if len(runes) > 4 {
        runes = runes[:4]
    }
    return fmt.Sprintf("%s%02d", string(runes), absMod(hashCode(name), 100))
}

// hashCode mirrors Java's String.hashCode, which the legacy system
// used to derive codes; keeping it preserves existing code values.
func hashCode(s string) int32 {
    var h int32
    for _, r := range s {
        h = 31*h + int32(r)
    }
    return h
}

func absMod(h int32, m int32) int32 {
    v := h % m
    if v < 0 {
        v = -v
    }
    return v
}
