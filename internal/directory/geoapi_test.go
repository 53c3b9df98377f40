package directory

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

func TestMunicipalitiesFetchesAndDerivesCodes(t *testing.T) {
    calls := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/municipios" {
            t.Errorf("unexpected path %q", r.URL.Path)
        }
        calls++
        _ = json.NewEncoder(w).Encode([]string{"Lisboa", "Porto", "Vila Nova de Gaia"})
    }))
    defer srv.Close()

    c := NewClient(srv.URL, nil, 0)
    got, err := c.Municipalities(context.Background())
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if calls != 1 {
        t.Errorf("expected 1 upstream call, got %d", calls)
    }
    if len(got) != 3 {
        t.Fatalf("expected 3 municipalities, got %d", len(got))
    }
    if got[0].Name != "Lisboa" {
        t.Errorf("unexpected first name %q", got[0].Name)
    }
    for _, m := range got {
        if m.Code == "" {
            t.Errorf("expected derived code for %q", m.Name)
        }
    }
}

func TestMunicipalitiesUpstreamFailure(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusBadGateway)
    }))
    defer srv.Close()

    c := NewClient(srv.URL, nil, 0)
    if _, err := c.Municipalities(context.Background()); err == nil {
        t.Fatal("expected error on upstream failure")
    }
}

func TestDeriveCode(t *testing.T) {
    cases := []struct {
        name       string
        wantPrefix string
        wantLen    int
    }{
        {"Lisboa", "LISB", 6},
        {"Porto", "PORT", 6},
        {"Faro", "FARO", 6},
        {"Vila Nova de Gaia", "VILA", 6},
        {"Sé", "SÉ", 4}, // short names keep what letters they have
    }
    for _, tc := range cases {
        got := DeriveCode(tc.name)
        if !strings.HasPrefix(got, tc.wantPrefix) {
            t.Errorf("DeriveCode(%q) = %q, want prefix %q", tc.name, got, tc.wantPrefix)
        }
        if len([]rune(got)) != tc.wantLen {
            t.Errorf("DeriveCode(%q) = %q, want %d characters", tc.name, got, tc.wantLen)
        }
        if got != DeriveCode(tc.name) {
            t.Errorf("DeriveCode(%q) is not stable", tc.name)
        }
    }

    if DeriveCode("") != "0000" {
        t.Errorf("expected 0000 for empty name, got %q", DeriveCode(""))
    }
    numeric := DeriveCode("1234")
    if !strings.HasPrefix(numeric, "X") || len(numeric) != 4 {
        t.Errorf("expected X-prefixed fallback for digit-only name, got %q", numeric)
    }
}
