package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// unsignedJWT builds a token whose exp claim is readable without a key.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"exp": exp.Unix()})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(claims) + "."
}

func TestLogin_StoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(tokenPair{AccessToken: "at", RefreshToken: "rt"})
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())
	require.NoError(t, c.Login(context.Background(), "a@b.c", "pw"))
	require.Equal(t, "at", c.accessToken)
	require.Equal(t, "rt", c.refreshToken)
}

func TestUserID_FromAccessToken(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	c := New("http://127.0.0.1:0", 100, testLogger())
	require.Empty(t, c.UserID(), "no token means no identity")

	c.accessToken = header + "." + base64.RawURLEncoding.EncodeToString(claims) + "."
	require.Equal(t, "u1", c.UserID())
}

func TestRefresh_WithoutRefreshToken(t *testing.T) {
	c := New("http://127.0.0.1:0", 100, testLogger())
	require.ErrorIs(t, c.refresh(context.Background()), common.ErrTokenExpired)
}

func TestCreateContentItem_SendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var fields models.ContentFields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		_ = json.NewEncoder(w).Encode(models.ContentItem{ID: "c1", Title: fields.Title, Type: fields.Type})
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())
	c.accessToken = "tok"

	item, err := c.CreateContentItem(context.Background(), models.ContentFields{
		Title: "Salmo 23",
		Type:  models.ContentTypeDevocional,
	})
	require.NoError(t, err)
	require.Equal(t, "c1", item.ID)
	require.Equal(t, "Salmo 23", item.Title)
}

func TestCall_RefreshesOnceOn401(t *testing.T) {
	var contentCalls, refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls++
			_ = json.NewEncoder(w).Encode(tokenPair{AccessToken: "fresh", RefreshToken: "rt2"})
		case "/content":
			contentCalls++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode([]models.ContentItem{{ID: "x"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())
	c.accessToken = "stale"
	c.refreshToken = "rt"

	items, err := c.ListContentItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, 2, contentCalls, "original call plus one retry after refresh")
}

func TestCall_ProactiveRefreshBeforeExpiry(t *testing.T) {
	var refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls++
			_ = json.NewEncoder(w).Encode(tokenPair{AccessToken: "fresh", RefreshToken: "rt2"})
		case "/content":
			require.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode([]models.ContentItem{})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())
	c.accessToken = unsignedJWT(t, time.Now().Add(5*time.Second))
	c.refreshToken = "rt"

	_, err := c.ListContentItems(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, refreshCalls)
}

func TestStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/content/forbidden":
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "admins only")
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())

	_, err := c.UpdateContentItem(context.Background(), models.ContentItem{ID: "missing"})
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = c.UpdateContentItem(context.Background(), models.ContentItem{ID: "forbidden"})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.ErrorContains(t, err, "admins only")
}

func TestPushPreferenceRoundTrip(t *testing.T) {
	var saved models.PushSubscription
	var prefEnabled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/u1/push-subscription" && r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
		case r.URL.Path == "/users/u1/preferences" && r.Method == http.MethodPatch:
			var in map[string]bool
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			prefEnabled = in["pushEnabled"]
		case r.URL.Path == "/users/u1/preferences" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]bool{"pushEnabled": prefEnabled})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 100, testLogger())
	ctx := context.Background()

	sub := models.PushSubscription{Endpoint: "https://push.example/ep", Keys: map[string]string{"auth": "k"}}
	require.NoError(t, c.SavePushSubscription(ctx, "u1", sub))
	require.Equal(t, "https://push.example/ep", saved.Endpoint)

	require.NoError(t, c.UpdatePushPreference(ctx, "u1", true))
	got, err := c.GetPushPreference(ctx, "u1")
	require.NoError(t, err)
	require.True(t, got)
}

func TestExpiringSoon(t *testing.T) {
	require.True(t, expiringSoon(unsignedJWT(t, time.Now().Add(time.Second)), refreshLeeway))
	require.False(t, expiringSoon(unsignedJWT(t, time.Now().Add(time.Hour)), refreshLeeway))
	require.False(t, expiringSoon("", refreshLeeway))
	require.False(t, expiringSoon("not-a-jwt", refreshLeeway))
}
