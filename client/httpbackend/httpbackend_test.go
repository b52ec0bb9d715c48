package httpbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/yanchenliu/moodlog-backend/client"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func newBackend(t *testing.T, handler http.Handler) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend, err := New(Params{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return backend
}

func TestSignInStoresSessionAndNotifies(t *testing.T) {
	userID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.com" {
			t.Fatalf("unexpected email %q", body["email"])
		}
		writeData(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]any{"id": userID, "email": "a@b.com"},
		})
	})

	backend := newBackend(t, mux)

	var notified []*client.Session
	backend.OnAuthStateChange(func(s *client.Session) {
		notified = append(notified, s)
	})

	session, err := backend.SignIn(context.Background(), "a@b.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.User.ID != userID || session.AccessToken != "access-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if len(notified) != 1 || notified[0] == nil || notified[0].AccessToken != "access-1" {
		t.Fatalf("expected one non-nil notification, got %+v", notified)
	}

	access, refresh, ok := backend.tokens.Load()
	if !ok || access != "access-1" || refresh != "refresh-1" {
		t.Fatalf("tokens not persisted: %q %q %v", access, refresh, ok)
	}
}

func TestSignInSurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
	})

	backend := newBackend(t, mux)

	_, err := backend.SignIn(context.Background(), "a@b.com", "wrong")
	apiErr := client.AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestFetchProfileMissingMapsToSentinel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"profile": nil})
	})

	backend := newBackend(t, mux)
	backend.tokens.Save("access-1", "refresh-1")

	_, err := backend.FetchProfile(context.Background())
	if !errors.Is(err, client.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestAuthedCallWithoutTokensReturnsNoSession(t *testing.T) {
	backend := newBackend(t, http.NewServeMux())

	_, err := backend.ListRecords(context.Background(), 5)
	if !errors.Is(err, client.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestStaleTokenRefreshesAndRetries(t *testing.T) {
	var refreshed bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/records", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		writeData(w, http.StatusOK, map[string]any{"records": []any{}})
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshed = true
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh-1" {
			t.Fatalf("unexpected refresh token %q", body["refresh_token"])
		}
		writeData(w, http.StatusOK, map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
		})
	})

	backend := newBackend(t, mux)
	backend.tokens.Save("access-1", "refresh-1")

	records, err := backend.ListRecords(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if !refreshed {
		t.Fatal("expected a refresh round-trip")
	}
	if len(records) != 0 {
		t.Fatalf("unexpected records %+v", records)
	}

	access, refresh, _ := backend.tokens.Load()
	if access != "access-2" || refresh != "refresh-2" {
		t.Fatalf("rotated tokens not stored: %q %q", access, refresh)
	}
}

func TestSignOutClearsSessionEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "redis down")
	})

	backend := newBackend(t, mux)
	backend.tokens.Save("access-1", "refresh-1")

	var notified []*client.Session
	backend.OnAuthStateChange(func(s *client.Session) {
		notified = append(notified, s)
	})

	err := backend.SignOut(context.Background())
	if client.AsAPIError(err) == nil {
		t.Fatalf("expected backend error to surface, got %v", err)
	}

	if _, _, ok := backend.tokens.Load(); ok {
		t.Fatal("tokens should be cleared after sign out")
	}
	if len(notified) != 1 || notified[0] != nil {
		t.Fatalf("expected one nil notification, got %+v", notified)
	}
}

func TestCurrentSessionRestoresFromStoredTokens(t *testing.T) {
	userID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": userID, "email": "a@b.com"},
		})
	})

	backend := newBackend(t, mux)
	backend.tokens.Save("access-1", "refresh-1")

	session, err := backend.CurrentSession(context.Background())
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if session.User.ID != userID || session.User.Email != "a@b.com" {
		t.Fatalf("unexpected session user %+v", session.User)
	}
}

func TestCurrentSessionDropsRejectedTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
	})

	backend := newBackend(t, mux)
	backend.tokens.Save("stale", "stale")

	_, err := backend.CurrentSession(context.Background())
	if !errors.Is(err, client.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, _, ok := backend.tokens.Load(); ok {
		t.Fatal("stale tokens should be cleared")
	}
}
