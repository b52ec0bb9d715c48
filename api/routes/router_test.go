package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yanchenliu/moodlog-backend/internal/auth"
	"github.com/yanchenliu/moodlog-backend/internal/profiles"
	"github.com/yanchenliu/moodlog-backend/internal/records"
	"github.com/yanchenliu/moodlog-backend/internal/users"
	pkgAuth "github.com/yanchenliu/moodlog-backend/pkg/auth"
	"github.com/yanchenliu/moodlog-backend/pkg/auth/session"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "moodlog", ExpirationMinutes: 30},
	}
}

func testRouter() http.Handler {
	cfg := testConfig()
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel})
	return NewRouter(
		cfg,
		logg,
		stubSessionManager{},
		stubAuthService{},
		stubProfileService{},
		stubRecordsService{},
		stubSeederService{},
	)
}

func mintToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "writer@example.com",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthLive(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterRegisterReturnsCreated(t *testing.T) {
	router := testRouter()
	body := strings.NewReader(`{"email":"writer@example.com","password":"journal-secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterRecordsRequireAuth(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterRecordsCreateAndList(t *testing.T) {
	router := testRouter()
	token := mintToken(t, uuid.New())

	body := strings.NewReader(`{"type":"text","content":"今天很好"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/records/?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Records []records.RecordDTO `json:"records"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(envelope.Data.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(envelope.Data.Records))
	}
}

func TestRouterProfilePutReportsCreated(t *testing.T) {
	router := testRouter()
	token := mintToken(t, uuid.New())

	body := strings.NewReader(`{"mbti":"INTJ","occupation":"工程师"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Created bool `json:"created"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode profile response: %v", err)
	}
	if !envelope.Data.Created {
		t.Fatalf("expected created flag in response")
	}
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         users.UserDTO{ID: uuid.New(), Email: req.Email},
	}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         users.UserDTO{ID: uuid.New(), Email: req.Email},
	}, nil
}

func (stubAuthService) Session(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Email: "writer@example.com"}, nil
}

type stubProfileService struct{}

func (stubProfileService) Get(ctx context.Context, userID uuid.UUID) (*profiles.ProfileDTO, error) {
	return nil, nil
}

func (stubProfileService) Upsert(ctx context.Context, userID uuid.UUID, req profiles.UpsertProfileRequest) (*profiles.ProfileDTO, bool, error) {
	return &profiles.ProfileDTO{UserID: userID, MBTI: enums.MBTIINTJ}, true, nil
}

type stubRecordsService struct{}

func (stubRecordsService) Create(ctx context.Context, userID uuid.UUID, req records.CreateRecordRequest) (*records.RecordDTO, error) {
	return &records.RecordDTO{ID: uuid.New(), UserID: userID, Type: enums.RecordTypeText, Content: req.Content}, nil
}

func (stubRecordsService) List(ctx context.Context, userID uuid.UUID, query records.ListQuery) ([]records.RecordDTO, error) {
	return []records.RecordDTO{{ID: uuid.New(), UserID: userID, Type: enums.RecordTypeText}}, nil
}

func (stubRecordsService) AttachAnalysis(ctx context.Context, userID, recordID uuid.UUID, req records.AttachAnalysisRequest) (*records.AnalysisDTO, error) {
	return &records.AnalysisDTO{ID: uuid.New(), RecordID: recordID, AnalysisResult: req.AnalysisResult}, nil
}

type stubSeederService struct{}

func (stubSeederService) Seed(ctx context.Context, userID uuid.UUID) (bool, error) {
	return true, nil
}
