// Package httpbackend implements the client Backend over the journal HTTP API.
package httpbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

const defaultTimeout = 15 * time.Second

// TokenStorage persists the session token pair between runs. Implementations
// must tolerate Load on an empty store.
type TokenStorage interface {
	Load() (access, refresh string, ok bool)
	Save(access, refresh string)
	Clear()
}

// MemoryTokenStorage keeps tokens for the lifetime of the process.
type MemoryTokenStorage struct {
	mu      sync.Mutex
	access  string
	refresh string
	set     bool
}

func (m *MemoryTokenStorage) Load() (string, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh, m.set
}

func (m *MemoryTokenStorage) Save(access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.set = access, refresh, true
}

func (m *MemoryTokenStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.set = "", "", false
}

// Backend talks to the journal API with centralized auth, token refresh, and
// error mapping.
type Backend struct {
	baseURL string
	http    *http.Client
	tokens  TokenStorage

	mu        sync.Mutex
	session   *client.Session
	listeners []func(*client.Session)
}

// Params configures the HTTP backend.
type Params struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStorage
}

// New validates the params and builds a backend.
func New(params Params) (*Backend, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(params.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	httpClient := params.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	tokens := params.Tokens
	if tokens == nil {
		tokens = &MemoryTokenStorage{}
	}
	return &Backend{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
	}, nil
}

// OnAuthStateChange registers a listener for session transitions. Listeners
// run synchronously after the transition commits.
func (b *Backend) OnAuthStateChange(fn func(*client.Session)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

func (b *Backend) setSession(session *client.Session) {
	b.mu.Lock()
	b.session = session
	listeners := make([]func(*client.Session), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	if session == nil {
		b.tokens.Clear()
	} else {
		b.tokens.Save(session.AccessToken, session.RefreshToken)
	}
	for _, fn := range listeners {
		fn(session)
	}
}

func (b *Backend) currentTokens() (string, string, bool) {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()
	if session != nil {
		return session.AccessToken, session.RefreshToken, true
	}
	return b.tokens.Load()
}

// wire shapes, matching the server envelope.

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type wireUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type wireSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         wireUser `json:"user"`
}

type wireProfile struct {
	UserID      uuid.UUID      `json:"user_id"`
	MBTI        enums.MBTIType `json:"mbti"`
	Occupation  string         `json:"occupation"`
	Personality string         `json:"personality"`
	CurrentWork string         `json:"current_work"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type wireAnalysis struct {
	ID             uuid.UUID `json:"id"`
	RecordID       uuid.UUID `json:"record_id"`
	AnalysisResult string    `json:"analysis_result"`
	Sentiment      *string   `json:"sentiment"`
	Keywords       []string  `json:"keywords"`
	CreatedAt      time.Time `json:"created_at"`
}

type wireRecord struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      enums.RecordType `json:"type"`
	Content   string           `json:"content"`
	FileURL   string           `json:"file_url"`
	CreatedAt time.Time        `json:"created_at"`
	Analyses  []wireAnalysis   `json:"ai_analyses"`
}

func (b *Backend) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		access, _, ok := b.currentTokens()
		if !ok || access == "" {
			return client.ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			return &client.APIError{Code: env.Error.Code, Message: env.Error.Message}
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

// doAuthed issues the request and retries once through a token refresh when
// the access token has gone stale.
func (b *Backend) doAuthed(ctx context.Context, method, path string, body any, out any) error {
	err := b.do(ctx, method, path, body, true, out)
	apiErr := client.AsAPIError(err)
	if apiErr == nil || apiErr.Code != "UNAUTHORIZED" {
		return err
	}
	if refreshErr := b.refresh(ctx); refreshErr != nil {
		return err
	}
	return b.do(ctx, method, path, body, true, out)
}

func (b *Backend) refresh(ctx context.Context) error {
	_, refreshToken, ok := b.currentTokens()
	if !ok || refreshToken == "" {
		return client.ErrNoSession
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	err := b.do(ctx, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, true, &out)
	if err != nil {
		b.setSession(nil)
		return err
	}

	b.mu.Lock()
	session := b.session
	b.mu.Unlock()

	updated := client.Session{}
	if session != nil {
		updated = *session
	}
	updated.AccessToken = out.AccessToken
	updated.RefreshToken = out.RefreshToken
	b.setSession(&updated)
	return nil
}

// CurrentSession restores a session from stored tokens and validates it
// against the server.
func (b *Backend) CurrentSession(ctx context.Context) (*client.Session, error) {
	access, refresh, ok := b.tokens.Load()
	if !ok || access == "" {
		return nil, client.ErrNoSession
	}

	b.mu.Lock()
	if b.session == nil {
		b.session = &client.Session{AccessToken: access, RefreshToken: refresh}
	}
	b.mu.Unlock()

	var out struct {
		User wireUser `json:"user"`
	}
	if err := b.doAuthed(ctx, http.MethodGet, "/api/v1/auth/session", nil, &out); err != nil {
		if client.AsAPIError(err) != nil {
			b.setSession(nil)
			return nil, client.ErrNoSession
		}
		return nil, err
	}

	access, refresh, _ = b.currentTokens()
	session := &client.Session{
		User:         client.User{ID: out.User.ID, Email: out.User.Email},
		AccessToken:  access,
		RefreshToken: refresh,
	}
	b.setSession(session)
	return session, nil
}

func (b *Backend) authenticate(ctx context.Context, path, email, password string) (*client.Session, error) {
	var out wireSession
	err := b.do(ctx, http.MethodPost, path, map[string]string{
		"email":    email,
		"password": password,
	}, false, &out)
	if err != nil {
		return nil, err
	}
	session := &client.Session{
		User:         client.User{ID: out.User.ID, Email: out.User.Email},
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
	b.setSession(session)
	return session, nil
}

func (b *Backend) SignUp(ctx context.Context, email, password string) (*client.Session, error) {
	return b.authenticate(ctx, "/api/v1/auth/register", email, password)
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	return b.authenticate(ctx, "/api/v1/auth/login", email, password)
}

// SignOut revokes the server session. Local state is cleared even when the
// server call fails.
func (b *Backend) SignOut(ctx context.Context) error {
	err := b.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, true, nil)
	b.setSession(nil)
	if errors.Is(err, client.ErrNoSession) {
		return nil
	}
	return err
}

func (b *Backend) FetchProfile(ctx context.Context) (*client.Profile, error) {
	var out struct {
		Profile *wireProfile `json:"profile"`
	}
	if err := b.doAuthed(ctx, http.MethodGet, "/api/v1/profile", nil, &out); err != nil {
		return nil, err
	}
	if out.Profile == nil {
		return nil, client.ErrProfileNotFound
	}
	return profileFromWire(out.Profile), nil
}

func (b *Backend) UpsertProfile(ctx context.Context, patch client.ProfilePatch) (*client.Profile, bool, error) {
	var out struct {
		Profile *wireProfile `json:"profile"`
		Created bool         `json:"created"`
	}
	body := map[string]any{
		"mbti":         string(patch.MBTI),
		"occupation":   patch.Occupation,
		"personality":  patch.Personality,
		"current_work": patch.CurrentWork,
	}
	if err := b.doAuthed(ctx, http.MethodPut, "/api/v1/profile", body, &out); err != nil {
		return nil, false, err
	}
	if out.Profile == nil {
		return nil, false, errors.New("empty profile response")
	}
	return profileFromWire(out.Profile), out.Created, nil
}

func (b *Backend) InsertRecord(ctx context.Context, rec client.NewRecord) (*client.Record, error) {
	var out struct {
		Record *wireRecord `json:"record"`
	}
	body := map[string]any{
		"type":     string(rec.Type),
		"content":  rec.Content,
		"file_url": rec.FileURL,
	}
	if err := b.doAuthed(ctx, http.MethodPost, "/api/v1/records", body, &out); err != nil {
		return nil, err
	}
	if out.Record == nil {
		return nil, errors.New("empty record response")
	}
	record := recordFromWire(out.Record)
	return &record, nil
}

func (b *Backend) ListRecords(ctx context.Context, limit int) ([]client.Record, error) {
	path := "/api/v1/records"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out struct {
		Records []wireRecord `json:"records"`
	}
	if err := b.doAuthed(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	records := make([]client.Record, 0, len(out.Records))
	for i := range out.Records {
		records = append(records, recordFromWire(&out.Records[i]))
	}
	return records, nil
}

func (b *Backend) InsertAnalysis(ctx context.Context, a client.NewAnalysis) (*client.Analysis, error) {
	var out struct {
		Analysis *wireAnalysis `json:"analysis"`
	}
	body := map[string]any{
		"analysis_result": a.AnalysisResult,
		"sentiment":       a.Sentiment,
		"keywords":        a.Keywords,
	}
	path := fmt.Sprintf("/api/v1/records/%s/analyses", a.RecordID)
	if err := b.doAuthed(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, errors.New("empty analysis response")
	}
	analysis := analysisFromWire(out.Analysis)
	return &analysis, nil
}

func (b *Backend) SeedSampleData(ctx context.Context) error {
	return b.doAuthed(ctx, http.MethodPost, "/api/v1/rpc/create-sample-data", nil, nil)
}

func profileFromWire(w *wireProfile) *client.Profile {
	return &client.Profile{
		UserID:      w.UserID,
		MBTI:        w.MBTI,
		Occupation:  w.Occupation,
		Personality: w.Personality,
		CurrentWork: w.CurrentWork,
		UpdatedAt:   w.UpdatedAt,
	}
}

func recordFromWire(w *wireRecord) client.Record {
	analyses := make([]client.Analysis, 0, len(w.Analyses))
	for i := range w.Analyses {
		analyses = append(analyses, analysisFromWire(&w.Analyses[i]))
	}
	return client.Record{
		ID:        w.ID,
		UserID:    w.UserID,
		Type:      w.Type,
		Content:   w.Content,
		FileURL:   w.FileURL,
		CreatedAt: w.CreatedAt,
		Analyses:  analyses,
	}
}

func analysisFromWire(w *wireAnalysis) client.Analysis {
	sentiment := ""
	if w.Sentiment != nil {
		sentiment = *w.Sentiment
	}
	return client.Analysis{
		ID:             w.ID,
		RecordID:       w.RecordID,
		AnalysisResult: w.AnalysisResult,
		Sentiment:      sentiment,
		Keywords:       w.Keywords,
		CreatedAt:      w.CreatedAt,
	}
}
