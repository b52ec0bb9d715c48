// Package client is the application core behind the journaling UI. It talks
// to the backend through a narrow interface so the HTTP transport and tests
// can swap freely.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// ErrNoSession reports that no user is signed in.
var ErrNoSession = errors.New("no active session")

// ErrProfileNotFound reports that the user has never saved a profile. Callers
// treat it as an empty result, not a failure.
var ErrProfileNotFound = errors.New("profile not found")

// User is the authenticated identity.
type User struct {
	ID    uuid.UUID
	Email string
}

// Session carries the token pair for an authenticated user.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Profile mirrors the persisted user profile.
type Profile struct {
	UserID      uuid.UUID
	MBTI        enums.MBTIType
	Occupation  string
	Personality string
	CurrentWork string
	UpdatedAt   time.Time
}

// Analysis is commentary attached to a record.
type Analysis struct {
	ID             uuid.UUID
	RecordID       uuid.UUID
	AnalysisResult string
	Sentiment      string
	Keywords       []string
	CreatedAt      time.Time
}

// Record is one journal entry with its analyses.
type Record struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      enums.RecordType
	Content   string
	FileURL   string
	CreatedAt time.Time
	Analyses  []Analysis
}

// NewRecord is the payload for creating an entry. Type carries the capture
// kind; the backend normalizes screenshots to images.
type NewRecord struct {
	Type    enums.CaptureType
	Content string
	FileURL string
}

// NewAnalysis is the payload for attaching commentary to a record.
type NewAnalysis struct {
	RecordID       uuid.UUID
	AnalysisResult string
	Sentiment      string
	Keywords       []string
}

// ProfilePatch carries the editable profile fields for an upsert.
type ProfilePatch struct {
	MBTI        enums.MBTIType
	Occupation  string
	Personality string
	CurrentWork string
}

// APIError is a structured failure surfaced by the backend. Its message is
// shown to the user verbatim, unlike transport failures which are localized
// to a generic message.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an APIError if one is present.
func AsAPIError(err error) *APIError {
	var typed *APIError
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// Backend is everything the client core needs from the server.
type Backend interface {
	// CurrentSession restores the persisted session, or ErrNoSession.
	CurrentSession(ctx context.Context) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// FetchProfile returns ErrProfileNotFound when the user has never saved one.
	FetchProfile(ctx context.Context) (*Profile, error)
	// UpsertProfile reports whether a new profile row was created.
	UpsertProfile(ctx context.Context, patch ProfilePatch) (*Profile, bool, error)

	InsertRecord(ctx context.Context, rec NewRecord) (*Record, error)
	ListRecords(ctx context.Context, limit int) ([]Record, error)
	InsertAnalysis(ctx context.Context, a NewAnalysis) (*Analysis, error)

	// SeedSampleData provisions starter content for a first-time user.
	SeedSampleData(ctx context.Context) error
}

// AuthStateNotifier is implemented by backends that can push auth changes.
// The callback receives nil when the session ends.
type AuthStateNotifier interface {
	OnAuthStateChange(fn func(*Session))
}
