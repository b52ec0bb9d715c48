package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

type fakeBackend struct {
	mu sync.Mutex

	session    *client.Session
	sessionErr error

	signInSession *client.Session
	signInErr     error
	signUpSession *client.Session
	signUpErr     error
	signOutErr    error

	profile    *client.Profile
	profileErr error

	upsertProfile *client.Profile
	upsertCreated bool
	upsertErr     error

	seedErr   error
	seedCalls int

	listeners []func(*client.Session)
}

func (f *fakeBackend) CurrentSession(context.Context) (*client.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeBackend) SignUp(context.Context, string, string) (*client.Session, error) {
	return f.signUpSession, f.signUpErr
}

func (f *fakeBackend) SignIn(context.Context, string, string) (*client.Session, error) {
	return f.signInSession, f.signInErr
}

func (f *fakeBackend) SignOut(context.Context) error { return f.signOutErr }

func (f *fakeBackend) FetchProfile(context.Context) (*client.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeBackend) UpsertProfile(context.Context, client.ProfilePatch) (*client.Profile, bool, error) {
	return f.upsertProfile, f.upsertCreated, f.upsertErr
}

func (f *fakeBackend) InsertRecord(context.Context, client.NewRecord) (*client.Record, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) ListRecords(context.Context, int) ([]client.Record, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) InsertAnalysis(context.Context, client.NewAnalysis) (*client.Analysis, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) SeedSampleData(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seedCalls++
	return f.seedErr
}

func (f *fakeBackend) OnAuthStateChange(fn func(*client.Session)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeBackend) fireAuthEvent(session *client.Session) {
	f.mu.Lock()
	listeners := append([]func(*client.Session){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(session)
	}
}

func testSession() *client.Session {
	return &client.Session{
		User:         client.User{ID: uuid.New(), Email: "a@b.com"},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
}

func newStore(t *testing.T, backend client.Backend) *Store {
	t.Helper()
	store, err := NewStore(Params{
		Backend: backend,
		Logger:  logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestInitializeRestoresSessionAndProfile(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{
		session: session,
		profile: &client.Profile{UserID: session.User.ID, Occupation: "工程师"},
	}
	store := newStore(t, backend)

	store.Initialize(context.Background())

	state := store.Snapshot()
	if state.Loading {
		t.Fatal("loading should be cleared")
	}
	if state.User == nil || state.User.ID != session.User.ID {
		t.Fatalf("unexpected user %+v", state.User)
	}
	if state.Profile == nil || state.Profile.Occupation != "工程师" {
		t.Fatalf("unexpected profile %+v", state.Profile)
	}
}

func TestInitializeClearsLoadingOnFailure(t *testing.T) {
	backend := &fakeBackend{sessionErr: errors.New("network down")}
	store := newStore(t, backend)

	store.Initialize(context.Background())

	state := store.Snapshot()
	if state.Loading {
		t.Fatal("loading must clear even when restoration fails")
	}
	if state.User != nil {
		t.Fatalf("expected no user, got %+v", state.User)
	}
}

func TestSignInLocalizesTransportFailure(t *testing.T) {
	backend := &fakeBackend{signInErr: errors.New("connection refused")}
	store := newStore(t, backend)

	err := store.SignIn(context.Background(), "a@b.com", "password1")
	if err == nil || err.Error() != MsgSignInFailed {
		t.Fatalf("expected %q, got %v", MsgSignInFailed, err)
	}
}

func TestSignInSurfacesBackendMessage(t *testing.T) {
	backend := &fakeBackend{
		signInErr: &client.APIError{Code: "UNAUTHORIZED", Message: "invalid credentials"},
	}
	store := newStore(t, backend)

	err := store.SignIn(context.Background(), "a@b.com", "wrong")
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestSignOutClearsStateEvenOnBackendFailure(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{session: session, signOutErr: errors.New("server error")}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	store.SignOut(context.Background())

	state := store.Snapshot()
	if state.User != nil || state.Session != nil || state.Profile != nil {
		t.Fatalf("state not cleared: %+v", state)
	}
}

func TestFetchProfileMissingIsEmptyResult(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{session: session, profileErr: client.ErrProfileNotFound}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	state := store.Snapshot()
	if state.Profile != nil {
		t.Fatalf("expected nil profile, got %+v", state.Profile)
	}
	if state.User == nil {
		t.Fatal("missing profile must not sign the user out")
	}
}

func TestFetchProfileFailureKeepsPreviousProfile(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{
		session: session,
		profile: &client.Profile{UserID: session.User.ID, Occupation: "工程师"},
	}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	backend.profile = nil
	backend.profileErr = errors.New("timeout")
	store.FetchProfile(context.Background())

	state := store.Snapshot()
	if state.Profile == nil || state.Profile.Occupation != "工程师" {
		t.Fatalf("transient failure wiped the profile: %+v", state.Profile)
	}
}

func TestUpdateProfileRequiresUser(t *testing.T) {
	backend := &fakeBackend{}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	err := store.UpdateProfile(context.Background(), client.ProfilePatch{Occupation: "工程师"})
	if err == nil || err.Error() != MsgNotSignedIn {
		t.Fatalf("expected %q, got %v", MsgNotSignedIn, err)
	}
}

func TestUpdateProfileSeedsOnFirstSaveOnly(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{
		session:       session,
		profileErr:    client.ErrProfileNotFound,
		upsertProfile: &client.Profile{UserID: session.User.ID},
		upsertCreated: true,
	}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	if err := store.UpdateProfile(context.Background(), client.ProfilePatch{}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if backend.seedCalls != 1 {
		t.Fatalf("expected one seed call, got %d", backend.seedCalls)
	}

	backend.upsertCreated = false
	backend.profileErr = nil
	if err := store.UpdateProfile(context.Background(), client.ProfilePatch{}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if backend.seedCalls != 1 {
		t.Fatalf("repeat save must not seed again, got %d calls", backend.seedCalls)
	}
}

func TestUpdateProfileSurvivesSeedFailure(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{
		session:       session,
		profileErr:    client.ErrProfileNotFound,
		upsertProfile: &client.Profile{UserID: session.User.ID},
		upsertCreated: true,
		seedErr:       errors.New("pubsub unavailable"),
	}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	if err := store.UpdateProfile(context.Background(), client.ProfilePatch{}); err != nil {
		t.Fatalf("seed failure must not fail the save: %v", err)
	}
	state := store.Snapshot()
	if state.Profile == nil {
		t.Fatal("profile should be stored despite seed failure")
	}
}

func TestConcurrentAuthEventsSerialize(t *testing.T) {
	session := testSession()
	backend := &fakeBackend{session: session}
	store := newStore(t, backend)
	store.Initialize(context.Background())

	var commits int
	unsubscribe := store.Subscribe(func(State) { commits++ })
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				backend.fireAuthEvent(testSession())
			} else {
				backend.fireAuthEvent(nil)
			}
		}(i)
	}
	wg.Wait()

	state := store.Snapshot()
	if state.Session == nil {
		if state.User != nil || state.Profile != nil {
			t.Fatalf("signed-out state must be fully cleared: %+v", state)
		}
	} else if state.User == nil || state.User.ID != state.Session.User.ID {
		t.Fatalf("user and session out of sync: %+v", state)
	}
	if commits < 8 {
		t.Fatalf("expected at least 8 commits, got %d", commits)
	}
}
