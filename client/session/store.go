// Package session owns the signed-in user state for the client: the current
// session, the loaded profile, and the loading flag the UI gates on.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// Localized messages shown when the backend is unreachable. Structured
// backend errors surface their own message instead.
const (
	MsgSignUpFailed        = "注册失败，请稍后重试"
	MsgSignInFailed        = "登录失败，请稍后重试"
	MsgNotSignedIn         = "用户未登录"
	MsgProfileUpdateFailed = "更新个人信息失败"
)

// State is a snapshot of the auth state. Loading starts true and clears once
// Initialize finishes, success or not.
type State struct {
	User    *client.User
	Session *client.Session
	Profile *client.Profile
	Loading bool
}

// Store serializes every state change through a single applier goroutine, so
// concurrent auth events and user actions cannot interleave partial updates.
type Store struct {
	backend client.Backend
	logg    *logger.Logger

	ops  chan op
	quit chan struct{}
	once sync.Once

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

type op struct {
	fn   func(*State)
	done chan struct{}
}

// Params configures the store.
type Params struct {
	Backend client.Backend
	Logger  *logger.Logger
}

func NewStore(params Params) (*Store, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Store{
		backend: params.Backend,
		logg:    params.Logger,
		ops:     make(chan op),
		quit:    make(chan struct{}),
		subs:    map[int]func(State){},
	}
	go s.run()
	return s, nil
}

// Close stops the applier. Pending operations complete first.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
}

func (s *Store) run() {
	state := State{Loading: true}
	for {
		select {
		case <-s.quit:
			return
		case o := <-s.ops:
			o.fn(&state)
			s.notify(state)
			close(o.done)
		}
	}
}

func (s *Store) notify(snapshot State) {
	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// apply commits a mutation through the applier and waits for it.
func (s *Store) apply(fn func(*State)) {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case s.ops <- o:
		<-o.done
	case <-s.quit:
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	var out State
	s.apply(func(st *State) { out = *st })
	return out
}

// Subscribe registers a listener invoked after every committed change. The
// returned function removes it. Listeners run on the applier goroutine and
// must not call back into the store.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Initialize restores a persisted session and loads the profile. It always
// clears the loading flag, even when restoration fails, so the UI never
// hangs on the splash state.
func (s *Store) Initialize(ctx context.Context) {
	defer s.apply(func(st *State) { st.Loading = false })

	session, err := s.backend.CurrentSession(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrNoSession) {
			s.logg.Error(ctx, "failed to restore session", err)
		}
		s.apply(func(st *State) {
			st.User = nil
			st.Session = nil
			st.Profile = nil
		})
	} else {
		s.applySession(session)
		s.FetchProfile(ctx)
	}

	if notifier, ok := s.backend.(client.AuthStateNotifier); ok {
		notifier.OnAuthStateChange(func(session *client.Session) {
			s.applySession(session)
		})
	}
}

func (s *Store) applySession(session *client.Session) {
	s.apply(func(st *State) {
		st.Session = session
		if session == nil {
			st.User = nil
			st.Profile = nil
			return
		}
		user := session.User
		st.User = &user
	})
}

// SignUp registers a new account and signs the user in.
func (s *Store) SignUp(ctx context.Context, email, password string) error {
	session, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		if apiErr := client.AsAPIError(err); apiErr != nil {
			return errors.New(apiErr.Message)
		}
		s.logg.Error(ctx, "sign up request failed", err)
		return errors.New(MsgSignUpFailed)
	}
	s.applySession(session)
	return nil
}

// SignIn authenticates with email and password.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	session, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		if apiErr := client.AsAPIError(err); apiErr != nil {
			return errors.New(apiErr.Message)
		}
		s.logg.Error(ctx, "sign in request failed", err)
		return errors.New(MsgSignInFailed)
	}
	s.applySession(session)
	return nil
}

// SignOut ends the session. Local state clears even when the backend call
// fails, so the user is never stuck signed in.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.backend.SignOut(ctx); err != nil {
		s.logg.Error(ctx, "sign out request failed", err)
	}
	s.applySession(nil)
}

// FetchProfile loads the profile for the signed-in user. A missing profile
// is an empty result. Other failures keep the previous profile so a blip
// does not wipe the screen.
func (s *Store) FetchProfile(ctx context.Context) {
	if s.Snapshot().User == nil {
		return
	}

	profile, err := s.backend.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, client.ErrProfileNotFound) {
			s.apply(func(st *State) { st.Profile = nil })
			return
		}
		s.logg.Error(ctx, "failed to fetch profile", err)
		return
	}
	s.apply(func(st *State) { st.Profile = profile })
}

// UpdateProfile saves the profile. The first save also provisions sample
// records, best effort.
func (s *Store) UpdateProfile(ctx context.Context, patch client.ProfilePatch) error {
	snapshot := s.Snapshot()
	if snapshot.User == nil {
		return errors.New(MsgNotSignedIn)
	}

	profile, created, err := s.backend.UpsertProfile(ctx, patch)
	if err != nil {
		if apiErr := client.AsAPIError(err); apiErr != nil {
			return errors.New(apiErr.Message)
		}
		s.logg.Error(ctx, "profile update request failed", err)
		return errors.New(MsgProfileUpdateFailed)
	}
	s.apply(func(st *State) { st.Profile = profile })

	if created {
		if err := s.backend.SeedSampleData(ctx); err != nil {
			s.logg.Error(ctx, "failed to seed sample data", err)
		}
	}
	return nil
}
