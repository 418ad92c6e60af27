// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"

	"brainz-training/internal/domain/model"
)

// memArchive is a small in-memory ChatArchive used by unit tests.
type memArchive struct {
	mu      sync.Mutex
	saved   [][]*model.Chat // every Save call, newest last
	loadSet []*model.Chat   // what Load returns
	saveErr error           // used by tests to simulate storage failures
	loadErr error
}

func (m *memArchive) Save(ctx context.Context, chats []*model.Chat) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]*model.Chat, 0, len(chats))
	for _, c := range chats {
		cp = append(cp, c.Clone())
	}
	m.saved = append(m.saved, cp)
	return nil
}

func (m *memArchive) Load(ctx context.Context) ([]*model.Chat, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadSet, nil
}

func (m *memArchive) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *memArchive) lastSaved() []*model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

// fakeReplier answers with a fixed string. The optional hook runs while no
// store lock is held, which lets tests mutate the store mid-reply.
type fakeReplier struct {
	reply string
	err   error
	hook  func()
}

func (f *fakeReplier) Name() string { return "fake" }

func (f *fakeReplier) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return "ok", nil
}

// fakeGateway implements adapter.AuthGateway for AuthUseCase tests.
type fakeGateway struct {
	loginCalls    []model.Credentials
	loginErr      error
	registerErr   error
	loggedOut     bool
	user          *model.User
	updatedUser   *model.User
	deleteMeErr   error
	refreshCalled bool
}

func (f *fakeGateway) Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error) {
	f.loginCalls = append(f.loginCalls, creds)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.AuthTokens{AccessToken: "at", RefreshToken: "rt", Username: creds.Username}, nil
}

func (f *fakeGateway) Refresh(ctx context.Context) (*model.AuthTokens, error) {
	f.refreshCalled = true
	return &model.AuthTokens{AccessToken: "at2", RefreshToken: "rt2"}, nil
}

func (f *fakeGateway) Logout() { f.loggedOut = true }

func (f *fakeGateway) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.User{Username: reg.Username, Email: reg.Email, Name: reg.Name}, nil
}

func (f *fakeGateway) Me(ctx context.Context) (*model.User, error) { return f.user, nil }

func (f *fakeGateway) UpdateMe(ctx context.Context, user model.User) (*model.User, error) {
	f.updatedUser = &user
	return &user, nil
}

func (f *fakeGateway) DeleteMe(ctx context.Context) error { return f.deleteMeErr }
