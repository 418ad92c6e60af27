package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/infra/adapters/ai"
	"brainz-training/internal/usecase"
)

// nopArchive satisfies the archive port without touching any storage.
type nopArchive struct{}

func (nopArchive) Save(ctx context.Context, chats []*model.Chat) error { return nil }
func (nopArchive) Load(ctx context.Context) ([]*model.Chat, error) { return nil, nil }

// fakeAuthUC stands in for the external auth/user services.
type fakeAuthUC struct {
	loginErr    error
	registerErr error
	user        *model.User
	meErr       error
}

func (f *fakeAuthUC) Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.AuthTokens{AccessToken: "at", RefreshToken: "rt", Username: creds.Username}, nil
}

func (f *fakeAuthUC) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.User{Username: reg.Username, Email: reg.Email}, nil
}

func (f *fakeAuthUC) Logout(ctx context.Context) error { return nil }

func (f *fakeAuthUC) Me(ctx context.Context) (*model.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeAuthUC) UpdateMe(ctx context.Context, user model.User) (*model.User, error) {
	return &user, nil
}

func (f *fakeAuthUC) DeleteMe(ctx context.Context) error { return nil }

func newTestServer(t *testing.T, auth *AuthManager) (*Server, usecase.TrainingUseCase) {
	t.Helper()
	l := zerolog.Nop()
	rep := ai.NewSimulatedReplier(0)
	trainUC := usecase.NewTrainingUseCase(nopArchive{}, rep, 15, &l)
	srv := NewServer(trainUC, &fakeAuthUC{user: &model.User{Username: "alice"}}, rep, auth, "https://brainz.example.com", &l)
	return srv, trainUC
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestChatLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	r := srv.Routes()

	// create
	rec := doJSON(t, r, http.MethodPost, "/api/v1/chats/", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Name != "Training Session 1" {
		t.Fatalf("name = %q", created.Name)
	}

	// new chat becomes active
	rec = doJSON(t, r, http.MethodGet, "/api/v1/chats/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active = %d", rec.Code)
	}

	// send a message, expect the user/assistant pair back
	rec = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+created.ID+"/messages", map[string]string{"content": "hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send = %d: %s", rec.Code, rec.Body.String())
	}
	var sent struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decode send: %v", err)
	}
	if len(sent.Messages) != 2 || sent.Messages[0].Role != "user" || sent.Messages[1].Role != "assistant" {
		t.Fatalf("messages = %+v", sent.Messages)
	}

	// rename
	name := "Physics"
	rec = doJSON(t, r, http.MethodPatch, "/api/v1/chats/"+created.ID+"/", map[string]*string{"name": &name})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}

	// list reflects the rename and the message count
	rec = doJSON(t, r, http.MethodGet, "/api/v1/chats/", nil)
	var list []struct {
		Name         string `json:"name"`
		MessageCount int    `json:"message_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Physics" || list[0].MessageCount != 2 {
		t.Fatalf("list = %+v", list)
	}

	// delete, then active is gone
	rec = doJSON(t, r, http.MethodDelete, "/api/v1/chats/"+created.ID+"/", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/api/v1/chats/active", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("active after delete = %d", rec.Code)
	}
}

func TestSendMessageValidation(t *testing.T) {
	srv, trainUC := newTestServer(t, nil)
	r := srv.Routes()
	chat, _ := trainUC.Create(context.Background())

	rec := doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", map[string]string{"content": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty content = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/v1/chats/nope/messages", map[string]string{"content": "hello"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chat = %d", rec.Code)
	}
}

func TestSearchQueryParameter(t *testing.T) {
	srv, trainUC := newTestServer(t, nil)
	r := srv.Routes()
	ctx := context.Background()

	a, _ := trainUC.Create(ctx)
	b, _ := trainUC.Create(ctx)
	phys := "Physics Basics"
	chem := "Chemistry"
	_, _ = trainUC.Update(ctx, a.ID, model.ChatUpdate{Name: &phys})
	_, _ = trainUC.Update(ctx, b.ID, model.ChatUpdate{Name: &chem})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/chats/?q=phy", nil)
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Physics Basics" {
		t.Fatalf("list = %+v", list)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, trainUC := newTestServer(t, nil)
	r := srv.Routes()
	ctx := context.Background()

	chat, _ := trainUC.Create(ctx)
	name := "Physics Basics"
	_, _ = trainUC.Update(ctx, chat.ID, model.ChatUpdate{Name: &name})
	_, _ = trainUC.SendMessage(ctx, chat.ID, "hello")

	rec := doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/export?format=md", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "physics_basics_chat.md") {
		t.Fatalf("disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "# Physics Basics") {
		t.Fatalf("body = %q", rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/export?format=pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported format = %d", rec.Code)
	}
}

func TestSharePayload(t *testing.T) {
	srv, trainUC := newTestServer(t, nil)
	r := srv.Routes()
	chat, _ := trainUC.Create(context.Background())

	rec := doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/share", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("share = %d", rec.Code)
	}
	var payload sharePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Title != "Training Chat: "+chat.Name {
		t.Fatalf("title = %q", payload.Title)
	}
	if !strings.Contains(payload.Text, chat.Topic) {
		t.Fatalf("text = %q", payload.Text)
	}
	if payload.URL != "https://brainz.example.com/train?chat="+chat.ID {
		t.Fatalf("url = %q", payload.URL)
	}
}

func TestSessionGate(t *testing.T) {
	auth := NewAuthManager("test-secret", false, "", 30*time.Minute)
	srv, _ := newTestServer(t, auth)
	r := srv.Routes()

	// no session cookie
	rec := doJSON(t, r, http.MethodGet, "/api/v1/chats/", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ungated = %d", rec.Code)
	}

	// login mints a session cookie
	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", model.Credentials{Username: "alice", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie set")
	}

	// same request with the cookie passes the gate
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("gated with cookie = %d", rec2.Code)
	}

	// bearer token works too
	token, err := auth.Mint(httptest.NewRecorder(), "alice")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/chats/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusOK {
		t.Fatalf("gated with bearer = %d", rec3.Code)
	}

	// a token signed with a different secret is rejected
	other := NewAuthManager("other-secret", false, "", 30*time.Minute)
	bad, _ := other.Mint(httptest.NewRecorder(), "mallory")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/chats/", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	rec4 := httptest.NewRecorder()
	r.ServeHTTP(rec4, req)
	if rec4.Code != http.StatusUnauthorized {
		t.Fatalf("forged token = %d", rec4.Code)
	}
}

func TestCompanionGreeting(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/v1/companion/greeting", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("greeting = %d", rec.Code)
	}
	var msg companionMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode greeting: %v", err)
	}
	if msg.Role != "assistant" || msg.Content != ai.Greeting {
		t.Fatalf("greeting = %+v", msg)
	}
}

func TestCompanionChatIsStateless(t *testing.T) {
	srv, trainUC := newTestServer(t, nil)
	r := srv.Routes()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/companion/messages", map[string]string{"content": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("companion send = %d: %s", rec.Code, rec.Body.String())
	}
	var msg companionMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if msg.Role != "assistant" || !strings.Contains(msg.Content, `"hello"`) {
		t.Fatalf("reply = %+v", msg)
	}

	// the exchange never lands in the chat collection
	if chats := trainUC.List(context.Background()); len(chats) != 0 {
		t.Fatalf("companion chat was persisted: %+v", chats)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/v1/companion/messages", map[string]string{"content": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty content = %d", rec.Code)
	}
}

func TestLoginFailureIs401(t *testing.T) {
	l := zerolog.Nop()
	rep := ai.NewSimulatedReplier(0)
	trainUC := usecase.NewTrainingUseCase(nopArchive{}, rep, 15, &l)
	srv := NewServer(trainUC, &fakeAuthUC{loginErr: errors.New("bad creds")}, rep, nil, "https://brainz.example.com", &l)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/auth/login", model.Credentials{Username: "alice", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d", rec.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/user/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d", rec.Code)
	}
	var user model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("user = %+v", user)
	}
}

func TestMeUnauthorizedMapping(t *testing.T) {
	l := zerolog.Nop()
	rep := ai.NewSimulatedReplier(0)
	trainUC := usecase.NewTrainingUseCase(nopArchive{}, rep, 15, &l)
	srv := NewServer(trainUC, &fakeAuthUC{meErr: domain.ErrUnauthorized}, rep, nil, "https://brainz.example.com", &l)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/user/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me = %d", rec.Code)
	}
}
