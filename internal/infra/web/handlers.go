package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
	"brainz-training/internal/infra/adapters/ai"
	"brainz-training/internal/infra/export"
	"brainz-training/internal/usecase"
)

// ===== wire DTOs =====

type messageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type chatSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Topic        string `json:"topic"`
	Aim          string `json:"aim"`
	Description  string `json:"description"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type chatDetail struct {
	chatSummary
	Messages []messageResponse `json:"messages"`
}

func toSummary(c *model.Chat) chatSummary {
	return chatSummary{
		ID:           c.ID,
		Name:         c.Name,
		Topic:        c.Topic,
		Aim:          c.Aim,
		Description:  c.Description,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

func toDetail(c *model.Chat) chatDetail {
	d := chatDetail{chatSummary: toSummary(c)}
	d.Messages = make([]messageResponse, 0, len(c.Messages))
	for _, m := range c.Messages {
		d.Messages = append(d.Messages, toMessage(m))
	}
	return d
}

func toMessage(m model.ChatMessage) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ===== chat handlers =====

// chatsListHandler serves the sidebar list, newest-first. The optional 'q'
// parameter applies the case-insensitive name filter.
func chatsListHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var chats []*model.Chat
		if q := r.URL.Query().Get("q"); q != "" {
			chats = uc.Search(ctx, q)
		} else {
			chats = uc.List(ctx)
		}

		out := make([]chatSummary, 0, len(chats))
		for _, c := range chats {
			out = append(out, toSummary(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func chatsCreateHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := uc.Create(r.Context())
		if err != nil {
			http.Error(w, "Failed to create chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toDetail(chat))
	}
}

func chatActiveHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := uc.Active(r.Context())
		if errors.Is(err, domain.ErrNoActiveChat) {
			http.Error(w, "No active chat", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to resolve active chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toDetail(chat))
	}
}

func chatGetHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := uc.Get(r.Context(), chi.URLParam(r, "chatID"))
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to load chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toDetail(chat))
	}
}

type chatUpdateRequest struct {
	Name        *string `json:"name"`
	Topic       *string `json:"topic"`
	Aim         *string `json:"aim"`
	Description *string `json:"description"`
}

func chatUpdateHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		chat, err := uc.Update(r.Context(), chi.URLParam(r, "chatID"), model.ChatUpdate{
			Name:        req.Name,
			Topic:       req.Topic,
			Aim:         req.Aim,
			Description: req.Description,
		})
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to update chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toSummary(chat))
	}
}

func chatDeleteHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := uc.Delete(r.Context(), chi.URLParam(r, "chatID"))
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to delete chat", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func chatSelectHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := uc.Select(r.Context(), chi.URLParam(r, "chatID"))
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Messages []messageResponse `json:"messages"`
}

func chatSendHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		pair, err := uc.SendMessage(r.Context(), chi.URLParam(r, "chatID"), req.Content)
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			http.Error(w, "Message content is empty", http.StatusBadRequest)
			return
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}
		resp := sendMessageResponse{Messages: make([]messageResponse, 0, len(pair))}
		for _, m := range pair {
			resp.Messages = append(resp.Messages, toMessage(m))
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func chatExportHandler(uc usecase.TrainingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := uc.Get(r.Context(), chi.URLParam(r, "chatID"))
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to load chat", http.StatusInternalServerError)
			return
		}

		exp, err := export.NewExporter(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		if err := exp.Export(export.NewDocument(chat), &buf); err != nil {
			http.Error(w, "Failed to export chat", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", exp.ContentType())
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(chat.Name, exp.Extension())))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

type sharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// chatShareHandler returns the platform-share payload for a chat; the client
// hands it to the native share affordance or copies the URL as a fallback.
func chatShareHandler(uc usecase.TrainingUseCase, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := uc.Get(r.Context(), chi.URLParam(r, "chatID"))
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to load chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sharePayload{
			Title: "Training Chat: " + chat.Name,
			Text:  "Check out this training session about " + chat.Topic,
			URL:   fmt.Sprintf("%s/train?chat=%s", baseURL, chat.ID),
		})
	}
}

// ===== companion (dashboard) chat =====

type companionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func companionGreetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, companionMessage{
			Role:    string(model.RoleAssistant),
			Content: ai.Greeting,
		})
	}
}

// companionSendHandler answers one user message outside any stored chat. The
// exchange is never persisted; the dashboard companion keeps no history.
func companionSendHandler(rep adapter.ReplyAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		content := strings.TrimSpace(req.Content)
		if content == "" {
			http.Error(w, "Message content is empty", http.StatusBadRequest)
			return
		}
		reply, err := rep.Reply(r.Context(), []model.ChatMessage{
			{Role: model.RoleUser, Content: content, Timestamp: time.Now()},
		})
		if err != nil {
			http.Error(w, "Failed to get reply", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, companionMessage{
			Role:    string(model.RoleAssistant),
			Content: reply,
		})
	}
}

// ===== auth handlers =====

func loginHandler(uc usecase.AuthUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		tokens, err := uc.Login(r.Context(), creds)
		if err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if auth != nil {
			if _, err := auth.Mint(w, tokens.Username); err != nil {
				http.Error(w, "Failed to establish session", http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, http.StatusOK, tokens)
	}
}

func registerHandler(uc usecase.AuthUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg model.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := uc.Register(r.Context(), reg)
		if err != nil {
			http.Error(w, "Registration failed", http.StatusBadRequest)
			return
		}
		if auth != nil {
			if _, err := auth.Mint(w, user.Username); err != nil {
				http.Error(w, "Failed to establish session", http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func logoutHandler(uc usecase.AuthUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = uc.Logout(r.Context())
		if auth != nil {
			auth.Clear(w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(uc usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := uc.Me(r.Context())
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "Failed to load profile", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func updateMeHandler(uc usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user model.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		updated, err := uc.UpdateMe(r.Context(), user)
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "Failed to update profile", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteMeHandler(uc usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := uc.DeleteMe(r.Context())
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "Failed to delete account", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
