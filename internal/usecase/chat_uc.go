// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
	"brainz-training/internal/domain/ports/repository"
	"brainz-training/internal/infra/logging"
	"brainz-training/internal/infra/metrics"
)

// Compile-time check
var _ TrainingUseCase = (*trainingUC)(nil)

// TrainingUseCase is the sole authority over the training-chat collection and
// the active-chat pointer. Every mutation writes the whole collection through
// the archive before returning; archive failures degrade to in-memory-only
// operation instead of surfacing to the caller.
type TrainingUseCase interface {
	Load(ctx context.Context) error
	Create(ctx context.Context) (*model.Chat, error)
	Select(ctx context.Context, chatID string) error
	Active(ctx context.Context) (*model.Chat, error)
	Get(ctx context.Context, chatID string) (*model.Chat, error)
	List(ctx context.Context) []*model.Chat
	Search(ctx context.Context, query string) []*model.Chat
	Update(ctx context.Context, chatID string, upd model.ChatUpdate) (*model.Chat, error)
	Delete(ctx context.Context, chatID string) error
	SendMessage(ctx context.Context, chatID, content string) ([]model.ChatMessage, error)
}

type trainingUC struct {
	mu       sync.Mutex
	chats    []*model.Chat // newest-first
	activeID string

	archive repository.ChatArchive
	replier adapter.ReplyAdapter
	window  int
	log     *zerolog.Logger
}

func NewTrainingUseCase(archive repository.ChatArchive, replier adapter.ReplyAdapter, historyWindow int, logger *zerolog.Logger) *trainingUC {
	if historyWindow <= 0 {
		historyWindow = 15
	}
	return &trainingUC{
		archive: archive,
		replier: replier,
		window:  historyWindow,
		log:     logger,
	}
}

// Load populates the collection from the archive. An absent or unreadable
// document leaves the collection empty; it never fails the caller. When chats
// exist the newest one becomes active as a convenience default.
func (u *trainingUC) Load(ctx context.Context) error {
	chats, err := u.archive.Load(ctx)
	if err != nil {
		u.log.Warn().Err(err).Msg("chat archive unavailable, starting empty")
		chats = []*model.Chat{}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.chats = chats
	if len(chats) > 0 {
		u.activeID = chats[0].ID
	}
	return nil
}

func (u *trainingUC) Create(ctx context.Context) (*model.Chat, error) {
	defer logging.TraceDuration(u.log, "TrainingUC.Create")()

	u.mu.Lock()
	defer u.mu.Unlock()

	name := fmt.Sprintf("Training Session %d", len(u.chats)+1)
	chat := model.NewChat(uuid.NewString(), name)
	u.chats = append([]*model.Chat{chat}, u.chats...)
	u.activeID = chat.ID

	u.persistLocked(ctx)
	metrics.IncChatCreated()
	return chat.Clone(), nil
}

func (u *trainingUC) Select(ctx context.Context, chatID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.findLocked(chatID) == nil {
		return domain.ErrNotFound
	}
	u.activeID = chatID
	return nil
}

func (u *trainingUC) Active(ctx context.Context) (*model.Chat, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.activeID == "" {
		return nil, domain.ErrNoActiveChat
	}
	chat := u.findLocked(u.activeID)
	if chat == nil {
		return nil, domain.ErrNoActiveChat
	}
	return chat.Clone(), nil
}

func (u *trainingUC) Get(ctx context.Context, chatID string) (*model.Chat, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	chat := u.findLocked(chatID)
	if chat == nil {
		return nil, domain.ErrNotFound
	}
	return chat.Clone(), nil
}

func (u *trainingUC) List(ctx context.Context) []*model.Chat {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*model.Chat, 0, len(u.chats))
	for _, c := range u.chats {
		out = append(out, c.Clone())
	}
	return out
}

// Search filters by case-insensitive substring match against chat names.
func (u *trainingUC) Search(ctx context.Context, query string) []*model.Chat {
	q := strings.ToLower(query)
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*model.Chat, 0, len(u.chats))
	for _, c := range u.chats {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (u *trainingUC) Update(ctx context.Context, chatID string, upd model.ChatUpdate) (*model.Chat, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	chat := u.findLocked(chatID)
	if chat == nil {
		return nil, domain.ErrNotFound
	}
	chat.Apply(upd)
	u.persistLocked(ctx)
	return chat.Clone(), nil
}

func (u *trainingUC) Delete(ctx context.Context, chatID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	idx := -1
	for i, c := range u.chats {
		if c.ID == chatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	u.chats = append(u.chats[:idx], u.chats[idx+1:]...)
	if u.activeID == chatID {
		// No automatic fallback selection.
		u.activeID = ""
	}
	u.persistLocked(ctx)
	metrics.IncChatDeleted()
	return nil
}

// SendMessage appends the user message, obtains the companion's reply and
// appends that too. The lock is not held across the reply call, so the chat
// may be mutated or deleted in the meantime; the reply append re-validates the
// chat and silently drops the reply when its target is gone.
func (u *trainingUC) SendMessage(ctx context.Context, chatID, content string) ([]model.ChatMessage, error) {
	defer logging.TraceDuration(u.log, "TrainingUC.SendMessage")()
	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, u.log)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}

	u.mu.Lock()
	chat := u.findLocked(chatID)
	if chat == nil {
		u.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	chat.AddMessage(ulid.Make().String(), model.RoleUser, content)
	userMsg := chat.Messages[len(chat.Messages)-1]
	metrics.IncMessage(string(model.RoleUser))
	history := make([]model.ChatMessage, len(chat.GetRecentMessages(u.window)))
	copy(history, chat.GetRecentMessages(u.window))
	u.mu.Unlock()

	start := time.Now()
	reply, err := u.replier.Reply(ctx, history)
	metrics.ObserveReplyLatency(u.replier.Name(), err == nil, float64(time.Since(start).Milliseconds()))

	u.mu.Lock()
	defer u.mu.Unlock()

	chat = u.findLocked(chatID)
	if chat == nil {
		// Deleted while the reply was in flight.
		metrics.IncReplyDropped()
		log.Debug().Msg("reply dropped, chat gone")
		return nil, domain.ErrNotFound
	}
	if err != nil {
		// Keep the user message; the companion just failed to answer.
		u.persistLocked(ctx)
		return nil, fmt.Errorf("reply: %w", err)
	}

	chat.AddMessage(ulid.Make().String(), model.RoleAssistant, reply)
	metrics.IncMessage(string(model.RoleAssistant))
	u.persistLocked(ctx)

	// The caller gets its own user message back, not whatever happens to be
	// last in the chat after interleaved sends.
	return []model.ChatMessage{userMsg, chat.Messages[len(chat.Messages)-1]}, nil
}

func (u *trainingUC) findLocked(chatID string) *model.Chat {
	for _, c := range u.chats {
		if c.ID == chatID {
			return c
		}
	}
	return nil
}

// persistLocked writes the whole collection through the archive. Failures are
// counted and logged; the in-memory state stays authoritative.
func (u *trainingUC) persistLocked(ctx context.Context) {
	err := u.archive.Save(ctx, u.chats)
	metrics.IncArchiveWrite(err == nil)
	if err != nil {
		u.log.Warn().Err(err).Msg("chat archive write failed, in-memory state kept")
	}
}
