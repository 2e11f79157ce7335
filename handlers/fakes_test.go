package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/config"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/uploads"
)

// In-memory stores standing in for the Mongo-backed ones.

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[primitive.ObjectID]models.User)}
}

func (s *memUsers) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *memUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUsers) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *memUsers) Search(ctx context.Context, name string, exclude []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	skip := make(map[primitive.ObjectID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var out []models.User
	for _, user := range s.users {
		if _, ok := skip[user.ID]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(user.Name), strings.ToLower(name)) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *memUsers) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

type memChats struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]models.Chat
}

func newMemChats() *memChats {
	return &memChats{chats: make(map[primitive.ObjectID]models.Chat)}
}

func (s *memChats) Create(ctx context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	s.chats[chat.ID] = *chat
	return nil
}

func (s *memChats) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &chat, nil
}

func (s *memChats) FindByMember(ctx context.Context, member primitive.ObjectID, groupOnly bool) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Chat
	for _, chat := range s.chats {
		if groupOnly && !chat.GroupChat {
			continue
		}
		if chat.HasMember(member) {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (s *memChats) Search(ctx context.Context, member primitive.ObjectID, name string) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Chat
	for _, chat := range s.chats {
		if chat.HasMember(member) && strings.Contains(strings.ToLower(chat.Name), strings.ToLower(name)) {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (s *memChats) Update(ctx context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chat.ID]; !ok {
		return repository.ErrNotFound
	}
	chat.UpdatedAt = time.Now()
	s.chats[chat.ID] = *chat
	return nil
}

func (s *memChats) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, id)
	return nil
}

func (s *memChats) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.chats)), nil
}

type memMessages struct {
	mu       sync.Mutex
	messages []models.Message
}

func (s *memMessages) Create(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *memMessages) FindByChat(ctx context.Context, chat primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inChat []models.Message
	// Newest first, matching the Mongo sort.
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Chat == chat {
			inChat = append(inChat, s.messages[i])
		}
	}
	total := int64(len(inChat))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return inChat[skip:end], total, nil
}

func (s *memMessages) FindWithAttachments(ctx context.Context, chat primitive.ObjectID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, msg := range s.messages {
		if msg.Chat == chat && len(msg.Attachments) > 0 {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *memMessages) DeleteByChat(ctx context.Context, chat primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.Chat != chat {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
	return nil
}

func (s *memMessages) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.messages)), nil
}

type memRequests struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]models.Request
}

func newMemRequests() *memRequests {
	return &memRequests{requests: make(map[primitive.ObjectID]models.Request)}
}

func (s *memRequests) Create(ctx context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	req.CreatedAt = time.Now()
	s.requests[req.ID] = *req
	return nil
}

func (s *memRequests) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (s *memRequests) FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if (req.Sender == a && req.Receiver == b) || (req.Sender == b && req.Receiver == a) {
			r := req
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memRequests) FindByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Request
	for _, req := range s.requests {
		if req.Receiver == receiver {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *memRequests) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

func (s *memRequests) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.requests)), nil
}

func newTestHandler(t *testing.T) (*Handler, *repository.Stores) {
	t.Helper()
	cfg := &config.Config{
		Port:           "3000",
		JWTSecret:      "test-secret",
		AdminSecretKey: "iamadmin",
		FrontendURL:    "http://localhost:5173",
		CookieDays:     15,
		UploadDir:      t.TempDir(),
		UploadBaseURL:  "/uploads",
	}
	stores := &repository.Stores{
		Users:    newMemUsers(),
		Chats:    newMemChats(),
		Messages: &memMessages{},
		Requests: newMemRequests(),
	}
	store, err := uploads.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	require.NoError(t, err)
	hub := realtime.NewHub(stores.Messages)
	return New(cfg, hub, stores, store), stores
}
