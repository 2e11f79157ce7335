package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chattu/chattu-backend/models"
)

// The handlers and the realtime session consume the document store
// through these interfaces; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Search(ctx context.Context, name string, exclude []primitive.ObjectID) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ChatStore interface {
	Create(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByMember(ctx context.Context, member primitive.ObjectID, groupOnly bool) ([]models.Chat, error)
	Search(ctx context.Context, member primitive.ObjectID, name string) ([]models.Chat, error)
	Update(ctx context.Context, chat *models.Chat) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	FindByChat(ctx context.Context, chat primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error)
	FindWithAttachments(ctx context.Context, chat primitive.ObjectID) ([]models.Message, error)
	DeleteByChat(ctx context.Context, chat primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Request, error)
	FindByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.Request, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Stores bundles the collection-backed implementations.
type Stores struct {
	Users    UserStore
	Chats    ChatStore
	Messages MessageStore
	Requests RequestStore
}

func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:    NewUserRepo(db),
		Chats:    NewChatRepo(db),
		Messages: NewMessageRepo(db),
		Requests: NewRequestRepo(db),
	}
}
