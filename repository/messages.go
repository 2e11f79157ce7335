package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chattu/chattu-backend/models"
)

type MessageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{coll: db.Collection("messages")}
}

func (r *MessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return errors.Wrap(err, "insert message")
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByChat returns one newest-first page of a chat's messages plus
// the total count.
func (r *MessageRepo) FindByChat(ctx context.Context, chat primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error) {
	filter := bson.M{"chat": chat}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count chat messages")
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find chat messages")
	}
	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, 0, errors.Wrap(err, "decode messages")
	}
	return msgs, total, nil
}

func (r *MessageRepo) FindWithAttachments(ctx context.Context, chat primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{
		"chat":        chat,
		"attachments": bson.M{"$exists": true, "$ne": bson.A{}},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "find messages with attachments")
	}
	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}
	return msgs, nil
}

func (r *MessageRepo) DeleteByChat(ctx context.Context, chat primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"chat": chat})
	return errors.Wrap(err, "delete chat messages")
}

func (r *MessageRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "count messages")
}
