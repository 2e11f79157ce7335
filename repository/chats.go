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

type ChatRepo struct {
	coll *mongo.Collection
}

func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{coll: db.Collection("chats")}
}

func (r *ChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return errors.Wrap(err, "insert chat")
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ChatRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find chat by id")
	}
	return &chat, nil
}

func (r *ChatRepo) FindByMember(ctx context.Context, member primitive.ObjectID, groupOnly bool) ([]models.Chat, error) {
	filter := bson.M{"members": member}
	if groupOnly {
		filter["group_chat"] = true
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		return nil, errors.Wrap(err, "find chats by member")
	}
	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, errors.Wrap(err, "decode chats")
	}
	return chats, nil
}

func (r *ChatRepo) Search(ctx context.Context, member primitive.ObjectID, name string) ([]models.Chat, error) {
	filter := bson.M{
		"members": member,
		"name":    bson.M{"$regex": name, "$options": "i"},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "search chats")
	}
	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, errors.Wrap(err, "decode chats")
	}
	return chats, nil
}

func (r *ChatRepo) Update(ctx context.Context, chat *models.Chat) error {
	chat.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": chat.ID}, chat)
	if err != nil {
		return errors.Wrap(err, "update chat")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChatRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete chat")
}

func (r *ChatRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "count chats")
}
