package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chattu/chattu-backend/models"
)

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection("users")}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}

func (r *UserRepo) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

// Search matches names case-insensitively, excluding the given ids
// (the caller passes itself and its existing friends).
func (r *UserRepo) Search(ctx context.Context, name string, exclude []primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{
		"_id":  bson.M{"$nin": exclude},
		"name": bson.M{"$regex": name, "$options": "i"},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "search users")
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "count users")
}
