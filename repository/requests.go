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

type RequestRepo struct {
	coll *mongo.Collection
}

func NewRequestRepo(db *mongo.Database) *RequestRepo {
	return &RequestRepo{coll: db.Collection("requests")}
}

func (r *RequestRepo) Create(ctx context.Context, req *models.Request) error {
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	req.CreatedAt = time.Now().UTC()

	res, err := r.coll.InsertOne(ctx, req)
	if err != nil {
		return errors.Wrap(err, "insert request")
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *RequestRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var req models.Request
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find request by id")
	}
	return &req, nil
}

// FindBetween looks for a request in either direction between two users.
func (r *RequestRepo) FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Request, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
	var req models.Request
	err := r.coll.FindOne(ctx, filter).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find request between users")
	}
	return &req, nil
}

func (r *RequestRepo) FindByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.Request, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"receiver": receiver})
	if err != nil {
		return nil, errors.Wrap(err, "find requests by receiver")
	}
	var reqs []models.Request
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, errors.Wrap(err, "decode requests")
	}
	return reqs, nil
}

func (r *RequestRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete request")
}

func (r *RequestRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "count requests")
}
