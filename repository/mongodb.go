package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chattu/chattu-backend/logger"
)

// ErrNotFound is returned by every store when the referenced document
// does not exist; callers map it to a 404 on the HTTP path.
var ErrNotFound = errors.New("document not found")

// ConnectMongoDB dials the document store and pings the primary before
// handing back a database handle.
func ConnectMongoDB(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongodb")
	}

	logger.Info().Str("db", dbName).Msg("Successfully connected to MongoDB")
	return client.Database(dbName), nil
}
