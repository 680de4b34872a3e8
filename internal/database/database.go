package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Batman16012001/Locally-Connector-New/internal/config"
)

type Database interface {
	Health() error
	Close(ctx context.Context) error
	JobDatabase
	ProductDatabase
}

type mongoDB struct {
	client *mongo.Client
	db     *mongo.Database

	jobsCol     *mongo.Collection
	productsCol *mongo.Collection
}

func New(config *config.Config) (Database, error) {
	clientOptions := options.Client().ApplyURI(config.MongoDB.URI)
	if config.MongoDB.Username != "" {
		clientOptions.SetAuth(options.Credential{
			Username: config.MongoDB.Username,
			Password: config.MongoDB.Password,
		})
	}

	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, err
	}

	db := client.Database(config.MongoDB.DB)

	jobsCol := db.Collection("jobs")
	jobIndexModels := []mongo.IndexModel{
		{
			// Index for status-based queries
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// Index for sorting by creation date
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index(),
		},
		{
			// TTL index to auto-delete old completed/failed jobs
			Keys:    bson.D{{Key: "completed_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60 * 60 * 24 * 30),
		},
	}

	_, err = jobsCol.Indexes().CreateMany(context.Background(), jobIndexModels)
	if err != nil {
		log.Warn().Err(err).Str("Collection", "Jobs").Msg("Error creating indexes")
	}

	productsCol := db.Collection("products")
	productIndexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lcid", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "handle", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err = productsCol.Indexes().CreateMany(context.Background(), productIndexModels)
	if err != nil {
		log.Warn().Err(err).Str("Collection", "Products").Msg("Error creating indexes")
	}

	return &mongoDB{
		client:      client,
		db:          db,
		jobsCol:     jobsCol,
		productsCol: productsCol,
	}, nil
}

// Health implements Database interface
func (m *mongoDB) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := m.client.Ping(ctx, nil)
	if err != nil {
		log.Error().Msgf("Database health error: %v", err)
		return err
	}

	return nil
}

func (m *mongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
