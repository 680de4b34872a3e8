package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// ProductDatabase defines product-related database operations. Products are
// written in bulk, one insert-many per pipeline batch, and are never mutated
// by this subsystem after insertion.
type ProductDatabase interface {
	InsertProducts(ctx context.Context, products []model.Product) error
	CountProducts(ctx context.Context) (int64, error)
}

// InsertProducts bulk-inserts a batch of canonical records in a single call
func (m *mongoDB) InsertProducts(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}

	_, err := m.productsCol.InsertMany(ctx, docs)
	if err != nil {
		log.Error().Err(err).Int("count", len(products)).Msg("Failed to insert products")
		return err
	}

	log.Debug().Int("count", len(products)).Msg("Inserted product batch")
	return nil
}

// CountProducts counts all persisted products
func (m *mongoDB) CountProducts(ctx context.Context) (int64, error) {
	count, err := m.productsCol.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to count products")
		return 0, err
	}

	return count, nil
}
