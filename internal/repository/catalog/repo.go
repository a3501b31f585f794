package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pricewise-in/pricewise/internal/db"
	"github.com/pricewise-in/pricewise/internal/domain"
)

const (
	productPrefix = domain.KeyPrefix + "products:"
	indexName     = domain.KeyPrefix + "products:idx"
)

// store is the consumer interface for the product catalog (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/index.Catalog on top of a Redis hash store.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the product vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        indexName,
		StorageType: db.StorageHash,
		Prefixes:    []string{productPrefix},
		Fields: []db.IndexField{
			{Name: "price", Type: db.IndexFieldNumeric},
			{Name: "seller", Type: db.IndexFieldTag},
			{
				// KNN queries address the field as @vector.
				Name:           "__vector",
				Alias:          "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes an embedding record keyed by product ID. Re-upserting the
// same ID overwrites the hash in place.
func (r *Repo) Upsert(ctx context.Context, rec domain.EmbeddingRecord) error {
	key := productKey(rec.ProductID)
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a stored embedding record by product ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.EmbeddingRecord, error) {
	key := productKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.EmbeddingRecord{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.EmbeddingRecord{}, db.ErrKeyNotFound
	}
	return parseHashFields(id, m), nil
}

// Query runs a KNN search and returns matching product IDs, nearest first.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"title", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	ids := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		ids = append(ids, strings.TrimPrefix(entry.Key, productPrefix))
	}
	return ids, nil
}

// Reset removes all stored product records.
func (r *Repo) Reset(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, productPrefix+"*")
	if err != nil {
		return fmt.Errorf("scan products: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("del %s: %w", key, err)
		}
	}
	return nil
}

func productKey(id string) string {
	return productPrefix + id
}
