// Package store provides read-only access to the Postgres embedding store.
//
// Documents are embedded and inserted by a separate ingestion pipeline into
// the langchain_pg_embedding table; this package only ever reads it.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raphaelgruber/docchat/internal/models"
)

// passageQuery reads every stored (vector, content) pair. The embedding
// column is serialized as delimited numeric text ("[f1,f2,...]") and must
// be parsed before comparison. Full table scan per call: freshness over
// efficiency, acceptable while the corpus is small.
const passageQuery = `SELECT embedding::text, "pageContent" FROM langchain_pg_embedding`

// Config holds Postgres connection configuration.
type Config struct {
	URL string
}

// Store reads stored passages and their embeddings from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the embedding store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// LoadPassages reads the full corpus of stored passages.
// Returns ErrUnavailable when the store cannot be read and ErrEmptyCorpus
// when no passages exist.
func (s *Store) LoadPassages(ctx context.Context) ([]models.StoredPassage, error) {
	rows, err := s.pool.Query(ctx, passageQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query passages: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var passages []models.StoredPassage
	for rows.Next() {
		var raw, content string
		if err := rows.Scan(&raw, &content); err != nil {
			return nil, fmt.Errorf("%w: scan passage: %v", ErrUnavailable, err)
		}
		vector, err := ParseVector(raw)
		if err != nil {
			return nil, err
		}
		passages = append(passages, models.StoredPassage{Vector: vector, Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read passages: %v", ErrUnavailable, err)
	}

	if len(passages) == 0 {
		return nil, ErrEmptyCorpus
	}

	slog.Debug("loaded passages", "count", len(passages), "dimension", len(passages[0].Vector))
	return passages, nil
}

// ParseVector parses a delimited numeric text embedding ("[f1,f2,...]",
// with or without brackets) into a float32 vector.
func ParseVector(raw string) ([]float32, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if strings.TrimSpace(trimmed) == "" {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedVector)
	}

	parts := strings.Split(trimmed, ",")
	vector := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrMalformedVector, i, err)
		}
		vector[i] = float32(f)
	}
	return vector, nil
}
