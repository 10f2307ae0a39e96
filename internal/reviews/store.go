package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"testimonials/internal/kv"
	"testimonials/pkg/logging"
	"testimonials/pkg/models"
)

const DefaultKey = "reviews"

var errWrongShape = errors.New("stored value is not a list of reviews")

// Store reads and writes the whole review collection under one key.
type Store struct {
	KV     kv.KV
	Key    string
	Logger *zap.Logger
}

func NewStore(backend kv.KV, key string, logger *zap.Logger) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{KV: backend, Key: key, Logger: logging.OrNop(logger)}
}

// Load never fails: a missing or blank key, an unreadable backend or a
// value that does not decode all yield an empty collection.
func (s *Store) Load(ctx context.Context) []models.Review {
	raw, ok, err := s.KV.Get(ctx, s.Key)
	if err != nil {
		s.Logger.Warn("load reviews", zap.String("key", s.Key), zap.Error(err))
		return []models.Review{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []models.Review{}
	}

	reviews, err := Decode(raw)
	if err != nil {
		s.Logger.Error("error parsing stored reviews", zap.String("key", s.Key), zap.Error(err))
		return []models.Review{}
	}
	return reviews
}

// Save replaces the stored collection with reviews.
func (s *Store) Save(ctx context.Context, reviews []models.Review) error {
	raw, err := Encode(reviews)
	if err != nil {
		return err
	}
	if err := s.KV.Set(ctx, s.Key, raw); err != nil {
		s.Logger.Error("save reviews", zap.String("key", s.Key), zap.Error(err))
		return fmt.Errorf("save reviews: %w", err)
	}
	return nil
}

// Decode parses a serialized collection. Anything but a JSON array of
// review objects is rejected.
func Decode(raw string) ([]models.Review, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, errWrongShape
	}
	var reviews []models.Review
	if err := json.Unmarshal([]byte(trimmed), &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func Encode(reviews []models.Review) (string, error) {
	if reviews == nil {
		reviews = []models.Review{}
	}
	b, err := json.Marshal(reviews)
	if err != nil {
		return "", fmt.Errorf("encode reviews: %w", err)
	}
	return string(b), nil
}
