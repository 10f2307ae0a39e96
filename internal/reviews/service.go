package reviews

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	gosync "sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"testimonials/internal/sync"
	"testimonials/pkg/logging"
	"testimonials/pkg/models"
)

var (
	ErrInvalidReview  = errors.New("invalid review")
	ErrReviewNotFound = errors.New("review not found")
)

// SubmitInput mirrors a submission form: a nil Rating means no star was
// selected, a nil Comment means the form had no comment field.
type SubmitInput struct {
	Rating  *int
	Comment *string
	Lang    Lang
}

type submission struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"required"`
}

// Service runs the read-modify-write cycles over the collection. Writers in
// this process are serialized; other processes sharing the backend are not
// coordinated with.
type Service struct {
	Store     *Store
	Publisher sync.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string

	mu       gosync.Mutex
	validate *validator.Validate
}

func NewService(store *Store, pub sync.Publisher, logger *zap.Logger) *Service {
	return &Service{
		Store:     store,
		Publisher: pub,
		Logger:    logging.OrNop(logger),
		Now:       time.Now,
		NewID:     uuid.NewString,
		validate:  validator.New(),
	}
}

func (s *Service) List(ctx context.Context) []models.Review {
	return s.Store.Load(ctx)
}

func (s *Service) check(in SubmitInput) (submission, error) {
	if in.Rating == nil || in.Comment == nil {
		return submission{}, ErrInvalidReview
	}
	sub := submission{Rating: *in.Rating, Comment: strings.TrimSpace(*in.Comment)}
	if err := s.validate.Struct(sub); err != nil {
		return submission{}, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}
	return sub, nil
}

// Submit appends a new review dated now in the submitter's language.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (models.Review, error) {
	sub, err := s.check(in)
	if err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		ID:      s.NewID(),
		Rating:  sub.Rating,
		Comment: sub.Comment,
		Reply:   "",
		Date:    FormatDate(s.Now(), in.Lang),
	}

	idx, err := s.appendReview(ctx, review)
	if err != nil {
		return models.Review{}, err
	}

	s.publish(sync.EventReviewCreated, review, idx)
	return review, nil
}

func (s *Service) appendReview(ctx context.Context, review models.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := append(s.Store.Load(ctx), review)
	if err := s.Store.Save(ctx, reviews); err != nil {
		return -1, err
	}
	return len(reviews) - 1, nil
}

// Locate resolves a reply reference against reviews: an ID match wins,
// otherwise a decimal position. It returns -1 when nothing matches.
func Locate(reviews []models.Review, ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	for i, r := range reviews {
		if r.ID != "" && r.ID == ref {
			return i
		}
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 0 || n >= len(reviews) {
		return -1
	}
	return n
}

// Get returns the current state of one review, read fresh from the store.
func (s *Service) Get(ctx context.Context, ref string) (models.Review, int, error) {
	reviews := s.Store.Load(ctx)
	idx := Locate(reviews, ref)
	if idx < 0 {
		return models.Review{}, -1, fmt.Errorf("%w: %q", ErrReviewNotFound, ref)
	}
	return reviews[idx], idx, nil
}

// Reply overwrites the reply of the referenced review with the trimmed
// text. A stale or unknown reference leaves the collection untouched.
func (s *Service) Reply(ctx context.Context, ref, text string) (models.Review, error) {
	review, idx, err := s.setReply(ctx, ref, text)
	if err != nil {
		return models.Review{}, err
	}

	s.publish(sync.EventReviewReplied, review, idx)
	return review, nil
}

func (s *Service) setReply(ctx context.Context, ref, text string) (models.Review, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := s.Store.Load(ctx)
	idx := Locate(reviews, ref)
	if idx < 0 {
		s.Logger.Warn("reply target not found", zap.String("ref", ref), zap.Int("reviews", len(reviews)))
		return models.Review{}, -1, fmt.Errorf("%w: %q", ErrReviewNotFound, ref)
	}

	reviews[idx].Reply = strings.TrimSpace(text)
	if err := s.Store.Save(ctx, reviews); err != nil {
		return models.Review{}, -1, err
	}
	return reviews[idx], idx, nil
}

// Import appends reviews from an external dump. Records failing the
// submission rules or whose ID is already stored are skipped; records
// without a path-safe ID get a fresh one.
func (s *Service) Import(ctx context.Context, in []models.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := s.Store.Load(ctx)
	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if r.ID != "" {
			seen[r.ID] = struct{}{}
		}
	}

	added := 0
	for _, r := range in {
		if _, dup := seen[r.ID]; r.ID != "" && dup {
			continue
		}
		rating, comment := r.Rating, r.Comment
		sub, err := s.check(SubmitInput{Rating: &rating, Comment: &comment})
		if err != nil {
			s.Logger.Warn("skip imported review", zap.Int("rating", r.Rating), zap.Error(err))
			continue
		}
		r.Rating, r.Comment = sub.Rating, sub.Comment
		r.Reply = strings.TrimSpace(r.Reply)
		if !models.SafeID(r.ID) {
			if r.ID != "" {
				s.Logger.Warn("replace unsafe review id", zap.String("id", r.ID))
			}
			r.ID = s.NewID()
		}
		seen[r.ID] = struct{}{}
		if r.Date == "" {
			r.Date = FormatDate(s.Now(), LangEN)
		}
		reviews = append(reviews, r)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.Store.Save(ctx, reviews); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Service) publish(typ string, r models.Review, idx int) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(sync.ReviewEvent{
		Type:     typ,
		ReviewID: r.ID,
		Index:    idx,
		Rating:   r.Rating,
		At:       s.Now().UTC(),
	})
}
