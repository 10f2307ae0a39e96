package reviews

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jaswdr/faker"

	"testimonials/internal/kv"
	"testimonials/internal/sync"
	"testimonials/pkg/models"
)

var fixedNow = time.Date(2024, time.January, 5, 15, 4, 5, 0, time.UTC)

type recorder struct{ events []sync.ReviewEvent }

func (r *recorder) Publish(ev sync.ReviewEvent) { r.events = append(r.events, ev) }

func newTestService(t *testing.T) (*Service, *kv.Memory, *recorder) {
	t.Helper()
	mem := kv.NewMemory()
	rec := &recorder{}
	svc := NewService(NewStore(mem, DefaultKey, nil), rec, nil)
	svc.Now = func() time.Time { return fixedNow }
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, mem, rec
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func seeded(seed int64) faker.Faker { return faker.NewWithSeed(rand.NewSource(seed)) }

func randomReviews(f faker.Faker, n int) []models.Review {
	out := make([]models.Review, 0, n)
	for i := 0; i < n; i++ {
		r := models.Review{
			ID:      f.UUID().V4(),
			Rating:  f.IntBetween(1, 5),
			Comment: f.Lorem().Sentence(f.IntBetween(1, 12)),
			Date:    FormatDate(fixedNow.AddDate(0, 0, -i), LangEN),
		}
		if f.Boolean().Bool() {
			r.Reply = f.Lorem().Sentence(4)
		}
		out = append(out, r)
	}
	return out
}

// brokenKV fails every call.
type brokenKV struct{}

var errBroken = errors.New("disk on fire")

func (brokenKV) Get(context.Context, string) (string, bool, error) { return "", false, errBroken }

func (brokenKV) Set(context.Context, string, string) error { return errBroken }

func (brokenKV) Close() error { return nil }
