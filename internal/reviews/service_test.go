package reviews

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testimonials/internal/kv"
	"testimonials/internal/sync"
	"testimonials/pkg/models"
)

func TestSubmitAppends(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newTestService(t)
	f := seeded(11)

	for i := 0; i < 30; i++ {
		rating := f.IntBetween(1, 5)
		comment := "  " + f.Lorem().Sentence(f.IntBetween(1, 8)) + "\n"
		before := len(svc.List(ctx))

		got, err := svc.Submit(ctx, SubmitInput{Rating: &rating, Comment: &comment, Lang: LangEN})
		require.NoError(t, err)

		after := svc.List(ctx)
		require.Len(t, after, before+1)
		last := after[len(after)-1]
		assert.Equal(t, got, last)
		assert.Equal(t, "", last.Reply)
		assert.Equal(t, rating, last.Rating)
		assert.Equal(t, comment[2:len(comment)-1], last.Comment)
		assert.Equal(t, "January 5, 2024", last.Date)
		assert.NotEmpty(t, last.ID)
	}

	require.Len(t, rec.events, 30)
	assert.Equal(t, sync.EventReviewCreated, rec.events[29].Type)
	assert.Equal(t, 29, rec.events[29].Index)
}

func TestSubmitSpanishDate(t *testing.T) {
	svc, _, _ := newTestService(t)
	got, err := svc.Submit(context.Background(), SubmitInput{Rating: intp(4), Comment: strp("Muy bien"), Lang: LangES})
	require.NoError(t, err)
	assert.Equal(t, "5 de enero de 2024", got.Date)
}

func TestSubmitRejects(t *testing.T) {
	cases := map[string]SubmitInput{
		"no rating":       {Comment: strp("Great!")},
		"no comment":      {Rating: intp(5)},
		"blank comment":   {Rating: intp(5), Comment: strp("   \t\n")},
		"empty comment":   {Rating: intp(3), Comment: strp("")},
		"rating too low":  {Rating: intp(0), Comment: strp("meh")},
		"rating too high": {Rating: intp(6), Comment: strp("wow")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, mem, rec := newTestService(t)

			_, err := svc.Submit(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidReview)
			assert.Empty(t, svc.List(ctx))
			assert.Empty(t, rec.events)

			_, ok, _ := mem.Get(ctx, DefaultKey)
			assert.False(t, ok, "nothing is written for a rejected submission")
		})
	}
}

func TestSubmitSaveFailure(t *testing.T) {
	svc := NewService(NewStore(brokenKV{}, "", nil), nil, nil)
	_, err := svc.Submit(context.Background(), SubmitInput{Rating: intp(5), Comment: strp("ok")})
	assert.ErrorIs(t, err, errBroken)
}

func TestReplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	for i := 1; i <= 3; i++ {
		_, err := svc.Submit(ctx, SubmitInput{Rating: intp(i), Comment: strp("c" + strconv.Itoa(i))})
		require.NoError(t, err)
	}

	_, err := svc.Reply(ctx, "1", "  Thanks!  ")
	require.NoError(t, err)
	once := svc.List(ctx)

	_, err = svc.Reply(ctx, "1", "  Thanks!  ")
	require.NoError(t, err)
	assert.Equal(t, once, svc.List(ctx))
	assert.Equal(t, "Thanks!", once[1].Reply)
}

func TestReplyByIDAndOverwrite(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newTestService(t)
	first, err := svc.Submit(ctx, SubmitInput{Rating: intp(2), Comment: strp("slow")})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{Rating: intp(5), Comment: strp("fast")})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, first.ID, "Sorry")
	require.NoError(t, err)
	got, err := svc.Reply(ctx, first.ID, "We fixed it")
	require.NoError(t, err)
	assert.Equal(t, "We fixed it", got.Reply)

	all := svc.List(ctx)
	assert.Equal(t, "We fixed it", all[0].Reply)
	assert.Equal(t, "", all[1].Reply)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, sync.EventReviewReplied, last.Type)
	assert.Equal(t, first.ID, last.ReviewID)
	assert.Equal(t, 0, last.Index)
}

func TestReplyEmptyTextClears(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.Submit(ctx, SubmitInput{Rating: intp(4), Comment: strp("nice")})
	require.NoError(t, err)
	_, err = svc.Reply(ctx, "0", "hi")
	require.NoError(t, err)

	got, err := svc.Reply(ctx, "0", "   ")
	require.NoError(t, err)
	assert.Equal(t, "", got.Reply)
}

func TestReplyUnknownRefLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, mem, rec := newTestService(t)
	_, err := svc.Submit(ctx, SubmitInput{Rating: intp(5), Comment: strp("only one")})
	require.NoError(t, err)
	before, _, _ := mem.Get(ctx, DefaultKey)
	events := len(rec.events)

	for _, ref := range []string{"1", "-1", "99", "nope", ""} {
		_, err := svc.Reply(ctx, ref, "ghost")
		assert.ErrorIs(t, err, ErrReviewNotFound, ref)
	}

	after, _, _ := mem.Get(ctx, DefaultKey)
	assert.Equal(t, before, after)
	assert.Len(t, rec.events, events)
}

func TestReplyReadsFreshCollection(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestService(t)
	_, err := svc.Submit(ctx, SubmitInput{Rating: intp(5), Comment: strp("first")})
	require.NoError(t, err)

	// another writer replaces the collection behind the service's back
	require.NoError(t, mem.Set(ctx, DefaultKey, `[{"rating":1,"comment":"a","reply":"","date":"d"},{"rating":2,"comment":"b","reply":"","date":"d"}]`))

	_, err = svc.Reply(ctx, "1", "seen")
	require.NoError(t, err)
	all := svc.List(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "seen", all[1].Reply)
}

func TestLocate(t *testing.T) {
	reviews := []models.Review{{ID: "abc"}, {}, {ID: "7"}}
	assert.Equal(t, 0, Locate(reviews, "abc"))
	assert.Equal(t, 1, Locate(reviews, "1"))
	assert.Equal(t, 2, Locate(reviews, "7"), "id match wins over position")
	assert.Equal(t, 0, Locate(reviews, " 0 "))
	assert.Equal(t, -1, Locate(reviews, "3"))
	assert.Equal(t, -1, Locate(reviews, "x"))
	assert.Equal(t, -1, Locate(nil, "0"))
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	dump := []models.Review{
		{Rating: 5, Comment: " Great! ", Reply: "", Date: "March 3, 2023"},
		{Rating: 9, Comment: "bad rating"},
		{Rating: 3, Comment: "   "},
		{ID: "keep-me", Rating: 4, Comment: "ok", Reply: " thanks ", Date: "April 1, 2023"},
	}

	n, err := svc.Import(ctx, dump)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all := svc.List(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "Great!", all[0].Comment)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "March 3, 2023", all[0].Date)
	assert.Equal(t, "keep-me", all[1].ID)
	assert.Equal(t, "thanks", all[1].Reply)

	n, err = svc.Import(ctx, dump[3:])
	require.NoError(t, err)
	assert.Equal(t, 0, n, "already stored ids are skipped")
}

func TestImportReplacesUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	n, err := svc.Import(ctx, []models.Review{
		{ID: "site/42", Rating: 5, Comment: "from the old site"},
		{ID: "a?b#c", Rating: 4, Comment: "query chars"},
		{ID: "legacy_7.v2", Rating: 3, Comment: "already safe"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all := svc.List(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, "id-1", all[0].ID)
	assert.Equal(t, "id-2", all[1].ID)
	assert.Equal(t, "legacy_7.v2", all[2].ID)

	blocks := Render(all, LangEN)
	_, err = svc.Reply(ctx, blocks[0].Ref, "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", svc.List(ctx)[0].Reply)
}

func TestRefFallsBackForUnsafeStoredID(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestService(t)
	require.NoError(t, mem.Set(ctx, DefaultKey, `[{"id":"x","rating":2,"comment":"a"},{"id":"site/42","rating":5,"comment":"b"}]`))

	blocks := Render(svc.List(ctx), LangEN)
	assert.Equal(t, "x", blocks[0].Ref)
	assert.Equal(t, "1", blocks[1].Ref)

	_, err := svc.Reply(ctx, blocks[1].Ref, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", svc.List(ctx)[1].Reply)
}

// slowPublisher blocks every Publish until release is closed.
type slowPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *slowPublisher) Publish(sync.ReviewEvent) {
	select {
	case p.started <- struct{}{}:
	default:
	}
	<-p.release
}

func TestWritersDoNotWaitForPublish(t *testing.T) {
	ctx := context.Background()
	pub := &slowPublisher{started: make(chan struct{}, 1), release: make(chan struct{})}
	svc := NewService(NewStore(kv.NewMemory(), DefaultKey, nil), pub, nil)
	defer close(pub.release)

	submitted := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, SubmitInput{Rating: intp(5), Comment: strp("first"), Lang: LangEN})
		submitted <- err
	}()

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submit never reached its publisher")
	}

	// Submit is parked in Publish; the collection lock must already be free.
	replied := make(chan error, 1)
	go func() {
		_, _, err := svc.setReply(ctx, "0", "while publishing")
		replied <- err
	}()

	select {
	case err := <-replied:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reply waited for the submit's publish")
	}
	assert.Equal(t, "while publishing", svc.List(ctx)[0].Reply)
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(ctx, SubmitInput{Rating: intp(5), Comment: strp("Great!"), Lang: LangEN})
	require.NoError(t, err)

	all := svc.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, models.Review{ID: "id-1", Rating: 5, Comment: "Great!", Reply: "", Date: FormatDate(fixedNow, LangEN)}, all[0])

	blocks := Render(all, LangEN)
	require.Len(t, blocks, 1)
	assert.Equal(t, "★★★★★", blocks[0].Stars)
	assert.False(t, blocks[0].HasReply)
	assert.Empty(t, blocks[0].ReplyLabel)

	_, err = svc.Reply(ctx, "0", "Thanks!")
	require.NoError(t, err)

	all = svc.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "Thanks!", all[0].Reply)
	assert.Equal(t, "Great!", all[0].Comment)

	blocks = Render(all, LangEN)
	assert.True(t, blocks[0].HasReply)
	assert.Equal(t, "Reply: ", blocks[0].ReplyLabel)
	assert.Equal(t, "Thanks!", blocks[0].Reply)
}
