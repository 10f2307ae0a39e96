package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"testimonials/internal/kv"
	"testimonials/internal/reviews"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	svc := reviews.NewService(reviews.NewStore(kv.NewMemory(), "", nil), nil, nil)
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterReviewServiceServer(srv, NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func TestSubmitListReply(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	rating, comment := 5, "Great!"
	created, err := client.Submit(ctx, &SubmitRequest{Rating: &rating, Comment: &comment, Lang: "es"})
	require.NoError(t, err)
	assert.Equal(t, 5, created.Rating)
	assert.Contains(t, created.Date, " de ")

	items, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created, items[0])

	replied, err := client.Reply(ctx, "0", " Thanks! ")
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", replied.Reply)
	assert.Equal(t, created.ID, replied.ID)
}

func TestStatusCodes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	blank := "  "
	_, err := client.Submit(ctx, &SubmitRequest{Comment: &blank})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Reply(ctx, "3", "x")
	assert.Equal(t, codes.NotFound, status.Code(err))
}
