package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"testimonials/pkg/models"
)

const serviceName = "testimonials.ReviewService"

type ListRequest struct{}

type ListResponse struct {
	Items []models.Review `json:"items"`
}

type SubmitRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
	Lang    string  `json:"lang,omitempty"`
}

type ReplyRequest struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

type ReviewResponse struct {
	Review models.Review `json:"review"`
}

type ReviewServiceServer interface {
	List(context.Context, *ListRequest) (*ListResponse, error)
	Submit(context.Context, *SubmitRequest) (*ReviewResponse, error)
	Reply(context.Context, *ReplyRequest) (*ReviewResponse, error)
}

func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&reviewServiceDesc, srv)
}

func unary[Req any, Resp any](method string, call func(ReviewServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReviewServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + serviceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReviewServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var reviewServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("List", ReviewServiceServer.List),
		unary("Submit", ReviewServiceServer.Submit),
		unary("Reply", ReviewServiceServer.Reply),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "testimonials/reviews",
}

// Client calls ReviewService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) List(ctx context.Context) ([]models.Review, error) {
	out := new(ListResponse)
	if err := c.invoke(ctx, "List", &ListRequest{}, out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) Submit(ctx context.Context, req *SubmitRequest) (models.Review, error) {
	out := new(ReviewResponse)
	if err := c.invoke(ctx, "Submit", req, out); err != nil {
		return models.Review{}, err
	}
	return out.Review, nil
}

func (c *Client) Reply(ctx context.Context, ref, text string) (models.Review, error) {
	out := new(ReviewResponse)
	if err := c.invoke(ctx, "Reply", &ReplyRequest{Ref: ref, Text: text}, out); err != nil {
		return models.Review{}, err
	}
	return out.Review, nil
}
