package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"testimonials/internal/reviews"
)

type Server struct {
	Service *reviews.Service
}

func NewServer(svc *reviews.Service) *Server {
	return &Server{Service: svc}
}

func (s *Server) List(ctx context.Context, _ *ListRequest) (*ListResponse, error) {
	return &ListResponse{Items: s.Service.List(ctx)}, nil
}

func (s *Server) Submit(ctx context.Context, req *SubmitRequest) (*ReviewResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	review, err := s.Service.Submit(ctx, reviews.SubmitInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Lang:    reviews.ParseLang(req.Lang),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReviewResponse{Review: review}, nil
}

func (s *Server) Reply(ctx context.Context, req *ReplyRequest) (*ReviewResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	review, err := s.Service.Reply(ctx, req.Ref, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReviewResponse{Review: review}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, reviews.ErrInvalidReview):
		return status.Error(codes.InvalidArgument, "rating (1-5) and non-blank comment required")
	case errors.Is(err, reviews.ErrReviewNotFound):
		return status.Error(codes.NotFound, "review not found")
	default:
		return status.Error(codes.Internal, "storage failure")
	}
}
