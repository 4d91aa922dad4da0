package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/api"
	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// caller returns the username of the access token the call was
// authenticated with.
func caller(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return claims.Username, nil
}

func requireID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id", common.ErrMissingArgument)
	}
	return nil
}

func (s *GRPCServer) ListMessages(ctx context.Context, req *api.ListMessagesRequest) (*api.ListMessagesResponse, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	box, err := s.messages.List(ctx, username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &api.ListMessagesResponse{
		Sent:     make(map[int64]api.MessageSummary, len(box.Sent)),
		Received: make(map[int64]api.MessageSummary, len(box.Received)),
	}
	for id, m := range box.Sent {
		resp.Sent[id] = summaryToAPI(m)
	}
	for id, m := range box.Received {
		resp.Received[id] = summaryToAPI(m)
	}
	return resp, nil
}

func (s *GRPCServer) ListUnread(ctx context.Context, req *api.ListUnreadRequest) (*api.ListUnreadResponse, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	unread, err := s.messages.ListUnread(ctx, username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &api.ListUnreadResponse{Messages: make(map[int64]api.MessageSummary, len(unread))}
	for _, m := range unread {
		resp.Messages[m.ID] = summaryToAPI(m)
	}
	return resp, nil
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*api.SendMessageResponse, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Send(ctx, username, req.Receiver, req.Subject, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Message sent", "id", msg.ID, "sender", username)
	return &api.SendMessageResponse{ID: msg.ID}, nil
}

func (s *GRPCServer) ReadMessage(ctx context.Context, req *api.ReadMessageRequest) (*api.ReadMessageResponse, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	msg, found, err := s.messages.Fetch(ctx, req.ID, username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if !found {
		return &api.ReadMessageResponse{Found: false}, nil
	}

	return &api.ReadMessageResponse{Found: true, Message: messageToAPI(msg)}, nil
}

func (s *GRPCServer) DeleteMessage(ctx context.Context, req *api.DeleteMessageRequest) (*api.DeleteMessageResponse, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	deleted, err := s.messages.Delete(ctx, req.ID, username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.DeleteMessageResponse{Deleted: deleted}, nil
}

func summaryToAPI(m models.MessageSummary) api.MessageSummary {
	return api.MessageSummary{
		ID:       m.ID,
		Subject:  m.Subject,
		Sender:   m.SenderName,
		Receiver: m.ReceiverName,
		SentAt:   m.SentAt,
		Read:     m.Read,
	}
}

func messageToAPI(m *models.Message) *api.Message {
	return &api.Message{
		ID:       m.ID,
		Subject:  m.Subject,
		Sender:   m.SenderName,
		Receiver: m.ReceiverName,
		SentAt:   m.SentAt,
		Read:     m.Read,
		Content:  m.Content,
	}
}
