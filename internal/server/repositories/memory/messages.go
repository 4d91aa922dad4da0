package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
)

var errSameParty = errors.New("sender and receiver must differ")

type messageRepository struct {
	s *store
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	if m.SenderID != nil && m.ReceiverID != nil && *m.SenderID == *m.ReceiverID {
		return nil, fmt.Errorf("db error: %w", errSameParty)
	}

	r.s.lastMessage++
	m.ID = r.s.lastMessage

	stored := *m
	stored.SenderID = copyRef(m.SenderID)
	stored.ReceiverID = copyRef(m.ReceiverID)
	r.s.messages[m.ID] = &stored

	return m, nil
}

func (r *messageRepository) Get(ctx context.Context, id int64, userID string) (*models.Message, error) {
	m, ok := r.s.messages[id]
	if !ok || !(holds(m.SenderID, userID) || holds(m.ReceiverID, userID)) {
		return nil, common.ErrorNotFound
	}
	cp := *m
	cp.SenderID = copyRef(m.SenderID)
	cp.ReceiverID = copyRef(m.ReceiverID)
	return &cp, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id int64, receiverID string) error {
	if m, ok := r.s.messages[id]; ok && holds(m.ReceiverID, receiverID) {
		m.Read = true
	}
	return nil
}

func (r *messageRepository) ListSent(ctx context.Context, userID string) ([]models.MessageSummary, error) {
	return r.collect(func(m *models.Message) bool {
		return holds(m.SenderID, userID)
	}), nil
}

func (r *messageRepository) ListReceived(ctx context.Context, userID string, unreadOnly bool) ([]models.MessageSummary, error) {
	return r.collect(func(m *models.Message) bool {
		return holds(m.ReceiverID, userID) && !(unreadOnly && m.Read)
	}), nil
}

func (r *messageRepository) collect(keep func(*models.Message) bool) []models.MessageSummary {
	var result []models.MessageSummary
	for _, m := range r.s.messages {
		if keep(m) {
			result = append(result, m.Summary())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *messageRepository) Detach(ctx context.Context, id int64, userID string) (bool, bool, error) {
	m, ok := r.s.messages[id]
	if !ok {
		return false, false, nil
	}

	detached := false
	if holds(m.SenderID, userID) {
		m.SenderID = nil
		detached = true
	}
	if holds(m.ReceiverID, userID) {
		m.ReceiverID = nil
		detached = true
	}

	return detached, detached && m.SenderID == nil && m.ReceiverID == nil, nil
}

func (r *messageRepository) Purge(ctx context.Context, id int64) (bool, error) {
	m, ok := r.s.messages[id]
	if !ok || m.SenderID != nil || m.ReceiverID != nil {
		return false, nil
	}
	delete(r.s.messages, id)
	return true, nil
}

func holds(ref *string, userID string) bool {
	return ref != nil && *ref == userID
}

func copyRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}
