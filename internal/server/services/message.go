package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
)

// MessageService implements the message lifecycle: send, fetch (marking
// received messages read), list and two-sided delete.
type MessageService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMessageService(m repomanager.RepositoryManager) *MessageService {
	return &MessageService{repomanager: m, now: time.Now}
}

// Send stores a new unread message from sender to receiverName.
func (s *MessageService) Send(ctx context.Context, sender, receiverName, subject, content string) (*models.Message, error) {
	for _, f := range []struct{ name, value string }{
		{"receiver", receiverName}, {"subject", subject}, {"content", content},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return nil, err
		}
	}
	if err := limitField("subject", subject, models.MaxSubjectLength); err != nil {
		return nil, err
	}
	if err := limitField("content", content, models.MaxContentLength); err != nil {
		return nil, err
	}
	if sender == receiverName {
		return nil, common.ErrSelfSend
	}

	var msg *models.Message
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		from, err := s.requester(ctx, tx, sender)
		if err != nil {
			return err
		}
		to, err := users.GetByUsername(ctx, receiverName)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrReceiverNotFound
			}
			return err
		}

		msg, err = s.repomanager.Messages(tx).Create(ctx, &models.Message{
			Subject:      subject,
			Content:      content,
			SentAt:       s.now().UTC(),
			SenderID:     &from.ID,
			ReceiverID:   &to.ID,
			SenderName:   from.UserName,
			ReceiverName: to.UserName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Fetch returns message id if username still holds a reference to it.
// found is false when the message does not exist or is not visible to
// username. When username is the receiver the message is marked read first,
// so the returned copy already has Read set.
func (s *MessageService) Fetch(ctx context.Context, id int64, username string) (*models.Message, bool, error) {
	var msg *models.Message
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		me, err := s.requester(ctx, tx, username)
		if err != nil {
			return err
		}

		repo := s.repomanager.Messages(tx)
		if err := repo.MarkRead(ctx, id, me.ID); err != nil {
			return err
		}
		msg, err = repo.Get(ctx, id, me.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return msg, true, nil
}

// List returns the sent and received partitions visible to username.
func (s *MessageService) List(ctx context.Context, username string) (*models.Mailbox, error) {
	box := &models.Mailbox{
		Sent:     map[int64]models.MessageSummary{},
		Received: map[int64]models.MessageSummary{},
	}
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		me, err := s.requester(ctx, tx, username)
		if err != nil {
			return err
		}

		repo := s.repomanager.Messages(tx)
		sent, err := repo.ListSent(ctx, me.ID)
		if err != nil {
			return err
		}
		received, err := repo.ListReceived(ctx, me.ID, false)
		if err != nil {
			return err
		}

		for _, m := range sent {
			box.Sent[m.ID] = m
		}
		for _, m := range received {
			box.Received[m.ID] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

// ListUnread returns summaries of unread messages received by username.
func (s *MessageService) ListUnread(ctx context.Context, username string) ([]models.MessageSummary, error) {
	var result []models.MessageSummary
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		me, err := s.requester(ctx, tx, username)
		if err != nil {
			return err
		}
		result, err = s.repomanager.Messages(tx).ListReceived(ctx, me.ID, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the message from username's side. The row itself is
// purged in the same transaction once neither side references it. It
// returns false when username held no reference (including messages that
// never existed or were already purged).
func (s *MessageService) Delete(ctx context.Context, id int64, username string) (bool, error) {
	var detached bool
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		me, err := s.requester(ctx, tx, username)
		if err != nil {
			return err
		}

		repo := s.repomanager.Messages(tx)
		var orphaned bool
		detached, orphaned, err = repo.Detach(ctx, id, me.ID)
		if err != nil {
			return err
		}
		if orphaned {
			if _, err := repo.Purge(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return detached, nil
}

// requester resolves the authenticated username. Users are never removed,
// so a miss means the token names an identity this store does not know.
func (s *MessageService) requester(ctx context.Context, tx dbx.DBTX, username string) (*models.User, error) {
	u, err := s.repomanager.Users(tx).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown user %q", common.ErrorUnauthorized, username)
		}
		return nil, err
	}
	return u, nil
}
