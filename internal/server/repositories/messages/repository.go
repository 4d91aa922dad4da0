// Package messages declares the message store repository and its PostgreSQL
// implementation.
//
// A message row holds a nullable reference to each party. Deleting a message
// on one side nulls that side's reference (Detach); once both references are
// null the row is removed (Purge). Both steps run in the caller's transaction.
package messages

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/server/models"
)

type Repository interface {
	// Create inserts m and sets its ID.
	Create(ctx context.Context, m *models.Message) (*models.Message, error)

	// Get returns message id if userID still holds the sender or receiver
	// reference, common.ErrorNotFound otherwise.
	Get(ctx context.Context, id int64, userID string) (*models.Message, error)

	// MarkRead sets the read flag when receiverID holds the receiver
	// reference. It is a no-op for anyone else and for already read messages.
	MarkRead(ctx context.Context, id int64, receiverID string) error

	// ListSent returns summaries of messages userID sent and has not deleted.
	ListSent(ctx context.Context, userID string) ([]models.MessageSummary, error)

	// ListReceived returns summaries of messages userID received and has not
	// deleted, only unread ones when unreadOnly is set.
	ListReceived(ctx context.Context, userID string, unreadOnly bool) ([]models.MessageSummary, error)

	// Detach nulls every reference userID holds on message id. detached is
	// false when userID held none; orphaned reports whether both references
	// are now null.
	Detach(ctx context.Context, id int64, userID string) (detached bool, orphaned bool, err error)

	// Purge removes message id if both references are null and reports
	// whether a row was removed.
	Purge(ctx context.Context, id int64) (bool, error)
}
