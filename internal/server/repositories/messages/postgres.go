package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (subject, content, sent_at, sender_id, receiver_id, sender_name, receiver_name, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		m.Subject, m.Content, m.SentAt, m.SenderID, m.ReceiverID, m.SenderName, m.ReceiverName, m.Read,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64, userID string) (*models.Message, error) {
	query := `
		SELECT id, subject, content, sent_at, sender_id, receiver_id, sender_name, receiver_name, is_read
		FROM messages
		WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)
	`
	var (
		m                    models.Message
		senderID, receiverID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&m.ID, &m.Subject, &m.Content, &m.SentAt, &senderID, &receiverID, &m.SenderName, &m.ReceiverName, &m.Read,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m.SenderID = nullableString(senderID)
	m.ReceiverID = nullableString(receiverID)
	return &m, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id int64, receiverID string) error {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE id = $1 AND receiver_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, receiverID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSent(ctx context.Context, userID string) ([]models.MessageSummary, error) {
	query := `
		SELECT id, subject, sender_name, receiver_name, sent_at, is_read
		FROM messages
		WHERE sender_id = $1
		ORDER BY id
	`
	return r.selectSummaries(ctx, query, userID)
}

func (r *PostgresRepository) ListReceived(ctx context.Context, userID string, unreadOnly bool) ([]models.MessageSummary, error) {
	query := `
		SELECT id, subject, sender_name, receiver_name, sent_at, is_read
		FROM messages
		WHERE receiver_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY id
	`
	return r.selectSummaries(ctx, query, userID, unreadOnly)
}

func (r *PostgresRepository) selectSummaries(ctx context.Context, query string, args ...any) ([]models.MessageSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.MessageSummary
	for rows.Next() {
		var item models.MessageSummary
		if err := rows.Scan(
			&item.ID, &item.Subject, &item.SenderName, &item.ReceiverName, &item.SentAt, &item.Read,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Detach locks the row through the UPDATE, so two parties deleting the same
// message concurrently are serialized and exactly one of them sees orphaned.
func (r *PostgresRepository) Detach(ctx context.Context, id int64, userID string) (bool, bool, error) {
	query := `
		UPDATE messages SET
			sender_id   = CASE WHEN sender_id = $2 THEN NULL ELSE sender_id END,
			receiver_id = CASE WHEN receiver_id = $2 THEN NULL ELSE receiver_id END
		WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)
		RETURNING sender_id IS NULL AND receiver_id IS NULL
	`
	var orphaned bool
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&orphaned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("db error: %w", err)
	}
	return true, orphaned, nil
}

func (r *PostgresRepository) Purge(ctx context.Context, id int64) (bool, error) {
	query := `
		DELETE FROM messages
		WHERE id = $1 AND sender_id IS NULL AND receiver_id IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
