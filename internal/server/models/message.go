package models

import "time"

// Message is a stored message together with the references of both parties.
// A nil SenderID or ReceiverID means that side has deleted the message.
// SenderName and ReceiverName are frozen at send time.
type Message struct {
	ID           int64
	Subject      string
	Content      string
	SentAt       time.Time
	SenderID     *string
	ReceiverID   *string
	SenderName   string
	ReceiverName string
	Read         bool
}

// Summary returns the list view of m (everything but the content).
func (m *Message) Summary() MessageSummary {
	return MessageSummary{
		ID:           m.ID,
		Subject:      m.Subject,
		SenderName:   m.SenderName,
		ReceiverName: m.ReceiverName,
		SentAt:       m.SentAt,
		Read:         m.Read,
	}
}

// MessageSummary is the list view of a message.
type MessageSummary struct {
	ID           int64
	Subject      string
	SenderName   string
	ReceiverName string
	SentAt       time.Time
	Read         bool
}

// Mailbox partitions the messages a user can still see, keyed by id.
type Mailbox struct {
	Sent     map[int64]MessageSummary
	Received map[int64]MessageSummary
}
