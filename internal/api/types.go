package api

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `cbor:"status"`
}

type RegisterRequest struct {
	Username string `cbor:"username"`
	Email    string `cbor:"email"`
	Password string `cbor:"password"`
}

type RegisterResponse struct {
	Username string `cbor:"username"`
}

type LoginRequest struct {
	Username string `cbor:"username"`
	Password string `cbor:"password"`
}

type LoginResponse struct {
	AccessToken  string `cbor:"access_token"`
	RefreshToken string `cbor:"refresh_token"`
}

// RefreshRequest is empty: the refresh token travels in the refresh_token
// metadata key.
type RefreshRequest struct{}

type RefreshResponse struct {
	AccessToken string `cbor:"access_token"`
}

// LogoutRequest optionally carries the refresh token to revoke together
// with the access token the call is authenticated with.
type LogoutRequest struct {
	RefreshToken string `cbor:"refresh_token,omitempty"`
}

type LogoutResponse struct{}

// MessageSummary is the list view of a message; it has no content.
type MessageSummary struct {
	ID       int64     `cbor:"id"`
	Subject  string    `cbor:"subject"`
	Sender   string    `cbor:"sender"`
	Receiver string    `cbor:"receiver"`
	SentAt   time.Time `cbor:"sent_at"`
	Read     bool      `cbor:"read"`
}

type Message struct {
	ID       int64     `cbor:"id"`
	Subject  string    `cbor:"subject"`
	Sender   string    `cbor:"sender"`
	Receiver string    `cbor:"receiver"`
	SentAt   time.Time `cbor:"sent_at"`
	Read     bool      `cbor:"read"`
	Content  string    `cbor:"content"`
}

type ListMessagesRequest struct{}

type ListMessagesResponse struct {
	Sent     map[int64]MessageSummary `cbor:"sent"`
	Received map[int64]MessageSummary `cbor:"received"`
}

type ListUnreadRequest struct{}

// ListUnreadResponse holds the caller's unread received messages keyed by id.
type ListUnreadResponse struct {
	Messages map[int64]MessageSummary `cbor:"messages"`
}

type SendMessageRequest struct {
	Receiver string `cbor:"receiver"`
	Subject  string `cbor:"subject"`
	Content  string `cbor:"content"`
}

type SendMessageResponse struct {
	ID int64 `cbor:"id"`
}

type ReadMessageRequest struct {
	ID int64 `cbor:"id"`
}

// ReadMessageResponse has Found false and no Message when the message does
// not exist or the caller holds no reference to it.
type ReadMessageResponse struct {
	Found   bool     `cbor:"found"`
	Message *Message `cbor:"message,omitempty"`
}

type DeleteMessageRequest struct {
	ID int64 `cbor:"id"`
}

type DeleteMessageResponse struct {
	Deleted bool `cbor:"deleted"`
}
