package client

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	ListMessages(ctx context.Context) (sent, received map[int64]api.MessageSummary, err error)
	ListUnread(ctx context.Context) (map[int64]api.MessageSummary, error)
	SendMessage(ctx context.Context, receiver, subject, content string) (int64, error)
	ReadMessage(ctx context.Context, id int64) (*api.Message, bool, error)
	DeleteMessage(ctx context.Context, id int64) (bool, error)
}
