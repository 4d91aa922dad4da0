package grpc

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/logging"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeUsers authenticates tokens from a fixed table: the token string maps
// to either claims or an error.
type fakeUsers struct {
	tokens map[string]*auth.Claims
	errs   map[string]error

	registerErr error
	loginOut    *services.TokenPair
	loginErr    error
	refreshOut  string
	logoutErr   error

	loggedOut     *auth.Claims
	logoutRefresh string
}

func (f *fakeUsers) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "id-" + username, UserName: username, Email: email}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUsers) Refresh(ctx context.Context, refresh *auth.Claims) (string, error) {
	return f.refreshOut, nil
}

func (f *fakeUsers) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	f.loggedOut = access
	f.logoutRefresh = refreshToken
	return f.logoutErr
}

func (f *fakeUsers) Authenticate(ctx context.Context, token string, kind auth.TokenKind) (*auth.Claims, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	c, ok := f.tokens[token]
	if !ok || c.Kind != kind {
		return nil, common.ErrInvalidToken
	}
	return c, nil
}

type fakeMessages struct {
	sendOut   *models.Message
	sendErr   error
	fetchOut  *models.Message
	fetchOK   bool
	fetchErr  error
	box       *models.Mailbox
	unread    []models.MessageSummary
	deleted   bool
	deleteErr error

	lastUser string
	lastID   int64
}

func (f *fakeMessages) Send(ctx context.Context, sender, receiverName, subject, content string) (*models.Message, error) {
	f.lastUser = sender
	return f.sendOut, f.sendErr
}

func (f *fakeMessages) Fetch(ctx context.Context, id int64, username string) (*models.Message, bool, error) {
	f.lastUser, f.lastID = username, id
	return f.fetchOut, f.fetchOK, f.fetchErr
}

func (f *fakeMessages) List(ctx context.Context, username string) (*models.Mailbox, error) {
	f.lastUser = username
	return f.box, nil
}

func (f *fakeMessages) ListUnread(ctx context.Context, username string) ([]models.MessageSummary, error) {
	f.lastUser = username
	return f.unread, nil
}

func (f *fakeMessages) Delete(ctx context.Context, id int64, username string) (bool, error) {
	f.lastUser, f.lastID = username, id
	return f.deleted, f.deleteErr
}

func accessClaims(user string) *auth.Claims {
	c := &auth.Claims{Username: user, Kind: auth.KindAccess}
	c.ID = "jti-" + user
	return c
}

func refreshClaims(user string) *auth.Claims {
	c := &auth.Claims{Username: user, Kind: auth.KindRefresh}
	c.ID = "rjti-" + user
	return c
}

func newTestServer(us UserService, ms MessageService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", nopLogger{}, us, ms)
}
