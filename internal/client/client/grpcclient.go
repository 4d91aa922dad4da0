package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/postbox/internal/api"
	"github.com/dmitrijs2005/postbox/internal/common"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.PostboxClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// withToken returns ctx whose outgoing metadata carries token under key,
// replacing any earlier value for that key.
func withToken(ctx context.Context, key, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(key, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) setAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
}

func (s *GRPCClient) clearTokens() {
	s.setTokens("", "")
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	switch method {
	case api.PingMethod, api.RegisterMethod, api.RefreshMethod:
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	accessToken, refreshToken := s.tokens()

	if accessToken == "" {
		if method == api.LoginMethod {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		return ErrNotLoggedIn
	}

	err := invoker(withToken(ctx, common.AccessTokenHeaderName, accessToken), method, req, reply, cc, opts...)
	if err == nil || method == api.LoginMethod || !isTokenExpired(err) {
		return err
	}

	if refreshToken == "" {
		return err
	}

	accessToken, err = s.refresh(ctx, refreshToken)
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			s.clearTokens()
			return ErrSessionExpired
		}
		return err
	}

	return invoker(withToken(ctx, common.AccessTokenHeaderName, accessToken), method, req, reply, cc, opts...)
}

// refresh trades the refresh token for a new access token. The outgoing
// metadata is replaced so the stale access token is not sent along.
func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx = metadata.NewOutgoingContext(ctx, metadata.Pairs(common.RefreshTokenHeaderName, refreshToken))

	resp, err := s.client.Refresh(ctx, &api.RefreshRequest{})
	if err != nil {
		return "", err
	}

	s.setAccessToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func NewPostboxClientService(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// InitGRPCClient creates the connection. Extra options are appended after
// the defaults, which tests use to dial an in-memory listener.
func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewPostboxClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) LoggedIn() bool {
	accessToken, _ := s.tokens()
	return accessToken != ""
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Register(ctx context.Context, username, email, password string) error {

	req := &api.RegisterRequest{Username: username, Email: email, Password: password}

	if _, err := s.client.Register(ctx, req); err != nil {
		return s.mapError(err)
	}

	return nil
}

// Login stores the issued token pair. When the stored session turns out to
// be stale the server refuses the login; the stale tokens are then dropped
// and the login is attempted once more without them.
func (s *GRPCClient) Login(ctx context.Context, username, password string) error {

	req := &api.LoginRequest{Username: username, Password: password}

	hadSession := s.LoggedIn()

	resp, err := s.client.Login(ctx, req)
	if err != nil && hadSession && status.Code(err) == codes.Unauthenticated {
		s.clearTokens()
		resp, err = s.client.Login(ctx, req)
	}
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return nil
}

// Logout revokes the session on the server, including the refresh token,
// and forgets it locally. A session the server no longer accepts is
// forgotten without an error.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refreshToken := s.tokens()

	_, err := s.client.Logout(ctx, &api.LogoutRequest{RefreshToken: refreshToken})
	switch {
	case err == nil, errors.Is(err, ErrSessionExpired), status.Code(err) == codes.Unauthenticated:
		s.clearTokens()
		return nil
	default:
		return s.mapError(err)
	}
}

func (s *GRPCClient) ListMessages(ctx context.Context) (map[int64]api.MessageSummary, map[int64]api.MessageSummary, error) {
	resp, err := s.client.ListMessages(ctx, &api.ListMessagesRequest{})
	if err != nil {
		return nil, nil, s.mapError(err)
	}
	return resp.Sent, resp.Received, nil
}

func (s *GRPCClient) ListUnread(ctx context.Context) (map[int64]api.MessageSummary, error) {
	resp, err := s.client.ListUnread(ctx, &api.ListUnreadRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Messages, nil
}

func (s *GRPCClient) SendMessage(ctx context.Context, receiver, subject, content string) (int64, error) {
	req := &api.SendMessageRequest{Receiver: receiver, Subject: subject, Content: content}
	resp, err := s.client.SendMessage(ctx, req)
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) ReadMessage(ctx context.Context, id int64) (*api.Message, bool, error) {
	resp, err := s.client.ReadMessage(ctx, &api.ReadMessageRequest{ID: id})
	if err != nil {
		return nil, false, s.mapError(err)
	}
	if !resp.Found || resp.Message == nil {
		return nil, false, nil
	}
	return resp.Message, true, nil
}

func (s *GRPCClient) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	resp, err := s.client.DeleteMessage(ctx, &api.DeleteMessageRequest{ID: id})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrAlreadyLoggedIn, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
