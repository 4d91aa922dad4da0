package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/postbox/internal/api"
	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake api client
 *************/

// fakePB embeds the interface so only the methods a test needs are defined.
type fakePB struct {
	api.PostboxClient

	refreshMD       metadata.MD
	lastLoginReq    *api.LoginRequest
	lastRegisterReq *api.RegisterRequest
	lastLogoutReq   *api.LogoutRequest
	lastSendReq     *api.SendMessageRequest

	refreshResp *api.RefreshResponse
	refreshErr  error

	pingResp *api.PingResponse
	pingErr  error

	loginResps []*api.LoginResponse
	loginErrs  []error
	loginCalls int

	registerErr error
	logoutErr   error

	readResp *api.ReadMessageResponse
	readErr  error
}

func (f *fakePB) Refresh(ctx context.Context, in *api.RefreshRequest, opts ...grpc.CallOption) (*api.RefreshResponse, error) {
	f.refreshMD, _ = metadata.FromOutgoingContext(ctx)
	return f.refreshResp, f.refreshErr
}

func (f *fakePB) Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return f.pingResp, f.pingErr
}

func (f *fakePB) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.LoginResponse, error) {
	i := f.loginCalls
	f.loginCalls++
	f.lastLoginReq = in
	var resp *api.LoginResponse
	var err error
	if i < len(f.loginResps) {
		resp = f.loginResps[i]
	}
	if i < len(f.loginErrs) {
		err = f.loginErrs[i]
	}
	return resp, err
}

func (f *fakePB) Register(ctx context.Context, in *api.RegisterRequest, opts ...grpc.CallOption) (*api.RegisterResponse, error) {
	f.lastRegisterReq = in
	return &api.RegisterResponse{Username: in.Username}, f.registerErr
}

func (f *fakePB) Logout(ctx context.Context, in *api.LogoutRequest, opts ...grpc.CallOption) (*api.LogoutResponse, error) {
	f.lastLogoutReq = in
	return &api.LogoutResponse{}, f.logoutErr
}

func (f *fakePB) SendMessage(ctx context.Context, in *api.SendMessageRequest, opts ...grpc.CallOption) (*api.SendMessageResponse, error) {
	f.lastSendReq = in
	return &api.SendMessageResponse{ID: 7}, nil
}

func (f *fakePB) ReadMessage(ctx context.Context, in *api.ReadMessageRequest, opts ...grpc.CallOption) (*api.ReadMessageResponse, error) {
	return f.readResp, f.readErr
}

func expiredErr() error {
	return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	f := &fakePB{refreshResp: &api.RefreshResponse{AccessToken: "A2"}}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return expiredErr()
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), api.ListMessagesMethod, nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
	require.Equal(t, "A2", c.accessToken)
	require.Equal(t, "R1", c.refreshToken)

	require.Equal(t, []string{"R1"}, f.refreshMD.Get(common.RefreshTokenHeaderName))
	require.Empty(t, f.refreshMD.Get(common.AccessTokenHeaderName))
}

func TestInterceptor_RefreshOnlyOnce(t *testing.T) {
	f := &fakePB{refreshResp: &api.RefreshResponse{AccessToken: "A2"}}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		return expiredErr()
	}

	err := c.accessTokenInterceptor(context.Background(), api.ListUnreadMethod, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Equal(t, 2, callCount)
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f, accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return expiredErr()
	}

	err := c.accessTokenInterceptor(context.Background(), api.ListMessagesMethod, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Nil(t, f.refreshMD)
}

func TestInterceptor_RefreshRejected_DropsSession(t *testing.T) {
	f := &fakePB{refreshErr: status.Error(codes.Unauthenticated, "invalid token")}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return expiredErr()
	}

	err := c.accessTokenInterceptor(context.Background(), api.DeleteMessageMethod, nil, nil, nil, invoker)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.False(t, c.LoggedIn())
	require.Empty(t, c.refreshToken)
}

func TestInterceptor_RefreshUnavailable_KeepsSession(t *testing.T) {
	f := &fakePB{refreshErr: status.Error(codes.Unavailable, "down")}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return expiredErr()
	}

	err := c.accessTokenInterceptor(context.Background(), api.DeleteMessageMethod, nil, nil, nil, invoker)
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.True(t, c.LoggedIn())
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f, accessToken: "X", refreshToken: "R"}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), api.ReadMessageMethod, nil, nil, nil, invoker)
	require.Equal(t, codes.Internal, status.Code(err))
	require.Nil(t, f.refreshMD)
}

func TestInterceptor_UnauthenticatedButDifferentMessage_NoRefresh(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f, accessToken: "X", refreshToken: "R"}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	err := c.accessTokenInterceptor(context.Background(), api.ReadMessageMethod, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Nil(t, f.refreshMD)
}

func TestInterceptor_PublicMethodsCarryNoToken(t *testing.T) {
	c := &GRPCClient{accessToken: "X", refreshToken: "R"}

	for _, m := range []string{api.PingMethod, api.RegisterMethod} {
		invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			md, _ := metadata.FromOutgoingContext(ctx)
			require.Empty(t, md.Get(common.AccessTokenHeaderName), method)
			return nil
		}
		require.NoError(t, c.accessTokenInterceptor(context.Background(), m, nil, nil, nil, invoker))
	}
}

func TestInterceptor_NotLoggedIn(t *testing.T) {
	c := &GRPCClient{}
	invoked := false
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		invoked = true
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), api.SendMessageMethod, nil, nil, nil, invoker)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.False(t, invoked)

	require.NoError(t, c.accessTokenInterceptor(context.Background(), api.LoginMethod, nil, nil, nil, invoker))
	require.True(t, invoked)
}

func TestInterceptor_LoginIsNotRefreshed(t *testing.T) {
	f := &fakePB{refreshResp: &api.RefreshResponse{AccessToken: "A2"}}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"A1"}, md.Get(common.AccessTokenHeaderName))
		return expiredErr()
	}

	err := c.accessTokenInterceptor(context.Background(), api.LoginMethod, nil, nil, nil, invoker)
	require.True(t, isTokenExpired(err))
	require.Nil(t, f.refreshMD)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.PermissionDenied, "x")), ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.InvalidArgument, "x")), ErrInvalidArgument)
	require.ErrorIs(t, c.mapError(status.Error(codes.AlreadyExists, "x")), ErrAlreadyExists)
	require.ErrorIs(t, c.mapError(status.Error(codes.FailedPrecondition, "x")), ErrAlreadyLoggedIn)
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorContains(t, c.mapError(status.Error(codes.Internal, "x")), "rpc error:")
	require.ErrorIs(t, c.mapError(ErrNotLoggedIn), ErrNotLoggedIn)
	require.NoError(t, c.mapError(nil))

	err := c.mapError(status.Error(codes.InvalidArgument, "receiver does not exist"))
	require.ErrorContains(t, err, "receiver does not exist")
}

/*************
 * Method tests
 *************/

func TestPing(t *testing.T) {
	c := &GRPCClient{client: &fakePB{pingResp: &api.PingResponse{Status: "OK"}}}
	require.NoError(t, c.Ping(context.Background()))

	c = &GRPCClient{client: &fakePB{pingResp: &api.PingResponse{Status: "NOT_OK"}}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	c = &GRPCClient{client: &fakePB{pingErr: status.Error(codes.Unavailable, "down")}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestRegister_PassesFieldsAndMapsError(t *testing.T) {
	f := &fakePB{registerErr: status.Error(codes.AlreadyExists, "username or email already taken")}
	c := &GRPCClient{client: f}

	err := c.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Equal(t, &api.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "pw"}, f.lastRegisterReq)
}

func TestLogin_SetsTokens(t *testing.T) {
	f := &fakePB{loginResps: []*api.LoginResponse{{AccessToken: "A", RefreshToken: "R"}}}
	c := &GRPCClient{client: f}

	require.NoError(t, c.Login(context.Background(), "u", "p"))
	require.Equal(t, "A", c.accessToken)
	require.Equal(t, "R", c.refreshToken)
	require.Equal(t, "u", f.lastLoginReq.Username)
	require.Equal(t, "p", f.lastLoginReq.Password)
	require.True(t, c.LoggedIn())
}

func TestLogin_StaleSessionIsDroppedAndRetried(t *testing.T) {
	f := &fakePB{
		loginErrs:  []error{expiredErr(), nil},
		loginResps: []*api.LoginResponse{nil, {AccessToken: "A2", RefreshToken: "R2"}},
	}
	c := &GRPCClient{client: f, accessToken: "old", refreshToken: "old"}

	require.NoError(t, c.Login(context.Background(), "u", "p"))
	require.Equal(t, 2, f.loginCalls)
	require.Equal(t, "A2", c.accessToken)
}

func TestLogin_WrongPasswordWithoutSession_NoRetry(t *testing.T) {
	f := &fakePB{loginErrs: []error{status.Error(codes.Unauthenticated, "invalid username or password")}}
	c := &GRPCClient{client: f}

	err := c.Login(context.Background(), "u", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, f.loginCalls)
	require.False(t, c.LoggedIn())
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	f := &fakePB{loginErrs: []error{status.Error(codes.FailedPrecondition, "already logged in as u")}}
	c := &GRPCClient{client: f, accessToken: "A", refreshToken: "R"}

	err := c.Login(context.Background(), "u", "p")
	require.ErrorIs(t, err, ErrAlreadyLoggedIn)
	require.Equal(t, "A", c.accessToken)
}

func TestLogout_SendsRefreshTokenAndClears(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f, accessToken: "A", refreshToken: "R"}

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, "R", f.lastLogoutReq.RefreshToken)
	require.False(t, c.LoggedIn())
}

func TestLogout_RejectedSessionIsForgotten(t *testing.T) {
	f := &fakePB{logoutErr: status.Error(codes.Unauthenticated, "invalid token")}
	c := &GRPCClient{client: f, accessToken: "A", refreshToken: "R"}

	require.NoError(t, c.Logout(context.Background()))
	require.False(t, c.LoggedIn())
}

func TestLogout_TransportErrorKeepsSession(t *testing.T) {
	f := &fakePB{logoutErr: status.Error(codes.Unavailable, "down")}
	c := &GRPCClient{client: f, accessToken: "A", refreshToken: "R"}

	require.ErrorIs(t, c.Logout(context.Background()), ErrUnavailable)
	require.True(t, c.LoggedIn())
}

func TestSendMessage(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}

	id, err := c.SendMessage(context.Background(), "bob", "hi", "hello")
	require.NoError(t, err)
	require.EqualValues(t, 7, id)
	require.Equal(t, &api.SendMessageRequest{Receiver: "bob", Subject: "hi", Content: "hello"}, f.lastSendReq)
}

func TestReadMessage(t *testing.T) {
	msg := &api.Message{ID: 3, Subject: "s", Content: "c"}

	c := &GRPCClient{client: &fakePB{readResp: &api.ReadMessageResponse{Found: true, Message: msg}}}
	got, found, err := c.ReadMessage(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, msg, got)

	c = &GRPCClient{client: &fakePB{readResp: &api.ReadMessageResponse{}}}
	got, found, err = c.ReadMessage(context.Background(), 3)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, got)

	c = &GRPCClient{client: &fakePB{readErr: status.Error(codes.InvalidArgument, "missing argument")}}
	_, _, err = c.ReadMessage(context.Background(), 0)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}
