package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "postbox.v1.Postbox"

// Full method names, as seen by interceptors.
const (
	PingMethod          = "/" + ServiceName + "/Ping"
	RegisterMethod      = "/" + ServiceName + "/Register"
	LoginMethod         = "/" + ServiceName + "/Login"
	RefreshMethod       = "/" + ServiceName + "/Refresh"
	LogoutMethod        = "/" + ServiceName + "/Logout"
	ListMessagesMethod  = "/" + ServiceName + "/ListMessages"
	ListUnreadMethod    = "/" + ServiceName + "/ListUnread"
	SendMessageMethod   = "/" + ServiceName + "/SendMessage"
	ReadMessageMethod   = "/" + ServiceName + "/ReadMessage"
	DeleteMessageMethod = "/" + ServiceName + "/DeleteMessage"
)

// PostboxServer is the server API for the Postbox service.
type PostboxServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	ListUnread(context.Context, *ListUnreadRequest) (*ListUnreadResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ReadMessage(context.Context, *ReadMessageRequest) (*ReadMessageResponse, error)
	DeleteMessage(context.Context, *DeleteMessageRequest) (*DeleteMessageResponse, error)
}

// UnimplementedPostboxServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedPostboxServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedPostboxServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedPostboxServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedPostboxServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedPostboxServer) Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error) {
	return nil, unimplemented("Refresh")
}
func (UnimplementedPostboxServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedPostboxServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, unimplemented("ListMessages")
}
func (UnimplementedPostboxServer) ListUnread(context.Context, *ListUnreadRequest) (*ListUnreadResponse, error) {
	return nil, unimplemented("ListUnread")
}
func (UnimplementedPostboxServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, unimplemented("SendMessage")
}
func (UnimplementedPostboxServer) ReadMessage(context.Context, *ReadMessageRequest) (*ReadMessageResponse, error) {
	return nil, unimplemented("ReadMessage")
}
func (UnimplementedPostboxServer) DeleteMessage(context.Context, *DeleteMessageRequest) (*DeleteMessageResponse, error) {
	return nil, unimplemented("DeleteMessage")
}

// unary builds the MethodDesc for one RPC: decode the request, then run
// call directly or through the server's interceptor chain.
func unary[Req, Resp any](name string, call func(PostboxServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PostboxServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PostboxServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Postbox service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PostboxServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", PostboxServer.Ping),
		unary("Register", PostboxServer.Register),
		unary("Login", PostboxServer.Login),
		unary("Refresh", PostboxServer.Refresh),
		unary("Logout", PostboxServer.Logout),
		unary("ListMessages", PostboxServer.ListMessages),
		unary("ListUnread", PostboxServer.ListUnread),
		unary("SendMessage", PostboxServer.SendMessage),
		unary("ReadMessage", PostboxServer.ReadMessage),
		unary("DeleteMessage", PostboxServer.DeleteMessage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "postbox/v1/postbox",
}

// RegisterPostboxServer registers srv on s.
func RegisterPostboxServer(s grpc.ServiceRegistrar, srv PostboxServer) {
	s.RegisterService(&ServiceDesc, srv)
}
