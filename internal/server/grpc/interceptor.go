package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/postbox/internal/api"
	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

type authPolicy int

const (
	// policyAccess requires a valid unrevoked access token.
	policyAccess authPolicy = iota
	// policyPublic requires nothing.
	policyPublic
	// policyAnonymous rejects callers that present a token.
	policyAnonymous
	// policyRefresh requires a valid unrevoked refresh token.
	policyRefresh
)

var methodPolicies = map[string]authPolicy{
	api.PingMethod:     policyPublic,
	api.RegisterMethod: policyPublic,
	api.LoginMethod:    policyAnonymous,
	api.RefreshMethod:  policyRefresh,
}

func policyFor(fullMethod string) authPolicy {
	if !strings.HasPrefix(fullMethod, "/"+api.ServiceName+"/") {
		// health and reflection style services
		return policyPublic
	}
	if p, ok := methodPolicies[fullMethod]; ok {
		return p
	}
	return policyAccess
}

func tokenFromMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// ClaimsFromContext returns the claims the auth interceptor stored for the call.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	switch policyFor(info.FullMethod) {
	case policyPublic:

	case policyAnonymous:
		if err := s.rejectPresentedCredentials(ctx); err != nil {
			return nil, err
		}

	case policyRefresh:
		claims, err := s.authenticate(ctx, common.RefreshTokenHeaderName, auth.KindRefresh)
		if err != nil {
			return nil, err
		}
		ctx = context.WithValue(ctx, claimsKey, claims)

	default:
		claims, err := s.authenticate(ctx, common.AccessTokenHeaderName, auth.KindAccess)
		if err != nil {
			return nil, err
		}
		ctx = context.WithValue(ctx, claimsKey, claims)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) authenticate(ctx context.Context, key string, kind auth.TokenKind) (*auth.Claims, error) {
	token := tokenFromMetadata(ctx, key)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.users.Authenticate(ctx, token, kind)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return claims, nil
}

// rejectPresentedCredentials fails when the caller sends any token: a good
// one means the caller is already logged in, a bad one must be dropped by
// the client before it logs in again.
func (s *GRPCServer) rejectPresentedCredentials(ctx context.Context) error {
	for _, h := range []struct {
		key  string
		kind auth.TokenKind
	}{
		{common.AccessTokenHeaderName, auth.KindAccess},
		{common.RefreshTokenHeaderName, auth.KindRefresh},
	} {
		token := tokenFromMetadata(ctx, h.key)
		if token == "" {
			continue
		}
		claims, err := s.users.Authenticate(ctx, token, h.kind)
		if err != nil {
			return s.toStatus(ctx, err)
		}
		return status.Errorf(codes.FailedPrecondition, "%s as %s", common.ErrAlreadyAuthenticated, claims.Username)
	}
	return nil
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "request failed", append(args, "error", err)...)
	} else {
		s.logger.Debug(ctx, "request", args...)
	}
	return resp, err
}
