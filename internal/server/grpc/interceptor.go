package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

const authorizationKey = "authorization"

// Authenticator is the part of auth.Gate the interceptor uses.
type Authenticator interface {
	RequireAuthenticated(ctx context.Context, header string) (*models.Identity, error)
	RequireRole(identity *models.Identity, required auth.RoleSet) error
}

// MethodRoles maps full method names to the roles allowed to call them.
// Methods missing from the map require an authenticated USER or ADMIN. The
// map applies to unary and streaming methods alike.
type MethodRoles map[string]auth.RoleSet

// DefaultMethodRoles leaves the health service public.
func DefaultMethodRoles() MethodRoles {
	return MethodRoles{
		healthpb.Health_Check_FullMethodName: auth.Roles(),
		healthpb.Health_Watch_FullMethodName: auth.Roles(),
	}
}

func (m MethodRoles) lookup(method string) auth.RoleSet {
	if roles, ok := m[method]; ok {
		return roles
	}
	return auth.Roles(models.RoleUser, models.RoleAdmin)
}

func authorizationFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(authorizationKey); len(values) > 0 {
		return values[0]
	}
	return ""
}

// toStatus maps gate errors onto gRPC codes. Anything that is not an
// authentication or authorization failure is reported as Internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// authenticate applies the role set of method to the caller in ctx and
// returns ctx carrying the resolved identity.
func (s *GRPCServer) authenticate(ctx context.Context, method string) (context.Context, error) {
	required := s.roles.lookup(method)
	if required.IsPublic() {
		return ctx, nil
	}

	identity, err := s.gate.RequireAuthenticated(ctx, authorizationFrom(ctx))
	if err != nil {
		if !errors.Is(err, common.ErrUnauthenticated) {
			s.logger.Error(ctx, "authentication aborted", "method", method, "error", err)
		}
		return nil, toStatus(err)
	}

	if err := s.gate.RequireRole(identity, required); err != nil {
		s.logger.Warn(ctx, "access denied", "method", method, "account_id", identity.ID, "role", identity.Role)
		return nil, toStatus(err)
	}

	return auth.WithIdentity(ctx, identity), nil
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// identityStream overrides the stream context with the authenticated one.
type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *identityStream) Context() context.Context { return w.ctx }

func (s *GRPCServer) authStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc completed",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
