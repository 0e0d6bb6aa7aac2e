package bearerapi

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type grpcInterceptorConfig struct {
	exemptMethods map[string]bool
	logger        *slog.Logger
	scopePolicy   ScopePolicy
}

// GRPCInterceptorOption is a functional option for the server interceptors.
type GRPCInterceptorOption func(*grpcInterceptorConfig)

// WithExemptMethods specifies full gRPC method names that skip
// authentication, in the format "/package.Service/Method".
func WithExemptMethods(methods ...string) GRPCInterceptorOption {
	return func(c *grpcInterceptorConfig) {
		for _, method := range methods {
			c.exemptMethods[method] = true
		}
	}
}

// WithGRPCLogger sets the logger for rejected RPCs.
func WithGRPCLogger(logger *slog.Logger) GRPCInterceptorOption {
	return func(c *grpcInterceptorConfig) {
		c.logger = logger
	}
}

// WithScopePolicy additionally enforces a scope policy on authenticated RPCs.
// Unsatisfied policies map to codes.PermissionDenied.
func WithScopePolicy(policy ScopePolicy) GRPCInterceptorOption {
	return func(c *grpcInterceptorConfig) {
		c.scopePolicy = policy
	}
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// validates Bearer tokens from the "authorization" metadata header. Valid
// claims are stored in the handler context and retrievable with
// ClaimsFromContext; RPCs that fail validation get codes.Unauthenticated.
func UnaryServerInterceptor(validator Validator, opts ...GRPCInterceptorOption) grpc.UnaryServerInterceptor {
	config := newGRPCInterceptorConfig(opts)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if config.exemptMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		claims, err := config.authenticate(ctx, validator, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(WithClaims(ctx, claims), req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor with the
// same validation behavior as UnaryServerInterceptor.
func StreamServerInterceptor(validator Validator, opts ...GRPCInterceptorOption) grpc.StreamServerInterceptor {
	config := newGRPCInterceptorConfig(opts)

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if config.exemptMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		claims, err := config.authenticate(ss.Context(), validator, info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &claimsServerStream{
			ServerStream: ss,
			ctx:          WithClaims(ss.Context(), claims),
		})
	}
}

func newGRPCInterceptorConfig(opts []GRPCInterceptorOption) *grpcInterceptorConfig {
	config := &grpcInterceptorConfig{
		exemptMethods: make(map[string]bool),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// authenticate extracts the bearer token from incoming metadata, validates
// it, and applies the scope policy.
func (c *grpcInterceptorConfig) authenticate(ctx context.Context, validator Validator, method string) (*Claims, error) {
	token, err := bearerTokenFromMetadata(ctx)
	if err != nil {
		c.logger.Debug("RPC without bearer token", "method", method)
		return nil, err
	}

	claims, err := validator.ValidateToken(ctx, token)
	if err != nil {
		c.logger.Warn("bearer token rejected", "method", method, "error", err)
		return nil, status.Errorf(codes.Unauthenticated, "token validation failed: %v", err)
	}

	if err := c.scopePolicy.Check(claims); err != nil {
		c.logger.Warn("RPC denied by scope policy", "method", method, "subject", claims.Subject, "error", err)
		return nil, status.Error(codes.PermissionDenied, err.Error())
	}

	return claims, nil
}

func bearerTokenFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization header")
	}

	token, found := strings.CutPrefix(authHeaders[0], "Bearer ")
	if !found || token == "" {
		return "", status.Error(codes.Unauthenticated, "invalid authorization header format")
	}

	return token, nil
}

// claimsServerStream overrides the stream context to carry the claims.
type claimsServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *claimsServerStream) Context() context.Context {
	return s.ctx
}
