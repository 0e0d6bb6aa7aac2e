// Package bearerapi validates incoming bearer tokens on the protected API
// side.
//
// JWKSValidator checks JWT signatures against the authorization server's
// published key set, with cached keys and automatic refresh. Middleware
// wires the validator into a net/http handler chain, rejecting requests
// without a valid token and exposing the validated claims through the
// request context.
//
//	validator, err := bearerapi.NewJWKSValidator(bearerapi.ValidatorConfig{
//	    JWKSURL:  "https://auth.example.com/.well-known/jwks.json",
//	    Issuer:   "https://auth.example.com",
//	    Audience: "api",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer validator.Close()
//
//	handler := bearerapi.Middleware(validator,
//	    bearerapi.WithExemptPaths("/health"),
//	)(mux)
//
// UnaryServerInterceptor and StreamServerInterceptor provide the same
// validation for gRPC servers, reading the token from the "authorization"
// metadata header. RequireScopes and ScopePolicy layer scope-based
// authorization on top of either transport.
package bearerapi
