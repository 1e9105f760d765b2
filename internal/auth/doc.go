// Package auth provides JWT authentication for the todochat API.
//
// # Tokens
//
// Clients authenticate with JWT bearer tokens signed with HS256 using the
// configured jwt_secret. The "sub" claim carries the user ID; every store
// read and write downstream is scoped to that identity.
//
//	verifier := auth.NewJWTVerifier(secret)
//	token, err := verifier.Generate("user-123", 24*time.Hour)
//	userID, err := verifier.Verify(token)
//
// # Middleware
//
// HTTPAuthMiddleware validates the Authorization header and attaches an
// Identity to the request context. Handlers behind it retrieve the caller
// with FromContext or MustFromContext; there is no role system, a valid
// token identifies exactly one user.
package auth
