// Package login provides the credential policy and the authentication
// lookup consumed by an external authentication gateway.
//
// The credential policy is the PasswordHasher interface with a bcrypt
// implementation: a slow, salted one-way hash whose Verify never errors
// on malformed stored hashes (it reports false instead). The user
// service hashes through this policy on create and update, so a raw
// password never reaches the store.
//
// AuthService is the authentication lookup: GetPrincipal resolves a
// username to a Principal (username, stored hash, granted role names)
// or fails with ErrUserNotFound. The gateway calls it once per login
// attempt and owns whatever session or token protocol follows; neither
// is implemented here.
//
//	hasher := login.NewBcryptHasher()
//	authService := login.NewAuthService(iamService, hasher)
//
//	principal, err := authService.GetPrincipal(ctx, "admin")
//	if errors.Is(err, login.ErrUserNotFound) {
//		// reject the attempt without leaking which part was wrong
//	}
//
// Never log raw or hashed credentials.
package login
