// Package auth provides identity resolution and session handling.
//
// Readers and administrators live in two disjoint tables but share one
// login namespace. An authenticated requester is represented by an
// Identity value, a tagged union of role and name, resolved on every
// request from the session cookie. Lookup order is fixed: the User
// table first, then Administrator, so a hypothetical name collision
// resolves deterministically to the reader.
//
// # Configuration
//
//	SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	SESSION_LIFETIME=24h           # Session duration
//	BCRYPT_COST=12                 # bcrypt cost factor
//	SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
//	service := auth.NewService(accountsRepo, cfg.Auth)
//	sessions, err := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.IdentityMiddleware(service, sessions))
//
// Extract the identity in handlers:
//
//	identity := auth.CurrentIdentity(c) // nil when anonymous
package auth
