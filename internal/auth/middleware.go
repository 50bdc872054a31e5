package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyIdentity is the Gin context key holding the resolved *Identity.
const ContextKeyIdentity = "auth_identity"

// IdentityMiddleware resolves the session to an Identity on every
// request. The stored name is re-checked against both account tables,
// so a deleted or renamed account degrades to anonymous instead of
// carrying a stale role.
func IdentityMiddleware(service *Service, sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := sessions.IdentityName(c.Request)
		if identity := service.Resolve(name); identity != nil {
			c.Set(ContextKeyIdentity, identity)
		}
		c.Next()
	}
}

// CurrentIdentity retrieves the authenticated identity from the Gin
// context. Returns nil for anonymous requests.
func CurrentIdentity(c *gin.Context) *Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(*Identity); ok {
			return identity
		}
	}
	return nil
}

// RequireReader gates a route to reader accounts. Anonymous requests
// go to the login page; a mismatched role gets a denial flash and the
// landing page.
func RequireReader(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		if !identity.IsReader() {
			sessions.Flash(c.Request, "Access denied - User only!")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates a route to administrator accounts.
func RequireAdmin(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			c.Redirect(http.StatusFound, "/admin_login")
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			sessions.Flash(c.Request, "Access denied - Administrators only!")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
