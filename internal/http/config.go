package http

import (
	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/database/books"
	"github.com/booklend/booklend/internal/database/loans"
	"github.com/booklend/booklend/internal/database/users"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router.
type RouterConfig struct {
	// Repositories
	Books    *books.Repository
	Accounts *users.Repository
	Loans    *loans.Repository

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	TemplatesPath string
	StaticPath    string
}
