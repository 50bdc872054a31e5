package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
)

// AuthController handles login, registration and logout for both
// roles.
type AuthController struct {
	service  *auth.Service
	sessions *auth.SessionManager
	view     *view
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *auth.Service, sessions *auth.SessionManager, view *view) *AuthController {
	return &AuthController{service: service, sessions: sessions, view: view}
}

// LoginPage renders the reader login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	ac.view.Render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

// Login handles the login form at the site root. Credentials are tried
// against readers first and administrators second, and the landing
// page follows the resolved role.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		ac.view.FlashRedirect(c, "Please enter", "/")
		return
	}

	identity, err := ac.service.Authenticate(username, password)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		ac.view.FlashRedirect(c, "User does not exist", "/")
		return
	case errors.Is(err, auth.ErrWrongPassword):
		ac.view.FlashRedirect(c, "Wrong password", "/")
		return
	case err != nil:
		ac.view.InternalError(c, err, "login")
		return
	}

	if err := ac.sessions.CreateSession(c.Request, identity); err != nil {
		ac.view.InternalError(c, err, "login session")
		return
	}

	if identity.IsAdmin() {
		c.Redirect(http.StatusFound, "/manage/book_manage")
		return
	}
	c.Redirect(http.StatusFound, "/reader/reader_borrow")
}

// AdminLoginPage renders the administrator login form.
func (ac *AuthController) AdminLoginPage(c *gin.Context) {
	ac.view.Render(c, http.StatusOK, "admin_login.html", gin.H{"Title": "Administrator Login"})
}

// AdminLogin handles the administrator login form. Only the
// Administrator table is consulted.
func (ac *AuthController) AdminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		ac.view.FlashRedirect(c, "Please enter", "/admin_login")
		return
	}

	identity, err := ac.service.AuthenticateAdmin(username, password)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		ac.view.FlashRedirect(c, "User does not exist", "/admin_login")
		return
	case errors.Is(err, auth.ErrWrongPassword):
		ac.view.FlashRedirect(c, "Wrong password", "/admin_login")
		return
	case err != nil:
		ac.view.InternalError(c, err, "admin login")
		return
	}

	if err := ac.sessions.CreateSession(c.Request, identity); err != nil {
		ac.view.InternalError(c, err, "admin login session")
		return
	}
	c.Redirect(http.StatusFound, "/manage/book_manage")
}

// RegisterPage renders the reader self-registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.view.Render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Register creates a reader account from the registration form.
func (ac *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	rePassword := c.PostForm("re_password")

	if username == "" || password == "" || rePassword == "" {
		ac.view.FlashRedirect(c, "Please enter", "/register")
		return
	}
	if password != rePassword {
		ac.view.FlashRedirect(c, "Passwords do not match", "/register")
		return
	}

	_, err := ac.service.Register(username, password)
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		ac.view.FlashRedirect(c, "User already exists", "/")
		return
	case errors.Is(err, auth.ErrNameTooLong),
		errors.Is(err, auth.ErrPasswordTooLong):
		ac.view.FlashRedirect(c, err.Error(), "/register")
		return
	case err != nil:
		ac.view.InternalError(c, err, "register")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and returns to the login page.
func (ac *AuthController) Logout(c *gin.Context) {
	_ = ac.sessions.DestroySession(c.Request)
	c.Redirect(http.StatusFound, "/")
}
