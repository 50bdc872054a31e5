package http

import (
	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
)

// NewRouter creates the Gin router with all routes and middleware
// registered. The route layout is stable and relied on by the page
// templates, so paths keep their historical names.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before the session middleware so the session context
	// is layered on top of the request CSRF rewrites.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(auth.IdentityMiddleware(cfg.AuthService, cfg.SessionManager))

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	pages := newView(cfg.TemplatesPath, cfg.SessionManager)

	authController := NewAuthController(cfg.AuthService, cfg.SessionManager, pages)
	manageController := NewManageController(cfg.Books, cfg.Accounts, cfg.Loans, cfg.AuthService, pages)
	readerController := NewReaderController(cfg.Books, cfg.Loans, cfg.AuthService, pages)

	router.NoRoute(pages.NotFound)

	router.GET("/", authController.LoginPage)
	router.POST("/", authController.Login)
	router.GET("/admin_login", authController.AdminLoginPage)
	router.POST("/admin_login", authController.AdminLogin)
	router.GET("/register", authController.RegisterPage)
	router.POST("/register", authController.Register)
	router.GET("/logout", authController.Logout)

	manage := router.Group("/manage", auth.RequireAdmin(cfg.SessionManager))
	{
		manage.GET("/book_manage", manageController.BookManage)
		manage.POST("/book_manage", manageController.BookManage)
		manage.GET("/book_add", manageController.BookAddPage)
		manage.POST("/book_add", manageController.BookAdd)
		manage.GET("/book_search", manageController.BookSearch)
		manage.POST("/book_search", manageController.BookSearch)
		manage.GET("/book_delete/:id", manageController.BookDelete)
		manage.POST("/book_delete/:id", manageController.BookDelete)
		manage.GET("/book_edit/:id", manageController.BookEditPage)
		manage.POST("/book_edit/:id", manageController.BookEdit)
		manage.GET("/user_manage", manageController.UserManage)
		manage.POST("/user_manage", manageController.UserManage)
		manage.GET("/user_search", manageController.UserSearch)
		manage.POST("/user_search", manageController.UserSearch)
		manage.GET("/user_edit/:name", manageController.UserEditPage)
		manage.POST("/user_edit/:name", manageController.UserEdit)
		manage.GET("/user_detail/:name", manageController.UserDetail)
		manage.GET("/borrow_manage", manageController.BorrowManage)
		manage.POST("/borrow_manage", manageController.BorrowManage)
		manage.GET("/admin_manage", manageController.AdminManagePage)
		manage.POST("/admin_manage", manageController.AdminManage)
	}

	reader := router.Group("/reader", auth.RequireReader(cfg.SessionManager))
	{
		reader.GET("/reader_borrow", readerController.ReaderBorrow)
		reader.POST("/reader_borrow", readerController.ReaderBorrow)
		reader.GET("/reader_search", readerController.ReaderSearch)
		reader.POST("/reader_search", readerController.ReaderSearch)
		reader.GET("/is_borrow/:bookID", readerController.IsBorrowPage)
		reader.POST("/is_borrow/:bookID", readerController.IsBorrow)
		reader.GET("/reader_detail", readerController.ReaderDetail)
		reader.POST("/reader_detail", readerController.ReaderDetail)
		reader.GET("/is_return/:recordID", readerController.IsReturnPage)
		reader.POST("/is_return/:recordID", readerController.IsReturn)
		reader.GET("/reader_info", readerController.ReaderInfoPage)
		reader.POST("/reader_info", readerController.ReaderInfo)
	}

	return router
}
