package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/database/books"
	"github.com/booklend/booklend/internal/database/loans"
	"github.com/booklend/booklend/internal/database/users"
	"github.com/booklend/booklend/internal/entities"
)

// ManageController handles the administrator side: catalog upkeep,
// user management and the loan ledger.
type ManageController struct {
	books    *books.Repository
	accounts *users.Repository
	loans    *loans.Repository
	service  *auth.Service
	view     *view
}

// NewManageController creates a new administration controller.
func NewManageController(b *books.Repository, a *users.Repository, l *loans.Repository, service *auth.Service, view *view) *ManageController {
	return &ManageController{books: b, accounts: a, loans: l, service: service, view: view}
}

// BookManage lists every active book.
func (mc *ManageController) BookManage(c *gin.Context) {
	list, err := mc.books.ListActiveBooks()
	if err != nil {
		mc.view.InternalError(c, err, "book manage")
		return
	}
	mc.view.Render(c, http.StatusOK, "book_manage.html", gin.H{"Books": list})
}

// BookAddPage renders the new-book form.
func (mc *ManageController) BookAddPage(c *gin.Context) {
	mc.view.Render(c, http.StatusOK, "book_add.html", nil)
}

// BookAdd creates a catalog entry, reactivating a retired book with
// the same id.
func (mc *ManageController) BookAdd(c *gin.Context) {
	id := c.PostForm("id")
	title := c.PostForm("title")
	writer := c.PostForm("writer")
	press := c.PostForm("press")
	kind := c.PostForm("kind")
	totalStr := c.PostForm("total")
	availableStr := c.PostForm("available")

	if id == "" || title == "" || writer == "" || press == "" || kind == "" || totalStr == "" || availableStr == "" {
		mc.view.FlashRedirect(c, "Please enter", "/manage/book_add")
		return
	}

	total, available, ok := parseCopies(totalStr, availableStr)
	if !ok {
		mc.view.FlashRedirect(c, "Total and available must be numbers with 0 <= available <= total", "/manage/book_add")
		return
	}

	book := &entities.Book{
		ID:        id,
		Title:     title,
		Writer:    writer,
		Press:     press,
		Kind:      kind,
		Total:     total,
		Available: available,
	}

	err := mc.books.AddBook(book)
	switch {
	case errors.Is(err, books.ErrBookExists):
		mc.view.FlashRedirect(c, "Book already exists", "/manage/book_add")
		return
	case err != nil:
		mc.view.InternalError(c, err, "book add")
		return
	}

	c.Redirect(http.StatusFound, "/manage/book_manage")
}

// BookSearch finds an active book by exact id.
func (mc *ManageController) BookSearch(c *gin.Context) {
	id := formValue(c, "id")
	book, err := mc.books.GetActiveBook(id)
	if err != nil {
		mc.view.FlashRedirect(c, "Book does not exist or has been retired", "/manage/book_manage")
		return
	}
	mc.view.Render(c, http.StatusOK, "book_search.html", gin.H{"Book": book})
}

// BookDelete retires a book. Blocked while copies are out on loan.
func (mc *ManageController) BookDelete(c *gin.Context) {
	id := c.Param("id")
	err := mc.books.RetireBook(id)
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		mc.view.NotFound(c)
		return
	case errors.Is(err, books.ErrBookOnLoan):
		mc.view.FlashRedirect(c, "Book is out on loan and cannot be retired", "/manage/book_manage")
		return
	case err != nil:
		mc.view.InternalError(c, err, "book delete")
		return
	}
	mc.view.FlashRedirect(c, "Book retired", "/manage/book_manage")
}

// BookEditPage renders the edit form for an existing book.
func (mc *ManageController) BookEditPage(c *gin.Context) {
	book, err := mc.books.GetBook(c.Param("id"))
	if err != nil {
		mc.view.NotFound(c)
		return
	}
	mc.view.Render(c, http.StatusOK, "book_edit.html", gin.H{"Book": book})
}

// BookEdit overwrites a book's metadata fields.
func (mc *ManageController) BookEdit(c *gin.Context) {
	id := c.Param("id")
	if _, err := mc.books.GetBook(id); err != nil {
		mc.view.NotFound(c)
		return
	}

	total, available, ok := parseCopies(c.PostForm("total"), c.PostForm("available"))
	if !ok {
		mc.view.FlashRedirect(c, "Total and available must be numbers with 0 <= available <= total", "/manage/book_edit/"+id)
		return
	}

	err := mc.books.UpdateBook(id,
		c.PostForm("title"), c.PostForm("writer"), c.PostForm("press"), c.PostForm("kind"),
		total, available)
	if err != nil {
		mc.view.InternalError(c, err, "book edit")
		return
	}
	mc.view.FlashRedirect(c, "Book updated", "/manage/book_manage")
}

// UserManage lists every reader account.
func (mc *ManageController) UserManage(c *gin.Context) {
	list, err := mc.accounts.ListUsers()
	if err != nil {
		mc.view.InternalError(c, err, "user manage")
		return
	}
	mc.view.Render(c, http.StatusOK, "user_manage.html", gin.H{"Users": list})
}

// UserSearch finds a reader by exact name.
func (mc *ManageController) UserSearch(c *gin.Context) {
	name := formValue(c, "name")
	user, err := mc.accounts.GetUser(name)
	if err != nil {
		mc.view.FlashRedirect(c, "User does not exist", "/manage/user_manage")
		return
	}
	mc.view.Render(c, http.StatusOK, "user_search.html", gin.H{"User": user})
}

// UserEditPage renders the password-reset form for a reader.
func (mc *ManageController) UserEditPage(c *gin.Context) {
	user, err := mc.accounts.GetUser(c.Param("name"))
	if err != nil {
		mc.view.NotFound(c)
		return
	}
	mc.view.Render(c, http.StatusOK, "user_edit.html", gin.H{"User": user})
}

// UserEdit resets a reader's password. The administrator override does
// not require the old password.
func (mc *ManageController) UserEdit(c *gin.Context) {
	name := c.Param("name")
	password := c.PostForm("password")
	if password == "" {
		mc.view.FlashRedirect(c, "Please enter", "/manage/user_edit/"+name)
		return
	}

	err := mc.service.ResetReaderPassword(name, password)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		mc.view.NotFound(c)
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		mc.view.FlashRedirect(c, err.Error(), "/manage/user_edit/"+name)
		return
	case err != nil:
		mc.view.InternalError(c, err, "user edit")
		return
	}
	mc.view.FlashRedirect(c, "User updated", "/manage/user_manage")
}

// UserDetail shows a reader's full loan history, open and closed.
func (mc *ManageController) UserDetail(c *gin.Context) {
	name := c.Param("name")
	if _, err := mc.accounts.GetUser(name); err != nil {
		mc.view.NotFound(c)
		return
	}
	records, err := mc.loans.ListByReader(name)
	if err != nil {
		mc.view.InternalError(c, err, "user detail")
		return
	}
	mc.view.Render(c, http.StatusOK, "user_detail.html", gin.H{"Records": records})
}

// BorrowManage shows the complete loan ledger.
func (mc *ManageController) BorrowManage(c *gin.Context) {
	records, err := mc.loans.ListAll()
	if err != nil {
		mc.view.InternalError(c, err, "borrow manage")
		return
	}
	mc.view.Render(c, http.StatusOK, "borrow_manage.html", gin.H{"Records": records})
}

// AdminManagePage renders the administrator's own password form.
func (mc *ManageController) AdminManagePage(c *gin.Context) {
	mc.view.Render(c, http.StatusOK, "admin_manage.html", nil)
}

// AdminManage changes the logged-in administrator's password.
func (mc *ManageController) AdminManage(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")
	rePassword := c.PostForm("re_password")

	if oldPassword == "" || newPassword == "" || rePassword == "" {
		mc.view.FlashRedirect(c, "Please enter", "/manage/admin_manage")
		return
	}
	if newPassword != rePassword {
		mc.view.FlashRedirect(c, "Passwords do not match", "/manage/admin_manage")
		return
	}

	err := mc.service.ChangePassword(identity, oldPassword, newPassword)
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		mc.view.FlashRedirect(c, "Wrong password", "/manage/admin_manage")
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		mc.view.FlashRedirect(c, err.Error(), "/manage/admin_manage")
		return
	case err != nil:
		mc.view.InternalError(c, err, "admin manage")
		return
	}
	mc.view.FlashRedirect(c, "User updated", "/manage/book_manage")
}
