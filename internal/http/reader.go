package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/database/books"
	"github.com/booklend/booklend/internal/database/loans"
)

// ReaderController handles the reader side: browsing the catalog,
// borrowing and returning books, and account upkeep.
type ReaderController struct {
	books   *books.Repository
	loans   *loans.Repository
	service *auth.Service
	view    *view
}

// NewReaderController creates a new reader controller.
func NewReaderController(b *books.Repository, l *loans.Repository, service *auth.Service, view *view) *ReaderController {
	return &ReaderController{books: b, loans: l, service: service, view: view}
}

// ReaderBorrow lists the books available to borrow. Books the reader
// already has out are marked so the page can offer a return link
// instead of a borrow one.
func (rc *ReaderController) ReaderBorrow(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	list, err := rc.books.ListBorrowableBooks()
	if err != nil {
		rc.view.InternalError(c, err, "reader borrow")
		return
	}
	openIDs, err := rc.loans.OpenBookIDsForReader(identity.Name)
	if err != nil {
		rc.view.InternalError(c, err, "reader borrow")
		return
	}

	borrowed := make(map[string]bool, len(openIDs))
	for _, id := range openIDs {
		borrowed[id] = true
	}
	rc.view.Render(c, http.StatusOK, "reader_borrow.html", gin.H{
		"Books":    list,
		"Borrowed": borrowed,
	})
}

// ReaderSearch finds a borrowable book by exact id.
func (rc *ReaderController) ReaderSearch(c *gin.Context) {
	id := formValue(c, "id")
	book, err := rc.books.GetActiveBook(id)
	if err != nil {
		rc.view.FlashRedirect(c, "Book does not exist", "/reader/reader_borrow")
		return
	}
	rc.view.Render(c, http.StatusOK, "reader_search.html", gin.H{"Book": book})
}

// IsBorrowPage renders the borrow confirmation page for a book.
func (rc *ReaderController) IsBorrowPage(c *gin.Context) {
	book, err := rc.books.GetActiveBook(c.Param("bookID"))
	if err != nil {
		rc.view.NotFound(c)
		return
	}
	rc.view.Render(c, http.StatusOK, "is_borrow.html", gin.H{"Book": book})
}

// IsBorrow checks out one copy of the book to the logged-in reader.
func (rc *ReaderController) IsBorrow(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	bookID := c.Param("bookID")

	_, err := rc.loans.Borrow(bookID, identity.Name)
	switch {
	case errors.Is(err, loans.ErrBookNotFound):
		rc.view.NotFound(c)
		return
	case errors.Is(err, loans.ErrAlreadyBorrowed):
		rc.view.FlashRedirect(c, "Book already borrowed", "/reader/reader_borrow")
		return
	case errors.Is(err, loans.ErrNoCopies):
		rc.view.FlashRedirect(c, "No copies available", "/reader/reader_borrow")
		return
	case err != nil:
		rc.view.InternalError(c, err, "borrow")
		return
	}
	rc.view.FlashRedirect(c, "Book borrowed", "/reader/reader_borrow")
}

// ReaderDetail lists the reader's outstanding loans.
func (rc *ReaderController) ReaderDetail(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	records, err := rc.loans.ListOpenByReader(identity.Name)
	if err != nil {
		rc.view.InternalError(c, err, "reader detail")
		return
	}
	rc.view.Render(c, http.StatusOK, "reader_detail.html", gin.H{"Records": records})
}

// IsReturnPage renders the return confirmation page. The path
// parameter is the borrowed book's id.
func (rc *ReaderController) IsReturnPage(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	record, err := rc.loans.GetOpen(c.Param("recordID"), identity.Name)
	if err != nil {
		rc.view.NotFound(c)
		return
	}
	rc.view.Render(c, http.StatusOK, "is_return.html", gin.H{"Record": record})
}

// IsReturn closes the reader's open loan of the book.
func (rc *ReaderController) IsReturn(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	_, err := rc.loans.Return(c.Param("recordID"), identity.Name)
	switch {
	case errors.Is(err, loans.ErrRecordNotFound):
		rc.view.NotFound(c)
		return
	case err != nil:
		rc.view.InternalError(c, err, "return")
		return
	}
	rc.view.FlashRedirect(c, "Book returned", "/reader/reader_detail")
}

// ReaderInfoPage renders the reader's own password form.
func (rc *ReaderController) ReaderInfoPage(c *gin.Context) {
	rc.view.Render(c, http.StatusOK, "reader_info.html", nil)
}

// ReaderInfo changes the logged-in reader's password.
func (rc *ReaderController) ReaderInfo(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")
	rePassword := c.PostForm("re_password")

	if oldPassword == "" || newPassword == "" || rePassword == "" {
		rc.view.FlashRedirect(c, "Please enter", "/reader/reader_info")
		return
	}
	if newPassword != rePassword {
		rc.view.FlashRedirect(c, "Passwords do not match", "/reader/reader_info")
		return
	}

	err := rc.service.ChangePassword(identity, oldPassword, newPassword)
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		rc.view.FlashRedirect(c, "Wrong password", "/reader/reader_info")
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		rc.view.FlashRedirect(c, err.Error(), "/reader/reader_info")
		return
	case err != nil:
		rc.view.InternalError(c, err, "reader info")
		return
	}
	rc.view.FlashRedirect(c, "User updated", "/reader/reader_borrow")
}
