package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/booklend/booklend/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	t.Helper()
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.BorrowRecord{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func testBook(id string) *entities.Book {
	return &entities.Book{
		ID:        id,
		Title:     "Dune",
		Writer:    "Herbert",
		Press:     "Chilton",
		Kind:      "scifi",
		Total:     3,
		Available: 3,
	}
}

func TestRepository_AddBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.AddBook(testBook("B01"))
	require.NoError(t, err)

	book, err := repo.GetActiveBook("B01")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.True(t, book.IsAvailable)
}

func TestRepository_AddBook_DuplicateActiveRejected(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))

	err := repo.AddBook(testBook("B01"))
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestRepository_AddBook_ReactivatesRetired(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))
	require.NoError(t, repo.RetireBook("B01"))

	replacement := testBook("B01")
	replacement.Title = "Dune Messiah"
	replacement.Total = 5
	replacement.Available = 5
	require.NoError(t, repo.AddBook(replacement))

	book, err := repo.GetActiveBook("B01")
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, 5, book.Total)
	assert.True(t, book.IsAvailable)
}

func TestRepository_RetireBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))
	require.NoError(t, repo.RetireBook("B01"))

	// Gone from active listings but still reachable by id.
	_, err := repo.GetActiveBook("B01")
	assert.ErrorIs(t, err, ErrBookNotFound)

	book, err := repo.GetBook("B01")
	require.NoError(t, err)
	assert.False(t, book.IsAvailable)

	active, err := repo.ListActiveBooks()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRepository_RetireBook_BlockedByOpenLoan(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))
	require.NoError(t, db.Create(&entities.BorrowRecord{
		BookID:       "B01",
		ReaderName:   "alice",
		BorrowTime:   "2024-05-10 09:00:00",
		ReturnStatus: entities.StatusNotReturned,
	}).Error)

	err := repo.RetireBook("B01")
	assert.ErrorIs(t, err, ErrBookOnLoan)

	book, err := repo.GetBook("B01")
	require.NoError(t, err)
	assert.True(t, book.IsAvailable, "rejected retire must leave the book active")
}

func TestRepository_RetireBook_ClosedLoansDoNotBlock(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))
	require.NoError(t, db.Create(&entities.BorrowRecord{
		BookID:       "B01",
		ReaderName:   "alice",
		BorrowTime:   "2024-05-10 09:00:00",
		ReturnTime:   "2024-05-11 10:00:00",
		ReturnStatus: entities.StatusReturned,
	}).Error)

	require.NoError(t, repo.RetireBook("B01"))

	// Historical record survives the retire.
	var count int64
	db.Model(&entities.BorrowRecord{}).Where("book_id = ?", "B01").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_UpdateBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))

	err := repo.UpdateBook("B01", "Dune", "Frank Herbert", "Chilton", "scifi", 4, 4)
	require.NoError(t, err)

	book, err := repo.GetActiveBook("B01")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", book.Writer)
	assert.Equal(t, 4, book.Total)
	// Untouched fields round-trip unchanged.
	assert.Equal(t, "Chilton", book.Press)
	assert.Equal(t, "scifi", book.Kind)
}

func TestRepository_UpdateBook_Missing(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateBook("zzz", "a", "b", "c", "d", 1, 1)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_ListBorrowableBooks(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(testBook("B01")))

	exhausted := testBook("B02")
	exhausted.Available = 0
	require.NoError(t, repo.AddBook(exhausted))

	retired := testBook("B03")
	require.NoError(t, repo.AddBook(retired))
	require.NoError(t, repo.RetireBook("B03"))

	borrowable, err := repo.ListBorrowableBooks()
	require.NoError(t, err)
	require.Len(t, borrowable, 1)
	assert.Equal(t, "B01", borrowable[0].ID)

	active, err := repo.ListActiveBooks()
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
