package loans

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/booklend/booklend/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	t.Helper()
	dbPath := "./test_loans_" + t.Name() + ".db"

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

func createTestBook(t *testing.T, db *gorm.DB, id string, total, available int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		ID:          id,
		Title:       "Test Book " + id,
		Writer:      "Test Writer",
		Press:       "Test Press",
		Kind:        "fiction",
		Total:       total,
		Available:   available,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createTestReader(t *testing.T, db *gorm.DB, name string) {
	t.Helper()
	require.NoError(t, db.Create(&entities.User{Name: name, PasswordHash: "x"}).Error)
}

func bookAvailable(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.First(&book, "id = ?", id).Error)
	return book.Available
}

func TestRepository_Borrow(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 2, 2)
	createTestReader(t, db, "alice")

	record, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)
	assert.Equal(t, "B01", record.BookID)
	assert.Equal(t, "alice", record.ReaderName)
	assert.Equal(t, entities.StatusNotReturned, record.ReturnStatus)
	assert.True(t, record.Open())
	assert.NotEmpty(t, record.BorrowTime)
	assert.Empty(t, record.ReturnTime)

	assert.Equal(t, 1, bookAvailable(t, db, "B01"))

	var count int64
	db.Model(&entities.BorrowRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Borrow_SameBookTwiceRejected(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 3, 3)
	createTestReader(t, db, "alice")

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)

	_, err = repo.Borrow("B01", "alice")
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)

	// No side effects from the rejected attempt.
	assert.Equal(t, 2, bookAvailable(t, db, "B01"))
	var count int64
	db.Model(&entities.BorrowRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Borrow_NoCopiesLeft(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 1, 1)
	createTestReader(t, db, "alice")
	createTestReader(t, db, "bob")

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)

	// The transaction rolls back: no record, counter untouched.
	_, err = repo.Borrow("B01", "bob")
	assert.ErrorIs(t, err, ErrNoCopies)

	assert.Equal(t, 0, bookAvailable(t, db, "B01"))
	var count int64
	db.Model(&entities.BorrowRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Borrow_RetiredBook(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, "B01", 1, 1)
	require.NoError(t, db.Model(book).Update("is_available", false).Error)
	createTestReader(t, db, "alice")

	_, err := repo.Borrow("B01", "alice")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_Return(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 2, 2)
	createTestReader(t, db, "alice")

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)

	record, err := repo.Return("B01", "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReturned, record.ReturnStatus)
	assert.False(t, record.Open())
	assert.NotEmpty(t, record.ReturnTime)

	assert.Equal(t, 2, bookAvailable(t, db, "B01"))

	open, err := repo.ListOpenByReader("alice")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRepository_Return_WrongReader(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 2, 2)
	createTestReader(t, db, "alice")
	createTestReader(t, db, "bob")

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)

	// bob never borrowed B01: rejected, nothing changes.
	_, err = repo.Return("B01", "bob")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.Equal(t, 1, bookAvailable(t, db, "B01"))

	open, err := repo.ListOpenByReader("alice")
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, entities.StatusNotReturned, open[0].ReturnStatus)
}

func TestRepository_Return_NothingOpen(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 2, 2)
	createTestReader(t, db, "alice")

	_, err := repo.Return("B01", "alice")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, 2, bookAvailable(t, db, "B01"))
}

// Walks the two-reader scenario end to end: alice and bob drain the
// shelf, the book disappears from borrowable listings, alice's return
// brings one copy back.
func TestRepository_BorrowReturnLifecycle(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 2, 2)
	createTestReader(t, db, "alice")
	createTestReader(t, db, "bob")

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, bookAvailable(t, db, "B01"))

	_, err = repo.Borrow("B01", "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, bookAvailable(t, db, "B01"))

	var borrowable []entities.Book
	db.Where("available > 0 AND is_available = ?", true).Find(&borrowable)
	assert.Empty(t, borrowable, "exhausted book must drop out of borrowable listings")

	returned, err := repo.Return("B01", "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReturned, returned.ReturnStatus)
	assert.Equal(t, "2024-05-10 09:03:00", returned.ReturnTime)
	assert.Equal(t, 1, bookAvailable(t, db, "B01"))

	// bob's record is still open; history keeps both.
	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := repo.ListOpenByReader("bob")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "B01", open[0].BookID)
}

func TestRepository_ListByReader(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "B01", 1, 1)
	createTestBook(t, db, "B02", 1, 1)
	createTestReader(t, db, "alice")

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	_, err := repo.Borrow("B01", "alice")
	require.NoError(t, err)
	_, err = repo.Borrow("B02", "alice")
	require.NoError(t, err)
	_, err = repo.Return("B01", "alice")
	require.NoError(t, err)

	history, err := repo.ListByReader("alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	open, err := repo.ListOpenByReader("alice")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "B02", open[0].BookID)
	assert.Equal(t, "Test Book B02", open[0].Book.Title)

	ids, err := repo.OpenBookIDsForReader("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"B02"}, ids)
}
