// Package loans provides database operations for borrow records.
//
// Borrow and Return are the only mutations in the system that touch
// two rows (the record and the book's available counter). Both run as
// a single transaction so the counter and the ledger cannot drift
// apart, and the available > 0 check is re-evaluated inside the same
// transaction as the decrement to keep concurrent borrows from driving
// the counter negative.
package loans

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/booklend/booklend/internal/entities"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this reader")
	ErrNoCopies        = errors.New("no copies available")
	ErrRecordNotFound  = errors.New("borrow record not found")
)

// Repository handles all borrow-record database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Borrow checks out one copy of a book to a reader. The open-record
// check, the ledger insert and the counter decrement all commit
// together or not at all.
func (r *Repository) Borrow(bookID, readerName string) (*entities.BorrowRecord, error) {
	record := &entities.BorrowRecord{
		BookID:       bookID,
		ReaderName:   readerName,
		BorrowTime:   r.now().Format(entities.TimeFormat),
		ReturnStatus: entities.StatusNotReturned,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Where("id = ? AND is_available = ?", bookID, true).First(&book).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		var open int64
		err = tx.Model(&entities.BorrowRecord{}).
			Where("book_id = ? AND reader_name = ? AND return_status = ?",
				bookID, readerName, entities.StatusNotReturned).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyBorrowed
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		// The guard in the WHERE clause is the point: a stale listing
		// may have shown available > 0, but the decrement only lands
		// if it still holds at commit time.
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available > 0", bookID).
			UpdateColumn("available", gorm.Expr("available - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoCopies
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Return closes a reader's open loan of the given book. Only the
// reader who borrowed the copy can return it; anyone else gets
// ErrRecordNotFound.
func (r *Repository) Return(bookID, readerName string) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("book_id = ? AND reader_name = ? AND return_status = ?",
			bookID, readerName, entities.StatusNotReturned).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		record.ReturnTime = r.now().Format(entities.TimeFormat)
		record.ReturnStatus = entities.StatusReturned
		err = tx.Model(&entities.BorrowRecord{}).
			Where("book_id = ? AND reader_name = ? AND borrow_time = ?",
				record.BookID, record.ReaderName, record.BorrowTime).
			Updates(map[string]any{
				"return_time":   record.ReturnTime,
				"return_status": record.ReturnStatus,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("available", gorm.Expr("available + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetOpen returns the reader's open record for a book, if any.
func (r *Repository) GetOpen(bookID, readerName string) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("book_id = ? AND reader_name = ? AND return_status = ?",
			bookID, readerName, entities.StatusNotReturned).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListOpenByReader returns a reader's outstanding loans.
func (r *Repository) ListOpenByReader(readerName string) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("reader_name = ? AND return_status = ?", readerName, entities.StatusNotReturned).
		Order("borrow_time").
		Find(&records).Error
	return records, err
}

// ListByReader returns a reader's full loan history, open and closed.
func (r *Repository) ListByReader(readerName string) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("reader_name = ?", readerName).
		Order("borrow_time").
		Find(&records).Error
	return records, err
}

// ListAll returns every borrow record in the system.
func (r *Repository) ListAll() ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").Order("borrow_time").Find(&records).Error
	return records, err
}

// OpenBookIDsForReader returns the ids of books the reader currently
// has out, so listings can mark them instead of hiding them.
func (r *Repository) OpenBookIDsForReader(readerName string) ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("reader_name = ? AND return_status = ?", readerName, entities.StatusNotReturned).
		Pluck("book_id", &ids).Error
	return ids, err
}
