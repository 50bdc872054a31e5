// Package books provides database operations for catalog management.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetActiveBook("B01")
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/booklend/booklend/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookExists   = errors.New("book already exists")
	ErrBookOnLoan   = errors.New("book has open loans")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddBook inserts a new catalog entry. If a retired book with the same
// id exists, its attributes are overwritten and the book is reactivated.
// Adding over an active book fails with ErrBookExists.
func (r *Repository) AddBook(book *entities.Book) error {
	var existing entities.Book
	err := r.db.First(&existing, "id = ?", book.ID).Error
	switch {
	case err == nil:
		if existing.IsAvailable {
			return ErrBookExists
		}
		book.IsAvailable = true
		return r.db.Model(&existing).Updates(map[string]any{
			"title":        book.Title,
			"writer":       book.Writer,
			"press":        book.Press,
			"kind":         book.Kind,
			"total":        book.Total,
			"available":    book.Available,
			"is_available": true,
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		book.IsAvailable = true
		return r.db.Create(book).Error
	default:
		return fmt.Errorf("failed to check existing book: %w", err)
	}
}

// GetBook retrieves a book by id regardless of its soft-delete state,
// so historical borrow records stay resolvable.
func (r *Repository) GetBook(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetActiveBook retrieves a book by id, excluding retired books.
func (r *Repository) GetActiveBook(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND is_available = ?", id, true).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListActiveBooks returns every book that has not been retired.
func (r *Repository) ListActiveBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_available = ?", true).Order("id").Find(&books).Error
	return books, err
}

// ListBorrowableBooks returns active books with at least one copy on
// the shelf.
func (r *Repository) ListBorrowableBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("available > 0 AND is_available = ?", true).Order("id").Find(&books).Error
	return books, err
}

// UpdateBook overwrites the metadata fields of an existing book.
func (r *Repository) UpdateBook(id string, title, writer, press, kind string, total, available int) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"title":     title,
		"writer":    writer,
		"press":     press,
		"kind":      kind,
		"total":     total,
		"available": available,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// RetireBook soft-deletes a book. It fails with ErrBookOnLoan while any
// copy is still out, so the open loan ledger never references a retired
// book.
func (r *Repository) RetireBook(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		var open int64
		err := tx.Model(&entities.BorrowRecord{}).
			Where("book_id = ? AND return_status = ?", id, entities.StatusNotReturned).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrBookOnLoan
		}

		return tx.Model(&book).Update("is_available", false).Error
	})
}
