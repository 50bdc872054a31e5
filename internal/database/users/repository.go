// Package users provides database operations for reader and
// administrator accounts.
//
// Readers and administrators live in separate tables. Both are looked
// up by name; nothing ever deletes an account, only the password
// changes.
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/booklend/booklend/internal/entities"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrAdminNotFound = errors.New("administrator not found")
	ErrAdminExists   = errors.New("administrator already exists")
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser registers a new reader account.
func (r *Repository) CreateUser(name, passwordHash string) (*entities.User, error) {
	var existing entities.User
	err := r.db.First(&existing, "name = ?", name).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &entities.User{Name: name, PasswordHash: passwordHash}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a reader by name.
func (r *Repository) GetUser(name string) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every reader account.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var list []entities.User
	err := r.db.Order("name").Find(&list).Error
	return list, err
}

// SetUserPassword overwrites a reader's stored password hash.
func (r *Repository) SetUserPassword(name, passwordHash string) error {
	result := r.db.Model(&entities.User{}).Where("name = ?", name).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateAdministrator creates an administrator account. The name must
// not collide with an existing reader; the two tables share a login
// namespace.
func (r *Repository) CreateAdministrator(name, passwordHash string) (*entities.Administrator, error) {
	if _, err := r.GetUser(name); err == nil {
		return nil, ErrUserExists
	}

	var existing entities.Administrator
	err := r.db.First(&existing, "name = ?", name).Error
	if err == nil {
		return nil, ErrAdminExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing administrator: %w", err)
	}

	admin := &entities.Administrator{Name: name, PasswordHash: passwordHash}
	if err := r.db.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// GetAdministrator retrieves an administrator by name.
func (r *Repository) GetAdministrator(name string) (*entities.Administrator, error) {
	var admin entities.Administrator
	err := r.db.First(&admin, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// SetAdministratorPassword overwrites an administrator's stored
// password hash.
func (r *Repository) SetAdministratorPassword(name, passwordHash string) error {
	result := r.db.Model(&entities.Administrator{}).Where("name = ?", name).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
