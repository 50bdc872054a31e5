package auth

import (
	"errors"
	"fmt"

	"github.com/booklend/booklend/internal/config"
	"github.com/booklend/booklend/internal/database/users"
	"github.com/booklend/booklend/internal/entities"
)

// MaxNameLength mirrors the 20-character name column.
const MaxNameLength = 20

var (
	ErrAccountNotFound = errors.New("account does not exist")
	ErrAccountExists   = errors.New("account already exists")
	ErrWrongPassword   = errors.New("wrong password")
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name exceeds maximum length of 20 characters")
)

// AccountStore defines the account lookups the service needs.
// Implemented by users.Repository.
type AccountStore interface {
	CreateUser(name, passwordHash string) (*entities.User, error)
	GetUser(name string) (*entities.User, error)
	SetUserPassword(name, passwordHash string) error
	GetAdministrator(name string) (*entities.Administrator, error)
	SetAdministratorPassword(name, passwordHash string) error
}

// Service handles authentication and account management for both
// roles.
type Service struct {
	accounts AccountStore
	config   config.Auth
}

// NewService creates a new authentication service.
func NewService(accounts AccountStore, cfg config.Auth) *Service {
	return &Service{accounts: accounts, config: cfg}
}

// Authenticate validates submitted credentials against the User table
// first and the Administrator table second. The fixed order makes a
// name collision between the tables resolve to the reader.
func (s *Service) Authenticate(name, password string) (*Identity, error) {
	user, err := s.accounts.GetUser(name)
	if err == nil {
		if err := CheckPassword(password, user.PasswordHash); err != nil {
			return nil, ErrWrongPassword
		}
		return &Identity{Role: RoleReader, Name: user.Name}, nil
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.AuthenticateAdmin(name, password)
}

// AuthenticateAdmin validates credentials against the Administrator
// table only. Used by the admin login route.
func (s *Service) AuthenticateAdmin(name, password string) (*Identity, error) {
	admin, err := s.accounts.GetAdministrator(name)
	if err != nil {
		if errors.Is(err, users.ErrAdminNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up administrator: %w", err)
	}
	if err := CheckPassword(password, admin.PasswordHash); err != nil {
		return nil, ErrWrongPassword
	}
	return &Identity{Role: RoleAdmin, Name: admin.Name}, nil
}

// Resolve re-establishes an identity from a session-stored name,
// preferring the reader account when both tables hold the name.
// Returns nil when the name matches neither table.
func (s *Service) Resolve(name string) *Identity {
	if name == "" {
		return nil
	}
	if _, err := s.accounts.GetUser(name); err == nil {
		return &Identity{Role: RoleReader, Name: name}
	}
	if _, err := s.accounts.GetAdministrator(name); err == nil {
		return &Identity{Role: RoleAdmin, Name: name}
	}
	return nil
}

// Register creates a new reader account.
func (s *Service) Register(name, password string) (*Identity, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.CreateUser(name, hash)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &Identity{Role: RoleReader, Name: user.Name}, nil
}

// ChangePassword rotates the password for either role after verifying
// the current one. Self-service contract: old password required.
func (s *Service) ChangePassword(identity *Identity, oldPassword, newPassword string) error {
	hash, getErr := s.storedHash(identity)
	if getErr != nil {
		return getErr
	}

	if err := CheckPassword(oldPassword, hash); err != nil {
		return ErrWrongPassword
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.setHash(identity, newHash)
}

// ResetReaderPassword overwrites a reader's password without checking
// the old one. Administrator override, asymmetric with self-service.
func (s *Service) ResetReaderPassword(name, newPassword string) error {
	hash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	err = s.accounts.SetUserPassword(name, hash)
	if errors.Is(err, users.ErrUserNotFound) {
		return ErrAccountNotFound
	}
	return err
}

func (s *Service) storedHash(identity *Identity) (string, error) {
	switch {
	case identity.IsReader():
		user, err := s.accounts.GetUser(identity.Name)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return "", ErrAccountNotFound
			}
			return "", err
		}
		return user.PasswordHash, nil
	case identity.IsAdmin():
		admin, err := s.accounts.GetAdministrator(identity.Name)
		if err != nil {
			if errors.Is(err, users.ErrAdminNotFound) {
				return "", ErrAccountNotFound
			}
			return "", err
		}
		return admin.PasswordHash, nil
	default:
		return "", ErrAccountNotFound
	}
}

func (s *Service) setHash(identity *Identity, hash string) error {
	if identity.IsAdmin() {
		return s.accounts.SetAdministratorPassword(identity.Name, hash)
	}
	return s.accounts.SetUserPassword(identity.Name, hash)
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
