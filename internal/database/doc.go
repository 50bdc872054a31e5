// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, schema reset
//	├── books/           # Catalog management (add, edit, retire, search)
//	├── users/           # Reader and administrator accounts
//	└── loans/           # Borrow records and the borrow/return transactions
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./booklend.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	loansRepo := loans.NewRepository(db.DB)
//
//	book, err := booksRepo.GetActiveBook("B01")
//	record, err := loansRepo.Borrow("B01", "alice")
package database
