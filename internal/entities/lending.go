package entities

// TimeFormat is the layout used for borrow and return timestamps.
// Timestamps are stored as strings because BorrowTime is part of the
// composite primary key.
const TimeFormat = "2006-01-02 15:04:05"

type RecordStatus string

const (
	StatusNotReturned RecordStatus = "not returned"
	StatusReturned    RecordStatus = "returned"
)

// User is a reader account. The name doubles as the primary key.
type User struct {
	Name         string `gorm:"primaryKey;size:20" json:"name"`
	PasswordHash string `gorm:"size:100" json:"-"`

	BorrowRecords []BorrowRecord `gorm:"foreignKey:ReaderName" json:"borrow_records,omitempty"`
}

// Administrator lives in its own table, disjoint from User.
type Administrator struct {
	Name         string `gorm:"primaryKey;size:20" json:"name"`
	PasswordHash string `gorm:"size:100" json:"-"`
}

// Book is a catalog entry. IsAvailable is a soft-delete flag: retired
// books keep their row so historical borrow records stay resolvable.
type Book struct {
	ID          string `gorm:"primaryKey;size:3" json:"id"`
	Title       string `gorm:"size:20" json:"title"`
	Writer      string `gorm:"size:20" json:"writer"`
	Press       string `gorm:"size:50" json:"press"`
	Kind        string `gorm:"size:20" json:"kind"`
	Total       int    `json:"total"`
	Available   int    `json:"available"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`
}

// BorrowRecord is one loan of one copy. A record with
// ReturnStatus == StatusNotReturned is an open loan and accounts for
// exactly one copy missing from Book.Available.
type BorrowRecord struct {
	BookID       string       `gorm:"primaryKey;size:3" json:"book_id"`
	ReaderName   string       `gorm:"primaryKey;size:20" json:"reader_name"`
	BorrowTime   string       `gorm:"primaryKey;size:20" json:"borrow_time"`
	ReturnTime   string       `gorm:"size:20" json:"return_time,omitempty"`
	ReturnStatus RecordStatus `gorm:"size:20" json:"return_status"`

	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User User `gorm:"foreignKey:ReaderName" json:"-"`
}

// Open reports whether the record is an outstanding loan.
func (r BorrowRecord) Open() bool {
	return r.ReturnStatus == StatusNotReturned
}
