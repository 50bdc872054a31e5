package config

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./booklend.db"

// DefaultBcryptCost is the default bcrypt work factor for password hashes.
const DefaultBcryptCost = 12
