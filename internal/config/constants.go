package config

// DefaultDatabasePath is the default path for the main application database
const DefaultDatabasePath = "./quoteshelf.db"

// Feed pagination limits
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
