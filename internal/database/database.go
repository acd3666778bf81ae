package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quoteshelf/quoteshelf/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// WAL keeps readers unblocked during writes. _txlock=immediate makes
	// every transaction take the write lock up front, so read-then-write
	// transactions (like toggles) queue on the busy timeout instead of
	// failing on lock upgrade.
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Quote{},
		&entities.Like{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var sampleQuotes = []entities.Quote{
	{
		Text:      "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
		BookTitle: "Pride and Prejudice",
		Author:    "Jane Austen",
		Category:  entities.CategoryFiction,
		Tags:      []string{"classic", "opening-lines"},
	},
	{
		Text:      "Hope is the thing with feathers that perches in the soul.",
		BookTitle: "The Complete Poems",
		Author:    "Emily Dickinson",
		Category:  entities.CategoryPoetry,
		Tags:      []string{"hope"},
	},
	{
		Text:      "We are what we repeatedly do. Excellence, then, is not an act, but a habit.",
		BookTitle: "The Story of Philosophy",
		Author:    "Will Durant",
		Category:  entities.CategoryNonFiction,
		Tags:      []string{"habits", "philosophy"},
	},
	{
		Text:      "I have not failed. I've just found 10,000 ways that won't work.",
		BookTitle: "Edison: A Biography",
		Author:    "Matthew Josephson",
		Category:  entities.CategoryBiography,
		Tags:      []string{"perseverance"},
	},
}

// SeedSampleQuotes inserts a small starter set of quotes when the quotes
// table is empty. Returns the number of quotes created.
func (d *Database) SeedSampleQuotes() (int, error) {
	var count int64
	if err := d.DB.Model(&entities.Quote{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, quote := range sampleQuotes {
		q := quote
		q.BackgroundColor = entities.DefaultBackgroundColor
		q.IsActive = true
		if err := d.DB.Create(&q).Error; err != nil {
			return created, fmt.Errorf("failed to seed quote %q: %w", q.BookTitle, err)
		}
		created++
	}
	log.Printf("Seeded %d sample quotes", created)
	return created, nil
}
