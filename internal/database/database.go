package database

import (
	"log"

	"taskflow-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database at path and runs migrations.
// glebarez/sqlite is a pure Go driver, so no CGO is required.
func InitDB(path string) {
	var err error

	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Task{},
		&models.TaskComment{},
		&models.TaskAttachment{},
		&models.AccountabilityPartner{},
		&models.TaskAccountability{},
	)
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
