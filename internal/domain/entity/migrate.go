package entity

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every clinic entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&Doctor{},
		&Patient{},
		&Appointment{},
		&Prescription{},
		&AuditLog{},
	)
}
