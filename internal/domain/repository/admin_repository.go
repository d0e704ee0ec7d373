package repository

import (
	"go-clinic-appointment/internal/domain/entity"

	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(db *gorm.DB, admin *entity.Admin) error
	FindByUsername(db *gorm.DB, username string) (*entity.Admin, error)
}
