package repository

import (
	"errors"
	"strings"

	"go-clinic-appointment/internal/domain/entity"
	domainRepo "go-clinic-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Create(doctor).Error
}

func (r *doctorRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByEmail(db *gorm.DB, email string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("email = ?", email).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Order("created_at ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// FindFiltered applies the name substring and specialty filters in SQL.
// Empty arguments mean no filter. Matching is case-insensitive on both
// postgres and sqlite, hence LOWER instead of ILIKE.
func (r *doctorRepository) FindFiltered(db *gorm.DB, name, specialty string) ([]entity.Doctor, error) {
	query := db.Model(&entity.Doctor{})
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if specialty != "" {
		query = query.Where("LOWER(specialty) = ?", strings.ToLower(specialty))
	}

	var doctors []entity.Doctor
	err := query.Order("created_at ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Update(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Omit("Appointments").Save(doctor).Error
}

func (r *doctorRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Doctor{})
	return result.RowsAffected, result.Error
}
