package services

import (
	"stockaide_go_backend/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateOrUpdateUser(authID, email, name, nickname string) (*models.User, error) {
	user := models.User{
		AuthID:   authID,
		Email:    email,
		Name:     name,
		Nickname: nickname,
	}
	result := s.db.Where(models.User{AuthID: authID}).FirstOrCreate(&user)

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (s *UserService) GetUserByAuthID(authID string) (*models.User, error) {
	var user models.User
	result := s.db.Where("auth_id = ?", authID).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
