package store

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"calendareventservice/pkg/models"
)

// GormStore persists user tokens in Postgres through GORM. Used instead of
// the file store when database settings are configured.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("migrate user table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(email string) (*oauth2.Token, error) {
	var user models.User
	if err := s.db.Where("google_email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
		TokenType:    user.TokenType,
		Expiry:       user.TokenExpiry,
	}, nil
}

func (s *GormStore) Save(email string, token *oauth2.Token) error {
	user := models.User{
		GoogleEmail:  email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		TokenExpiry:  token.Expiry,
	}
	return s.db.Where(models.User{GoogleEmail: email}).Assign(user).FirstOrCreate(&user).Error
}
