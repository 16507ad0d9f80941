package repo

import (
	"errors"

	"maa-remote/backend/app/models"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository { return &UserRepository{db: tx} }

func (r *UserRepository) Create(u *models.User) error { return r.db.Create(u).Error }

// FindByKey returns nil without error when no user matches.
func (r *UserRepository) FindByKey(userKey string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("user_key = ?", userKey).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
