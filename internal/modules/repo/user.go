package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/modules/model"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	GetByKeyHMAC(ctx context.Context, keyHMAC string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByKeyHMAC(ctx context.Context, keyHMAC string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("key_hmac = ?", keyHMAC).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
