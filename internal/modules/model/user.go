package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns projects. API keys are stored as an HMAC for
// lookup plus an argon2id PHC string for optional full verification; the raw
// key never touches the database.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email string    `gorm:"type:text;not null;uniqueIndex:uq_users_email" json:"email"`

	KeyHMAC string `gorm:"column:key_hmac;type:char(64);not null;uniqueIndex:uq_users_key_hmac" json:"-"`
	KeyPHC  string `gorm:"column:key_phc;type:text;not null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Projects []Project `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }
