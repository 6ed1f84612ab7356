package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/pkg/secrets"
	"github.com/tastewire/tastewire/internal/pkg/tokens"
)

// EnsureDefaultUserExists creates or realigns the bootstrap user at startup.
// Skipped when no bootstrap key is configured.
func EnsureDefaultUserExists(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	raw := cfg.Auth.BootstrapAPIKey
	pepper := cfg.Auth.SecretPepper

	if raw == "" || pepper == "" {
		return nil
	}

	secret := strings.TrimPrefix(raw, cfg.Auth.BearerTokenPrefix)
	if secret == raw {
		return fmt.Errorf("bootstrap api key must carry the %q prefix", cfg.Auth.BearerTokenPrefix)
	}

	lookup := tokens.HMAC256Hex(pepper, secret)
	phc, err := secrets.HashSecret(secret, pepper)
	if err != nil {
		return err
	}

	var user model.User
	err = db.WithContext(ctx).Where(&model.User{Email: cfg.Auth.BootstrapEmail}).First(&user).Error

	switch {
	case err == nil:
		updates := map[string]interface{}{
			"key_hmac": lookup,
			"key_phc":  phc,
		}
		if uErr := db.WithContext(ctx).Model(&user).Updates(updates).Error; uErr != nil {
			return uErr
		}
		log.Sugar().Infow("bootstrap user exists", "user", user.ID)
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		newUser := model.User{
			Email:   cfg.Auth.BootstrapEmail,
			KeyHMAC: lookup,
			KeyPHC:  phc,
		}
		if cErr := db.WithContext(ctx).Create(&newUser).Error; cErr != nil {
			return cErr
		}
		log.Sugar().Infow("bootstrap user created", "user", newUser.ID)
		return nil

	default:
		return err
	}
}
