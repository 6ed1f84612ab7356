package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/modules/repo"
	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/pkg/secrets"
	"github.com/tastewire/tastewire/internal/pkg/tokens"
)

// UserAuth authenticates requests with a bearer API key, looks the user up by
// key HMAC, and sets the user in the context. The user_id attribute lands on
// the current span for telemetry filtering.
func UserAuth(cfg *config.Config, users repo.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx, authSpan := otel.Tracer("middleware").Start(ctx, "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		secret, ok := tokens.ParseAPIKey(raw, cfg.Auth.BearerTokenPrefix)
		if !ok {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
			return
		}

		lookup := tokens.HMAC256Hex(cfg.Auth.SecretPepper, secret)

		user, err := users.GetByKeyHMAC(ctx, lookup)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				authSpan.SetAttributes(attribute.Bool("authenticated", false))
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
				return
			}
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.Err("Internal server error", err))
			return
		}

		if cfg.Auth.EnableArgon2Verification {
			_, verifySpan := otel.Tracer("middleware").Start(ctx, "user_auth.verify_secret")
			pass, err := secrets.VerifySecret(secret, cfg.Auth.SecretPepper, user.KeyPHC)
			verifySpan.End()
			if err != nil || !pass {
				authSpan.SetAttributes(
					attribute.String("user_id", user.ID.String()),
					attribute.Bool("authenticated", false),
				)
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.Err("Unauthorized", nil))
				return
			}
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set("user", user)
		c.Next()
	}
}

// CurrentUser fetches the authenticated user placed by UserAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
