package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calabriando/api/internal/config"
	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/pkg/utils/secrets"
)

// WebhookAuth guards the payment-processor callback endpoints with Basic
// auth. The shared secret is stored as an argon2id PHC hash so a leaked
// config never exposes the plaintext credential.
func WebhookAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Payments.EnableVerification {
			c.Next()
			return
		}

		login, password, ok := c.Request.BasicAuth()
		if !ok || login != cfg.Payments.WebhookLogin {
			c.Header("WWW-Authenticate", `Basic realm="webhook"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		pass, err := secrets.VerifySecret(password, cfg.Payments.WebhookPepper, cfg.Payments.WebhookSecretPHC)
		if err != nil || !pass {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		c.Next()
	}
}
