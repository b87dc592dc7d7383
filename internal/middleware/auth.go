package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/auth-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/pkg/utils/tokens"
)

// ContextUserKey is where the authenticated admin user lands in the gin
// context.
const ContextUserKey = "admin_user"

// AdminAuth gates every admin route behind an active hosted-auth session.
// The bearer token is verified against the auth service on each request; an
// invalid or missing session gets a 401 and never reaches the handler.
func AdminAuth(authClient auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		_, authSpan := otel.Tracer("middleware").Start(ctx, "admin_auth",
			trace.WithAttributes(attribute.String("middleware", "admin_auth")))

		token, ok := tokens.ParseToken(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		user, err := authClient.WithToken(token).GetUser()
		if err != nil {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		// Tag the root span so traces can be filtered per admin.
		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("admin_id", user.ID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("admin_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
