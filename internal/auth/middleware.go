package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"HaruChat/be/internal/user"
)

// RequireAuth admits requests carrying a valid access token and stores the
// caller's id under user.IDKey.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		scheme, token, ok := strings.Cut(ctx.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(ctx, "missing credentials")
			return
		}

		id, err := tokens.Verify(token, TokenTypeAccess)
		if err != nil {
			abortUnauthorized(ctx, "invalid credentials")
			return
		}

		ctx.Set(user.IDKey, id)
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, message string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
