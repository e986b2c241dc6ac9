package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const IdentityKeyForContext = "lotbid-identity"

// OptionalIdentity 有提供 token 時驗證並放入 context，沒有 token 時直接放行
// token 無效時回應 401，避免呼叫者以為自己已登入
func OptionalIdentity(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, err := BearerToken(header)
		if err == nil {
			var identity *Identity
			identity, err = verifier.Verify(c.Request.Context(), token)
			if err == nil {
				c.Set(IdentityKeyForContext, identity)
				c.Next()
				return
			}
		}
		slog.Debug("Fail to verify token", slog.String("path", c.FullPath()), slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
	}
}

// GetIdentity 從 context 中取得已驗證的身份
// ctx 可以是 *gin.Context，也可以是 strict handler 收到的 context
func GetIdentity(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKeyForContext).(*Identity)
	return identity, ok && identity != nil
}

// Authorize 要求呼叫者具有指定角色
// 未登入回傳 ErrMissingToken，角色不符回傳 ErrInsufficient
func Authorize(ctx context.Context, role string) (*Identity, error) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return nil, ErrMissingToken
	}
	if identity.Role != role {
		return nil, ErrInsufficient
	}
	return identity, nil
}
