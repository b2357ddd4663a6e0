package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"alumni-connect/internal/core/auth"
	resp "alumni-connect/internal/transport/http/response"
)

// gin.Context 中的鉴权信息
const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"
)

// bearerToken 取 Authorization: Bearer <token>，scheme 不区分大小写
func bearerToken(c *gin.Context) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// AuthJWT 校验 token 并写入 userId/role；roles 为空时只要求登录
func AuthJWT(j *auth.JWTer, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c)
		if !ok {
			abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if len(roles) > 0 && !roleIn(claims.Role, roles) {
			abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func roleIn(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
