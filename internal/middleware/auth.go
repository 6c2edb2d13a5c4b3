package middleware

import (
	"BetX/internal/apperr"
	"BetX/internal/model"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	identityKey  = "betx.identity"
	principalKey = "betx.principal"
)

// ErrorWriter 中间件拒绝请求时写响应，由 api 包注入以保持统一的响应格式
type ErrorWriter func(c *gin.Context, err error)

// Authenticate 校验 bearer token，身份写入上下文
func Authenticate(guard *service.GuardService, writeErr ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := guard.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			writeErr(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRoles 加载账号资料，校验角色与状态，主体写入上下文
func RequireRoles(guard *service.GuardService, roles service.RoleSet, writeErr ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(identityKey)
		identity, _ := v.(*model.Identity)
		principal, err := guard.Authorize(c.Request.Context(), identity, roles)
		if err != nil {
			writeErr(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireSuperAdmin 在 RequireRoles 之后进一步限定为超级管理员
func RequireSuperAdmin(guard *service.GuardService, writeErr ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			writeErr(c, apperr.Unauthorized("Unauthorized"))
			c.Abort()
			return
		}
		if _, err := guard.Narrow(p, service.SuperAdminRoles); err != nil {
			writeErr(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom 读取已通过校验的请求主体
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
