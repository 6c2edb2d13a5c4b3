package service

import (
	"context"
	"fmt"
	"strings"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/sirupsen/logrus"
)

// RoleSet 路由允许的角色集合
type RoleSet []string

func (r RoleSet) Contains(role string) bool {
	for _, allowed := range r {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	// AgentRoles 代理与客户管理路由
	AgentRoles = RoleSet{model.RoleAgent}
	// AdminRoles 一般后台路由
	AdminRoles = RoleSet{model.RoleAdmin, model.RoleSubAdmin}
	// SuperAdminRoles 子管理员创建、全局列表
	SuperAdminRoles = RoleSet{model.RoleAdmin}
)

// GuardService 请求主体校验：token -> 身份 -> 账号资料 -> 角色/状态
type GuardService struct {
	identity interfaces.IdentityProvider
	users    repository.UserRepository
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

func NewGuardService(identity interfaces.IdentityProvider, users repository.UserRepository, m *metrics.Metrics, logger *logrus.Logger) *GuardService {
	return &GuardService{
		identity: identity,
		users:    users,
		metrics:  m,
		logger:   logger,
	}
}

// Authenticate 校验 Authorization 头中的 Bearer token
func (g *GuardService) Authenticate(ctx context.Context, authHeader string) (*model.Identity, error) {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		g.metrics.RecordGuardRejection("no_token")
		return nil, apperr.Unauthorized("Unauthorized: No token provided")
	}
	identity, err := g.identity.VerifyIDToken(ctx, token)
	if err != nil {
		g.metrics.RecordGuardRejection("invalid_token")
		g.logger.WithError(err).Debug("token 校验失败")
		return nil, apperr.Unauthorized("Unauthorized: Invalid or expired token")
	}
	return identity, nil
}

// Authorize 加载账号资料并校验角色与状态
func (g *GuardService) Authorize(ctx context.Context, identity *model.Identity, allowed RoleSet) (model.Principal, error) {
	if identity == nil {
		return model.Principal{}, apperr.Unauthorized("Unauthorized")
	}
	user, err := g.users.GetUser(ctx, identity.UID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			g.metrics.RecordGuardRejection("no_profile")
			return model.Principal{}, apperr.Forbidden("Forbidden: User not found")
		}
		return model.Principal{}, fmt.Errorf("加载账号资料失败: %w", err)
	}

	principal := model.Principal{
		UID:    identity.UID,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	}
	if principal.Email == "" {
		principal.Email = identity.Email
	}
	if !allowed.Contains(user.Role) {
		g.metrics.RecordGuardRejection("role")
		return model.Principal{}, apperr.Forbidden("Forbidden: Insufficient role")
	}
	if user.Status != model.StatusActive {
		g.metrics.RecordGuardRejection("suspended")
		return model.Principal{}, apperr.Forbidden("Forbidden: Account suspended")
	}
	return principal, nil
}

// Narrow 在已通过的主体上进一步收窄角色（如超级管理员）
func (g *GuardService) Narrow(p model.Principal, allowed RoleSet) (model.Principal, error) {
	if !allowed.Contains(p.Role) {
		g.metrics.RecordGuardRejection("role")
		return model.Principal{}, apperr.Forbidden("Forbidden: Super Admin access required")
	}
	return p, nil
}
