package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/sirupsen/logrus"
)

const generatedPasswordLength = 12

// SubAdminService 子管理员创建与查询（仅超级管理员）
type SubAdminService struct {
	identity interfaces.IdentityProvider
	users    repository.UserRepository
	logger   *logrus.Logger
	now      func() time.Time
}

func NewSubAdminService(identity interfaces.IdentityProvider, users repository.UserRepository, logger *logrus.Logger) *SubAdminService {
	return &SubAdminService{identity: identity, users: users, logger: logger, now: time.Now}
}

// CreatedSubAdmin 创建结果，Password 只返回这一次
type CreatedSubAdmin struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *SubAdminService) Create(ctx context.Context, actor model.Principal, email, name string) (*CreatedSubAdmin, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, apperr.Validation("Email and name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("Invalid email address")
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("生成密码失败: %w", err)
	}

	// 1. 身份提供方创建账号
	uid, err := s.identity.CreateUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}

	// 2. 写入账号资料
	now := s.now().UTC()
	if err := s.users.CreateUser(ctx, &model.User{
		UID:       uid,
		Email:     email,
		Name:      name,
		Role:      model.RoleSubAdmin,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("保存子管理员资料失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"uid": uid, "actor": actor.UID}).Info("子管理员已创建")
	return &CreatedSubAdmin{UID: uid, Email: email, Name: name, Password: password}, nil
}

func (s *SubAdminService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListByRole(ctx, model.RoleSubAdmin)
	if err != nil {
		return nil, fmt.Errorf("查询子管理员失败: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// generatePassword 随机字节 base64 后截断到指定长度
func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf)[:length], nil
}
