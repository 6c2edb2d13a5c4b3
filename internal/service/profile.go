package service

import (
	"context"
	"time"

	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/sirupsen/logrus"
)

// ProfileService 当前登录账号资料
type ProfileService struct {
	users  repository.UserRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewProfileService(users repository.UserRepository, logger *logrus.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger, now: time.Now}
}

// Profile 代理资料返回
type Profile struct {
	UID        string    `json:"uid"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	AgentLimit int       `json:"agentLimit"`
	CreatedAt  time.Time `json:"createdAt"`
	LastLogin  time.Time `json:"lastLogin"`
}

// GetProfile 返回账号资料并刷新最后登录时间
func (s *ProfileService) GetProfile(ctx context.Context, p model.Principal) (*Profile, error) {
	user, err := s.users.GetUser(ctx, p.UID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, p.UID, now); err != nil {
		s.logger.WithError(err).WithField("uid", p.UID).Warn("更新最后登录时间失败")
	}
	return &Profile{
		UID:        user.UID,
		Email:      user.Email,
		Role:       user.Role,
		Status:     user.Status,
		AgentLimit: user.AgentLimit,
		CreatedAt:  user.CreatedAt,
		LastLogin:  now,
	}, nil
}
