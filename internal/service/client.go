package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ClientService 代理名下客户管理
type ClientService struct {
	repo   repository.ClientRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewClientService(repo repository.ClientRepository, logger *logrus.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger, now: time.Now}
}

// CreateClientRequest 新建客户
type CreateClientRequest struct {
	Name        string  `json:"name"`
	Mobile      string  `json:"mobile"`
	Password    string  `json:"password"`
	ClientLimit float64 `json:"clientLimit"`
}

// UpdateClientRequest 可更新字段，nil 表示不修改
type UpdateClientRequest struct {
	Name        *string  `json:"name"`
	Mobile      *string  `json:"mobile"`
	Status      *string  `json:"status"`
	Password    *string  `json:"password"`
	ClientLimit *float64 `json:"clientLimit"`
}

func (s *ClientService) List(ctx context.Context, agent model.Principal) ([]*model.Client, error) {
	clients, err := s.repo.ListByAgent(ctx, agent.UID)
	if err != nil {
		return nil, fmt.Errorf("查询客户失败: %w", err)
	}
	if clients == nil {
		clients = []*model.Client{}
	}
	return clients, nil
}

func (s *ClientService) Create(ctx context.Context, agent model.Principal, req *CreateClientRequest) (*model.Client, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Mobile) == "" || req.Password == "" {
		return nil, apperr.Validation("Name, mobile, and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	client := &model.Client{
		ID:           uuid.NewString(),
		AgentUID:     agent.UID,
		Code:         "C" + strconv.Itoa(100000+rand.Intn(900000)),
		Name:         strings.TrimSpace(req.Name),
		Mobile:       strings.TrimSpace(req.Mobile),
		PasswordHash: string(hash),
		ClientLimit:  req.ClientLimit,
		Status:       model.StatusActive,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"client_id": client.ID, "agent": agent.UID}).Info("客户已创建")
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, agent model.Principal, clientID string, req *UpdateClientRequest) error {
	if _, err := s.ownedClient(ctx, agent, clientID, "Unauthorized access to this client"); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Mobile != nil {
		updates["mobile"] = strings.TrimSpace(*req.Mobile)
	}
	if req.Status != nil {
		if *req.Status != model.StatusActive && *req.Status != model.StatusSuspended {
			return apperr.Validation("Status must be active or suspended")
		}
		updates["status"] = *req.Status
	}
	if req.ClientLimit != nil {
		updates["client_limit"] = *req.ClientLimit
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("密码加密失败: %w", err)
		}
		updates["password_hash"] = string(hash)
	}

	if err := s.repo.Update(ctx, clientID, updates); err != nil {
		return fmt.Errorf("更新客户失败: %w", err)
	}
	return nil
}

func (s *ClientService) Delete(ctx context.Context, agent model.Principal, clientID string) error {
	if _, err := s.ownedClient(ctx, agent, clientID, "Unauthorized access to delete this client"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("删除客户失败: %w", err)
	}
	return nil
}

// ownedClient 客户必须属于当前代理
func (s *ClientService) ownedClient(ctx context.Context, agent model.Principal, clientID, forbiddenMsg string) (*model.Client, error) {
	client, err := s.repo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.AgentUID != agent.UID {
		return nil, apperr.Forbidden(forbiddenMsg)
	}
	return client, nil
}
