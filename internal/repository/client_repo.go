package repository

import (
	"context"

	"BetX/internal/model"

	"gorm.io/gorm"
)

// ClientRepository 代理客户存储
type ClientRepository interface {
	ListByAgent(ctx context.Context, agentUID string) ([]*model.Client, error)
	Create(ctx context.Context, client *model.Client) error
	// Get 不存在返回 NotFound
	Get(ctx context.Context, id string) (*model.Client, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) ListByAgent(ctx context.Context, agentUID string) ([]*model.Client, error) {
	var clients []*model.Client
	if err := r.db.WithContext(ctx).
		Where("agent_uid = ?", agentUID).
		Order("created_at DESC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Get(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err, "Client not found")
	}
	return &c, nil
}

func (r *clientRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Updates(updates).Error
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Client{}).Error
}
