package repository

import (
	"context"
	"time"

	"BetX/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 账号资料存储
type UserRepository interface {
	// GetUser 按 uid 查询，不存在返回 NotFound
	GetUser(ctx context.Context, uid string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	// UpsertUser uid 已存在时覆盖邮箱/角色/状态
	UpsertUser(ctx context.Context, user *model.User) error
	ListByRole(ctx context.Context, role string) ([]*model.User, error)
	TouchLastLogin(ctx context.Context, uid string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUser(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpsertUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "role", "status", "updated_at"}),
	}).Create(user).Error
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, uid string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("uid = ?", uid).
		Update("last_login", at).Error
}
