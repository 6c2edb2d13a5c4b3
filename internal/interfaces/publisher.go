package interfaces

import (
	"context"

	"BetX/internal/model"
)

// ChangePublisher 推送文档变更，供看板实时刷新
type ChangePublisher interface {
	Publish(ctx context.Context, change model.Change) error
}
