package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"BetX/internal/interfaces"
	"BetX/internal/model"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher 将赛事/盘口变更写入 Redis Stream，供看板订阅
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher 创建 Stream 发布器
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
	}
}

// Publish 追加一条变更记录，流长度近似裁剪到 10000
func (p *StreamPublisher) Publish(ctx context.Context, change model.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("序列化变更失败: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"data":     string(data),
			"type":     change.Type,
			"match_id": change.MatchID,
		},
	}).Err()
}

type noopPublisher struct{}

// Noop 未配置 Redis 时使用
func Noop() interfaces.ChangePublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, model.Change) error { return nil }
