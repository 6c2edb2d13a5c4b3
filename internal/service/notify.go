package service

import (
	"context"

	"BetX/internal/interfaces"
	"BetX/internal/model"

	"github.com/sirupsen/logrus"
)

// publishChange 推送失败只记录日志，不影响已提交的写入
func publishChange(ctx context.Context, p interfaces.ChangePublisher, logger *logrus.Logger, change model.Change) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, change); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"type":     change.Type,
			"match_id": change.MatchID,
		}).Warn("推送变更失败")
	}
}
