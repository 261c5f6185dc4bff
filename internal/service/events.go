package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
)

// EventPublisher 事件发布接口，*pubsub.Publisher 实现了它
type EventPublisher interface {
	Publish(ctx context.Context, event *pubsub.Event) error
}

// publishEvent 尽力发布，失败只记日志
func publishEvent(ctx context.Context, p EventPublisher, event *pubsub.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.L.Warn("publish membership event failed",
			zap.String("type", event.Type),
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
