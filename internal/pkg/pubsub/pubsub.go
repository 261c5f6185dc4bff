package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultChannel 会员事件频道
const DefaultChannel = "dotori_membership_events"

// 事件类型
const (
	EventUsageConsumed = "usage_consumed"
	EventPointsEarned  = "points_earned"
	EventPointsSpent   = "points_spent"
	EventPlanChanged   = "plan_changed"
)

// Event 会员事件，提交事务后发布
type Event struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Feature   string `json:"feature,omitempty"`
	UsedToday int    `json:"used_today,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
	Balance   int    `json:"balance"`
	Delta     int    `json:"delta,omitempty"`
	Reason    string `json:"reason,omitempty"`
	PlanCode  string `json:"plan_code,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher 创建发布者，channel 为空时使用默认频道
func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Publish 发布事件
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{client: client, channel: channel}
}

// Subscribe 订阅事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// 等待订阅确认
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", s.channel, err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
