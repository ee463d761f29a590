package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPrivilegeEvents = "privilege_events"
)

// 事件类型
const (
	EventPrivilegeUpdated = "privilege_updated"
	EventRewardRedeemed   = "reward_redeemed"
	EventEmailVerified    = "email_verified"
)

// PrivilegeEvent 会员账户变化通知
type PrivilegeEvent struct {
	Type         string `json:"type"`
	UserID       int64  `json:"user_id"`
	Tier         string `json:"tier,omitempty"`
	CurrentPoint int64  `json:"current_point"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	Reason       string `json:"reason,omitempty"` // expense_added / expense_deleted / license / redeem / diamond_expired
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布会员事件，Type 为空时按 privilege_updated 处理
func (p *Publisher) Publish(ctx context.Context, evt *PrivilegeEvent) error {
	if evt.Type == "" {
		evt.Type = EventPrivilegeUpdated
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal privilege event: %w", err)
	}

	return p.client.Publish(ctx, ChannelPrivilegeEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅会员事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PrivilegeEvent)) error {
	ps := s.client.Subscribe(ctx, ChannelPrivilegeEvents)
	defer ps.Close()

	// 等待订阅确认，避免丢失订阅建立前发布的消息
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt PrivilegeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue // 忽略解析错误
			}

			handler(&evt)
		}
	}
}
