package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qs3c/prv_line_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// MailSender 实际发送邮件，生产环境为 email.Service
type MailSender interface {
	SendOTP(to, code string, expiresInMinutes int) error
}

// MailQueue 邮件队列的消费端
type MailQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.MailMessage, error)
}

// Mailer 邮件队列消费者
type Mailer struct {
	queue  MailQueue
	sender MailSender
}

// NewMailer 创建邮件消费者
func NewMailer(q MailQueue, sender MailSender) *Mailer {
	return &Mailer{
		queue:  q,
		sender: sender,
	}
}

// Process 发送一封邮件
func (m *Mailer) Process(ctx context.Context, msg *queue.MailMessage) error {
	switch msg.Type {
	case queue.MailTypeOTP:
		if msg.To == "" || msg.Code == "" {
			return fmt.Errorf("invalid otp mail for user %d", msg.UserID)
		}
		if err := m.sender.SendOTP(msg.To, msg.Code, msg.ExpiresIn); err != nil {
			return fmt.Errorf("failed to send otp mail: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown mail type: %q", msg.Type)
	}
}

// Run 启动 workers 个消费协程，ctx 取消后等待全部退出
func (m *Mailer) Run(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			m.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (m *Mailer) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("mail worker shutting down", "worker", workerID)
			return
		default:
		}

		msg, err := m.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("pop mail failed", "worker", workerID, "error", err)
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		if err := m.Process(ctx, msg); err != nil {
			slog.Error("mail failed", "worker", workerID, "type", msg.Type, "user_id", msg.UserID, "error", err)
			continue
		}
		slog.Info("mail sent", "worker", workerID, "type", msg.Type, "user_id", msg.UserID)
	}
}
