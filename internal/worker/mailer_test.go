package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/prv_line_server/internal/pkg/queue"
)

type sentMail struct {
	to        string
	code      string
	expiresIn int
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) SendOTP(to, code string, expiresInMinutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, code: code, expiresIn: expiresInMinutes})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestMailer_Process(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailer(nil, sender)
	ctx := context.Background()

	err := m.Process(ctx, &queue.MailMessage{Type: queue.MailTypeOTP, UserID: 1, To: "a@example.com", Code: "123456", ExpiresIn: 10})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMail{to: "a@example.com", code: "123456", expiresIn: 10}, sender.sent[0])

	err = m.Process(ctx, &queue.MailMessage{Type: "newsletter", To: "a@example.com"})
	assert.Error(t, err)

	err = m.Process(ctx, &queue.MailMessage{Type: queue.MailTypeOTP, UserID: 2})
	assert.Error(t, err)

	sender.err = errors.New("smtp unavailable")
	err = m.Process(ctx, &queue.MailMessage{Type: queue.MailTypeOTP, To: "b@example.com", Code: "1"})
	assert.ErrorIs(t, err, sender.err)
}

func TestMailer_Run(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	q := queue.NewQueue(rdb, "mail_queue_test")
	sender := &fakeSender{}
	m := NewMailer(q, sender)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 2)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(context.Background(), &queue.MailMessage{
			Type: queue.MailTypeOTP, UserID: int64(i), To: "u@example.com", Code: "654321", ExpiresIn: 10,
		}))
	}

	assert.Eventually(t, func() bool { return sender.count() == 3 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(7 * time.Second):
		t.Fatal("mailer did not stop")
	}
}
