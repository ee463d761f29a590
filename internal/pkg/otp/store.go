package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeKeyPrefix     = "otp:code:"
	cooldownKeyPrefix = "otp:cooldown:"
	attemptsKeyPrefix = "otp:attempts:"

	fieldHash  = "hash"
	fieldEmail = "email"
)

var (
	ErrCooldown        = errors.New("otp requested too frequently")
	ErrExpired         = errors.New("otp expired or not requested")
	ErrMismatch        = errors.New("otp mismatch")
	ErrTooManyAttempts = errors.New("too many otp attempts")
)

// Store 邮箱验证码存储，只保存 bcrypt 哈希
type Store struct {
	rdb         *redis.Client
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
}

// NewStore 创建验证码存储
func NewStore(rdb *redis.Client, ttl, cooldown time.Duration, maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Store{
		rdb:         rdb,
		ttl:         ttl,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
	}
}

// TTL 验证码有效期
func (s *Store) TTL() time.Duration { return s.ttl }

// Cooldown 重发间隔
func (s *Store) Cooldown() time.Duration { return s.cooldown }

// Generate 生成指定位数的数字验证码
func Generate(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// Save 保存验证码；冷却期内返回 ErrCooldown
func (s *Store) Save(ctx context.Context, userID int64, email, code string) error {
	ok, err := s.rdb.SetNX(ctx, key(cooldownKeyPrefix, userID), 1, s.cooldown).Result()
	if err != nil {
		return fmt.Errorf("failed to set otp cooldown: %w", err)
	}
	if !ok {
		return ErrCooldown
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	codeKey := key(codeKeyPrefix, userID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, codeKey, key(attemptsKeyPrefix, userID))
		pipe.HSet(ctx, codeKey, fieldHash, string(hash), fieldEmail, email)
		pipe.Expire(ctx, codeKey, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Verify 校验验证码，成功后删除并返回申请时的邮箱
func (s *Store) Verify(ctx context.Context, userID int64, code string) (string, error) {
	codeKey := key(codeKeyPrefix, userID)
	attemptsKey := key(attemptsKeyPrefix, userID)

	vals, err := s.rdb.HGetAll(ctx, codeKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get otp: %w", err)
	}
	hash, ok := vals[fieldHash]
	if !ok {
		return "", ErrExpired
	}

	attempts, err := s.rdb.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to count otp attempts: %w", err)
	}
	if attempts == 1 {
		s.rdb.Expire(ctx, attemptsKey, s.ttl)
	}
	if attempts > int64(s.maxAttempts) {
		s.rdb.Del(ctx, codeKey, attemptsKey)
		return "", ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return "", ErrMismatch
	}

	if err := s.rdb.Del(ctx, codeKey, attemptsKey).Err(); err != nil {
		return "", fmt.Errorf("failed to consume otp: %w", err)
	}
	return vals[fieldEmail], nil
}

// CooldownRemaining 距离可以重发还需等待的时间
func (s *Store) CooldownRemaining(ctx context.Context, userID int64) (time.Duration, error) {
	d, err := s.rdb.PTTL(ctx, key(cooldownKeyPrefix, userID)).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func key(prefix string, userID int64) string {
	return fmt.Sprintf("%s%d", prefix, userID)
}
