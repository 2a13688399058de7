package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisLimiterClient struct {
	counts     map[string]int64
	getErr     error
	lastScript string
	lastArgs   []interface{}
	deleted    []string
}

func newMockRedisLimiterClient() *mockRedisLimiterClient {
	return &mockRedisLimiterClient{counts: make(map[string]int64)}
}

func (m *mockRedisLimiterClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	n, ok := m.counts[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(strconv.FormatInt(n, 10))
	return cmd
}

func (m *mockRedisLimiterClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	for _, k := range keys {
		delete(m.counts, k)
		m.deleted = append(m.deleted, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func (m *mockRedisLimiterClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastArgs = args
	m.counts[keys[0]]++
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(m.counts[keys[0]])
	return cmd
}

func TestLoginRateLimiter_CountsOnlyFailures(t *testing.T) {
	ctx := context.Background()
	l := NewLoginRateLimiter(time.Minute, 2)

	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "a@x.com") {
			t.Fatalf("check %d: Allow alone must not consume the budget", i)
		}
	}
	l.Fail(ctx, "a@x.com")
	l.Fail(ctx, "A@X.com ")
	if l.Allow(ctx, "a@x.com") {
		t.Fatalf("expected deny after two failures")
	}
	if !l.Allow(ctx, "b@x.com") {
		t.Fatalf("expected other keys unaffected")
	}

	l.Reset(ctx, "a@x.com")
	if !l.Allow(ctx, "a@x.com") {
		t.Fatalf("expected allow after reset")
	}
}

func TestLoginRateLimiter_WindowExpiryDropsKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLoginRateLimiter(time.Minute, 1).(*loginRateLimiter)
	l.now = func() time.Time { return now }

	l.Fail(ctx, "a@x.com")
	l.Fail(ctx, "b@x.com")
	if l.Allow(ctx, "a@x.com") {
		t.Fatalf("expected deny inside the window")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow(ctx, "a@x.com") {
		t.Fatalf("expected allow once failures leave the window")
	}
	l.Fail(ctx, "c@x.com")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.failures["a@x.com"]; ok {
		t.Fatalf("expired key a@x.com should be removed")
	}
	if _, ok := l.failures["b@x.com"]; ok {
		t.Fatalf("expired key b@x.com should be swept")
	}
	if len(l.failures) != 1 {
		t.Fatalf("expected only c@x.com tracked, got %v", l.failures)
	}
}

func TestRedisLoginRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginRateLimiter
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
		l.Fail(ctx, "user@example.com")
		l.Reset(ctx, "user@example.com")
	})

	t.Run("fail increments with window ttl", func(t *testing.T) {
		mock := newMockRedisLimiterClient()
		l := &redisLoginRateLimiter{client: mock, window: 2 * time.Minute, max: 2, prefix: "login:rl:"}

		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected allow with no failures recorded")
		}
		l.Fail(ctx, " User@Example.com ")
		if mock.counts["login:rl:user@example.com"] != 1 {
			t.Fatalf("unexpected key normalization, got %+v", mock.counts)
		}
		if mock.lastScript != redisLoginFailScript || len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected fail script with TTL seconds=120, got %+v", mock.lastArgs)
		}
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected allow below max")
		}
		l.Fail(ctx, "user@example.com")
		if l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected deny at max")
		}
	})

	t.Run("reset deletes counter", func(t *testing.T) {
		mock := newMockRedisLimiterClient()
		mock.counts["login:rl:user@example.com"] = 5
		l := &redisLoginRateLimiter{client: mock, window: time.Minute, max: 3, prefix: "login:rl:"}

		l.Reset(ctx, "user@example.com")
		if len(mock.deleted) != 1 || mock.deleted[0] != "login:rl:user@example.com" {
			t.Fatalf("expected counter deleted, got %+v", mock.deleted)
		}
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected allow after reset")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		mock := newMockRedisLimiterClient()
		mock.getErr = errors.New("redis down")
		l := &redisLoginRateLimiter{client: mock, window: time.Minute, max: 1, prefix: "login:rl:"}
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}
