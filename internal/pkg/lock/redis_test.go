package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	values  map[string]string
	setErr  error
	evalErr error
	closed  bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	if f.evalErr != nil {
		return redis.NewCmdResult(nil, f.evalErr)
	}
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	client := newFakeRedis()
	locker := &RedisLocker{client: client, prefix: "test:"}
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "sweep", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected lock, ok=%v err=%v", ok, err)
	}
	if _, held := client.values["test:sweep"]; !held {
		t.Fatal("expected prefixed key in redis")
	}
	if _, ok, _ := locker.TryLock(ctx, "sweep", time.Minute); ok {
		t.Fatal("second lock must fail")
	}
	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := release(ctx); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("expected ErrNotHeld, got %v", err)
	}
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	client := newFakeRedis()
	locker := &RedisLocker{client: client, prefix: "test:"}
	ctx := context.Background()

	release, _, _ := locker.TryLock(ctx, "job", time.Minute)
	client.values["test:job"] = "someone-else"
	if err := release(ctx); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("expected ErrNotHeld, got %v", err)
	}
	if client.values["test:job"] != "someone-else" {
		t.Fatal("foreign lock must survive release")
	}
}

func TestRedisLocker_Errors(t *testing.T) {
	client := newFakeRedis()
	client.setErr = errors.New("conn refused")
	locker := &RedisLocker{client: client, prefix: "test:"}
	if _, ok, err := locker.TryLock(context.Background(), "job", time.Minute); ok || err == nil {
		t.Fatalf("expected acquire error, ok=%v err=%v", ok, err)
	}

	client.setErr = nil
	client.evalErr = errors.New("timeout")
	release, ok, err := locker.TryLock(context.Background(), "job", time.Minute)
	if !ok || err != nil {
		t.Fatalf("expected lock, ok=%v err=%v", ok, err)
	}
	if err := release(context.Background()); err == nil || errors.Is(err, ErrNotHeld) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestRedisLocker_PingClose(t *testing.T) {
	client := newFakeRedis()
	locker := &RedisLocker{client: client}
	if err := locker.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := locker.Close(); err != nil || !client.closed {
		t.Fatalf("expected close, err=%v", err)
	}
}
