package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"volcanoweb/internal/config"
)

func TestSetupMemory(t *testing.T) {
	s, err := Setup(context.Background(), config.SessionConfig{Backend: "memory", TTL: time.Hour}, false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("store = %T, want *MemoryStore", s)
	}
}

func TestSetupDevRedis(t *testing.T) {
	ctx := context.Background()
	s, err := Setup(ctx, config.SessionConfig{Backend: "redis", TTL: time.Hour}, true)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer s.Close()
	if err := s.Put(ctx, "dev", sampleTable()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, err := s.Get(ctx, "dev"); err != nil || got.FileName != "genes.csv" {
		t.Fatalf("Get = %v, %v", got, err)
	}
}

func TestSetupRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.SessionConfig{Backend: "redis", TTL: time.Minute}
	cfg.Redis.Addr = mr.Addr()
	s, err := Setup(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*RedisStore); !ok {
		t.Fatalf("store = %T, want *RedisStore", s)
	}
}

func TestSetupRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	cfg := config.SessionConfig{Backend: "redis", TTL: time.Minute}
	cfg.Redis.Addr = addr
	if _, err := Setup(context.Background(), cfg, false); err == nil {
		t.Fatal("expected ping error")
	}
}
