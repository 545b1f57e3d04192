package redis

import (
	"context"
	"testing"
	"time"

	"github.com/deckster/chartgen/domain/cache"
)

func TestNewCacheFromClient(t *testing.T) {
	t.Parallel()

	t.Run("keeps_the_given_prefix", func(t *testing.T) {
		t.Parallel()
		c := NewCacheFromClient(nil, "test:")
		if c.keyPrefix != "test:" {
			t.Errorf("keyPrefix = %s, want test:", c.keyPrefix)
		}
	})

	t.Run("empty_prefix_is_allowed", func(t *testing.T) {
		t.Parallel()
		if c := NewCacheFromClient(nil, ""); c.keyPrefix != "" {
			t.Errorf("keyPrefix = %s, want empty", c.keyPrefix)
		}
	})
}

func TestPrefixKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		keyPrefix string
		key       string
		want      string
	}{
		{"with_prefix", "chartgen:", "abc", "chartgen:artifact:abc"},
		{"empty_prefix", "", "abc", "artifact:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewCacheFromClient(nil, tt.keyPrefix)
			if got := c.prefixKey(tt.key); got != tt.want {
				t.Errorf("prefixKey(%s) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}

func TestSetValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty_key_is_invalid", func(t *testing.T) {
		t.Parallel()
		c := NewCacheFromClient(nil, "test:")
		err := c.Set(context.Background(), "", []byte("v"), cache.SetOptions{})
		if err != cache.ErrInvalidKey {
			t.Errorf("err = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("cancelled_context_is_propagated", func(t *testing.T) {
		t.Parallel()
		c := NewCacheFromClient(nil, "test:")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := c.Set(ctx, "k", []byte("v"), cache.SetOptions{TTL: time.Minute}); err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Address != "localhost:6379" {
		t.Errorf("Address = %s", cfg.Address)
	}
	if cfg.KeyPrefix != "chartgen:" {
		t.Errorf("KeyPrefix = %s", cfg.KeyPrefix)
	}

	WithAddress("redis:6380")(&cfg)
	WithDB(2)(&cfg)
	WithKeyPrefix("other:")(&cfg)
	if cfg.Address != "redis:6380" || cfg.DB != 2 || cfg.KeyPrefix != "other:" {
		t.Errorf("options not applied: %+v", cfg)
	}
}
