package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	bootstrapLockKey = "lock:bootstrap"
	bootstrapLockTTL = 30 * time.Second
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// BootstrapLock serialises first-account provisioning across API instances.
type BootstrapLock struct {
	client *redis.Client
	token  string
}

// NewBootstrapLock creates a lock owned by this process.
func NewBootstrapLock(client *redis.Client) *BootstrapLock {
	return &BootstrapLock{client: client, token: uuid.NewString()}
}

// Acquire takes the lock. It reports false when another instance holds it.
func (l *BootstrapLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, bootstrapLockKey, l.token, bootstrapLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("bootstrap lock acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lock if it is still held by this instance.
func (l *BootstrapLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{bootstrapLockKey}, l.token).Err(); err != nil {
		return fmt.Errorf("bootstrap lock release: %w", err)
	}
	return nil
}
