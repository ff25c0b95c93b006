package schedulersvc

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

const lockPrefix = "lock:"

// deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker guards a job so that a single instance runs it at a time.
type Locker interface {
	// Acquire returns ok=false when another holder owns the lock.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

type redisLocker struct {
	client *redis.Client
	logger core.Logger
}

func NewRedisLocker(client *redis.Client, logger core.Logger) Locker {
	return &redisLocker{client: client, logger: logger}
}

func (l *redisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := lockPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "acquiring lock "+key)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the job ctx may be done by now
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Error("releasing lock", errors.Wrap(err, key))
		}
	}
	return release, true, nil
}

// NewRedisClient returns nil when no redis address is configured.
func NewRedisClient(conf *core.Config) *redis.Client {
	if conf.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

// localLocker serializes the runs of each named job within the process.
type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newLocalLocker() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) Acquire(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[name]; ok {
		return nil, false, nil
	}
	l.held[name] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
