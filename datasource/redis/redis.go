package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Address string
	Name    string
	Client  *redis.Client
}

var redisInstances sync.Map

func GetRedis(name string) (*Redis, error) {
	value, ok := redisInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("Redis not found, name:%s", name)
	}

	redisInstance, ok := value.(*Redis)
	if !ok {
		return nil, fmt.Errorf("Redis not found, name:%s", name)
	}

	return redisInstance, nil
}

func (r *Redis) Init(pwd string, db int) error {
	r.Client = redis.NewClient(&redis.Options{
		Addr:         r.Address,
		Password:     pwd,
		DB:           db,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

func RegisterRedis(name, address, pwd string, db int) error {
	if _, ok := redisInstances.Load(name); ok {
		return nil
	}
	r := &Redis{
		Address: address,
		Name:    name,
	}
	if err := r.Init(pwd, db); err != nil {
		r.Client.Close()
		return fmt.Errorf("event=RegisterRedis\tname=%s: %w", name, err)
	}
	redisInstances.Store(name, r)

	return nil
}

// RegisterRedisClient stores an already configured client under name.
func RegisterRedisClient(name string, client *redis.Client) {
	redisInstances.LoadOrStore(name, &Redis{Name: name, Client: client})
}

func RemoveRedis(name string) {
	value, ok := redisInstances.LoadAndDelete(name)
	if !ok {
		return
	}
	if r, ok := value.(*Redis); ok && r.Client != nil {
		r.Client.Close()
	}
}
