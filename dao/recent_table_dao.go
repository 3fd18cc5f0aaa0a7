package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	fsredis "github.com/apitable/apitable-go-sdk/datasource/redis"
	"github.com/go-redis/redis/v8"
)

// RecentTableDao persists the recently opened tables list as one JSON blob.
type RecentTableDao interface {
	Get(ctx context.Context) ([]*api.RecentTable, error)
	Put(ctx context.Context, tables []*api.RecentTable) error
}

func NewRecentTableDao(config DaoConfig) (RecentTableDao, error) {
	key := config.CacheKey
	if key == "" {
		key = constants.RecentTableKey
	}

	switch config.DatasourceType {
	case "", constants.Datasource_Type_Memory:
		return NewRecentTableMemoryDao(), nil
	case constants.Datasource_Type_File:
		return NewRecentTableFileDao(config.FilePath), nil
	case constants.Datasource_Type_Redis:
		r, err := fsredis.GetRedis(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		return NewRecentTableRedisDao(r.Client, key), nil
	}

	return nil, fmt.Errorf("not found RecentTableDao implement, datasource type:%s", config.DatasourceType)
}

func decodeRecentTables(blob []byte) ([]*api.RecentTable, error) {
	if len(blob) == 0 {
		return []*api.RecentTable{}, nil
	}
	var recent api.RecentTables
	if err := json.Unmarshal(blob, &recent); err != nil {
		return nil, fmt.Errorf("decode recent tables: %w", err)
	}
	if recent.Tables == nil {
		recent.Tables = []*api.RecentTable{}
	}
	return recent.Tables, nil
}

func encodeRecentTables(tables []*api.RecentTable) ([]byte, error) {
	if tables == nil {
		tables = []*api.RecentTable{}
	}
	return json.Marshal(api.RecentTables{Tables: tables})
}

type RecentTableMemoryDao struct {
	mu   sync.Mutex
	blob []byte
}

func NewRecentTableMemoryDao() *RecentTableMemoryDao {
	return &RecentTableMemoryDao{}
}

func (d *RecentTableMemoryDao) Get(ctx context.Context) ([]*api.RecentTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return decodeRecentTables(d.blob)
}

func (d *RecentTableMemoryDao) Put(ctx context.Context, tables []*api.RecentTable) error {
	blob, err := encodeRecentTables(tables)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blob = blob
	return nil
}

// RecentTableFileDao keeps the blob in a file on local disk.
type RecentTableFileDao struct {
	mu   sync.Mutex
	path string
}

func NewRecentTableFileDao(path string) *RecentTableFileDao {
	return &RecentTableFileDao{path: path}
}

func (d *RecentTableFileDao) Get(ctx context.Context) ([]*api.RecentTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	blob, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*api.RecentTable{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecentTables(blob)
}

func (d *RecentTableFileDao) Put(ctx context.Context, tables []*api.RecentTable) error {
	blob, err := encodeRecentTables(tables)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}

// RecentTableRedisDao keeps the blob under a redis key, shared by every
// client pointed at the same redis.
type RecentTableRedisDao struct {
	client *redis.Client
	key    string
}

func NewRecentTableRedisDao(client *redis.Client, key string) *RecentTableRedisDao {
	return &RecentTableRedisDao{client: client, key: key}
}

func (d *RecentTableRedisDao) Get(ctx context.Context) ([]*api.RecentTable, error) {
	blob, err := d.client.Get(ctx, d.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*api.RecentTable{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecentTables(blob)
}

func (d *RecentTableRedisDao) Put(ctx context.Context, tables []*api.RecentTable) error {
	blob, err := encodeRecentTables(tables)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, d.key, blob, 0).Err()
}
