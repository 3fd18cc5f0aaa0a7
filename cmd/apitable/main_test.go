package main

import (
	"os"
	"path/filepath"
	"testing"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/constants"
)

func TestLoadConfiguration(t *testing.T) {
	cfg, err := loadConfiguration("")
	assert.NoError(t, err)
	assert.Equal(t, cfg.DatasourceType, "")
	assert.Equal(t, cfg.Cache.Type, constants.Datasource_Type_Memory)

	path := filepath.Join(t.TempDir(), "apitable.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`
datasource_type: mysql
name: main
address: 127.0.0.1:3306
database: apitable
user: root
pwd: secret
table_name: records
cache:
  type: redis
  address: 127.0.0.1:6379
  db: 2
`), 0o644))

	cfg, err = loadConfiguration(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.DatasourceType, constants.Datasource_Type_MySQL)
	assert.Equal(t, cfg.GetName(), "main")
	assert.Equal(t, cfg.GetTableName(), "records")
	assert.Equal(t, cfg.Pwd, "secret")
	assert.Equal(t, cfg.Cache.Type, constants.Datasource_Type_Redis)
	assert.Equal(t, cfg.Cache.DB, 2)

	_, err = loadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, err != nil, true)
}

func TestParseEdits(t *testing.T) {
	cache, err := parseEdits(
		[]string{"r1.age=31", "r1.city=Taipei", "r2.vip=true"},
		[]string{"name=Ann,age=20"},
		[]string{"r3"},
	)
	assert.NoError(t, err)
	assert.Equal(t, cache.Changes["r1"]["age"], interface{}(float64(31)))
	assert.Equal(t, cache.Changes["r1"]["city"], interface{}("Taipei"))
	assert.Equal(t, cache.Changes["r2"]["vip"], interface{}(true))
	assert.Equal(t, len(cache.CreatedRecords), 1)
	assert.Equal(t, cache.CreatedRecords["new-0000"]["name"], interface{}("Ann"))
	assert.Equal(t, cache.DeletedRecords, []string{"r3"})

	for _, set := range []string{"r1=1", "r1.age", ".age=1"} {
		_, err = parseEdits([]string{set}, nil, nil)
		assert.Equal(t, err != nil, true, set)
	}
	_, err = parseEdits(nil, []string{"name"}, nil)
	assert.Equal(t, err != nil, true)
}
