package api

import (
	"fmt"
	"net/url"

	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
	"github.com/apitable/apitable-go-sdk/constants"
)

const defaultRecordTableName = "apitable_records"

type Ak struct {
	AccesskeyId     string `yaml:"access_key_id"`
	AccesskeySecret string `yaml:"access_key_secret"`
	SecurityToken   string `yaml:"security_token"`
}

type Configuration struct {
	DatasourceType string `yaml:"datasource_type"`
	Name           string `yaml:"name"`
	UserAgent      string `yaml:"user_agent"`

	// hologres, postgres, mysql
	Address  string `yaml:"address"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Pwd      string `yaml:"pwd"`

	// tablestore
	Endpoint   string `yaml:"endpoint"`
	InstanceId string `yaml:"instance_id"`
	Ak         Ak     `yaml:"ak"`

	// TableName is the table holding every record, whatever its type.
	TableName string `yaml:"table_name"`

	Cache CacheConfiguration `yaml:"cache"`
}

// CacheConfiguration configures the recently opened tables cache.
type CacheConfiguration struct {
	Type string `yaml:"type"`

	// file
	Path string `yaml:"path"`

	// redis
	Address string `yaml:"address"`
	Pwd     string `yaml:"pwd"`
	DB      int    `yaml:"db"`
}

func NewConfiguration(datasourceType, name string) *Configuration {
	cfg := &Configuration{
		DatasourceType: datasourceType,
		Name:           name,
		UserAgent:      "APITable/1.0.0/go",
		Cache: CacheConfiguration{
			Type: constants.Datasource_Type_Memory,
		},
	}
	return cfg
}

func (c *Configuration) GetTableName() string {
	if c.TableName == "" {
		return defaultRecordTableName
	}
	return c.TableName
}

func (c *Configuration) GetName() string {
	if c.Name == "" {
		return c.DatasourceType
	}
	return c.Name
}

func (c *Configuration) GenerateDSN() (DSN string) {
	switch c.DatasourceType {
	case constants.Datasource_Type_Hologres, constants.Datasource_Type_Postgres:
		if c.Ak.SecurityToken != "" {
			DSN = fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable&connect_timeout=10&options=sts_token=%s",
				c.User, url.QueryEscape(c.Pwd), c.Address, c.Database, url.QueryEscape(c.Ak.SecurityToken))
		} else {
			DSN = fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable&connect_timeout=10",
				c.User, url.QueryEscape(c.Pwd), c.Address, c.Database)
		}
	}
	return
}

func (c *Configuration) NewTableStoreClient() (client *tablestore.TableStoreClient) {
	if c.Ak.SecurityToken != "" {
		client = tablestore.NewClientWithConfig(c.Endpoint, c.InstanceId, c.Ak.AccesskeyId, c.Ak.AccesskeySecret, c.Ak.SecurityToken, nil)
	} else {
		client = tablestore.NewClient(c.Endpoint, c.InstanceId, c.Ak.AccesskeyId, c.Ak.AccesskeySecret)
	}
	return
}
