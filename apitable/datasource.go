package apitable

import (
	"fmt"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/datasource/hologres"
	"github.com/apitable/apitable-go-sdk/datasource/mysql"
	"github.com/apitable/apitable-go-sdk/datasource/redis"
	"github.com/apitable/apitable-go-sdk/datasource/tablestore"
)

// RegisterDatasource opens the clients named by cfg and registers them
// under cfg.GetName(), where the record and cache daos look them up.
func RegisterDatasource(cfg *api.Configuration) error {
	name := cfg.GetName()

	switch cfg.DatasourceType {
	case constants.Datasource_Type_Hologres, constants.Datasource_Type_Postgres:
		if err := hologres.RegisterHologres(name, cfg.GenerateDSN()); err != nil {
			return err
		}
	case constants.Datasource_Type_MySQL:
		dsn := mysql.GenerateDSN(cfg.Address, cfg.User, cfg.Pwd, cfg.Database)
		if err := mysql.RegisterMysql(name, dsn); err != nil {
			return err
		}
	case constants.Datasource_Type_TableStore:
		tablestore.RegisterTableStoreClient(name, cfg.NewTableStoreClient())
	case "", constants.Datasource_Type_Memory:
	default:
		return fmt.Errorf("unknown datasource type:%s", cfg.DatasourceType)
	}

	if cfg.Cache.Type == constants.Datasource_Type_Redis {
		if err := redis.RegisterRedis(name, cfg.Cache.Address, cfg.Cache.Pwd, cfg.Cache.DB); err != nil {
			return err
		}
	}

	return nil
}
