package common

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/apitable"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/dao"
	"github.com/apitable/apitable-go-sdk/domain"
	"github.com/google/uuid"
)

// ConfigFromEnv builds a datasource configuration from APITABLE_TEST_*
// variables. It returns nil when APITABLE_TEST_<TYPE>_ADDRESS is unset.
func ConfigFromEnv(datasourceType string) *api.Configuration {
	prefix := "APITABLE_TEST_" + envName(datasourceType) + "_"
	address := os.Getenv(prefix + "ADDRESS")
	if address == "" {
		return nil
	}

	cfg := api.NewConfiguration(datasourceType, "it_"+datasourceType)
	cfg.TableName = "apitable_it_" + uuid.NewString()[:8]
	switch datasourceType {
	case constants.Datasource_Type_TableStore:
		cfg.Endpoint = address
		cfg.InstanceId = os.Getenv(prefix + "INSTANCE")
		cfg.Ak.AccesskeyId = os.Getenv(prefix + "AK_ID")
		cfg.Ak.AccesskeySecret = os.Getenv(prefix + "AK_SECRET")
	case constants.Datasource_Type_Redis:
		// records stay in memory, the recent tables go to redis
		cfg.DatasourceType = constants.Datasource_Type_Memory
		cfg.Cache.Type = constants.Datasource_Type_Redis
		cfg.Cache.Address = address
		cfg.Cache.Pwd = os.Getenv(prefix + "PWD")
		cfg.Cache.DB, _ = strconv.Atoi(os.Getenv(prefix + "DB"))
	default:
		cfg.Address = address
		cfg.Database = os.Getenv(prefix + "DATABASE")
		cfg.User = os.Getenv(prefix + "USER")
		cfg.Pwd = os.Getenv(prefix + "PWD")
	}
	return cfg
}

func envName(datasourceType string) string {
	switch datasourceType {
	case constants.Datasource_Type_Hologres:
		return "HOLOGRES"
	case constants.Datasource_Type_Postgres:
		return "POSTGRES"
	case constants.Datasource_Type_MySQL:
		return "MYSQL"
	case constants.Datasource_Type_TableStore:
		return "TABLESTORE"
	case constants.Datasource_Type_Redis:
		return "REDIS"
	}
	return datasourceType
}

// NewClient registers the configured datasource, creates the record table
// and returns a client bound to it.
func NewClient(ctx context.Context, cfg *api.Configuration, opts ...apitable.ClientOption) (*apitable.Client, error) {
	if err := apitable.RegisterDatasource(cfg); err != nil {
		return nil, err
	}

	recordDao, err := dao.NewRecordDao(dao.DaoConfig{
		DatasourceType: cfg.DatasourceType,
		DatasourceName: cfg.GetName(),
		TableName:      cfg.GetTableName(),
	})
	if err != nil {
		return nil, err
	}
	if creator, ok := recordDao.(interface{ CreateTable(context.Context) error }); ok {
		if err := creator.CreateTable(ctx); err != nil {
			return nil, fmt.Errorf("create record table %s: %w", cfg.GetTableName(), err)
		}
	}

	opts = append([]apitable.ClientOption{
		apitable.WithConfiguration(cfg),
		apitable.WithNoDatasourceInitClient(),
		apitable.WithDatabase(recordDao),
	}, opts...)
	return apitable.NewClient(opts...)
}

// WriteTable creates a table with the fields and adds the rows in one save.
func WriteTable(ctx context.Context, client *apitable.Client, name string, fields []api.Field, rows []map[string]interface{}) (string, error) {
	table, err := client.CreateTable(ctx, name)
	if err != nil {
		return "", err
	}
	for _, field := range fields {
		if err := client.AddTableField(ctx, table.Id, field); err != nil {
			return "", err
		}
	}

	cache := domain.NewEditCache()
	for i, row := range rows {
		cache.CreatedRecords[fmt.Sprintf("new-%06d", i)] = row
	}
	if err := client.SaveTableRecords(ctx, table.Id, cache); err != nil {
		return "", err
	}
	return table.Id, nil
}

// WriteCSV exports the table into a CSV file with the given columns.
func WriteCSV(ctx context.Context, client *apitable.Client, filePath, tableId, filter string, fields []string) error {
	rows, err := client.ExportCSV(ctx, tableId, filter)
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return apitable.WriteCSV(file, fields, rows)
}
