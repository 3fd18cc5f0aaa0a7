package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
)

var ErrUnsupportedQuery = errors.New("unsupported query")

// RecordDao is a record store backend. Every implementation satisfies
// api.Database.
type RecordDao interface {
	Query(ctx context.Context, query *api.Query) (*api.QueryResult, error)
	Save(ctx context.Context, records []*api.Record) ([]*api.Record, error)
	Delete(ctx context.Context, refs []api.Reference) error
}

var (
	_ api.Database = (RecordDao)(nil)

	_ RecordDao = (*RecordMemoryDao)(nil)
	_ RecordDao = (*RecordSqlDao)(nil)
	_ RecordDao = (*RecordTableStoreDao)(nil)
)

func NewRecordDao(config DaoConfig) (RecordDao, error) {
	switch config.DatasourceType {
	case "", constants.Datasource_Type_Memory:
		return NewRecordMemoryDao(), nil
	case constants.Datasource_Type_Hologres, constants.Datasource_Type_Postgres, constants.Datasource_Type_MySQL:
		return NewRecordSqlDao(config)
	case constants.Datasource_Type_TableStore:
		return NewRecordTableStoreDao(config)
	}

	return nil, fmt.Errorf("not found RecordDao implement, datasource type:%s", config.DatasourceType)
}

func validateRecords(records []*api.Record) error {
	for i, r := range records {
		if r == nil {
			return fmt.Errorf("record %d is nil", i)
		}
		if r.Type == "" {
			return fmt.Errorf("record %d has no type", i)
		}
	}
	return nil
}
