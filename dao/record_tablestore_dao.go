package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	fstablestore "github.com/apitable/apitable-go-sdk/datasource/tablestore"
	"github.com/apitable/apitable-go-sdk/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	tablestoreBatchGetSize   = 100
	tablestoreBatchWriteSize = 200
)

// RecordTableStoreDao keeps records in a TableStore table keyed by
// (type, id). A local index keyed by (type, table_ref, id) serves queries
// scoped to one table; other queries read every row of the type. Rows read
// are matched in process.
type RecordTableStoreDao struct {
	tablestoreClient *tablestore.TableStoreClient
	table            string
	now              func() time.Time
}

func NewRecordTableStoreDao(config DaoConfig) (*RecordTableStoreDao, error) {
	dao := RecordTableStoreDao{
		table: config.TableName,
		now:   time.Now,
	}
	client, err := fstablestore.GetTableStoreClient(config.DatasourceName)
	if err != nil {
		return nil, err
	}

	dao.tablestoreClient = client.GetClient()
	return &dao, nil
}

// CreateTable creates the TableStore table holding the records, with its
// table_ref index.
func (d *RecordTableStoreDao) CreateTable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.tablestoreClient.CreateTable(d.createTableRequest())
	return err
}

func (d *RecordTableStoreDao) indexName() string {
	return d.table + "_table_ref"
}

func (d *RecordTableStoreDao) createTableRequest() *tablestore.CreateTableRequest {
	createTableRequest := new(tablestore.CreateTableRequest)

	tableMeta := new(tablestore.TableMeta)
	tableMeta.TableName = d.table
	tableMeta.AddPrimaryKeyColumn("type", tablestore.PrimaryKeyType_STRING)
	tableMeta.AddPrimaryKeyColumn("id", tablestore.PrimaryKeyType_STRING)
	tableMeta.AddDefinedColumn("table_ref", tablestore.DefinedColumn_STRING)
	tableMeta.AddDefinedColumn("created_at", tablestore.DefinedColumn_INTEGER)
	tableMeta.AddDefinedColumn("updated_at", tablestore.DefinedColumn_INTEGER)
	tableMeta.AddDefinedColumn("doc", tablestore.DefinedColumn_STRING)

	tableOption := new(tablestore.TableOption)
	tableOption.TimeToAlive = -1
	tableOption.MaxVersion = 1

	// local indexes are read consistently with the table
	indexMeta := new(tablestore.IndexMeta)
	indexMeta.IndexName = d.indexName()
	indexMeta.AddPrimaryKeyColumn("type")
	indexMeta.AddPrimaryKeyColumn("table_ref")
	indexMeta.AddDefinedColumn("created_at")
	indexMeta.AddDefinedColumn("updated_at")
	indexMeta.AddDefinedColumn("doc")
	indexMeta.SetAsLocalIndex()

	createTableRequest.TableMeta = tableMeta
	createTableRequest.TableOption = tableOption
	createTableRequest.ReservedThroughput = new(tablestore.ReservedThroughput)
	createTableRequest.AddIndexMeta(indexMeta)
	return createTableRequest
}

func (d *RecordTableStoreDao) primaryKey(recordType, id string) *tablestore.PrimaryKey {
	pk := new(tablestore.PrimaryKey)
	pk.AddPrimaryKeyColumn("type", recordType)
	pk.AddPrimaryKeyColumn("id", id)
	return pk
}

func (d *RecordTableStoreDao) Query(ctx context.Context, query *api.Query) (*api.QueryResult, error) {
	matcher, err := newRecordMatcher(query)
	if err != nil {
		return nil, err
	}

	var records []*api.Record
	if ids, ok := queryIds(query); ok {
		records, err = d.getRows(ctx, query.RecordType, ids)
	} else {
		records, err = d.getRange(ctx, d.rangeCriteria(query))
	}
	if err != nil {
		return nil, err
	}

	return matcher.Apply(records)
}

// queryIds returns the ids a query is restricted to, if any.
func queryIds(query *api.Query) ([]string, bool) {
	for _, cond := range query.Conditions {
		if cond.Key != constants.Record_Key_Id {
			continue
		}
		switch cond.Operator {
		case api.Operator_Equal:
			return []string{utils.ToString(cond.Value, "")}, true
		case api.Operator_Contains:
			ids, ok := cond.Value.([]string)
			return ids, ok
		}
	}
	return nil, false
}

// queryTableRef returns the table a query is restricted to, if any.
func queryTableRef(query *api.Query) (string, bool) {
	for _, cond := range query.Conditions {
		if cond.Key == constants.Record_Key_Table && cond.Operator == api.Operator_Equal {
			return utils.ToString(conditionValue(cond.Value), ""), true
		}
	}
	return "", false
}

// rangeCriteria reads the rows of one table from the index when the query
// names a table, otherwise every row of the record type.
func (d *RecordTableStoreDao) rangeCriteria(query *api.Query) *tablestore.RangeRowQueryCriteria {
	rangeRowQueryCriteria := &tablestore.RangeRowQueryCriteria{}
	startPK := new(tablestore.PrimaryKey)
	startPK.AddPrimaryKeyColumn("type", query.RecordType)
	endPK := new(tablestore.PrimaryKey)
	endPK.AddPrimaryKeyColumn("type", query.RecordType)

	if tableRef, ok := queryTableRef(query); ok {
		rangeRowQueryCriteria.TableName = d.indexName()
		startPK.AddPrimaryKeyColumn("table_ref", tableRef)
		endPK.AddPrimaryKeyColumn("table_ref", tableRef)
	} else {
		rangeRowQueryCriteria.TableName = d.table
	}
	startPK.AddPrimaryKeyColumnWithMinValue("id")
	endPK.AddPrimaryKeyColumnWithMaxValue("id")

	rangeRowQueryCriteria.StartPrimaryKey = startPK
	rangeRowQueryCriteria.EndPrimaryKey = endPK
	rangeRowQueryCriteria.Direction = tablestore.FORWARD
	rangeRowQueryCriteria.MaxVersion = 1
	return rangeRowQueryCriteria
}

func (d *RecordTableStoreDao) getRange(ctx context.Context, rangeRowQueryCriteria *tablestore.RangeRowQueryCriteria) ([]*api.Record, error) {
	getRangeRequest := &tablestore.GetRangeRequest{}
	getRangeRequest.RangeRowQueryCriteria = rangeRowQueryCriteria

	records := make([]*api.Record, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		getRangeResp, err := d.tablestoreClient.GetRange(getRangeRequest)
		if err != nil {
			return nil, err
		}
		for _, row := range getRangeResp.Rows {
			if len(row.PrimaryKey.PrimaryKeys) < 2 {
				continue
			}
			r, err := d.decodeRow(row.PrimaryKey.PrimaryKeys, row.Columns)
			if err != nil {
				return nil, err
			}
			records = append(records, r)
		}
		if getRangeResp.NextStartPrimaryKey == nil {
			break
		}
		getRangeRequest.RangeRowQueryCriteria.StartPrimaryKey = getRangeResp.NextStartPrimaryKey
	}

	sortByCreation(records)
	return records, nil
}

func (d *RecordTableStoreDao) getRows(ctx context.Context, recordType string, ids []string) ([]*api.Record, error) {
	result := make([]*api.Record, 0, len(ids))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < len(ids); i += tablestoreBatchGetSize {
		end := i + tablestoreBatchGetSize
		if end > len(ids) {
			end = len(ids)
		}
		ks := ids[i:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batchGetReq := &tablestore.BatchGetRowRequest{}
			mqCriteria := &tablestore.MultiRowQueryCriteria{}
			for _, id := range ks {
				mqCriteria.AddRow(d.primaryKey(recordType, id))
			}
			mqCriteria.MaxVersion = 1
			mqCriteria.TableName = d.table
			batchGetReq.MultiRowQueryCriteria = append(batchGetReq.MultiRowQueryCriteria, mqCriteria)

			batchGetResponse, err := d.tablestoreClient.BatchGetRow(batchGetReq)
			if err != nil {
				return err
			}

			for _, rowResults := range batchGetResponse.TableToRowsResult {
				for _, rowResult := range rowResults {
					if rowResult.Error.Message != "" {
						return errors.New(rowResult.Error.Message)
					}
					if len(rowResult.PrimaryKey.PrimaryKeys) < 2 {
						// row does not exist
						continue
					}
					r, err := d.decodeRow(rowResult.PrimaryKey.PrimaryKeys, rowResult.Columns)
					if err != nil {
						return err
					}
					mu.Lock()
					result = append(result, r)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortByCreation(result)
	return result, nil
}

func (d *RecordTableStoreDao) decodeRow(pks []*tablestore.PrimaryKeyColumn, columns []*tablestore.AttributeColumn) (*api.Record, error) {
	r := api.NewRecord("", "", nil)
	for _, pk := range pks {
		switch pk.ColumnName {
		case "type":
			r.Type = utils.ToString(pk.Value, "")
		case "id":
			r.Id = utils.ToString(pk.Value, "")
		}
	}
	for _, column := range columns {
		switch column.ColumnName {
		case "created_at":
			r.CreatedAt = utils.UnixMilli(utils.ToInt64(column.Value, 0))
		case "updated_at":
			r.UpdatedAt = utils.UnixMilli(utils.ToInt64(column.Value, 0))
		case "doc":
			doc := utils.ToString(column.Value, "")
			if doc == "" {
				continue
			}
			if err := json.Unmarshal([]byte(doc), &r.Data); err != nil {
				return nil, fmt.Errorf("decode record %s/%s: %w", r.Type, r.Id, err)
			}
		}
	}
	return r, nil
}

func (d *RecordTableStoreDao) Save(ctx context.Context, records []*api.Record) ([]*api.Record, error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	// existing rows are read first so their data can be merged
	idsByType := make(map[string][]string)
	for _, r := range records {
		if r.Id != "" {
			idsByType[r.Type] = append(idsByType[r.Type], r.Id)
		}
	}
	existing := make(map[api.Reference]*api.Record)
	for recordType, ids := range idsByType {
		rows, err := d.getRows(ctx, recordType, ids)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			existing[row.Reference()] = row
		}
	}

	now := d.now()
	saved := make([]*api.Record, 0, len(records))
	changes := make([]tablestore.RowChange, 0, len(records))
	for _, in := range records {
		r, err := in.Clone()
		if err != nil {
			return nil, err
		}
		if r.Id == "" {
			r.Id = uuid.NewString()
		}
		if stored, ok := existing[r.Reference()]; ok {
			stored.Merge(r.Data)
			r = stored
		} else {
			r.CreatedAt = now
			existing[r.Reference()] = r
		}
		r.UpdatedAt = now

		doc, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		tableRef, _ := api.ReferenceId(r.Data[constants.Record_Key_Table])

		putRowChange := new(tablestore.PutRowChange)
		putRowChange.TableName = d.table
		putRowChange.PrimaryKey = d.primaryKey(r.Type, r.Id)
		putRowChange.AddColumn("table_ref", tableRef)
		putRowChange.AddColumn("created_at", utils.ToUnixMilli(r.CreatedAt))
		putRowChange.AddColumn("updated_at", utils.ToUnixMilli(r.UpdatedAt))
		putRowChange.AddColumn("doc", string(doc))
		putRowChange.SetCondition(tablestore.RowExistenceExpectation_IGNORE)
		changes = append(changes, putRowChange)

		saved = append(saved, r)
	}

	if err := d.batchWrite(ctx, changes); err != nil {
		return nil, err
	}

	return saved, nil
}

func (d *RecordTableStoreDao) Delete(ctx context.Context, refs []api.Reference) error {
	changes := make([]tablestore.RowChange, 0, len(refs))
	for _, ref := range refs {
		deleteRowChange := new(tablestore.DeleteRowChange)
		deleteRowChange.TableName = d.table
		deleteRowChange.PrimaryKey = d.primaryKey(ref.Type, ref.Id)
		deleteRowChange.SetCondition(tablestore.RowExistenceExpectation_IGNORE)
		changes = append(changes, deleteRowChange)
	}

	return d.batchWrite(ctx, changes)
}

func (d *RecordTableStoreDao) batchWrite(ctx context.Context, changes []tablestore.RowChange) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < len(changes); i += tablestoreBatchWriteSize {
		end := i + tablestoreBatchWriteSize
		if end > len(changes) {
			end = len(changes)
		}
		batch := changes[i:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batchWriteReq := &tablestore.BatchWriteRowRequest{}
			for _, change := range batch {
				batchWriteReq.AddRowChange(change)
			}
			batchWriteResponse, err := d.tablestoreClient.BatchWriteRow(batchWriteReq)
			if err != nil {
				return err
			}
			for _, rowResults := range batchWriteResponse.TableToRowsResult {
				for _, rowResult := range rowResults {
					if !rowResult.IsSucceed {
						log.Println(fmt.Errorf("tablestore write failed, table:%s, code:%s, message:%s", d.table, rowResult.Error.Code, rowResult.Error.Message))
						return fmt.Errorf("tablestore write failed: %s", rowResult.Error.Message)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
