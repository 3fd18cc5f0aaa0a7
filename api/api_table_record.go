package api

import (
	"context"

	"github.com/apitable/apitable-go-sdk/constants"
)

type TableRecordApiService service

type ListTableRecordsResponse struct {
	TotalCount int
	Records    []*TableRecord
}

type GetTableRecordsResponse struct {
	Records []*Record
}

type ExportTableRecordsResponse struct {
	Rows []map[string]interface{}
}

/*
TableRecordApiService List one page of a table's records, oldest first
  - @param tableId
  - @param page 1-based page number

@return ListTableRecordsResponse
*/
func (a *TableRecordApiService) ListTableRecords(ctx context.Context, tableId string, page int) (ListTableRecordsResponse, error) {
	var (
		localVarReturnValue ListTableRecordsResponse
	)

	query := NewQuery(constants.Record_Type_TableRecord).
		EqualTo(constants.Record_Key_Table, tableId).
		AddAscending(constants.Record_Key_CreatedAt)
	query.Page = page
	query.OverallCount = true
	result, err := a.client.db.Query(ctx, query)
	if err != nil {
		return localVarReturnValue, err
	}

	records := make([]*TableRecord, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, NewTableRecordFromRecord(r))
	}
	localVarReturnValue.Records = records
	localVarReturnValue.TotalCount = result.OverallCount

	return localVarReturnValue, nil
}

/*
TableRecordApiService Get the stored records of a table by record id
  - @param tableId
  - @param ids record ids, at most constants.SaveFetchLimit are returned

@return GetTableRecordsResponse
*/
func (a *TableRecordApiService) GetTableRecordsByIDs(ctx context.Context, tableId string, ids []string) (GetTableRecordsResponse, error) {
	var (
		localVarReturnValue GetTableRecordsResponse
	)
	if len(ids) == 0 {
		return localVarReturnValue, nil
	}

	query := NewQuery(constants.Record_Type_TableRecord).
		EqualTo(constants.Record_Key_Table, tableId).
		Contains(constants.Record_Key_Id, ids)
	query.Limit = constants.SaveFetchLimit
	result, err := a.client.db.Query(ctx, query)
	if err != nil {
		return localVarReturnValue, err
	}
	localVarReturnValue.Records = result.Records

	return localVarReturnValue, nil
}

/*
TableRecordApiService Export every record of a table without record ids
  - @param tableId
  - @param filter optional expr expression on the row data

@return ExportTableRecordsResponse
*/
func (a *TableRecordApiService) ExportTableRecords(ctx context.Context, tableId, filter string) (ExportTableRecordsResponse, error) {
	var (
		localVarReturnValue ExportTableRecordsResponse
	)

	query := NewQuery(constants.Record_Type_TableRecord).
		EqualTo(constants.Record_Key_Table, tableId).
		AddAscending(constants.Record_Key_CreatedAt)
	query.Limit = NoLimit
	query.Filter = filter
	result, err := a.client.db.Query(ctx, query)
	if err != nil {
		return localVarReturnValue, err
	}

	rows := make([]map[string]interface{}, 0, len(result.Records))
	for _, r := range result.Records {
		rows = append(rows, NewTableRecordFromRecord(r).Data)
	}
	localVarReturnValue.Rows = rows

	return localVarReturnValue, nil
}

// SaveTableRecords saves the records in one batch together with the table,
// so the table's update time moves with its records. The table must exist.
func (a *TableRecordApiService) SaveTableRecords(ctx context.Context, tableId string, records []*Record) error {
	if _, err := a.client.getRecord(ctx, constants.Record_Type_Table, tableId); err != nil {
		return err
	}

	batch := make([]*Record, 0, len(records)+1)
	batch = append(batch, NewRecord(constants.Record_Type_Table, tableId, nil))
	batch = append(batch, records...)

	_, err := a.client.db.Save(ctx, batch)
	return err
}

func (a *TableRecordApiService) DeleteTableRecords(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(records))
	for _, r := range records {
		refs = append(refs, r.Reference())
	}
	return a.client.db.Delete(ctx, refs)
}
