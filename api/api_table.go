package api

import (
	"context"
	"fmt"

	"github.com/apitable/apitable-go-sdk/constants"
)

type TableApiService service

type GetTableResponse struct {
	Table *Table
}

type ListTablesResponse struct {
	TotalCount int
	Tables     []*Table
}

/*
TableApiService Get table By id
  - @param id

@return GetTableResponse, ErrNotFound when the id does not resolve
*/
func (a *TableApiService) GetTableByID(ctx context.Context, id string) (GetTableResponse, error) {
	var (
		localVarReturnValue GetTableResponse
	)

	record, err := a.client.getRecord(ctx, constants.Record_Type_Table, id)
	if err != nil {
		return localVarReturnValue, err
	}

	table, err := NewTableFromRecord(record)
	if err != nil {
		return localVarReturnValue, err
	}
	localVarReturnValue.Table = table

	return localVarReturnValue, nil
}

/*
TableApiService List tables, most recently updated first
  - @param page 1-based page number

@return ListTablesResponse
*/
func (a *TableApiService) ListTables(ctx context.Context, page int) (ListTablesResponse, error) {
	var (
		localVarReturnValue ListTablesResponse
	)

	query := NewQuery(constants.Record_Type_Table).
		AddDescending(constants.Record_Key_UpdatedAt)
	query.Page = page
	query.OverallCount = true
	result, err := a.client.db.Query(ctx, query)
	if err != nil {
		return localVarReturnValue, err
	}

	localVarReturnValue.TotalCount = result.OverallCount
	tables := make([]*Table, 0, len(result.Records))
	for _, r := range result.Records {
		table, err := NewTableFromRecord(r)
		if err != nil {
			return localVarReturnValue, err
		}
		tables = append(tables, table)
	}
	localVarReturnValue.Tables = tables

	return localVarReturnValue, nil
}

func (a *TableApiService) CreateTable(ctx context.Context, name string, fields []*Field) (GetTableResponse, error) {
	var (
		localVarReturnValue GetTableResponse
	)

	table := &Table{Name: name, Fields: fields}
	saved, err := a.client.db.Save(ctx, []*Record{table.ToRecord()})
	if err != nil {
		return localVarReturnValue, err
	}
	if len(saved) != 1 {
		return localVarReturnValue, fmt.Errorf("create table: store returned %d records", len(saved))
	}

	created, err := NewTableFromRecord(saved[0])
	if err != nil {
		return localVarReturnValue, err
	}
	localVarReturnValue.Table = created

	return localVarReturnValue, nil
}

// SaveTable persists the table name and fields.
func (a *TableApiService) SaveTable(ctx context.Context, table *Table) error {
	_, err := a.client.db.Save(ctx, []*Record{table.ToRecord()})
	return err
}

// DeleteTable removes the table together with its records and access tokens.
func (a *TableApiService) DeleteTable(ctx context.Context, id string) error {
	if _, err := a.GetTableByID(ctx, id); err != nil {
		return err
	}

	var refs []Reference
	for _, recordType := range []string{constants.Record_Type_TableRecord, constants.Record_Type_AccessToken} {
		query := NewQuery(recordType).
			EqualTo(constants.Record_Key_Table, id)
		query.Limit = NoLimit
		result, err := a.client.db.Query(ctx, query)
		if err != nil {
			return err
		}
		for _, r := range result.Records {
			refs = append(refs, r.Reference())
		}
	}
	refs = append(refs, NewReference(constants.Record_Type_Table, id))

	return a.client.db.Delete(ctx, refs)
}
