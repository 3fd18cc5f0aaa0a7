package apitable

import (
	"context"
	"fmt"
	"sort"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/dao"
	"github.com/apitable/apitable-go-sdk/domain"
)

// LoadTableRecords reads the table with its first page of records and its
// access tokens, and remembers it as recently opened. An unknown id returns
// an error wrapping api.ErrNotFound.
func (c *Client) LoadTableRecords(ctx context.Context, id string) (*domain.LoadTableRecordsSuccess, error) {
	getTableResponse, err := c.client.TableApi.GetTableByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table := getTableResponse.Table

	listRecordsResponse, err := c.client.TableRecordApi.ListTableRecords(ctx, id, 1)
	if err != nil {
		return nil, err
	}

	listTokensResponse, err := c.client.AccessTokenApi.ListAccessTokens(ctx, id)
	if err != nil {
		return nil, err
	}

	c.rememberTable(ctx, table)

	return &domain.LoadTableRecordsSuccess{
		Table:       table,
		Records:     listRecordsResponse.Records,
		Tokens:      listTokensResponse.Tokens,
		HasMore:     listRecordsResponse.TotalCount > constants.PageSize,
		RecordCount: listRecordsResponse.TotalCount,
	}, nil
}

// LoadMoreTableRecords reads one further page of the table's records.
func (c *Client) LoadMoreTableRecords(ctx context.Context, id string, page int) (*domain.LoadMoreTableRecordsSuccess, error) {
	if page < 1 {
		page = 1
	}
	listRecordsResponse, err := c.client.TableRecordApi.ListTableRecords(ctx, id, page)
	if err != nil {
		return nil, err
	}

	return &domain.LoadMoreTableRecordsSuccess{
		Records:     listRecordsResponse.Records,
		HasMore:     listRecordsResponse.TotalCount > page*constants.PageSize,
		RecordCount: listRecordsResponse.TotalCount,
	}, nil
}

// SaveTableRecords applies an edit cache to the table. Changed records are
// merged field by field, created records are added, and deleted records are
// removed; a record both changed and deleted is deleted. The table is
// saved with the records so its update time moves.
func (c *Client) SaveTableRecords(ctx context.Context, id string, cache domain.EditCache) error {
	c.track(constants.Analytics_Action_SaveRecords)

	deleted := make(map[string]bool, len(cache.DeletedRecords))
	for _, rowId := range cache.DeletedRecords {
		deleted[rowId] = true
	}

	rowIds := make([]string, 0, len(cache.Changes)+len(cache.DeletedRecords))
	seen := make(map[string]bool, cap(rowIds))
	for rowId := range cache.Changes {
		if !seen[rowId] {
			seen[rowId] = true
			rowIds = append(rowIds, rowId)
		}
	}
	for _, rowId := range cache.DeletedRecords {
		if !seen[rowId] {
			seen[rowId] = true
			rowIds = append(rowIds, rowId)
		}
	}
	sort.Strings(rowIds)

	getRecordsResponse, err := c.client.TableRecordApi.GetTableRecordsByIDs(ctx, id, rowIds)
	if err != nil {
		c.logError(fmt.Errorf("get table records error, table=%s, err=%v", id, err))
		return err
	}
	stored := make(map[string]*api.Record, len(getRecordsResponse.Records))
	for _, r := range getRecordsResponse.Records {
		stored[r.Id] = r
	}

	var recordsToSave, recordsToDelete []*api.Record
	for _, rowId := range rowIds {
		r, ok := stored[rowId]
		if !ok {
			// already gone from the store
			continue
		}
		if deleted[rowId] {
			recordsToDelete = append(recordsToDelete, r)
			continue
		}
		api.MergeTableRecordData(r, cache.Changes[rowId])
		recordsToSave = append(recordsToSave, r)
	}

	createdIds := make([]string, 0, len(cache.CreatedRecords))
	for tempId := range cache.CreatedRecords {
		createdIds = append(createdIds, tempId)
	}
	sort.Strings(createdIds)
	for _, tempId := range createdIds {
		recordsToSave = append(recordsToSave, api.NewTableRecord(id, cache.CreatedRecords[tempId]))
	}

	if len(recordsToSave) > 0 {
		if err := c.client.TableRecordApi.SaveTableRecords(ctx, id, recordsToSave); err != nil {
			c.logError(fmt.Errorf("save table records error, table=%s, err=%v", id, err))
			return err
		}
	}

	if len(recordsToDelete) > 0 {
		if err := c.client.TableRecordApi.DeleteTableRecords(ctx, recordsToDelete); err != nil {
			c.logError(fmt.Errorf("delete table records error, table=%s, err=%v", id, err))
			return err
		}
	}

	c.logf("event=SaveTableRecords\ttable=%s\tsaved=%d\tdeleted=%d", id, len(recordsToSave), len(recordsToDelete))
	return nil
}

// AddTableField appends the field to the table.
func (c *Client) AddTableField(ctx context.Context, id string, field api.Field) error {
	c.track(constants.Analytics_Action_AddField)

	getTableResponse, err := c.client.TableApi.GetTableByID(ctx, id)
	if err != nil {
		return err
	}
	table := getTableResponse.Table
	table.Fields = append(table.Fields, &field)

	return c.client.TableApi.SaveTable(ctx, table)
}

// RemoveTableField removes the named fields from the table.
func (c *Client) RemoveTableField(ctx context.Context, id string, fieldNames []string) error {
	c.track(constants.Analytics_Action_RemoveField)

	getTableResponse, err := c.client.TableApi.GetTableByID(ctx, id)
	if err != nil {
		return err
	}
	table := getTableResponse.Table

	remove := make(map[string]bool, len(fieldNames))
	for _, name := range fieldNames {
		remove[name] = true
	}
	fields := make([]*api.Field, 0, len(table.Fields))
	for _, field := range table.Fields {
		if !remove[field.Name] {
			fields = append(fields, field)
		}
	}
	table.Fields = fields

	return c.client.TableApi.SaveTable(ctx, table)
}

// IssueToken creates a read-only access token for the table.
func (c *Client) IssueToken(ctx context.Context, id string) (*api.AccessToken, error) {
	c.track(constants.Analytics_Action_IssueToken)

	if _, err := c.client.TableApi.GetTableByID(ctx, id); err != nil {
		return nil, err
	}
	return c.client.AccessTokenApi.IssueToken(ctx, id)
}

func (c *Client) RevokeToken(ctx context.Context, token string) error {
	c.track(constants.Analytics_Action_RevokeToken)

	return c.client.AccessTokenApi.RevokeToken(ctx, token)
}

func (c *Client) SetTokenWritability(ctx context.Context, token string, writable bool) (*api.AccessToken, error) {
	return c.client.AccessTokenApi.SetTokenWritability(ctx, token, writable)
}

func (c *Client) RenameTable(ctx context.Context, id, name string) error {
	c.track(constants.Analytics_Action_RenameTable)

	getTableResponse, err := c.client.TableApi.GetTableByID(ctx, id)
	if err != nil {
		return err
	}
	table := getTableResponse.Table
	table.Name = name

	return c.client.TableApi.SaveTable(ctx, table)
}

// ExportCSV returns the row data of every record of the table, oldest
// first, without record ids. A non empty filter must only reference the
// table's fields.
func (c *Client) ExportCSV(ctx context.Context, id, filter string) ([]map[string]interface{}, error) {
	c.track(constants.Analytics_Action_ExportCSV)

	if filter != "" {
		getTableResponse, err := c.client.TableApi.GetTableByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := validateExportFilter(getTableResponse.Table, filter); err != nil {
			return nil, err
		}
	}

	exportResponse, err := c.client.TableRecordApi.ExportTableRecords(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	return exportResponse.Rows, nil
}

func validateExportFilter(table *api.Table, filter string) error {
	variables, err := dao.ExtractVariables(filter)
	if err != nil {
		return err
	}
	for _, v := range variables {
		if !table.HasField(v) {
			return fmt.Errorf("filter references unknown field %q of table %s", v, table.Id)
		}
	}
	if _, err := dao.CompileFilter(filter); err != nil {
		return err
	}
	return nil
}
