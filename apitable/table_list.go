package apitable

import (
	"context"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/domain"
)

// ListTables reads one page of tables, most recently updated first.
func (c *Client) ListTables(ctx context.Context, page int) (*domain.LoadTableListSuccess, error) {
	if page < 1 {
		page = 1
	}
	listTablesResponse, err := c.client.TableApi.ListTables(ctx, page)
	if err != nil {
		return nil, err
	}

	return &domain.LoadTableListSuccess{
		Tables:     listTablesResponse.Tables,
		HasMore:    listTablesResponse.TotalCount > page*constants.PageSize,
		TotalCount: listTablesResponse.TotalCount,
	}, nil
}

// CreateTable creates an empty table.
func (c *Client) CreateTable(ctx context.Context, name string) (*api.Table, error) {
	c.track(constants.Analytics_Action_CreateTable)

	getTableResponse, err := c.client.TableApi.CreateTable(ctx, name, []*api.Field{})
	if err != nil {
		return nil, err
	}
	return getTableResponse.Table, nil
}

// DeleteTable deletes the table, its records and its access tokens.
func (c *Client) DeleteTable(ctx context.Context, id string) error {
	c.track(constants.Analytics_Action_DeleteTable)

	return c.client.TableApi.DeleteTable(ctx, id)
}
