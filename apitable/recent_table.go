package apitable

import (
	"context"
	"fmt"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
)

// pushRecentTable moves table to the front of tables, dropping any other
// entry with the same id and keeping at most constants.RecentTableLimit.
func pushRecentTable(tables []*api.RecentTable, table *api.RecentTable) []*api.RecentTable {
	result := make([]*api.RecentTable, 0, len(tables)+1)
	result = append(result, table)
	for _, t := range tables {
		if t == nil || t.Id == table.Id {
			continue
		}
		result = append(result, t)
	}
	if len(result) > constants.RecentTableLimit {
		result = result[:constants.RecentTableLimit]
	}
	return result
}

// rememberTable records an opened table. Failures are logged and never
// fail the caller.
func (c *Client) rememberTable(ctx context.Context, table *api.Table) {
	tables, err := c.recentTableDao.Get(ctx)
	if err != nil {
		c.logError(fmt.Errorf("get recent tables error, err=%v", err))
		tables = nil
	}

	tables = pushRecentTable(tables, &api.RecentTable{Id: table.Id, Name: table.Name})
	if err := c.recentTableDao.Put(ctx, tables); err != nil {
		c.logError(fmt.Errorf("put recent tables error, err=%v", err))
	}
}

// RecentTables returns the recently opened tables, most recent first.
func (c *Client) RecentTables(ctx context.Context) ([]*api.RecentTable, error) {
	return c.recentTableDao.Get(ctx)
}
