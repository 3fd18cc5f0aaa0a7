package common

import (
	"context"

	"github.com/apitable/apitable-go-sdk/apitable"
)

// ReadTableRows loads every page of the table and returns the row data
// keyed by column name, in load order.
func ReadTableRows(ctx context.Context, client *apitable.Client, tableId string) ([]map[string]interface{}, error) {
	loaded, err := client.LoadTableRecords(ctx, tableId)
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	for _, r := range loaded.Records {
		rows = append(rows, r.Data)
	}

	hasMore := loaded.HasMore
	for page := 2; hasMore; page++ {
		more, err := client.LoadMoreTableRecords(ctx, tableId, page)
		if err != nil {
			return nil, err
		}
		for _, r := range more.Records {
			rows = append(rows, r.Data)
		}
		hasMore = more.HasMore
	}

	return rows, nil
}
