package testcases

import (
	"context"
	"fmt"
	"testing"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/constants"
)

func TestRedisRecentTables(t *testing.T) {
	client := getClient(t, constants.Datasource_Type_Redis)
	ctx := context.Background()

	var ids []string
	for i := 0; i < constants.RecentTableLimit+2; i++ {
		table, err := client.CreateTable(ctx, fmt.Sprintf("recent-%d", i))
		assert.NoError(t, err)
		_, err = client.LoadTableRecords(ctx, table.Id)
		assert.NoError(t, err)
		ids = append(ids, table.Id)
	}

	recent, err := client.RecentTables(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(recent), constants.RecentTableLimit)
	assert.Equal(t, recent[0].Id, ids[len(ids)-1])

	_, err = client.LoadTableRecords(ctx, ids[5])
	assert.NoError(t, err)
	recent, err = client.RecentTables(ctx)
	assert.NoError(t, err)
	assert.Equal(t, recent[0].Id, ids[5])
	assert.Equal(t, len(recent), constants.RecentTableLimit)
}
