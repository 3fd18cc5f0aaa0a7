package testcases

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/apitable"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/domain"
	"github.com/apitable/apitable-go-sdk/tests/common"
)

var peopleFields = []api.Field{
	{Name: "name", Type: constants.Field_Type_Text},
	{Name: "city", Type: constants.Field_Type_Text, AllowEmpty: true},
	{Name: "age", Type: constants.Field_Type_Number},
}

func peopleRows(n int) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		city := "Taipei"
		if i%3 == 0 {
			city = "Tokyo"
		}
		rows = append(rows, map[string]interface{}{
			"name": fmt.Sprintf("person-%03d", i),
			"city": city,
			"age":  float64(20 + i%40),
		})
	}
	return rows
}

func getClient(t *testing.T, datasourceType string) *apitable.Client {
	cfg := common.ConfigFromEnv(datasourceType)
	if cfg == nil {
		t.Skipf("%s datasource not configured", datasourceType)
	}
	client, err := common.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

// runTableWorkflow drives a table through load, edit, export and delete.
func runTableWorkflow(t *testing.T, client *apitable.Client) {
	ctx := context.Background()

	rows := peopleRows(constants.PageSize + 10)
	tableId, err := common.WriteTable(ctx, client, "people", peopleFields, rows)
	assert.NoError(t, err)
	defer client.DeleteTable(ctx, tableId)

	loaded, err := common.ReadTableRows(ctx, client, tableId)
	assert.NoError(t, err)
	ok, err := common.CheckResults("name", loaded, rows)
	assert.NoError(t, err)
	assert.Equal(t, ok, true)

	first, err := client.LoadTableRecords(ctx, tableId)
	assert.NoError(t, err)
	assert.Equal(t, first.HasMore, true)
	assert.Equal(t, first.RecordCount, len(rows))

	cache := domain.NewEditCache()
	changed := first.Records[0]
	cache.Changes[changed.Id] = map[string]interface{}{"city": "Kyoto"}
	cache.DeletedRecords = append(cache.DeletedRecords, first.Records[1].Id)
	assert.NoError(t, client.SaveTableRecords(ctx, tableId, cache))

	exported, err := client.ExportCSV(ctx, tableId, "city == 'Kyoto'")
	assert.NoError(t, err)
	assert.Equal(t, len(exported), 1)
	assert.Equal(t, exported[0]["name"], changed.Data["name"])

	all, err := client.ExportCSV(ctx, tableId, "")
	assert.NoError(t, err)
	assert.Equal(t, len(all), len(rows)-1)

	path := filepath.Join(t.TempDir(), "people.csv")
	assert.NoError(t, common.WriteCSV(ctx, client, path, tableId, "", []string{"name", "city", "age"}))
	ok, err = common.CheckResultsWithFile("name", all, path)
	assert.NoError(t, err)
	assert.Equal(t, ok, true)

	token, err := client.IssueToken(ctx, tableId)
	assert.NoError(t, err)
	_, err = client.SetTokenWritability(ctx, token.Token, true)
	assert.NoError(t, err)
	assert.NoError(t, client.RevokeToken(ctx, token.Token))

	assert.NoError(t, client.DeleteTable(ctx, tableId))
	_, err = client.LoadTableRecords(ctx, tableId)
	assert.Equal(t, err != nil, true)
}
