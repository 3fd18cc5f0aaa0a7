package dao

import (
	"strings"
	"testing"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/huandu/go-sqlbuilder"
)

func TestRecordSqlDaoWhere(t *testing.T) {
	testcases := []struct {
		name     string
		flavor   sqlbuilder.Flavor
		query    *api.Query
		pushdown bool
		empty    bool
		contains []string
		args     []interface{}
	}{
		{
			name:   "table and ids",
			flavor: sqlbuilder.PostgreSQL,
			query: api.NewQuery(constants.Record_Type_TableRecord).
				EqualTo(constants.Record_Key_Table, api.NewReference(constants.Record_Type_Table, "t1")).
				Contains(constants.Record_Key_Id, []string{"a", "b"}).
				AddAscending(constants.Record_Key_CreatedAt),
			pushdown: true,
			contains: []string{"type = $1", "table_ref = $2", "id IN ($3, $4)"},
			args:     []interface{}{constants.Record_Type_TableRecord, "t1", "a", "b"},
		},
		{
			name:   "mysql placeholders",
			flavor: sqlbuilder.MySQL,
			query: api.NewQuery(constants.Record_Type_Table).
				EqualTo(constants.Record_Key_Id, "t1"),
			pushdown: true,
			contains: []string{"type = ?", "id = ?"},
			args:     []interface{}{constants.Record_Type_Table, "t1"},
		},
		{
			name:   "row field sort",
			flavor: sqlbuilder.PostgreSQL,
			query: api.NewQuery(constants.Record_Type_TableRecord).
				AddAscending("name"),
			pushdown: false,
			contains: []string{"type = $1"},
			args:     []interface{}{constants.Record_Type_TableRecord},
		},
		{
			name:   "row field condition",
			flavor: sqlbuilder.PostgreSQL,
			query: api.NewQuery(constants.Record_Type_TableRecord).
				EqualTo("name", "Ann"),
			pushdown: false,
			contains: []string{"type = $1"},
			args:     []interface{}{constants.Record_Type_TableRecord},
		},
		{
			name:   "no ids",
			flavor: sqlbuilder.PostgreSQL,
			query: api.NewQuery(constants.Record_Type_TableRecord).
				Contains(constants.Record_Key_Id, []string{}),
			pushdown: true,
			empty:    true,
		},
	}

	for _, tcase := range testcases {
		d := NewRecordSqlDaoWithDB(nil, tcase.flavor, "apitable_records")
		sb := d.flavor.NewSelectBuilder()
		sb.Select("id").From(d.table)

		pushdown, empty := d.where(sb, tcase.query)
		assert.Equal(t, pushdown, tcase.pushdown, tcase.name)
		assert.Equal(t, empty, tcase.empty, tcase.name)
		if tcase.empty {
			continue
		}

		sql, args := sb.Build()
		for _, fragment := range tcase.contains {
			if !strings.Contains(sql, fragment) {
				t.Fatalf("%s: %q does not contain %q", tcase.name, sql, fragment)
			}
		}
		assert.Equal(t, args, tcase.args, tcase.name)
	}
}

func TestRecordSqlDaoFilterIsNotPushedDown(t *testing.T) {
	d := NewRecordSqlDaoWithDB(nil, sqlbuilder.PostgreSQL, "apitable_records")
	sb := d.flavor.NewSelectBuilder()
	sb.Select("id").From(d.table)

	query := api.NewQuery(constants.Record_Type_TableRecord).
		EqualTo(constants.Record_Key_Table, "t1")
	query.Filter = "age > 30"

	pushdown, _ := d.where(sb, query)
	assert.Equal(t, pushdown, false)
}
