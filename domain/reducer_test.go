package domain

import (
	"errors"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type unknownEvent struct{}

func (unknownEvent) EventType() EventType { return "UNKNOWN" }

func records(ids ...string) []*api.TableRecord {
	result := make([]*api.TableRecord, 0, len(ids))
	for _, id := range ids {
		result = append(result, &api.TableRecord{Id: id, Data: map[string]interface{}{"name": id}})
	}
	return result
}

func recordIds(records []*api.TableRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.Id)
	}
	return ids
}

func tokenIds(tokens []*api.AccessToken) []string {
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.Token)
	}
	return ids
}

func TestReduceUnknownEvent(t *testing.T) {
	state := NewState()
	next := Reduce(state, unknownEvent{})
	if diff := cmp.Diff(state, next); diff != "" {
		t.Fatalf("unexpected state change (-want +got):\n%s", diff)
	}
}

func TestReduceDialog(t *testing.T) {
	state := NewState()

	shown := Reduce(state, ShowDialog{Name: Dialog_AddField})
	assert.Equal(t, shown.Dialog[Dialog_AddField], true)
	assert.Equal(t, shown.Dialog[Dialog_Export], false)
	// the previous state keeps its own dialog map
	assert.Equal(t, state.Dialog[Dialog_AddField], false)

	shown = Reduce(shown, ShowDialog{Name: Dialog_Export})
	hidden := Reduce(shown, HideDialog{Name: Dialog_AddField})
	assert.Equal(t, hidden.Dialog[Dialog_AddField], false)
	assert.Equal(t, hidden.Dialog[Dialog_Export], true)
}

func TestReduceTableList(t *testing.T) {
	state := NewState()
	state = Reduce(state, LoadTableList{Page: 1})
	assert.Equal(t, state.Loading, true)
	state = Reduce(state, LoadTableListSuccess{
		Tables:  []*api.Table{{Id: "a"}, {Id: "b"}},
		HasMore: true,
	})
	assert.Equal(t, len(state.List), 2)
	assert.Equal(t, state.HasMore, true)
	assert.Equal(t, state.Loading, false)

	state = Reduce(state, LoadTableList{Page: 2})
	assert.Equal(t, len(state.List), 2)
	state = Reduce(state, LoadTableListSuccess{Tables: []*api.Table{{Id: "c"}}})
	assert.Equal(t, len(state.List), 3)
	assert.Equal(t, state.List[2].Id, "c")
	assert.Equal(t, state.HasMore, false)

	state = Reduce(state, LoadTableList{Page: 1})
	assert.Equal(t, len(state.List), 0)
	assert.Equal(t, state.Page, 1)
}

func TestReduceCreateAndDeleteTable(t *testing.T) {
	state := NewState()
	state.List = []*api.Table{{Id: "a"}, {Id: "b"}}

	state = Reduce(state, CreateTableSuccess{Table: &api.Table{Id: "c"}})
	assert.Equal(t, state.List[0].Id, "c")
	assert.Equal(t, len(state.List), 3)

	state = Reduce(state, SetTablePendingDelete{Id: "a"})
	assert.Equal(t, state.PendingDeleteTable, "a")

	state = Reduce(state, DeleteTableSuccess{Id: "a"})
	assert.Equal(t, state.PendingDeleteTable, "")
	assert.Equal(t, len(state.List), 2)
	assert.Equal(t, state.List[0].Id, "c")
	assert.Equal(t, state.List[1].Id, "b")
}

func TestReduceLoadTableRecords(t *testing.T) {
	updatedAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	state := Reduce(NewState(), LoadTableRecords{Id: "t1"})
	assert.Equal(t, state.Loading, true)
	assert.Equal(t, state.Data.Page, 1)

	state = Reduce(state, LoadTableRecordsSuccess{
		Table: &api.Table{
			Id:        "t1",
			Name:      "People",
			Fields:    []*api.Field{{Name: "name", Type: constants.Field_Type_Text}},
			UpdatedAt: updatedAt,
		},
		Records:     records("r1", "r2"),
		Tokens:      []*api.AccessToken{{Token: "k1"}},
		HasMore:     true,
		RecordCount: 51,
	})

	want := TableData{
		Id:          "t1",
		Name:        "People",
		Fields:      []*api.Field{{Name: "name", Type: constants.Field_Type_Text}},
		Records:     records("r1", "r2"),
		Tokens:      []*api.AccessToken{{Token: "k1"}},
		UpdatedAt:   updatedAt,
		Page:        1,
		HasMore:     true,
		RecordCount: 51,
	}
	if diff := cmp.Diff(want, state.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, state.Loading, false)
}

func TestReduceLoadTableRecordsFailure(t *testing.T) {
	failure := errors.New("connection reset")
	state := Reduce(NewState(), LoadTableRecords{Id: "t1"})
	state = Reduce(state, LoadTableRecordsFailure{Err: failure})

	assert.Equal(t, state.Loading, false)
	assert.Equal(t, errors.Is(state.Err, failure), true)
	assert.Equal(t, state.Data.Name, LoadingTableName)

	want := NewState()
	want.Loading = false
	want.Err = failure
	if diff := cmp.Diff(want, state, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceLoadMoreTableRecords(t *testing.T) {
	state := NewState()
	state.Data.Records = records("r1", "r2")

	// page one replaces
	first := Reduce(state, LoadMoreTableRecords{Id: "t1", Page: 1})
	first = Reduce(first, LoadMoreTableRecordsSuccess{Records: records("r3"), HasMore: true, RecordCount: 60})
	assert.Equal(t, recordIds(first.Data.Records), []string{"r3"})
	assert.Equal(t, first.Data.HasMore, true)
	assert.Equal(t, first.Data.RecordCount, 60)

	// later pages append
	second := Reduce(state, LoadMoreTableRecords{Id: "t1", Page: 2})
	assert.Equal(t, second.Data.Page, 2)
	second = Reduce(second, LoadMoreTableRecordsSuccess{Records: records("r3"), HasMore: false, RecordCount: 3})
	assert.Equal(t, recordIds(second.Data.Records), []string{"r1", "r2", "r3"})
	assert.Equal(t, second.Data.HasMore, false)
	assert.Equal(t, second.Loading, false)

	// the original state is untouched
	assert.Equal(t, recordIds(state.Data.Records), []string{"r1", "r2"})
}

func TestReduceSave(t *testing.T) {
	savedAt := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	cache := NewEditCache()
	cache.DeletedRecords = append(cache.DeletedRecords, "r1")
	state := Reduce(NewState(), UpdateCache{Cache: cache})
	state = Reduce(state, SaveTableRecords{Id: "t1"})
	assert.Equal(t, state.Saving, true)

	state = Reduce(state, SaveTableRecordsSuccess{UpdatedAt: savedAt})
	assert.Equal(t, state.Saving, false)
	assert.Equal(t, state.Data.UpdatedAt.Equal(savedAt), true)
	// the pending edits are saved
	assert.Equal(t, len(state.Cache.DeletedRecords), 0)

	state = Reduce(state, SaveTableRecords{Id: "t1"})
	state = Reduce(state, SaveTableRecordsFailure{Err: errors.New("denied")})
	assert.Equal(t, state.Saving, false)
	assert.Equal(t, state.Err.Error(), "denied")
}

func TestReduceFields(t *testing.T) {
	state := NewState()
	next := Reduce(state, AddTableField{Id: "t1", Field: api.Field{Name: "email", Type: constants.Field_Type_Email, AllowEmpty: true}})
	assert.Equal(t, len(next.Data.Fields), 1)
	assert.Equal(t, next.Data.Fields[0].Name, "email")
	assert.Equal(t, next.Data.Fields[0].AllowEmpty, true)
	assert.Equal(t, len(state.Data.Fields), 0)

	next = Reduce(next, SetFieldPendingRemove{FieldNames: []string{"email"}})
	assert.Equal(t, next.PendingRemoveField, []string{"email"})
}

func TestReduceTokens(t *testing.T) {
	state := NewState()
	state.Data.Tokens = []*api.AccessToken{{Token: "a"}, {Token: "b", Writable: true}, {Token: "c"}}

	issued := Reduce(state, IssueTokenSuccess{Token: "d"})
	assert.Equal(t, tokenIds(issued.Data.Tokens), []string{"d", "a", "b", "c"})
	assert.Equal(t, issued.Data.Tokens[0].Writable, false)

	revoked := Reduce(state, RevokeTokenSuccess{Token: "b"})
	assert.Equal(t, tokenIds(revoked.Data.Tokens), []string{"a", "c"})
	assert.Equal(t, tokenIds(state.Data.Tokens), []string{"a", "b", "c"})

	unknown := Reduce(state, RevokeTokenSuccess{Token: "z"})
	assert.Equal(t, tokenIds(unknown.Data.Tokens), []string{"a", "b", "c"})

	writable := Reduce(state, SetTokenWritability{Token: "c", Writable: true})
	assert.Equal(t, tokenIds(writable.Data.Tokens), []string{"a", "b", "c"})
	assert.Equal(t, writable.Data.Tokens[2].Writable, true)
	assert.Equal(t, state.Data.Tokens[2].Writable, false)

	writable = Reduce(writable, SetTokenWritabilitySuccess{Token: "b", Writable: false})
	assert.Equal(t, writable.Data.Tokens[1].Writable, false)

	detail := Reduce(state, SetTokenForDetail{Token: api.AccessToken{Token: "a", Writable: true}})
	assert.Equal(t, detail.TokenForDetail, api.AccessToken{Token: "a", Writable: true})
}

func TestReduceRenameAndCache(t *testing.T) {
	state := Reduce(NewState(), RenameTable{Id: "t1", Name: "Customers"})
	assert.Equal(t, state.Data.Name, "Customers")

	cache := NewEditCache()
	cache.Changes["r1"] = map[string]interface{}{"name": "Ann"}
	cache.DeletedRecords = []string{"r2"}
	state = Reduce(state, UpdateCache{Cache: cache})
	if diff := cmp.Diff(cache, state.Cache); diff != "" {
		t.Fatalf("cache mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceExport(t *testing.T) {
	state := Reduce(NewState(), LoadTableRecordsSuccess{Table: &api.Table{Id: "t1"}})
	state = Reduce(state, ExportCSV{Id: "t1"})
	assert.Equal(t, state.Loading, true)

	rows := []map[string]interface{}{{"name": "Ann"}, {"name": "Bob"}}
	state = Reduce(state, ExportCSVSuccess{Rows: rows})
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, len(state.ExportData), 2)

	state = Reduce(state, ExportCSV{Id: "t1"})
	state = Reduce(state, ExportCSVFailure{Err: errors.New("timeout")})
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, len(state.ExportData), 2)
}
