package domain

import (
	"github.com/apitable/apitable-go-sdk/api"
)

// Reduce returns the state after the event. It never modifies the slices or
// maps of the given state; unknown events return it unchanged.
func Reduce(state State, event Event) State {
	switch e := event.(type) {
	case ShowDialog:
		state.Dialog = state.dialogWith(e.Name, true)
	case HideDialog:
		state.Dialog = state.dialogWith(e.Name, false)

	case CreateTableSuccess:
		list := make([]*api.Table, 0, len(state.List)+1)
		list = append(list, e.Table)
		state.List = append(list, state.List...)
	case SetTablePendingDelete:
		state.PendingDeleteTable = e.Id
	case DeleteTableSuccess:
		state.PendingDeleteTable = ""
		list := make([]*api.Table, 0, len(state.List))
		for _, table := range state.List {
			if table.Id != e.Id {
				list = append(list, table)
			}
		}
		state.List = list
	case LoadTableList:
		state.Page = e.Page
		if e.Page == 1 {
			state.List = []*api.Table{}
		}
		state.Loading = true
	case LoadTableListSuccess:
		state.Loading = false
		state.HasMore = e.HasMore
		list := make([]*api.Table, 0, len(state.List)+len(e.Tables))
		list = append(list, state.List...)
		state.List = append(list, e.Tables...)

	case LoadTableRecords:
		state.Loading = true
		state.Data.Page = 1
	case LoadTableRecordsSuccess:
		state.Loading = false
		state.Err = nil
		data := TableData{
			Records:     copyRecords(e.Records),
			Tokens:      copyTokens(e.Tokens),
			Page:        state.Data.Page,
			HasMore:     e.HasMore,
			RecordCount: e.RecordCount,
			Fields:      []*api.Field{},
		}
		if e.Table != nil {
			data.Id = e.Table.Id
			data.Name = e.Table.Name
			data.Fields = copyFields(e.Table.Fields)
			data.UpdatedAt = e.Table.UpdatedAt
		}
		state.Data = data
	case LoadTableRecordsFailure:
		state.Loading = false
		state.Err = e.Err
	case LoadMoreTableRecords:
		state.Loading = true
		state.Data.Page = e.Page
	case LoadMoreTableRecordsSuccess:
		state.Loading = false
		if state.Data.Page == 1 {
			state.Data.Records = copyRecords(e.Records)
		} else {
			records := make([]*api.TableRecord, 0, len(state.Data.Records)+len(e.Records))
			records = append(records, state.Data.Records...)
			state.Data.Records = append(records, e.Records...)
		}
		state.Data.HasMore = e.HasMore
		state.Data.RecordCount = e.RecordCount

	case SaveTableRecords:
		state.Saving = true
	case SaveTableRecordsSuccess:
		state.Data.UpdatedAt = e.UpdatedAt
		state.Saving = false
		state.Cache = NewEditCache()
	case SaveTableRecordsFailure:
		state.Saving = false
		state.Err = e.Err

	case AddTableField:
		field := e.Field
		fields := make([]*api.Field, 0, len(state.Data.Fields)+1)
		fields = append(fields, state.Data.Fields...)
		state.Data.Fields = append(fields, &field)
	case SetFieldPendingRemove:
		state.PendingRemoveField = append([]string{}, e.FieldNames...)

	case IssueTokenSuccess:
		tokens := make([]*api.AccessToken, 0, len(state.Data.Tokens)+1)
		tokens = append(tokens, &api.AccessToken{Token: e.Token, Writable: false})
		state.Data.Tokens = append(tokens, state.Data.Tokens...)
	case RevokeTokenSuccess:
		tokens := make([]*api.AccessToken, 0, len(state.Data.Tokens))
		for _, token := range state.Data.Tokens {
			if token.Token != e.Token {
				tokens = append(tokens, token)
			}
		}
		state.Data.Tokens = tokens
	case SetTokenWritability:
		state.Data.Tokens = replaceToken(state.Data.Tokens, e.Token, e.Writable)
	case SetTokenWritabilitySuccess:
		state.Data.Tokens = replaceToken(state.Data.Tokens, e.Token, e.Writable)
	case SetTokenForDetail:
		state.TokenForDetail = e.Token

	case RenameTable:
		state.Data.Name = e.Name
	case UpdateCache:
		state.Cache = e.Cache

	case ExportCSV:
		state.Loading = true
	case ExportCSVSuccess:
		state.ExportData = append([]map[string]interface{}{}, e.Rows...)
		state.Loading = false
	case ExportCSVFailure:
		state.Loading = false
		state.Err = e.Err
	}

	return state
}

func replaceToken(tokens []*api.AccessToken, token string, writable bool) []*api.AccessToken {
	result := make([]*api.AccessToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Token == token {
			t = &api.AccessToken{Token: token, Writable: writable}
		}
		result = append(result, t)
	}
	return result
}

func copyRecords(records []*api.TableRecord) []*api.TableRecord {
	return append([]*api.TableRecord{}, records...)
}

func copyTokens(tokens []*api.AccessToken) []*api.AccessToken {
	return append([]*api.AccessToken{}, tokens...)
}

func copyFields(fields []*api.Field) []*api.Field {
	return append([]*api.Field{}, fields...)
}
