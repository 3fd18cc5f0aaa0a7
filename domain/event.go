package domain

import (
	"time"

	"github.com/apitable/apitable-go-sdk/api"
)

type EventType string

const (
	Event_Type_ShowDialog                  EventType = "SHOW_DIALOG"
	Event_Type_HideDialog                  EventType = "HIDE_DIALOG"
	Event_Type_CreateTable                 EventType = "CREATE_TABLE"
	Event_Type_CreateTableSuccess          EventType = "CREATE_TABLE_SUCCESS"
	Event_Type_SetTablePendingDelete       EventType = "SET_TABLE_PENDING_DELETE"
	Event_Type_DeleteTable                 EventType = "DELETE_TABLE"
	Event_Type_DeleteTableSuccess          EventType = "DELETE_TABLE_SUCCESS"
	Event_Type_LoadTableList               EventType = "LOAD_TABLE_LIST"
	Event_Type_LoadTableListSuccess        EventType = "LOAD_TABLE_LIST_SUCCESS"
	Event_Type_LoadTableRecords            EventType = "LOAD_TABLE_RECORDS"
	Event_Type_LoadTableRecordsSuccess     EventType = "LOAD_TABLE_RECORDS_SUCCESS"
	Event_Type_LoadTableRecordsFailure     EventType = "LOAD_TABLE_RECORDS_FAILURE"
	Event_Type_LoadMoreTableRecords        EventType = "LOAD_MORE_TABLE_RECORDS"
	Event_Type_LoadMoreTableRecordsSuccess EventType = "LOAD_MORE_TABLE_RECORDS_SUCCESS"
	Event_Type_SaveTableRecords            EventType = "SAVE_TABLE_RECORDS"
	Event_Type_SaveTableRecordsSuccess     EventType = "SAVE_TABLE_RECORDS_SUCCESS"
	Event_Type_SaveTableRecordsFailure     EventType = "SAVE_TABLE_RECORDS_FAILURE"
	Event_Type_AddTableField               EventType = "ADD_TABLE_FIELD"
	Event_Type_RemoveTableField            EventType = "REMOVE_TABLE_FIELD"
	Event_Type_SetFieldPendingRemove       EventType = "SET_FIELD_PENDING_REMOVE"
	Event_Type_IssueToken                  EventType = "ISSUE_TOKEN"
	Event_Type_IssueTokenSuccess           EventType = "ISSUE_TOKEN_SUCCESS"
	Event_Type_RevokeToken                 EventType = "REVOKE_TOKEN"
	Event_Type_RevokeTokenSuccess          EventType = "REVOKE_TOKEN_SUCCESS"
	Event_Type_RenameTable                 EventType = "RENAME_TABLE"
	Event_Type_UpdateCache                 EventType = "UPDATE_CACHE"
	Event_Type_SetTokenWritability         EventType = "SET_TOKEN_WRITABILITY"
	Event_Type_SetTokenWritabilitySuccess  EventType = "SET_TOKEN_WRITABILITY_SUCCESS"
	Event_Type_SetTokenForDetail           EventType = "SET_TOKEN_FOR_DETAIL"
	Event_Type_ExportCSV                   EventType = "EXPORT_CSV"
	Event_Type_ExportCSVSuccess            EventType = "EXPORT_CSV_SUCCESS"
	Event_Type_ExportCSVFailure            EventType = "EXPORT_CSV_FAILURE"
)

// Event is either an intent raised by the user or the result of a workflow
// operation. Reduce switches on the concrete type.
type Event interface {
	EventType() EventType
}

type ShowDialog struct {
	Name string
}

type HideDialog struct {
	Name string
}

type CreateTable struct {
	Name string
}

type CreateTableSuccess struct {
	Table *api.Table
}

type SetTablePendingDelete struct {
	Id string
}

type DeleteTable struct {
	Id string
}

type DeleteTableSuccess struct {
	Id string
}

type LoadTableList struct {
	Page int
}

type LoadTableListSuccess struct {
	Tables     []*api.Table
	HasMore    bool
	TotalCount int
}

type LoadTableRecords struct {
	Id string
}

type LoadTableRecordsSuccess struct {
	Table       *api.Table
	Records     []*api.TableRecord
	Tokens      []*api.AccessToken
	HasMore     bool
	RecordCount int
}

type LoadTableRecordsFailure struct {
	Err error
}

type LoadMoreTableRecords struct {
	Id   string
	Page int
}

type LoadMoreTableRecordsSuccess struct {
	Records     []*api.TableRecord
	HasMore     bool
	RecordCount int
}

type SaveTableRecords struct {
	Id             string
	Changes        map[string]map[string]interface{}
	CreatedRecords map[string]map[string]interface{}
	DeletedRecords []string
}

type SaveTableRecordsSuccess struct {
	UpdatedAt time.Time
}

type SaveTableRecordsFailure struct {
	Err error
}

// AddTableField is applied optimistically before the table is saved.
type AddTableField struct {
	Id    string
	Field api.Field
}

type RemoveTableField struct {
	Id         string
	FieldNames []string
}

type SetFieldPendingRemove struct {
	FieldNames []string
}

type IssueToken struct {
	Id string
}

type IssueTokenSuccess struct {
	Token string
}

type RevokeToken struct {
	Token string
}

type RevokeTokenSuccess struct {
	Token string
}

type RenameTable struct {
	Id   string
	Name string
}

type UpdateCache struct {
	Cache EditCache
}

type SetTokenWritability struct {
	Token    string
	Writable bool
}

type SetTokenWritabilitySuccess struct {
	Token    string
	Writable bool
}

type SetTokenForDetail struct {
	Token api.AccessToken
}

type ExportCSV struct {
	Id string

	// Filter optionally restricts the exported rows, see dao.CompileFilter.
	Filter string
}

type ExportCSVSuccess struct {
	Rows []map[string]interface{}
}

type ExportCSVFailure struct {
	Err error
}

func (ShowDialog) EventType() EventType                  { return Event_Type_ShowDialog }
func (HideDialog) EventType() EventType                  { return Event_Type_HideDialog }
func (CreateTable) EventType() EventType                 { return Event_Type_CreateTable }
func (CreateTableSuccess) EventType() EventType          { return Event_Type_CreateTableSuccess }
func (SetTablePendingDelete) EventType() EventType       { return Event_Type_SetTablePendingDelete }
func (DeleteTable) EventType() EventType                 { return Event_Type_DeleteTable }
func (DeleteTableSuccess) EventType() EventType          { return Event_Type_DeleteTableSuccess }
func (LoadTableList) EventType() EventType               { return Event_Type_LoadTableList }
func (LoadTableListSuccess) EventType() EventType        { return Event_Type_LoadTableListSuccess }
func (LoadTableRecords) EventType() EventType            { return Event_Type_LoadTableRecords }
func (LoadTableRecordsSuccess) EventType() EventType     { return Event_Type_LoadTableRecordsSuccess }
func (LoadTableRecordsFailure) EventType() EventType     { return Event_Type_LoadTableRecordsFailure }
func (LoadMoreTableRecords) EventType() EventType        { return Event_Type_LoadMoreTableRecords }
func (LoadMoreTableRecordsSuccess) EventType() EventType { return Event_Type_LoadMoreTableRecordsSuccess }
func (SaveTableRecords) EventType() EventType            { return Event_Type_SaveTableRecords }
func (SaveTableRecordsSuccess) EventType() EventType     { return Event_Type_SaveTableRecordsSuccess }
func (SaveTableRecordsFailure) EventType() EventType     { return Event_Type_SaveTableRecordsFailure }
func (AddTableField) EventType() EventType               { return Event_Type_AddTableField }
func (RemoveTableField) EventType() EventType            { return Event_Type_RemoveTableField }
func (SetFieldPendingRemove) EventType() EventType       { return Event_Type_SetFieldPendingRemove }
func (IssueToken) EventType() EventType                  { return Event_Type_IssueToken }
func (IssueTokenSuccess) EventType() EventType           { return Event_Type_IssueTokenSuccess }
func (RevokeToken) EventType() EventType                 { return Event_Type_RevokeToken }
func (RevokeTokenSuccess) EventType() EventType          { return Event_Type_RevokeTokenSuccess }
func (RenameTable) EventType() EventType                 { return Event_Type_RenameTable }
func (UpdateCache) EventType() EventType                 { return Event_Type_UpdateCache }
func (SetTokenWritability) EventType() EventType         { return Event_Type_SetTokenWritability }
func (SetTokenWritabilitySuccess) EventType() EventType  { return Event_Type_SetTokenWritabilitySuccess }
func (SetTokenForDetail) EventType() EventType           { return Event_Type_SetTokenForDetail }
func (ExportCSV) EventType() EventType                   { return Event_Type_ExportCSV }
func (ExportCSVSuccess) EventType() EventType            { return Event_Type_ExportCSVSuccess }
func (ExportCSVFailure) EventType() EventType            { return Event_Type_ExportCSVFailure }
