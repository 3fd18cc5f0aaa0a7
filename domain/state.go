package domain

import (
	"time"

	"github.com/apitable/apitable-go-sdk/api"
)

// dialogs of the table views
const (
	Dialog_CreateTable    = "createTable"
	Dialog_DeleteTable    = "deleteTable"
	Dialog_AddField       = "addField"
	Dialog_RemoveField    = "removeField"
	Dialog_GetEndPoint    = "getEndPoint"
	Dialog_EndPointDetail = "endPointDetail"
	Dialog_RenameTable    = "renameTable"
	Dialog_Preview        = "preview"
	Dialog_Export         = "export"
)

// LoadingTableName is shown until the table is loaded.
const LoadingTableName = "Loading ..."

// TableData is the table open in the editor.
type TableData struct {
	Id          string
	Name        string
	Fields      []*api.Field
	Records     []*api.TableRecord
	Tokens      []*api.AccessToken
	UpdatedAt   time.Time
	Page        int
	HasMore     bool
	RecordCount int
}

// EditCache holds the edits made since the last save.
type EditCache struct {
	// Changes maps record id to the changed field values.
	Changes map[string]map[string]interface{}

	// CreatedRecords maps a temporary id to the new record's field values.
	CreatedRecords map[string]map[string]interface{}

	DeletedRecords []string
}

func NewEditCache() EditCache {
	return EditCache{
		Changes:        make(map[string]map[string]interface{}),
		CreatedRecords: make(map[string]map[string]interface{}),
		DeletedRecords: []string{},
	}
}

type State struct {
	Dialog map[string]bool

	// table list
	List    []*api.Table
	Page    int
	HasMore bool

	Data TableData

	Loading bool
	Saving  bool

	// PendingDeleteTable is the id of the table awaiting delete confirmation.
	PendingDeleteTable string
	PendingRemoveField []string

	Cache          EditCache
	TokenForDetail api.AccessToken
	ExportData     []map[string]interface{}

	// Err is the last failed request, cleared when a load succeeds.
	Err error
}

func NewState() State {
	return State{
		Dialog: map[string]bool{
			Dialog_CreateTable:    false,
			Dialog_DeleteTable:    false,
			Dialog_AddField:       false,
			Dialog_RemoveField:    false,
			Dialog_GetEndPoint:    false,
			Dialog_EndPointDetail: false,
			Dialog_RenameTable:    false,
			Dialog_Preview:        false,
			Dialog_Export:         false,
		},
		List:    []*api.Table{},
		Page:    1,
		HasMore: true,
		Data: TableData{
			Name:    LoadingTableName,
			Fields:  []*api.Field{},
			Records: []*api.TableRecord{},
			Tokens:  []*api.AccessToken{},
			Page:    1,
		},
		Loading:            true,
		PendingRemoveField: []string{},
		Cache:              NewEditCache(),
		ExportData:         []map[string]interface{}{},
	}
}

func (s State) dialogWith(name string, visible bool) map[string]bool {
	dialog := make(map[string]bool, len(s.Dialog)+1)
	for k, v := range s.Dialog {
		dialog[k] = v
	}
	dialog[name] = visible
	return dialog
}
