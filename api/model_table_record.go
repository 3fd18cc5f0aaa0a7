package api

import (
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/utils"
)

// TableRecord is one row of user data.
type TableRecord struct {
	Id   string                 `json:"_recordId"`
	Data map[string]interface{} `json:"data"`
}

func NewTableRecordFromRecord(r *Record) *TableRecord {
	data := utils.ToStringMap(r.Data["data"])
	if data == nil {
		data = make(map[string]interface{})
	}
	return &TableRecord{
		Id:   r.Id,
		Data: data,
	}
}

// NewTableRecord builds an unsaved record belonging to the table.
func NewTableRecord(tableId string, data map[string]interface{}) *Record {
	if data == nil {
		data = make(map[string]interface{})
	}
	return NewRecord(constants.Record_Type_TableRecord, "", map[string]interface{}{
		constants.Record_Key_Table: NewReference(constants.Record_Type_Table, tableId),
		"data":                     data,
	})
}

// MergeTableRecordData applies field level changes to the record's row data.
func MergeTableRecordData(r *Record, changes map[string]interface{}) {
	data := utils.ToStringMap(r.Data["data"])
	merged := make(map[string]interface{}, len(data)+len(changes))
	for k, v := range data {
		merged[k] = v
	}
	for k, v := range changes {
		merged[k] = v
	}
	r.Merge(map[string]interface{}{"data": merged})
}
