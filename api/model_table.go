package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apitable/apitable-go-sdk/constants"
)

type Field struct {
	Name       string              `json:"name"`
	Type       constants.FieldType `json:"type"`
	AllowEmpty bool                `json:"allowEmpty"`
	Data       interface{}         `json:"data,omitempty"`
}

type Table struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Fields    []*Field  `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type tableDocument struct {
	Name   string   `json:"name"`
	Fields []*Field `json:"fields"`
}

func NewTableFromRecord(r *Record) (*Table, error) {
	var doc tableDocument
	if err := decodeData(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode table %s: %w", r.Id, err)
	}
	if doc.Fields == nil {
		doc.Fields = []*Field{}
	}
	return &Table{
		Id:        r.Id,
		Name:      doc.Name,
		Fields:    doc.Fields,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (t *Table) ToRecord() *Record {
	fields := t.Fields
	if fields == nil {
		fields = []*Field{}
	}
	return NewRecord(constants.Record_Type_Table, t.Id, map[string]interface{}{
		"name":   t.Name,
		"fields": fields,
	})
}

// FieldNames returns the field names in table order.
func (t *Table) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

func (t *Table) HasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func decodeData(data map[string]interface{}, v interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
