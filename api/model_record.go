package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is a typed document held by the record store.
type Record struct {
	Type      string                 `json:"_type"`
	Id        string                 `json:"_id"`
	CreatedAt time.Time              `json:"_created_at"`
	UpdatedAt time.Time              `json:"_updated_at"`
	Data      map[string]interface{} `json:"data"`
}

func NewRecord(recordType, id string, data map[string]interface{}) *Record {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Record{
		Type: recordType,
		Id:   id,
		Data: data,
	}
}

func (r *Record) Reference() Reference {
	return NewReference(r.Type, r.Id)
}

// Clone returns a deep copy of the record. Data goes through a JSON round
// trip, so the copy holds the same values a remote store would hand back.
func (r *Record) Clone() (*Record, error) {
	c := &Record{
		Type:      r.Type,
		Id:        r.Id,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	data, err := CloneData(r.Data)
	if err != nil {
		return nil, fmt.Errorf("clone record %s: %w", r.Reference(), err)
	}
	c.Data = data
	return c, nil
}

func CloneData(data map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(data))
	if len(data) == 0 {
		return result, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Merge overwrites the record data with every key of data.
func (r *Record) Merge(data map[string]interface{}) {
	if r.Data == nil {
		r.Data = make(map[string]interface{}, len(data))
	}
	for k, v := range data {
		r.Data[k] = v
	}
}

var ErrInvalidReference = errors.New("invalid reference")

// Reference points at a record by "<type>/<id>".
type Reference struct {
	Type string
	Id   string
}

func NewReference(recordType, id string) Reference {
	return Reference{Type: recordType, Id: id}
}

func ParseReference(s string) (Reference, error) {
	i := strings.Index(s, "/")
	if i <= 0 || i == len(s)-1 {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return Reference{Type: s[:i], Id: s[i+1:]}, nil
}

func (r Reference) String() string {
	return r.Type + "/" + r.Id
}

type referenceJSON struct {
	Type string `json:"$type"`
	Id   string `json:"$id"`
}

func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(referenceJSON{Type: "ref", Id: r.String()})
}

func (r *Reference) UnmarshalJSON(b []byte) error {
	var v referenceJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Type != "ref" {
		return fmt.Errorf("%w: $type=%q", ErrInvalidReference, v.Type)
	}
	ref, err := ParseReference(v.Id)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ReferenceId extracts the referenced record id from a data value, which is
// either a Reference or its decoded JSON form.
func ReferenceId(v interface{}) (string, bool) {
	switch ref := v.(type) {
	case Reference:
		return ref.Id, true
	case *Reference:
		if ref == nil {
			return "", false
		}
		return ref.Id, true
	case map[string]interface{}:
		if ref["$type"] != "ref" {
			return "", false
		}
		s, ok := ref["$id"].(string)
		if !ok {
			return "", false
		}
		parsed, err := ParseReference(s)
		if err != nil {
			return "", false
		}
		return parsed.Id, true
	}
	return "", false
}
