package dao

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/utils"
	"github.com/expr-lang/expr/vm"
)

// recordMatcher evaluates a query in process. Backends that cannot push a
// query down to storage read the candidate records and hand them here.
type recordMatcher struct {
	query   *api.Query
	program *vm.Program
}

func newRecordMatcher(query *api.Query) (*recordMatcher, error) {
	m := &recordMatcher{query: query}
	if query.Filter != "" {
		program, err := CompileFilter(query.Filter)
		if err != nil {
			return nil, err
		}
		m.program = program
	}
	for _, cond := range query.Conditions {
		if cond.Operator == api.Operator_Contains {
			if _, ok := cond.Value.([]string); !ok {
				return nil, fmt.Errorf("%w: contains on %s needs []string, got %T", ErrUnsupportedQuery, cond.Key, cond.Value)
			}
		}
	}
	return m, nil
}

func (m *recordMatcher) Match(r *api.Record) (bool, error) {
	if r.Type != m.query.RecordType {
		return false, nil
	}
	for _, cond := range m.query.Conditions {
		value := recordValue(r, cond.Key)
		switch cond.Operator {
		case api.Operator_Equal:
			if !valueEqual(value, conditionValue(cond.Value)) {
				return false, nil
			}
		case api.Operator_Contains:
			if value == nil {
				return false, nil
			}
			s := utils.ToString(value, "")
			found := false
			for _, v := range cond.Value.([]string) {
				if s == v {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: operator %d", ErrUnsupportedQuery, cond.Operator)
		}
	}
	if m.program != nil {
		return evalFilter(m.program, r)
	}
	return true, nil
}

// Apply filters, sorts and pages the records.
func (m *recordMatcher) Apply(records []*api.Record) (*api.QueryResult, error) {
	matched := make([]*api.Record, 0, len(records))
	for _, r := range records {
		ok, err := m.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	if len(m.query.Sorts) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range m.query.Sorts {
				c := compareValues(recordValue(matched[i], s.Key), recordValue(matched[j], s.Key))
				if c == 0 {
					continue
				}
				if s.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	result := &api.QueryResult{}
	if m.query.OverallCount {
		result.OverallCount = len(matched)
	}

	offset := m.query.GetOffset()
	if offset >= len(matched) {
		result.Records = []*api.Record{}
		return result, nil
	}
	end := len(matched)
	if limit := m.query.GetLimit(); limit != api.NoLimit && offset+limit < end {
		end = offset + limit
	}
	result.Records = matched[offset:end]

	return result, nil
}

func recordValue(r *api.Record, key string) interface{} {
	switch key {
	case constants.Record_Key_Id:
		return r.Id
	case constants.Record_Key_CreatedAt:
		return r.CreatedAt
	case constants.Record_Key_UpdatedAt:
		return r.UpdatedAt
	}
	v, ok := r.Data[key]
	if !ok {
		// row fields of a table record
		v, ok = utils.ToStringMap(r.Data["data"])[key]
		if !ok {
			return nil
		}
	}
	if id, ok := api.ReferenceId(v); ok {
		return id
	}
	return v
}

// conditionValue accepts references and "<type>/<id>" strings where an id is expected.
func conditionValue(v interface{}) interface{} {
	if id, ok := api.ReferenceId(v); ok {
		return id
	}
	return v
}

func valueEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return utils.ToString(a, "") == utils.ToString(b, "")
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			}
			return 0
		}
	}
	if isNumber(a) && isNumber(b) {
		fa, fb := utils.ToFloat(a, 0), utils.ToFloat(b, 0)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(utils.ToString(a, ""), utils.ToString(b, ""))
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

// sortByCreation orders records the way they were created.
func sortByCreation(records []*api.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].Id < records[j].Id
	})
}
