package api

import (
	"math"

	"github.com/apitable/apitable-go-sdk/constants"
)

type Operator int

const (
	Operator_Equal    Operator = iota + 1 // key == value
	Operator_Contains                     // key in values
)

// NoLimit disables paging on a query.
const NoLimit = math.MaxInt32

type Condition struct {
	Key      string
	Operator Operator
	Value    interface{}
}

type Sort struct {
	Key        string
	Descending bool
}

// Query selects records of one type. Conditions are ANDed.
type Query struct {
	RecordType string
	Conditions []Condition
	Sorts      []Sort

	// Page is 1-based; values below 1 read the first page.
	Page int

	// Limit is the page size, constants.PageSize when zero.
	Limit int

	// OverallCount asks the store to report the number of matching records
	// regardless of paging.
	OverallCount bool

	// Filter is an optional expr expression evaluated against record data.
	Filter string
}

func NewQuery(recordType string) *Query {
	return &Query{RecordType: recordType}
}

func (q *Query) EqualTo(key string, value interface{}) *Query {
	q.Conditions = append(q.Conditions, Condition{Key: key, Operator: Operator_Equal, Value: value})
	return q
}

func (q *Query) Contains(key string, values []string) *Query {
	q.Conditions = append(q.Conditions, Condition{Key: key, Operator: Operator_Contains, Value: values})
	return q
}

func (q *Query) AddAscending(key string) *Query {
	q.Sorts = append(q.Sorts, Sort{Key: key})
	return q
}

func (q *Query) AddDescending(key string) *Query {
	q.Sorts = append(q.Sorts, Sort{Key: key, Descending: true})
	return q
}

func (q *Query) GetLimit() int {
	if q.Limit <= 0 {
		return constants.PageSize
	}
	return q.Limit
}

func (q *Query) GetPage() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q *Query) GetOffset() int {
	limit := q.GetLimit()
	if limit == NoLimit {
		return 0
	}
	return (q.GetPage() - 1) * limit
}

type QueryResult struct {
	Records []*Record

	// OverallCount is only set when the query asked for it.
	OverallCount int
}
