package dao

import (
	"context"
	"sync"
	"time"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/google/uuid"
)

// RecordMemoryDao keeps records in process. It backs tests and local runs,
// and behaves like a remote store: callers only ever see copies.
type RecordMemoryDao struct {
	mu      sync.RWMutex
	records map[string]map[string]*api.Record
	order   map[string][]string

	now   func() time.Time
	newId func() string
}

func NewRecordMemoryDao() *RecordMemoryDao {
	return &RecordMemoryDao{
		records: make(map[string]map[string]*api.Record),
		order:   make(map[string][]string),
		now:     time.Now,
		newId:   uuid.NewString,
	}
}

// SetClock replaces the time source used to stamp saved records.
func (d *RecordMemoryDao) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

func (d *RecordMemoryDao) Query(ctx context.Context, query *api.Query) (*api.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matcher, err := newRecordMatcher(query)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	ids := d.order[query.RecordType]
	candidates := make([]*api.Record, 0, len(ids))
	for _, id := range ids {
		c, err := d.records[query.RecordType][id].Clone()
		if err != nil {
			d.mu.RUnlock()
			return nil, err
		}
		candidates = append(candidates, c)
	}
	d.mu.RUnlock()

	return matcher.Apply(candidates)
}

func (d *RecordMemoryDao) Save(ctx context.Context, records []*api.Record) ([]*api.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	incoming := make([]*api.Record, 0, len(records))
	for _, r := range records {
		c, err := r.Clone()
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, c)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().UTC()
	saved := make([]*api.Record, 0, len(incoming))
	for _, r := range incoming {
		if r.Id == "" {
			r.Id = d.newId()
		}
		byId, ok := d.records[r.Type]
		if !ok {
			byId = make(map[string]*api.Record)
			d.records[r.Type] = byId
		}

		stored, exists := byId[r.Id]
		if exists {
			stored.Merge(r.Data)
			stored.UpdatedAt = now
		} else {
			r.CreatedAt = now
			r.UpdatedAt = now
			byId[r.Id] = r
			d.order[r.Type] = append(d.order[r.Type], r.Id)
			stored = r
		}

		c, err := stored.Clone()
		if err != nil {
			return nil, err
		}
		saved = append(saved, c)
	}

	return saved, nil
}

func (d *RecordMemoryDao) Delete(ctx context.Context, refs []api.Reference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ref := range refs {
		byId, ok := d.records[ref.Type]
		if !ok {
			continue
		}
		if _, ok := byId[ref.Id]; !ok {
			continue
		}
		delete(byId, ref.Id)

		ids := d.order[ref.Type]
		for i, id := range ids {
			if id == ref.Id {
				d.order[ref.Type] = append(ids[:i:i], ids[i+1:]...)
				break
			}
		}
	}

	return nil
}

// Len returns the number of stored records of the type.
func (d *RecordMemoryDao) Len(recordType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records[recordType])
}
