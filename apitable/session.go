package apitable

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/domain"
)

var ErrSessionClosed = errors.New("session closed")

type handler func(ctx context.Context, event domain.Event) (interface{}, error)

// Session connects the workflows of one view to its store. Every intent
// dispatched while the session is open runs in its own goroutine; Navigate
// or Close cancels them all together, and results that arrive afterwards
// are dropped.
type Session struct {
	client *Client
	store  *domain.Store

	ctx    context.Context
	cancel context.CancelFunc

	handlers map[domain.EventType]handler

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (c *Client) newSession(ctx context.Context, store *domain.Store) *Session {
	if store == nil {
		store = domain.NewStore()
	}
	s := &Session{
		client:   c,
		store:    store,
		handlers: make(map[domain.EventType]handler),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s
}

// NewEditSession starts the workflows of the table editor.
func (c *Client) NewEditSession(ctx context.Context, store *domain.Store) *Session {
	s := c.newSession(ctx, store)
	s.handlers[domain.Event_Type_LoadTableRecords] = s.loadTableRecords
	s.handlers[domain.Event_Type_LoadMoreTableRecords] = s.loadMoreTableRecords
	s.handlers[domain.Event_Type_SaveTableRecords] = s.saveTableRecords
	s.handlers[domain.Event_Type_AddTableField] = s.addTableField
	s.handlers[domain.Event_Type_SetTokenWritability] = s.setTokenWritability
	s.handlers[domain.Event_Type_RemoveTableField] = s.removeTableField
	s.handlers[domain.Event_Type_IssueToken] = s.issueToken
	s.handlers[domain.Event_Type_RevokeToken] = s.revokeToken
	s.handlers[domain.Event_Type_RenameTable] = s.renameTable
	s.handlers[domain.Event_Type_ExportCSV] = s.exportCSV
	return s
}

// NewListSession starts the workflows of the table list.
func (c *Client) NewListSession(ctx context.Context, store *domain.Store) *Session {
	s := c.newSession(ctx, store)
	s.handlers[domain.Event_Type_LoadTableList] = s.loadTableList
	s.handlers[domain.Event_Type_CreateTable] = s.createTable
	s.handlers[domain.Event_Type_DeleteTable] = s.deleteTable
	return s
}

func (s *Session) Store() *domain.Store {
	return s.store
}

func (s *Session) State() domain.State {
	return s.store.State()
}

// Dispatch reduces the event into the store and starts the workflow
// listening for it. The promise completes when the workflow does; events
// without a workflow resolve at once. Subscribers of the store may dispatch
// again from their callback.
func (s *Session) Dispatch(event domain.Event) *Promise {
	p := NewPromise()

	s.mu.Lock()
	closed := s.closed
	h, ok := s.handlers[event.EventType()]
	if !closed && ok {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	// s.mu is never held while subscribers run
	s.store.Dispatch(event)

	switch {
	case closed:
		p.Reject(ErrSessionClosed)
		return p
	case !ok:
		p.Resolve(nil)
		return p
	}

	go func() {
		defer s.wg.Done()
		value, err := h(s.ctx, event)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(value)
	}()

	return p
}

// emit applies a workflow result unless the session was closed.
func (s *Session) emit(event domain.Event) bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.ctx.Err() != nil {
		return false
	}
	s.store.Dispatch(event)
	return true
}

// Navigate moves to path and closes the session.
func (s *Session) Navigate(path string) {
	s.client.navigator.Push(path)
	s.Close()
}

// Close cancels every running workflow. It does not wait for them, see Wait.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Wait blocks until every started workflow has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) loadTableRecords(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.LoadTableRecords)
	success, err := s.client.LoadTableRecords(ctx, e.Id)
	if errors.Is(err, api.ErrNotFound) {
		s.Navigate(constants.NotFoundPath)
		return nil, err
	}
	if err != nil {
		s.client.logError(fmt.Errorf("load table records error, table=%s, err=%v", e.Id, err))
		s.emit(domain.LoadTableRecordsFailure{Err: err})
		return nil, err
	}
	s.emit(*success)
	return success, nil
}

func (s *Session) loadMoreTableRecords(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.LoadMoreTableRecords)
	success, err := s.client.LoadMoreTableRecords(ctx, e.Id, e.Page)
	if err != nil {
		s.client.logError(fmt.Errorf("load more table records error, table=%s, page=%d, err=%v", e.Id, e.Page, err))
		s.emit(domain.LoadTableRecordsFailure{Err: err})
		return nil, err
	}
	s.emit(*success)
	return success, nil
}

func (s *Session) saveTableRecords(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.SaveTableRecords)
	cache := domain.EditCache{
		Changes:        e.Changes,
		CreatedRecords: e.CreatedRecords,
		DeletedRecords: e.DeletedRecords,
	}
	if err := s.client.SaveTableRecords(ctx, e.Id, cache); err != nil {
		s.emit(domain.SaveTableRecordsFailure{Err: err})
		return nil, err
	}
	s.emit(domain.SaveTableRecordsSuccess{UpdatedAt: s.client.now()})
	return nil, nil
}

func (s *Session) addTableField(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.AddTableField)
	return nil, s.client.AddTableField(ctx, e.Id, e.Field)
}

func (s *Session) setTokenWritability(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.SetTokenWritability)
	token, err := s.client.SetTokenWritability(ctx, e.Token, e.Writable)
	if err != nil {
		return nil, err
	}
	s.emit(domain.SetTokenWritabilitySuccess{Token: token.Token, Writable: token.Writable})
	return token, nil
}

func (s *Session) removeTableField(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.RemoveTableField)
	if err := s.client.RemoveTableField(ctx, e.Id, e.FieldNames); err != nil {
		return nil, err
	}
	// records are read again with the new field list
	s.Dispatch(domain.LoadTableRecords{Id: e.Id})
	return nil, nil
}

func (s *Session) issueToken(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.IssueToken)
	token, err := s.client.IssueToken(ctx, e.Id)
	if err != nil {
		return nil, err
	}
	s.emit(domain.IssueTokenSuccess{Token: token.Token})
	return token, nil
}

func (s *Session) revokeToken(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.RevokeToken)
	if err := s.client.RevokeToken(ctx, e.Token); err != nil {
		return nil, err
	}
	s.emit(domain.RevokeTokenSuccess{Token: e.Token})
	return nil, nil
}

func (s *Session) renameTable(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.RenameTable)
	return nil, s.client.RenameTable(ctx, e.Id, e.Name)
}

// exportCSV resolves with the number of exported rows.
func (s *Session) exportCSV(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.ExportCSV)
	rows, err := s.client.ExportCSV(ctx, e.Id, e.Filter)
	if err != nil {
		s.emit(domain.ExportCSVFailure{Err: err})
		return nil, err
	}
	s.emit(domain.ExportCSVSuccess{Rows: rows})
	return len(rows), nil
}

func (s *Session) loadTableList(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.LoadTableList)
	success, err := s.client.ListTables(ctx, e.Page)
	if err != nil {
		s.client.logError(fmt.Errorf("list tables error, page=%d, err=%v", e.Page, err))
		return nil, err
	}
	s.emit(*success)
	return success, nil
}

func (s *Session) createTable(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.CreateTable)
	table, err := s.client.CreateTable(ctx, e.Name)
	if err != nil {
		return nil, err
	}
	s.emit(domain.CreateTableSuccess{Table: table})
	return table, nil
}

func (s *Session) deleteTable(ctx context.Context, event domain.Event) (interface{}, error) {
	e := event.(domain.DeleteTable)
	if err := s.client.DeleteTable(ctx, e.Id); err != nil {
		return nil, err
	}
	s.emit(domain.DeleteTableSuccess{Id: e.Id})
	return nil, nil
}
