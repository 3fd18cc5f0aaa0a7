package apitable

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
)

func wait(t *testing.T, p *Promise) (interface{}, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestSessionLoadNotFoundRedirects(t *testing.T) {
	env := newTestEnv(t)
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	_, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: "missing"}))
	assert.Equal(t, errors.Is(err, api.ErrNotFound), true)
	session.Wait()

	assert.Equal(t, env.navigator.Paths(), []string{constants.NotFoundPath})

	// nothing beyond the intent itself reached the store
	want := domain.Reduce(domain.NewState(), domain.LoadTableRecords{Id: "missing"})
	if diff := cmp.Diff(want, session.State(), cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}

	// the redirect ends the session
	_, err = wait(t, session.Dispatch(domain.LoadTableRecords{Id: "missing"}))
	assert.Equal(t, errors.Is(err, ErrSessionClosed), true)
}

func TestSessionLoadFailure(t *testing.T) {
	env := newTestEnv(t)
	env.spy.failQuery = errors.New("network unreachable")
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	_, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: "t1"}))
	assert.Equal(t, err.Error(), "network unreachable")

	state := session.State()
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, state.Err.Error(), "network unreachable")
	assert.Equal(t, len(env.navigator.Paths()), 0)
}

func TestSessionLoadAndLoadMore(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name", "age")
	env.addRecords(t, table.Id, constants.PageSize+5)

	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	value, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: table.Id}))
	assert.NoError(t, err)
	assert.Equal(t, value.(*domain.LoadTableRecordsSuccess).HasMore, true)

	state := session.State()
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, state.Data.Id, table.Id)
	assert.Equal(t, state.Data.Name, "People")
	assert.Equal(t, state.Data.HasMore, true)
	assert.Equal(t, state.Data.RecordCount, constants.PageSize+5)
	assert.Equal(t, len(state.Data.Records), constants.PageSize)

	// later pages append
	_, err = wait(t, session.Dispatch(domain.LoadMoreTableRecords{Id: table.Id, Page: 2}))
	assert.NoError(t, err)
	state = session.State()
	assert.Equal(t, state.Data.Page, 2)
	assert.Equal(t, len(state.Data.Records), constants.PageSize+5)
	assert.Equal(t, state.Data.HasMore, false)

	// page one replaces
	_, err = wait(t, session.Dispatch(domain.LoadMoreTableRecords{Id: table.Id, Page: 1}))
	assert.NoError(t, err)
	state = session.State()
	assert.Equal(t, len(state.Data.Records), constants.PageSize)
	assert.Equal(t, state.Data.HasMore, true)
}

func TestSessionSave(t *testing.T) {
	savedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, WithClock(func() time.Time { return savedAt }))
	table := env.createTable(t, "People", "name")
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	_, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: table.Id}))
	assert.NoError(t, err)

	cache := domainCache(map[string]map[string]interface{}{"tmp-1": {"name": "Ann"}}, nil, nil)
	session.Dispatch(domain.UpdateCache{Cache: cache})
	assert.Equal(t, len(session.State().Cache.CreatedRecords), 1)

	p := session.Dispatch(domain.SaveTableRecords{
		Id:             table.Id,
		Changes:        cache.Changes,
		CreatedRecords: cache.CreatedRecords,
		DeletedRecords: cache.DeletedRecords,
	})
	_, err = wait(t, p)
	assert.NoError(t, err)

	state := session.State()
	assert.Equal(t, state.Saving, false)
	assert.Equal(t, state.Data.UpdatedAt.Equal(savedAt), true)
	assert.Equal(t, len(state.Cache.CreatedRecords), 0)

	_, err = wait(t, session.Dispatch(domain.LoadTableRecords{Id: table.Id}))
	assert.NoError(t, err)
	assert.Equal(t, session.State().Data.RecordCount, 1)
}

func TestSessionSaveFailure(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name")
	ids := env.addRecords(t, table.Id, 1)
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	env.spy.failQuery = errors.New("permission denied")
	_, err := wait(t, session.Dispatch(domain.SaveTableRecords{Id: table.Id, DeletedRecords: ids}))
	assert.Equal(t, err.Error(), "permission denied")

	state := session.State()
	assert.Equal(t, state.Saving, false)
	assert.Equal(t, state.Data.UpdatedAt.IsZero(), true)
}

func TestSessionTokens(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name")
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	var tokens []string
	for i := 0; i < 3; i++ {
		value, err := wait(t, session.Dispatch(domain.IssueToken{Id: table.Id}))
		assert.NoError(t, err)
		tokens = append(tokens, value.(*api.AccessToken).Token)
	}
	state := session.State()
	assert.Equal(t, tokenIds(state.Data.Tokens), []string{tokens[2], tokens[1], tokens[0]})

	_, err := wait(t, session.Dispatch(domain.SetTokenWritability{Token: tokens[0], Writable: true}))
	assert.NoError(t, err)
	assert.Equal(t, session.State().Data.Tokens[2].Writable, true)

	_, err = wait(t, session.Dispatch(domain.RevokeToken{Token: tokens[1]}))
	assert.NoError(t, err)
	state = session.State()
	assert.Equal(t, tokenIds(state.Data.Tokens), []string{tokens[2], tokens[0]})
	assert.Equal(t, state.Data.Tokens[1].Writable, true)

	list, err := env.client.GetAPIClient().AccessTokenApi.ListAccessTokens(context.Background(), table.Id)
	assert.NoError(t, err)
	assert.Equal(t, len(list.Tokens), 2)
}

func TestSessionFields(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name")
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	_, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: table.Id}))
	assert.NoError(t, err)

	_, err = wait(t, session.Dispatch(domain.AddTableField{Id: table.Id, Field: api.Field{Name: "age", Type: constants.Field_Type_Number}}))
	assert.NoError(t, err)
	assert.Equal(t, len(session.State().Data.Fields), 2)

	_, err = wait(t, session.Dispatch(domain.RemoveTableField{Id: table.Id, FieldNames: []string{"name"}}))
	assert.NoError(t, err)
	// the table is reloaded after the removal
	session.Wait()
	state := session.State()
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, len(state.Data.Fields), 1)
	assert.Equal(t, state.Data.Fields[0].Name, "age")

	_, err = wait(t, session.Dispatch(domain.RenameTable{Id: table.Id, Name: "Ages"}))
	assert.NoError(t, err)
	assert.Equal(t, session.State().Data.Name, "Ages")
}

func TestSessionExportCSV(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name", "age")
	env.addRecords(t, table.Id, 12)
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	value, err := wait(t, session.Dispatch(domain.ExportCSV{Id: table.Id}))
	assert.NoError(t, err)
	assert.Equal(t, value.(int), 12)

	state := session.State()
	assert.Equal(t, state.Loading, false)
	assert.Equal(t, len(state.ExportData), 12)
	for _, row := range state.ExportData {
		_, ok := row["_recordId"]
		assert.Equal(t, ok, false)
	}

	_, err = wait(t, session.Dispatch(domain.ExportCSV{Id: table.Id, Filter: "missing == 1"}))
	assert.Equal(t, err != nil, true)
	assert.Equal(t, session.State().Loading, false)
}

func TestSessionDialogResolvesAtOnce(t *testing.T) {
	env := newTestEnv(t)
	session := env.client.NewEditSession(context.Background(), nil)
	defer session.Close()

	value, err := wait(t, session.Dispatch(domain.ShowDialog{Name: domain.Dialog_Export}))
	assert.NoError(t, err)
	assert.Equal(t, value, nil)
	assert.Equal(t, session.State().Dialog[domain.Dialog_Export], true)
}

func TestSessionSubscriberDispatches(t *testing.T) {
	env := newTestEnv(t)
	table := env.createTable(t, "People", "name")
	store := domain.NewStore()
	session := env.client.NewEditSession(context.Background(), store)

	var once sync.Once
	reacted := make(chan *Promise, 1)
	unsubscribe := store.Subscribe(func(state domain.State) {
		if state.Data.Id != table.Id {
			return
		}
		once.Do(func() {
			reacted <- session.Dispatch(domain.ShowDialog{Name: domain.Dialog_GetEndPoint})
		})
	})
	defer unsubscribe()

	_, err := wait(t, session.Dispatch(domain.LoadTableRecords{Id: table.Id}))
	assert.NoError(t, err)

	select {
	case p := <-reacted:
		_, err = wait(t, p)
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not dispatch")
	}
	assert.Equal(t, session.State().Dialog[domain.Dialog_GetEndPoint], true)

	closed := make(chan struct{})
	go func() {
		session.Close()
		session.Wait()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not close")
	}
}

func TestListSession(t *testing.T) {
	env := newTestEnv(t)
	store := domain.NewStore()
	session := env.client.NewListSession(context.Background(), store)
	defer session.Close()

	for _, name := range []string{"a", "b", "c"} {
		_, err := wait(t, session.Dispatch(domain.CreateTable{Name: name}))
		assert.NoError(t, err)
	}
	state := store.State()
	assert.Equal(t, len(state.List), 3)
	assert.Equal(t, state.List[0].Name, "c")

	_, err := wait(t, session.Dispatch(domain.LoadTableList{Page: 1}))
	assert.NoError(t, err)
	state = store.State()
	assert.Equal(t, len(state.List), 3)
	assert.Equal(t, state.HasMore, false)
	assert.Equal(t, state.Loading, false)

	victim := state.List[1].Id
	session.Dispatch(domain.SetTablePendingDelete{Id: victim})
	_, err = wait(t, session.Dispatch(domain.DeleteTable{Id: victim}))
	assert.NoError(t, err)
	state = store.State()
	assert.Equal(t, len(state.List), 2)
	assert.Equal(t, state.PendingDeleteTable, "")

	// edit intents have no workflow in the list view
	value, err := wait(t, session.Dispatch(domain.IssueToken{Id: state.List[0].Id}))
	assert.NoError(t, err)
	assert.Equal(t, value, nil)
	assert.Equal(t, env.db.Len(constants.Record_Type_AccessToken), 0)
}

// blockingDatabase holds every query until its context is cancelled.
type blockingDatabase struct {
	api.Database
	once    sync.Once
	started chan struct{}
}

func (b *blockingDatabase) Query(ctx context.Context, query *api.Query) (*api.QueryResult, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSessionNavigateCancelsWorkflows(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := newTestEnv(t)
	db := &blockingDatabase{Database: env.db, started: make(chan struct{})}
	client, err := NewClient(WithDatabase(db), WithNavigator(env.navigator))
	assert.NoError(t, err)

	session := client.NewEditSession(context.Background(), nil)
	load := session.Dispatch(domain.LoadTableRecords{Id: "t1"})
	export := session.Dispatch(domain.ExportCSV{Id: "t1"})
	<-db.started

	before := session.State()
	session.Navigate("/tables")
	session.Wait()

	_, err = wait(t, load)
	assert.Equal(t, errors.Is(err, context.Canceled), true)
	_, err = wait(t, export)
	assert.Equal(t, errors.Is(err, context.Canceled), true)

	// results arriving after navigation are dropped
	if diff := cmp.Diff(before, session.State(), cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("state changed after navigation (-want +got):\n%s", diff)
	}
	assert.Equal(t, env.navigator.Paths(), []string{"/tables"})
}

func TestSessionParentContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := newTestEnv(t)
	db := &blockingDatabase{Database: env.db, started: make(chan struct{})}
	client, err := NewClient(WithDatabase(db))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	session := client.NewEditSession(ctx, nil)
	defer session.Close()

	p := session.Dispatch(domain.RenameTable{Id: "t1", Name: "x"})
	<-db.started
	cancel()

	_, err = wait(t, p)
	assert.Equal(t, errors.Is(err, context.Canceled), true)
	session.Wait()
}

func tokenIds(tokens []*api.AccessToken) []string {
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.Token)
	}
	return ids
}
