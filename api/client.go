package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/apitable/apitable-go-sdk/constants"
)

var ErrNotFound = errors.New("not found")

// Database is the remote record store the services talk to.
type Database interface {
	Query(ctx context.Context, query *Query) (*QueryResult, error)

	// Save upserts records in one batch. Records without an id are created
	// with a generated one; existing records get their data keys merged.
	Save(ctx context.Context, records []*Record) ([]*Record, error)

	// Delete removes the referenced records in one batch.
	Delete(ctx context.Context, refs []Reference) error
}

type service struct {
	client *APIClient
}

// APIClient manages communication with the record store.
type APIClient struct {
	cfg    *Configuration
	db     Database
	common service

	TableApi       *TableApiService
	TableRecordApi *TableRecordApiService
	AccessTokenApi *AccessTokenApiService
}

func NewAPIClient(cfg *Configuration, db Database) *APIClient {
	if cfg == nil {
		cfg = NewConfiguration("", "")
	}
	c := &APIClient{
		cfg: cfg,
		db:  db,
	}
	c.common.client = c

	c.TableApi = (*TableApiService)(&c.common)
	c.TableRecordApi = (*TableRecordApiService)(&c.common)
	c.AccessTokenApi = (*AccessTokenApiService)(&c.common)

	return c
}

func (c *APIClient) GetConfig() *Configuration {
	return c.cfg
}

func (c *APIClient) GetDatabase() Database {
	return c.db
}

// getRecord returns the stored record, ErrNotFound when the id does not resolve.
func (c *APIClient) getRecord(ctx context.Context, recordType, id string) (*Record, error) {
	result, err := c.db.Query(ctx, NewQuery(recordType).EqualTo(constants.Record_Key_Id, id))
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%s %s: %w", recordType, id, ErrNotFound)
	}
	return result.Records[0], nil
}
