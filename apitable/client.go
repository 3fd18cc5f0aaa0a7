package apitable

import (
	"fmt"
	"time"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/dao"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

type ClientOption func(c *Client)

func WithLogger(l Logger) ClientOption {
	return func(e *Client) {
		e.Logger = l
	}
}

func WithErrorLogger(l Logger) ClientOption {
	return func(e *Client) {
		e.ErrorLogger = l
	}
}

// WithConfiguration sets the datasource configuration. Without a database
// option the record store is built from it.
func WithConfiguration(cfg *api.Configuration) ClientOption {
	return func(e *Client) {
		e.cfg = cfg
	}
}

// WithNoDatasourceInitClient skips registering datasource clients; they
// must already be registered under the configuration's name.
func WithNoDatasourceInitClient() ClientOption {
	return func(e *Client) {
		e.datasourceInitClient = false
	}
}

// WithDatabase sets the record store directly, e.g. a dao.RecordMemoryDao in tests.
func WithDatabase(db api.Database) ClientOption {
	return func(e *Client) {
		e.db = db
	}
}

func WithRecentTableDao(d dao.RecentTableDao) ClientOption {
	return func(e *Client) {
		e.recentTableDao = d
	}
}

func WithTracker(t Tracker) ClientOption {
	return func(e *Client) {
		e.tracker = t
	}
}

func WithNavigator(n Navigator) ClientOption {
	return func(e *Client) {
		e.navigator = n
	}
}

// WithClock replaces the time source that stamps saves.
func WithClock(now func() time.Time) ClientOption {
	return func(e *Client) {
		e.now = now
	}
}

// Client runs the table workflows against a record store.
type Client struct {
	// datasourceInitClient flag to register the configured datasource clients
	datasourceInitClient bool

	cfg *api.Configuration

	db api.Database

	client *api.APIClient

	// recentTableDao keeps the recently opened tables
	recentTableDao dao.RecentTableDao

	tracker Tracker

	navigator Navigator

	now func() time.Time

	// Logger specifies a logger used to report internal changes
	Logger Logger

	// ErrorLogger is the logger to report errors
	ErrorLogger Logger
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := Client{
		datasourceInitClient: true,
		now:                  time.Now,
	}

	for _, opt := range opts {
		opt(&client)
	}

	if client.cfg == nil {
		client.cfg = api.NewConfiguration("", "")
	}

	if client.datasourceInitClient && (client.db == nil || client.recentTableDao == nil) {
		if err := RegisterDatasource(client.cfg); err != nil {
			client.logError(fmt.Errorf("register datasource error, err=%v", err))
			return nil, err
		}
	}

	if client.db == nil {
		recordDao, err := dao.NewRecordDao(dao.DaoConfig{
			DatasourceType: client.cfg.DatasourceType,
			DatasourceName: client.cfg.GetName(),
			TableName:      client.cfg.GetTableName(),
		})
		if err != nil {
			return nil, fmt.Errorf("create record store: %w", err)
		}
		client.db = recordDao
	}

	if client.recentTableDao == nil {
		recentTableDao, err := dao.NewRecentTableDao(dao.DaoConfig{
			DatasourceType: client.cfg.Cache.Type,
			DatasourceName: client.cfg.GetName(),
			FilePath:       client.cfg.Cache.Path,
		})
		if err != nil {
			return nil, fmt.Errorf("create recent table store: %w", err)
		}
		client.recentTableDao = recentTableDao
	}

	if client.tracker == nil {
		client.tracker = NopTracker{}
	}
	if client.navigator == nil {
		client.navigator = NopNavigator{}
	}

	client.client = api.NewAPIClient(client.cfg, client.db)

	return &client, nil
}

func (c *Client) GetAPIClient() *api.APIClient {
	return c.client
}

func (c *Client) logError(err error) {
	if c.ErrorLogger != nil {
		c.ErrorLogger.Printf("%s", err)
		return
	}

	if c.Logger != nil {
		c.Logger.Printf("%s", err)
	}
}

func (c *Client) logf(format string, v ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

func (c *Client) track(action string) {
	c.tracker.Track(constants.Analytics_Category_Table, action)
}
