package hologres

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
)

// StatementTimeout bounds every statement run on a record store connection.
const StatementTimeout = 5 * time.Second

func init() {
	sql.Register("hologres", &HologresDriver{})
}

// HologresDriver is the postgres driver with the statement timeout set on
// every new connection.
type HologresDriver struct {
	driver pq.Driver
}

func (d HologresDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.driver.Open(name)
	if err != nil {
		return nil, err
	}

	if stmt, err := conn.Prepare(fmt.Sprintf("set statement_timeout = %d", StatementTimeout.Milliseconds())); err == nil {
		stmt.Exec(nil)
		stmt.Close()
	}
	return conn, nil
}

// Hologres is a postgres compatible database holding the record table.
type Hologres struct {
	DSN  string
	DB   *sql.DB
	Name string
}

var hologresInstances sync.Map

func GetHologres(name string) (*Hologres, error) {
	value, ok := hologresInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("Hologres not found, name:%s", name)
	}

	hologresInstance, ok := value.(*Hologres)
	if !ok {
		return nil, fmt.Errorf("Hologres not found, name:%s", name)
	}

	return hologresInstance, nil
}

func (m *Hologres) Init() error {
	db, err := sql.Open("hologres", m.DSN)
	if err != nil {
		return err
	}

	db.SetConnMaxLifetime(60 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(50)

	m.DB = db
	return m.DB.Ping()
}

// RegisterHologres opens the database and stores it under name. Registering
// the same DSN again keeps the open database; a new DSN replaces it and the
// old one is closed.
func RegisterHologres(name, dsn string) error {
	if current, err := GetHologres(name); err == nil && current.DSN == dsn {
		return nil
	}

	m := &Hologres{
		DSN:  dsn,
		Name: name,
	}
	if err := m.Init(); err != nil {
		if m.DB != nil {
			m.DB.Close()
		}
		return fmt.Errorf("event=RegisterHologres\tname=%s: %w", name, err)
	}
	store(m)

	return nil
}

// RegisterHologresDB stores an opened database under name.
func RegisterHologresDB(name string, db *sql.DB) {
	store(&Hologres{Name: name, DB: db})
}

func store(m *Hologres) {
	if previous, loaded := hologresInstances.Swap(m.Name, m); loaded {
		if p, ok := previous.(*Hologres); ok && p.DB != nil && p.DB != m.DB {
			p.DB.Close()
		}
	}
}

func RemoveHologres(name string) {
	value, ok := hologresInstances.LoadAndDelete(name)
	if !ok {
		return
	}
	if hologres, ok := value.(*Hologres); ok && hologres.DB != nil {
		hologres.DB.Close()
	}
}
