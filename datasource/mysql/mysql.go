package mysql

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
)

type Mysql struct {
	DSN  string
	DB   *sql.DB
	Name string
}

var mysqlInstances sync.Map

// GenerateDSN builds a driver DSN for a tcp address such as "127.0.0.1:3306".
func GenerateDSN(address, user, pwd, database string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = address
	cfg.User = user
	cfg.Passwd = pwd
	cfg.DBName = database
	cfg.Timeout = 10 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func GetMysql(name string) (*Mysql, error) {
	value, ok := mysqlInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("Mysql not found, name:%s", name)
	}

	mysqlInstance, ok := value.(*Mysql)
	if !ok {
		return nil, fmt.Errorf("Mysql not found, name:%s", name)
	}

	return mysqlInstance, nil
}

func (m *Mysql) Init() error {
	if _, err := mysql.ParseDSN(m.DSN); err != nil {
		return err
	}
	db, err := sql.Open("mysql", m.DSN)
	if err != nil {
		return err
	}

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(50)

	m.DB = db
	return m.DB.Ping()
}

func RegisterMysql(name, dsn string) error {
	if _, ok := mysqlInstances.Load(name); ok {
		return nil
	}
	m := &Mysql{
		DSN:  dsn,
		Name: name,
	}
	if err := m.Init(); err != nil {
		if m.DB != nil {
			m.DB.Close()
		}
		return fmt.Errorf("event=RegisterMysql\tname=%s: %w", name, err)
	}
	mysqlInstances.Store(name, m)

	return nil
}

func RemoveMysql(name string) {
	value, ok := mysqlInstances.LoadAndDelete(name)
	if !ok {
		return
	}
	if m, ok := value.(*Mysql); ok && m.DB != nil {
		m.DB.Close()
	}
}
