package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/datasource/hologres"
	"github.com/apitable/apitable-go-sdk/datasource/mysql"
	"github.com/apitable/apitable-go-sdk/utils"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// columns of the record table that record keys map onto
var sqlColumns = map[string]string{
	constants.Record_Key_Id:        "id",
	constants.Record_Key_CreatedAt: "created_at",
	constants.Record_Key_UpdatedAt: "updated_at",
	constants.Record_Key_Table:     "table_ref",
}

// RecordSqlDao stores every record type in one table, the record data
// encoded as a JSON document.
type RecordSqlDao struct {
	db     *sql.DB
	flavor sqlbuilder.Flavor
	table  string
	now    func() time.Time
}

func NewRecordSqlDao(config DaoConfig) (*RecordSqlDao, error) {
	dao := RecordSqlDao{
		table: config.TableName,
		now:   time.Now,
	}

	switch config.DatasourceType {
	case constants.Datasource_Type_Hologres, constants.Datasource_Type_Postgres:
		holo, err := hologres.GetHologres(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		dao.db = holo.DB
		dao.flavor = sqlbuilder.PostgreSQL
	case constants.Datasource_Type_MySQL:
		m, err := mysql.GetMysql(config.DatasourceName)
		if err != nil {
			return nil, err
		}
		dao.db = m.DB
		dao.flavor = sqlbuilder.MySQL
	default:
		return nil, fmt.Errorf("not a sql datasource type:%s", config.DatasourceType)
	}

	return &dao, nil
}

// NewRecordSqlDaoWithDB wraps an opened database.
func NewRecordSqlDaoWithDB(db *sql.DB, flavor sqlbuilder.Flavor, table string) *RecordSqlDao {
	return &RecordSqlDao{
		db:     db,
		flavor: flavor,
		table:  table,
		now:    time.Now,
	}
}

// CreateTable creates the record table when it does not exist.
func (d *RecordSqlDao) CreateTable(ctx context.Context) error {
	ctb := d.flavor.NewCreateTableBuilder()
	ctb.CreateTable(d.table).IfNotExists()
	ctb.Define("type", "VARCHAR(64)", "NOT NULL")
	ctb.Define("id", "VARCHAR(64)", "NOT NULL")
	ctb.Define("table_ref", "VARCHAR(64)")
	ctb.Define("created_at", "BIGINT", "NOT NULL")
	ctb.Define("updated_at", "BIGINT", "NOT NULL")
	ctb.Define("doc", "TEXT")
	ctb.Define("PRIMARY KEY", "(type, id)")

	query, args := ctb.Build()
	_, err := d.db.ExecContext(ctx, query, args...)
	return err
}

// where adds the conditions the table can answer and reports whether every
// part of the query was pushed down.
func (d *RecordSqlDao) where(sb *sqlbuilder.SelectBuilder, query *api.Query) (pushdown bool, empty bool) {
	pushdown = query.Filter == ""
	sb.Where(sb.Equal("type", query.RecordType))
	for _, cond := range query.Conditions {
		column, ok := sqlColumns[cond.Key]
		if !ok || column == "created_at" || column == "updated_at" {
			pushdown = false
			continue
		}
		switch cond.Operator {
		case api.Operator_Equal:
			sb.Where(sb.Equal(column, utils.ToString(conditionValue(cond.Value), "")))
		case api.Operator_Contains:
			values, _ := cond.Value.([]string)
			if len(values) == 0 {
				return pushdown, true
			}
			sb.Where(sb.In(column, sqlbuilder.Flatten(values)...))
		default:
			pushdown = false
		}
	}
	for _, s := range query.Sorts {
		if _, ok := sqlColumns[s.Key]; !ok {
			pushdown = false
		}
	}
	return pushdown, false
}

func (d *RecordSqlDao) Query(ctx context.Context, query *api.Query) (*api.QueryResult, error) {
	matcher, err := newRecordMatcher(query)
	if err != nil {
		return nil, err
	}

	sb := d.flavor.NewSelectBuilder()
	sb.Select("type", "id", "created_at", "updated_at", "doc").From(d.table)
	pushdown, empty := d.where(sb, query)
	if empty {
		return &api.QueryResult{Records: []*api.Record{}}, nil
	}

	if !pushdown {
		// keys the table cannot answer are evaluated in process
		sb.OrderBy("created_at", "id")
		records, err := d.selectRecords(ctx, sb)
		if err != nil {
			return nil, err
		}
		return matcher.Apply(records)
	}

	orderBy := make([]string, 0, len(query.Sorts)+1)
	for _, s := range query.Sorts {
		if s.Descending {
			orderBy = append(orderBy, sqlColumns[s.Key]+" DESC")
		} else {
			orderBy = append(orderBy, sqlColumns[s.Key]+" ASC")
		}
	}
	orderBy = append(orderBy, "id ASC")
	sb.OrderBy(orderBy...)
	if limit := query.GetLimit(); limit != api.NoLimit {
		sb.Limit(limit)
		sb.Offset(query.GetOffset())
	}

	records, err := d.selectRecords(ctx, sb)
	if err != nil {
		return nil, err
	}
	result := &api.QueryResult{Records: records}

	if query.OverallCount {
		cb := d.flavor.NewSelectBuilder()
		cb.Select("COUNT(*)").From(d.table)
		d.where(cb, query)
		countSql, args := cb.Build()
		if err := d.db.QueryRowContext(ctx, countSql, args...).Scan(&result.OverallCount); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (d *RecordSqlDao) selectRecords(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]*api.Record, error) {
	query, args := sb.Build()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*api.Record, 0)
	for rows.Next() {
		var (
			recordType, id       string
			createdAt, updatedAt int64
			doc                  sql.NullString
		)
		if err := rows.Scan(&recordType, &id, &createdAt, &updatedAt, &doc); err != nil {
			return nil, err
		}
		r := api.NewRecord(recordType, id, nil)
		r.CreatedAt = utils.UnixMilli(createdAt)
		r.UpdatedAt = utils.UnixMilli(updatedAt)
		if doc.Valid && doc.String != "" {
			if err := json.Unmarshal([]byte(doc.String), &r.Data); err != nil {
				return nil, fmt.Errorf("decode record %s/%s: %w", recordType, id, err)
			}
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (d *RecordSqlDao) Save(ctx context.Context, records []*api.Record) (saved []*api.Record, err error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := utils.ToUnixMilli(d.now())
	saved = make([]*api.Record, 0, len(records))
	for _, in := range records {
		r, err := in.Clone()
		if err != nil {
			return nil, err
		}

		var existing *api.Record
		if r.Id == "" {
			r.Id = uuid.NewString()
		} else {
			existing, err = d.getRecord(ctx, tx, r.Type, r.Id)
			if err != nil {
				return nil, err
			}
		}

		if existing != nil {
			existing.Merge(r.Data)
			existing.UpdatedAt = utils.UnixMilli(now)
			if err := d.updateRecord(ctx, tx, existing, now); err != nil {
				return nil, err
			}
			saved = append(saved, existing)
			continue
		}

		r.CreatedAt = utils.UnixMilli(now)
		r.UpdatedAt = r.CreatedAt
		if err := d.insertRecord(ctx, tx, r, now); err != nil {
			return nil, err
		}
		saved = append(saved, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return saved, nil
}

func (d *RecordSqlDao) getRecord(ctx context.Context, tx *sql.Tx, recordType, id string) (*api.Record, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("created_at", "doc").From(d.table).
		Where(sb.Equal("type", recordType), sb.Equal("id", id))
	query, args := sb.Build()

	var (
		createdAt int64
		doc       sql.NullString
	)
	err := tx.QueryRowContext(ctx, query, args...).Scan(&createdAt, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r := api.NewRecord(recordType, id, nil)
	r.CreatedAt = utils.UnixMilli(createdAt)
	if doc.Valid && doc.String != "" {
		if err := json.Unmarshal([]byte(doc.String), &r.Data); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", recordType, id, err)
		}
	}
	return r, nil
}

func (d *RecordSqlDao) insertRecord(ctx context.Context, tx *sql.Tx, r *api.Record, now int64) error {
	doc, err := json.Marshal(r.Data)
	if err != nil {
		return err
	}
	tableRef, _ := api.ReferenceId(r.Data[constants.Record_Key_Table])

	ib := d.flavor.NewInsertBuilder()
	ib.InsertInto(d.table).
		Cols("type", "id", "table_ref", "created_at", "updated_at", "doc").
		Values(r.Type, r.Id, tableRef, now, now, string(doc))
	query, args := ib.Build()
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (d *RecordSqlDao) updateRecord(ctx context.Context, tx *sql.Tx, r *api.Record, now int64) error {
	doc, err := json.Marshal(r.Data)
	if err != nil {
		return err
	}
	tableRef, _ := api.ReferenceId(r.Data[constants.Record_Key_Table])

	ub := d.flavor.NewUpdateBuilder()
	ub.Update(d.table).
		Set(
			ub.Assign("table_ref", tableRef),
			ub.Assign("updated_at", now),
			ub.Assign("doc", string(doc)),
		).
		Where(ub.Equal("type", r.Type), ub.Equal("id", r.Id))
	query, args := ub.Build()
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (d *RecordSqlDao) Delete(ctx context.Context, refs []api.Reference) error {
	if len(refs) == 0 {
		return nil
	}

	byType := make(map[string][]string)
	var types []string
	for _, ref := range refs {
		if _, ok := byType[ref.Type]; !ok {
			types = append(types, ref.Type)
		}
		byType[ref.Type] = append(byType[ref.Type], ref.Id)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, recordType := range types {
		db := d.flavor.NewDeleteBuilder()
		db.DeleteFrom(d.table).
			Where(db.Equal("type", recordType), db.In("id", sqlbuilder.Flatten(byType[recordType])...))
		query, args := db.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
