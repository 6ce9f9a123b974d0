package greyfilter

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const (
	sqliteDecisionQuery       string = "insert into decisions (id, session_id, token, fingerprint, outcome, code, consulted, failure, occurred_at) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	sqliteDecisionCreateTable string = `
	create table if not exists decisions (
    id text primary key,
    session_id text,
    token text,
    fingerprint text,
    outcome text,
    code integer,
    consulted boolean,
    failure text,
    occurred_at datetime default CURRENT_TIMESTAMP
	)`
)

type HookSqlite struct {
	pool *sql.DB // Database connection pool.
}

func (h *HookSqlite) Name() string {
	return "sqlite"
}

func (h *HookSqlite) conn() (*sql.DB, error) {
	if h.pool != nil {
		return h.pool, nil
	}

	dsn := os.Getenv("DSN")
	if len(dsn) == 0 {
		return nil, fmt.Errorf("missing dsn for sqlite, please set `DSN`")
	}

	var err error
	h.pool, err = sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open error: %w", err)
	}

	return h.pool, nil
}

func (h *HookSqlite) AfterInit() {
	conn, err := h.conn()
	if err != nil {
		hookLog(h).Error(err)
		return
	}

	_, err = conn.Exec(sqliteDecisionCreateTable)
	if err != nil {
		hookLog(h).WithError(err).Error("db exec error")
	}
}

func (h *HookSqlite) AfterDecision(d *AfterDecisionData) {
	conn, err := h.conn()
	if err != nil {
		hookLog(h).Error(err)
		return
	}

	_, err = conn.Exec(
		sqliteDecisionQuery,
		d.ID,
		d.Session,
		d.Token,
		string(d.Fingerprint),
		d.Outcome.String(),
		d.Code,
		d.Consulted,
		d.failure(),
		d.OccurredAt.Format(TimeFormat),
	)
	if err != nil {
		hookLog(h).WithError(err).Error("db exec error")
	}
}
