package greyfilter

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
)

const (
	mysqlDecisionQuery string = "insert into decisions (id, session_id, token, fingerprint, outcome, code, consulted, failure, occurred_at) values (?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

type HookMysql struct {
	pool *sql.DB // Database connection pool.
}

func (h *HookMysql) Name() string {
	return "mysql"
}

func (h *HookMysql) conn() (*sql.DB, error) {
	if h.pool != nil {
		return h.pool, nil
	}

	dsn := os.Getenv("DSN")
	if len(dsn) == 0 {
		return nil, fmt.Errorf("missing dsn for mysql, please set `DSN`")
	}

	var err error
	h.pool, err = sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open error: %w", err)
	}

	return h.pool, nil
}

func (h *HookMysql) AfterInit() {
}

func (h *HookMysql) AfterDecision(d *AfterDecisionData) {
	conn, err := h.conn()
	if err != nil {
		hookLog(h).Error(err)
		return
	}

	_, err = conn.Exec(
		mysqlDecisionQuery,
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
