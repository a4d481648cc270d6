// Package history 将每次仪表盘生成记录到 SQLite。
//
// 默认使用纯 Go 驱动 modernc.org/sqlite；以 -tags cgo_sqlite 构建时改用 mattn/go-sqlite3。
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    template       TEXT NOT NULL,
    version        TEXT NOT NULL,
    dashboard_path TEXT NOT NULL,
    parameters     TEXT NOT NULL,
    generated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generations_generated_at ON generations (generated_at);
`

// 定宽 UTC 时间，按字符串排序即按时间排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry 一条生成记录
type Entry struct {
	ID            int64
	Template      string
	Version       string
	DashboardPath string
	Parameters    map[string]any
	GeneratedAt   time.Time
}

// Store 生成记录存储，实现 dashboard.Recorder
type Store struct {
	db *sql.DB
}

var _ dashboard.Recorder = (*Store)(nil)

// Open 打开 (必要时创建) dsn 指向的数据库并初始化表结构。
// dsn 为普通文件路径时会先创建其父目录。
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create history directory: %w", err)
			}
		}
	}

	db, err := initDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record 写入一条生成记录
func (s *Store) Record(ctx context.Context, meta dashboard.Metadata, dashboardPath string) error {
	params, err := json.Marshal(meta.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generations (template, version, dashboard_path, parameters, generated_at) VALUES (?, ?, ?, ?, ?)`,
		meta.TemplateUsed, meta.TemplateVersion, dashboardPath, string(params),
		meta.GeneratedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}

	return nil
}

// List 按生成时间倒序返回最近 limit 条记录，limit <= 0 时返回全部
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, version, dashboard_path, parameters, generated_at
		 FROM generations ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			params, at string
		)
		if err := rows.Scan(&e.ID, &e.Template, &e.Version, &e.DashboardPath, &params, &at); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &e.Parameters); err != nil {
			return nil, fmt.Errorf("decode parameters of generation %d: %w", e.ID, err)
		}
		if e.GeneratedAt, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("decode time of generation %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}
