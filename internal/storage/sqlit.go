package storage

import (
	"database/sql"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Store keeps the command usage log. It never stores portfolios or results.
type Store struct{ db DB }

// UsageStats aggregates one command over a window.
type UsageStats struct {
	Count    int
	Users    int
	LastUsed time.Time
}

// Usage is the per-command breakdown plus the distinct user count across commands.
type Usage struct {
	Commands map[string]*UsageStats
	Users    int
}

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS command_usage(
		chat_id INTEGER, user_id INTEGER, command TEXT, ts INTEGER
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS command_usage_ts ON command_usage(ts)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

func (s *Store) RecordCommand(chatID, userID int64, command string, ts int64) error {
	_, err := s.db.Exec(`INSERT INTO command_usage(chat_id,user_id,command,ts) VALUES(?,?,?,?)`,
		chatID, userID, command, ts)
	return err
}

// Usage summarizes commands recorded at or after since (unix seconds).
func (s *Store) Usage(since int64) (*Usage, error) {
	rows, err := s.db.Query(`SELECT command, COUNT(*), COUNT(DISTINCT user_id), MAX(ts)
		FROM command_usage WHERE ts>=? GROUP BY command`, since)
	if err != nil {
		return nil, err
	}
	out := &Usage{Commands: map[string]*UsageStats{}}
	for rows.Next() {
		var (
			cmd   string
			stats UsageStats
			last  int64
		)
		if err := rows.Scan(&cmd, &stats.Count, &stats.Users, &last); err != nil {
			rows.Close()
			return nil, err
		}
		stats.LastUsed = time.Unix(last, 0).UTC()
		out.Commands[cmd] = &stats
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	users, err := s.db.Query(`SELECT COUNT(DISTINCT user_id) FROM command_usage WHERE ts>=?`, since)
	if err != nil {
		return nil, err
	}
	defer users.Close()
	if users.Next() {
		if err := users.Scan(&out.Users); err != nil {
			return nil, err
		}
	}
	return out, users.Err()
}

// DayCount is the number of times a command ran on one UTC day.
type DayCount struct {
	Day   time.Time
	Count int
}

// DailyUsage buckets commands recorded at or after since by UTC day, oldest first.
func (s *Store) DailyUsage(since int64) (map[string][]DayCount, error) {
	rows, err := s.db.Query(`SELECT command, ts/86400 AS day, COUNT(*)
		FROM command_usage WHERE ts>=? GROUP BY command, day ORDER BY day`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]DayCount{}
	for rows.Next() {
		var (
			cmd   string
			day   int64
			count int
		)
		if err := rows.Scan(&cmd, &day, &count); err != nil {
			return nil, err
		}
		out[cmd] = append(out[cmd], DayCount{Day: time.Unix(day*86400, 0).UTC(), Count: count})
	}
	return out, rows.Err()
}
