package db

import "fmt"

// DailyStat is one day of aggregate request counts.
type DailyStat struct {
	Date          string `json:"date"`
	Requests      int    `json:"requests"`
	ChatCalls     int    `json:"chat_calls"`
	KanoonQueries int    `json:"kanoon_queries"`
}

// DailyStats aggregates per-day usage over the last N days from the log
// tables.
func (db *DB) DailyStats(days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := db.conn.Query(`
		SELECT d, SUM(requests), SUM(chats), SUM(kanoon) FROM (
			SELECT date(created_at) AS d, COUNT(*) AS requests, 0 AS chats, 0 AS kanoon
			FROM access_logs
			WHERE created_at >= datetime('now', ?)
			GROUP BY d
			UNION ALL
			SELECT date(created_at), 0, COUNT(*), 0
			FROM llm_outputs
			WHERE created_at >= datetime('now', ?)
			GROUP BY date(created_at)
			UNION ALL
			SELECT date(created_at), 0, 0, COUNT(*)
			FROM kanoon_queries
			WHERE created_at >= datetime('now', ?)
			GROUP BY date(created_at)
		)
		GROUP BY d
		ORDER BY d DESC
	`, dayWindow(days), dayWindow(days), dayWindow(days))
	if err != nil {
		return nil, fmt.Errorf("db: daily stats: %w", err)
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Date, &s.Requests, &s.ChatCalls, &s.KanoonQueries); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PopularSearch is one aggregated search query with its frequency.
type PopularSearch struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// PopularSearches returns the most frequent case-law search queries.
func (db *DB) PopularSearches(limit int) ([]PopularSearch, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT search_query, COUNT(*) AS n
		FROM kanoon_queries
		WHERE success = 1
		GROUP BY search_query
		ORDER BY n DESC, search_query
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: popular searches: %w", err)
	}
	defer rows.Close()

	var out []PopularSearch
	for rows.Next() {
		var p PopularSearch
		if err := rows.Scan(&p.Query, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func dayWindow(days int) string {
	return fmt.Sprintf("-%d days", days)
}
