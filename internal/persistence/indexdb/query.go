package indexdb

import (
	"context"
	"database/sql"
)

// WorkerTotal aggregates the digs of one worker.
type WorkerTotal struct {
	WorkerID   uint32 `json:"worker_id"`
	Digs       int    `json:"digs"`
	Gold       uint64 `json:"gold"`
	LastHealth uint32 `json:"last_health"`
}

// GoldByWorker sums gold per worker, richest first. db may be any handle on
// an index file, including one opened read-only by a separate process.
func GoldByWorker(ctx context.Context, db *sql.DB, limit int) ([]WorkerTotal, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT d.worker_id, COUNT(*), SUM(d.gold),
			(SELECT l.worker_health FROM digs l WHERE l.worker_id = d.worker_id ORDER BY l.seq DESC LIMIT 1)
		FROM digs d
		GROUP BY d.worker_id
		ORDER BY SUM(d.gold) DESC, d.worker_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkerTotal
	for rows.Next() {
		var (
			id, health int64
			digs       int
			gold       int64
		)
		if err := rows.Scan(&id, &digs, &gold, &health); err != nil {
			return nil, err
		}
		out = append(out, WorkerTotal{
			WorkerID:   uint32(id),
			Digs:       digs,
			Gold:       uint64(gold),
			LastHealth: uint32(health),
		})
	}
	return out, rows.Err()
}
