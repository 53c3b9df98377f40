package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/zeremonos/waste-collection/internal/model"
)

// StatusHistoryRepo provides data access to the status_history table.
// The table is append-only: entries are inserted when a request is
// created or its status changes and are never updated or deleted.
type StatusHistoryRepo struct {
    db *sql.DB
}

// NewStatusHistoryRepo returns a new StatusHistoryRepo bound to the
// given database.
func NewStatusHistoryRepo(db *sql.DB) *StatusHistoryRepo { return &StatusHistoryRepo{db: db} }

// AppendTx inserts one history entry within the transaction and
// populates the generated ID and database-assigned timestamp.
func (r *StatusHistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, entry *model.StatusHistory) error {
    const q = `INSERT INTO status_history (request_id, previous_status, new_status, notes)
               VALUES (?, ?, ?, ?)`
    var prev interface{}
    if entry.PreviousStatus != nil {
        prev = string(*entry.PreviousStatus)
    }
    var notes interface{}
    if entry.Notes != nil {
        notes = *entry.Notes
    }
    result, err := tx.ExecContext(ctx, q, entry.RequestID, prev, string(entry.NewStatus), notes)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    entry.ID = uint64(id)
    const sel = `SELECT timestamp FROM status_history WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, entry.ID).Scan(&entry.Timestamp)
}

// ListByRequest returns all history entries for one request, newest
// first.  Entries with equal timestamps order by descending id, so
// ties break by insertion order.
func (r *StatusHistoryRepo) ListByRequest(ctx context.Context, requestID uint64) ([]model.StatusHistory, error) {
    const q = `SELECT id, request_id, previous_status, new_status, timestamp, notes
               FROM status_history
               WHERE request_id = ?
               ORDER BY timestamp DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, requestID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    entries := make([]model.StatusHistory, 0)
    for rows.Next() {
        entry, err := scanHistory(rows)
        if err != nil {
            return nil, err
        }
        entries = append(entries, entry)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return entries, nil
}

// ListByRequests loads history for many requests in one query, keyed
// by request id, with each request's entries newest first.
func (r *StatusHistoryRepo) ListByRequests(ctx context.Context, requestIDs []uint64) (map[uint64][]model.StatusHistory, error) {
    byRequest := make(map[uint64][]model.StatusHistory, len(requestIDs))
    if len(requestIDs) == 0 {
        return byRequest, nil
    }
    placeholders := make([]string, 0, len(requestIDs))
    args := make([]interface{}, 0, len(requestIDs))
    for _, id := range requestIDs {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    q := `SELECT id, request_id, previous_status, new_status, timestamp, notes
          FROM status_history
          WHERE request_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY request_id, timestamp DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        entry, err := scanHistory(rows)
        if err != nil {
            return nil, err
        }
        byRequest[entry.RequestID] = append(byRequest[entry.RequestID], entry)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return byRequest, nil
}

func scanHistory(rows *sql.Rows) (model.StatusHistory, error) {
    var (
        entry model.StatusHistory
        prev  sql.NullString
        notes sql.NullString
    )
    if err := rows.Scan(&entry.ID, &entry.RequestID, &prev, &entry.NewStatus, &entry.Timestamp, &notes); err != nil {
        return model.StatusHistory{}, err
    }
    if prev.Valid {
        s := model.Status(prev.String)
        entry.PreviousStatus = &s
    }
    if notes.Valid {
        v := notes.String
        entry.Notes = &v
    }
    return entry, nil
}
