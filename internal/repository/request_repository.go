package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/zeremonos/waste-collection/internal/model"
)

// RequestRepo provides data access to the service_requests table.
// Methods suffixed Tx operate within a caller-supplied transaction;
// the caller commits or rolls back.  All timestamps are stored in UTC.
type RequestRepo struct {
    db *sql.DB
}

// NewRequestRepo returns a new RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *RequestRepo) DB() *sql.DB { return r.db }

const requestColumns = `id, token, municipality_code, municipality_name, citizen_name,
       citizen_email, citizen_phone, pickup_address, item_description,
       preferred_date, preferred_time_slot, status, created_at, updated_at`

// CreateTx inserts a new request within the transaction and populates
// the generated ID plus database-assigned timestamps on req.
func (r *RequestRepo) CreateTx(ctx context.Context, tx *sql.Tx, req *model.Request) error {
    const q = `INSERT INTO service_requests
        (token, municipality_code, municipality_name, citizen_name, citizen_email,
         citizen_phone, pickup_address, item_description, preferred_date,
         preferred_time_slot, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        req.Token, req.MunicipalityCode, req.MunicipalityName, req.CitizenName,
        nullableString(req.CitizenEmail), nullableString(req.CitizenPhone),
        req.PickupAddress, req.ItemDescription,
        req.PreferredDate.UTC().Format("2006-01-02"),
        string(req.PreferredTimeSlot), string(req.Status),
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    req.ID = uint64(id)
    // Query back the row to populate timestamps and defaults.
    const sel = `SELECT created_at, updated_at FROM service_requests WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, req.ID).Scan(&req.CreatedAt, &req.UpdatedAt)
}

// GetByToken returns the request with the given access token, without
// its history.  sql.ErrNoRows is returned when the token is unknown.
func (r *RequestRepo) GetByToken(ctx context.Context, token string) (*model.Request, error) {
    const q = `SELECT ` + requestColumns + ` FROM service_requests WHERE token = ?`
    return scanRequest(r.db.QueryRowContext(ctx, q, token))
}

// GetByID returns the request with the given internal id, without its
// history.  sql.ErrNoRows is returned when the id is unknown.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (*model.Request, error) {
    const q = `SELECT ` + requestColumns + ` FROM service_requests WHERE id = ?`
    return scanRequest(r.db.QueryRowContext(ctx, q, id))
}

// LockByTokenTx loads the request row by token with FOR UPDATE so the
// row stays locked until the transaction ends.
func (r *RequestRepo) LockByTokenTx(ctx context.Context, tx *sql.Tx, token string) (*model.Request, error) {
    const q = `SELECT ` + requestColumns + ` FROM service_requests WHERE token = ? FOR UPDATE`
    return scanRequest(tx.QueryRowContext(ctx, q, token))
}

// LockByIDTx loads the request row by id with FOR UPDATE.
func (r *RequestRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Request, error) {
    const q = `SELECT ` + requestColumns + ` FROM service_requests WHERE id = ? FOR UPDATE`
    return scanRequest(tx.QueryRowContext(ctx, q, id))
}

// UpdateStatusTx sets the status of a request.  updated_at is bumped
// by the database (ON UPDATE CURRENT_TIMESTAMP).
func (r *RequestRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.Status) error {
    const q = `UPDATE service_requests SET status = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, string(status), id)
    return err
}

// CountActiveTx counts requests for the municipality and preferred
// date that still occupy a daily-limit slot.  The locking read makes
// the count part of the surrounding create transaction: a concurrent
// create for the same (municipality, date) pair blocks on the index
// range until this transaction commits, closing the check-then-act
// race on the admission limit.
func (r *RequestRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, municipalityName string, date time.Time) (int64, error) {
    const q = `SELECT COUNT(*) FROM service_requests
               WHERE municipality_name = ? AND preferred_date = ?
                 AND status NOT IN ('CANCELLED', 'COMPLETED')
               FOR UPDATE`
    var n int64
    err := tx.QueryRowContext(ctx, q, municipalityName, date.UTC().Format("2006-01-02")).Scan(&n)
    return n, err
}

// List returns requests ordered by creation time descending.  When
// municipalityName is non-empty only exact matches are returned.
// History is not loaded here.
func (r *RequestRepo) List(ctx context.Context, municipalityName string) ([]*model.Request, error) {
    q := `SELECT ` + requestColumns + ` FROM service_requests ORDER BY created_at DESC, id DESC`
    args := []interface{}{}
    if municipalityName != "" {
        q = `SELECT ` + requestColumns + ` FROM service_requests
             WHERE municipality_name = ? ORDER BY created_at DESC, id DESC`
        args = append(args, municipalityName)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    requests := make([]*model.Request, 0)
    for rows.Next() {
        req, err := scanRequest(rows)
        if err != nil {
            return nil, err
        }
        requests = append(requests, req)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return requests, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*model.Request, error) {
    var (
        req    model.Request
        email  sql.NullString
        phone  sql.NullString
        slot   string
        status string
    )
    err := row.Scan(
        &req.ID, &req.Token, &req.MunicipalityCode, &req.MunicipalityName,
        &req.CitizenName, &email, &phone, &req.PickupAddress,
        &req.ItemDescription, &req.PreferredDate, &slot, &status,
        &req.CreatedAt, &req.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if email.Valid {
        v := email.String
        req.CitizenEmail = &v
    }
    if phone.Valid {
        v := phone.String
        req.CitizenPhone = &v
    }
    req.PreferredTimeSlot = model.TimeSlot(slot)
    req.Status = model.Status(status)
    return &req, nil
}

func nullableString(s *string) interface{} {
    if s == nil || *s == "" {
        return nil
    }
    return *s
}
