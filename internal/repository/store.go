// Package repository implements MySQL persistence for service
// requests and their status history.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/zeremonos/waste-collection/internal/model"
    "github.com/zeremonos/waste-collection/internal/service"
)

// Store adapts the table repositories to the service.Store boundary.
// Reads run against the pool; InTx opens one transaction and hands
// the service a view whose lock methods pin request rows until commit.
type Store struct {
    db       *sql.DB
    requests *RequestRepo
    history  *StatusHistoryRepo
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store {
    return &Store{
        db:       db,
        requests: NewRequestRepo(db),
        history:  NewStatusHistoryRepo(db),
    }
}

// GetByToken implements service.Store.
func (s *Store) GetByToken(ctx context.Context, token string) (*model.Request, error) {
    req, err := s.requests.GetByToken(ctx, token)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, service.ErrNotFound
        }
        return nil, err
    }
    req.History, err = s.history.ListByRequest(ctx, req.ID)
    if err != nil {
        return nil, err
    }
    return req, nil
}

// GetByID implements service.Store.
func (s *Store) GetByID(ctx context.Context, id uint64) (*model.Request, error) {
    req, err := s.requests.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, service.ErrNotFound
        }
        return nil, err
    }
    req.History, err = s.history.ListByRequest(ctx, req.ID)
    if err != nil {
        return nil, err
    }
    return req, nil
}

// List implements service.Store.  History for all returned requests is
// loaded in a single query.
func (s *Store) List(ctx context.Context, municipalityName string) ([]*model.Request, error) {
    requests, err := s.requests.List(ctx, municipalityName)
    if err != nil {
        return nil, err
    }
    if len(requests) == 0 {
        return requests, nil
    }
    ids := make([]uint64, 0, len(requests))
    for _, req := range requests {
        ids = append(ids, req.ID)
    }
    history, err := s.history.ListByRequests(ctx, ids)
    if err != nil {
        return nil, err
    }
    for _, req := range requests {
        if entries, ok := history[req.ID]; ok {
            req.History = entries
        } else {
            req.History = []model.StatusHistory{}
        }
    }
    return requests, nil
}

// InTx implements service.Store.
func (s *Store) InTx(ctx context.Context, fn func(service.Tx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&storeTx{store: s, tx: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// storeTx is the transactional view handed to the service.
type storeTx struct {
    store *Store
    tx    *sql.Tx
}

func (t *storeTx) CountActive(ctx context.Context, municipalityName string, date time.Time) (int64, error) {
    return t.store.requests.CountActiveTx(ctx, t.tx, municipalityName, date)
}

func (t *storeTx) InsertRequest(ctx context.Context, req *model.Request) error {
    return t.store.requests.CreateTx(ctx, t.tx, req)
}

func (t *storeTx) LockByToken(ctx context.Context, token string) (*model.Request, error) {
    req, err := t.store.requests.LockByTokenTx(ctx, t.tx, token)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, service.ErrNotFound
    }
    return req, err
}

func (t *storeTx) LockByID(ctx context.Context, id uint64) (*model.Request, error) {
    req, err := t.store.requests.LockByIDTx(ctx, t.tx, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, service.ErrNotFound
    }
    return req, err
}

func (t *storeTx) UpdateStatus(ctx context.Context, id uint64, status model.Status) error {
    return t.store.requests.UpdateStatusTx(ctx, t.tx, id, status)
}

func (t *storeTx) AppendHistory(ctx context.Context, entry *model.StatusHistory) error {
    return t.store.history.AppendTx(ctx, t.tx, entry)
}
