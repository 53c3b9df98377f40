package service

import (
    "context"
    "time"

    "github.com/zeremonos/waste-collection/internal/model"
)

// Store is the persistence boundary of the request lifecycle service.
// Read operations run outside any transaction; every mutation goes
// through InTx so that the request row change and its audit trail
// entry are committed together or not at all.  The MySQL
// implementation lives in internal/repository.
type Store interface {
    // GetByToken loads a request and its full history by access
    // token.  Returns ErrNotFound when no request has the token.
    GetByToken(ctx context.Context, token string) (*model.Request, error)
    // GetByID loads a request and its full history by internal id.
    // Returns ErrNotFound when the id is unknown.
    GetByID(ctx context.Context, id uint64) (*model.Request, error)
    // List returns all requests ordered newest-created-first.  When
    // municipalityName is non-empty only exact matches are returned.
    List(ctx context.Context, municipalityName string) ([]*model.Request, error)
    // InTx runs fn inside a single transaction and commits when fn
    // returns nil, rolling back otherwise.
    InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of operations available inside one unit of work.
// Lock methods must hold the request row until the transaction ends
// so that concurrent updates of the same request serialize, and
// CountActive must take part in the same locking so that two
// concurrent creations for one (municipality, date) pair cannot both
// observe a free slot.
type Tx interface {
    // CountActive counts requests for the municipality and preferred
    // date whose status is neither CANCELLED nor COMPLETED.
    CountActive(ctx context.Context, municipalityName string, date time.Time) (int64, error)
    // InsertRequest persists a new request and populates its ID and
    // timestamps.
    InsertRequest(ctx context.Context, req *model.Request) error
    // LockByToken loads a request row by token and locks it for the
    // remainder of the transaction.  History is not loaded.
    LockByToken(ctx context.Context, token string) (*model.Request, error)
    // LockByID is LockByToken keyed by internal id.
    LockByID(ctx context.Context, id uint64) (*model.Request, error)
    // UpdateStatus sets the request's status and bumps updated_at.
    UpdateStatus(ctx context.Context, id uint64, status model.Status) error
    // AppendHistory writes one immutable audit trail entry and
    // populates its ID and timestamp.
    AppendHistory(ctx context.Context, entry *model.StatusHistory) error
}
