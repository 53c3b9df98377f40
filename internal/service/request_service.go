package service

import (
    "context"
    "log"
    "time"

    "github.com/zeremonos/waste-collection/internal/model"
    "github.com/zeremonos/waste-collection/internal/queue"
    "github.com/zeremonos/waste-collection/internal/utils"
)

// AuditPublisher emits an audit event after a committed mutation.
// Publishing is best-effort: a broker failure never fails the request,
// because the status_history table written in the same transaction is
// the source of truth.
type AuditPublisher interface {
    Publish(ctx context.Context, ev queue.AuditEvent) error
}

// CreateInput carries the citizen-supplied fields for a new request.
// Structural validation (formats, lengths, required fields) happens in
// the HTTP layer; the service enforces business rules only.  The
// municipality name and code are trusted as given: the HTTP layer
// resolves them against the municipality directory before calling.
type CreateInput struct {
    MunicipalityCode  string
    MunicipalityName  string
    CitizenName       string
    CitizenEmail      *string
    CitizenPhone      *string
    PickupAddress     string
    ItemDescription   string
    PreferredDate     time.Time
    PreferredTimeSlot model.TimeSlot
}

// RequestService orchestrates the request lifecycle.  Every mutation
// runs in one transaction: the admission count or transition check,
// the request row change and the history append commit together.
type RequestService struct {
    store      Store
    events     AuditPublisher
    dailyLimit int
    opTimeout  time.Duration
    now        func() time.Time
}

// NewRequestService builds a RequestService.  dailyLimit caps the
// number of active requests per (municipality, preferred date) pair;
// opTimeout bounds every storage call.  events may be nil to disable
// audit publishing.
func NewRequestService(store Store, events AuditPublisher, dailyLimit int, opTimeout time.Duration) *RequestService {
    if store == nil {
        panic("nil store passed to NewRequestService")
    }
    if dailyLimit < 1 {
        dailyLimit = 1
    }
    if opTimeout <= 0 {
        opTimeout = 10 * time.Second
    }
    return &RequestService{
        store:      store,
        events:     events,
        dailyLimit: dailyLimit,
        opTimeout:  opTimeout,
        now:        time.Now,
    }
}

// Create admits a new request.  It rejects preferred dates in the
// past, enforces the daily limit for the (municipality, date) pair
// inside the same transaction as the insert, assigns the access
// token, and records the initial RECEIVED history entry.
func (s *RequestService) Create(ctx context.Context, in CreateInput) (*model.Request, error) {
    ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
    defer cancel()

    today := dateOnly(s.now().UTC())
    if in.PreferredDate.Before(today) {
        return nil, businessErrorf("Preferred date cannot be in the past")
    }

    req := &model.Request{
        Token:             utils.NewToken(),
        MunicipalityCode:  in.MunicipalityCode,
        MunicipalityName:  in.MunicipalityName,
        CitizenName:       in.CitizenName,
        CitizenEmail:      in.CitizenEmail,
        CitizenPhone:      in.CitizenPhone,
        PickupAddress:     in.PickupAddress,
        ItemDescription:   in.ItemDescription,
        PreferredDate:     dateOnly(in.PreferredDate),
        PreferredTimeSlot: in.PreferredTimeSlot,
        Status:            model.StatusReceived,
    }

    err := s.store.InTx(ctx, func(tx Tx) error {
        active, err := tx.CountActive(ctx, in.MunicipalityName, req.PreferredDate)
        if err != nil {
            return err
        }
        if active >= int64(s.dailyLimit) {
            return businessErrorf("Daily limit reached for municipality %s on %s. Maximum %d requests allowed per day.",
                in.MunicipalityName, req.PreferredDate.Format("2006-01-02"), s.dailyLimit)
        }
        if err := tx.InsertRequest(ctx, req); err != nil {
            return err
        }
        notes := "Initial request created"
        entry := &model.StatusHistory{
            RequestID: req.ID,
            NewStatus: model.StatusReceived,
            Notes:     &notes,
        }
        if err := tx.AppendHistory(ctx, entry); err != nil {
            return err
        }
        req.History = []model.StatusHistory{*entry}
        return nil
    })
    if err != nil {
        return nil, err
    }

    s.publish(ctx, queue.AuditEvent{
        Action:           queue.ActionRequestCreated,
        RequestID:        req.ID,
        Token:            req.Token,
        MunicipalityName: req.MunicipalityName,
        NewStatus:        string(model.StatusReceived),
        OccurredAt:       s.now().UTC().Format(time.RFC3339),
    })
    log.Printf("service request created: id=%d municipality=%s date=%s", req.ID, req.MunicipalityName, req.PreferredDate.Format("2006-01-02"))
    return req, nil
}

// GetByToken loads a request with its full history by access token.
func (s *RequestService) GetByToken(ctx context.Context, token string) (*model.Request, error) {
    ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
    defer cancel()
    return s.store.GetByToken(ctx, token)
}

// CancelByToken cancels a request on behalf of the citizen holding its
// token.  Only the narrow citizen rules apply: a completed request
// cannot be cancelled and a cancelled one cannot be cancelled again.
func (s *RequestService) CancelByToken(ctx context.Context, token string) error {
    ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
    defer cancel()

    var ev queue.AuditEvent
    err := s.store.InTx(ctx, func(tx Tx) error {
        req, err := tx.LockByToken(ctx, token)
        if err != nil {
            return err
        }
        if req.Status == model.StatusCompleted {
            return businessErrorf("Cannot cancel a completed request")
        }
        if req.Status == model.StatusCancelled {
            return businessErrorf("Request is already cancelled")
        }
        prev := req.Status
        if err := tx.UpdateStatus(ctx, req.ID, model.StatusCancelled); err != nil {
            return err
        }
        notes := "Cancelled by citizen"
        if err := tx.AppendHistory(ctx, &model.StatusHistory{
            RequestID:      req.ID,
            PreviousStatus: &prev,
            NewStatus:      model.StatusCancelled,
            Notes:          &notes,
        }); err != nil {
            return err
        }
        ev = queue.AuditEvent{
            Action:           queue.ActionRequestCancelled,
            RequestID:        req.ID,
            Token:            req.Token,
            MunicipalityName: req.MunicipalityName,
            PreviousStatus:   string(prev),
            NewStatus:        string(model.StatusCancelled),
            Notes:            notes,
        }
        return nil
    })
    if err != nil {
        return err
    }

    ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
    s.publish(ctx, ev)
    log.Printf("service request cancelled: token=%s", token)
    return nil
}

// UpdateStatus moves a request to newStatus on behalf of staff,
// validating the transition against the full status graph.  notes may
// be nil.  The returned request reflects the committed state,
// including the new history entry.
func (s *RequestService) UpdateStatus(ctx context.Context, id uint64, newStatus model.Status, notes *string) (*model.Request, error) {
    ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
    defer cancel()

    var ev queue.AuditEvent
    err := s.store.InTx(ctx, func(tx Tx) error {
        req, err := tx.LockByID(ctx, id)
        if err != nil {
            return err
        }
        if err := validateTransition(req.Status, newStatus); err != nil {
            return err
        }
        prev := req.Status
        if err := tx.UpdateStatus(ctx, id, newStatus); err != nil {
            return err
        }
        if err := tx.AppendHistory(ctx, &model.StatusHistory{
            RequestID:      id,
            PreviousStatus: &prev,
            NewStatus:      newStatus,
            Notes:          notes,
        }); err != nil {
            return err
        }
        ev = queue.AuditEvent{
            Action:           queue.ActionStatusUpdated,
            RequestID:        id,
            Token:            req.Token,
            MunicipalityName: req.MunicipalityName,
            PreviousStatus:   string(prev),
            NewStatus:        string(newStatus),
        }
        if notes != nil {
            ev.Notes = *notes
        }
        return nil
    })
    if err != nil {
        return nil, err
    }

    ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
    s.publish(ctx, ev)
    log.Printf("service request status updated: id=%d status=%s", id, newStatus)
    return s.store.GetByID(ctx, id)
}

// List returns all requests, newest first, optionally filtered by
// exact municipality name.
func (s *RequestService) List(ctx context.Context, municipalityName string) ([]*model.Request, error) {
    ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
    defer cancel()
    return s.store.List(ctx, municipalityName)
}

// validateTransition applies the staff-facing transition policy.  The
// terminal and reopen cases come first so they produce their own
// messages instead of the generic one.
func validateTransition(current, next model.Status) error {
    if current == model.StatusCompleted {
        return businessErrorf("Cannot change status of completed request")
    }
    if current == model.StatusCancelled && next != model.StatusReceived {
        return businessErrorf("Can only reopen cancelled requests to RECEIVED status")
    }
    if !model.CanTransition(current, next) {
        return businessErrorf("Invalid status transition from %s to %s", current, next)
    }
    return nil
}

func (s *RequestService) publish(ctx context.Context, ev queue.AuditEvent) {
    if s.events == nil {
        return
    }
    if err := s.events.Publish(ctx, ev); err != nil {
        log.Printf("audit event publish failed: action=%s request_id=%d: %v", ev.Action, ev.RequestID, err)
    }
}

func dateOnly(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
