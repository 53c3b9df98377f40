package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/zeremonos/waste-collection/internal/model"
    "github.com/zeremonos/waste-collection/internal/queue"
)

// fakeStore is an in-memory service.Store with commit/rollback
// semantics: mutations made inside InTx are discarded when fn fails.
type fakeStore struct {
    nextRequestID uint64
    nextHistoryID uint64
    requests      map[uint64]*model.Request
    history       []model.StatusHistory
    clock         time.Time

    appendErr error // injected AppendHistory failure
}

func newFakeStore() *fakeStore {
    return &fakeStore{
        requests: make(map[uint64]*model.Request),
        clock:    time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
    }
}

func (f *fakeStore) tick() time.Time {
    f.clock = f.clock.Add(time.Second)
    return f.clock
}

func (f *fakeStore) snapshot() (map[uint64]*model.Request, []model.StatusHistory) {
    reqs := make(map[uint64]*model.Request, len(f.requests))
    for id, r := range f.requests {
        cp := *r
        reqs[id] = &cp
    }
    hist := make([]model.StatusHistory, len(f.history))
    copy(hist, f.history)
    return reqs, hist
}

func (f *fakeStore) InTx(_ context.Context, fn func(Tx) error) error {
    reqs, hist := f.snapshot()
    if err := fn(&fakeTx{store: f}); err != nil {
        f.requests, f.history = reqs, hist
        return err
    }
    return nil
}

func (f *fakeStore) GetByToken(_ context.Context, token string) (*model.Request, error) {
    for _, r := range f.requests {
        if r.Token == token {
            return f.withHistory(r), nil
        }
    }
    return nil, ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Request, error) {
    r, ok := f.requests[id]
    if !ok {
        return nil, ErrNotFound
    }
    return f.withHistory(r), nil
}

func (f *fakeStore) List(_ context.Context, municipalityName string) ([]*model.Request, error) {
    out := make([]*model.Request, 0)
    // ids ascend with creation, so walk them descending for newest first
    for id := f.nextRequestID; id >= 1; id-- {
        r, ok := f.requests[id]
        if !ok {
            continue
        }
        if municipalityName != "" && r.MunicipalityName != municipalityName {
            continue
        }
        out = append(out, f.withHistory(r))
    }
    return out, nil
}

func (f *fakeStore) withHistory(r *model.Request) *model.Request {
    cp := *r
    cp.History = make([]model.StatusHistory, 0)
    for i := len(f.history) - 1; i >= 0; i-- {
        if f.history[i].RequestID == r.ID {
            cp.History = append(cp.History, f.history[i])
        }
    }
    return &cp
}

type fakeTx struct {
    store *fakeStore
}

func (t *fakeTx) CountActive(_ context.Context, municipalityName string, date time.Time) (int64, error) {
    var n int64
    for _, r := range t.store.requests {
        if r.MunicipalityName == municipalityName && r.PreferredDate.Equal(date) && r.Active() {
            n++
        }
    }
    return n, nil
}

func (t *fakeTx) InsertRequest(_ context.Context, req *model.Request) error {
    t.store.nextRequestID++
    req.ID = t.store.nextRequestID
    req.CreatedAt = t.store.tick()
    req.UpdatedAt = req.CreatedAt
    cp := *req
    cp.History = nil
    t.store.requests[req.ID] = &cp
    return nil
}

func (t *fakeTx) LockByToken(_ context.Context, token string) (*model.Request, error) {
    for _, r := range t.store.requests {
        if r.Token == token {
            cp := *r
            return &cp, nil
        }
    }
    return nil, ErrNotFound
}

func (t *fakeTx) LockByID(_ context.Context, id uint64) (*model.Request, error) {
    r, ok := t.store.requests[id]
    if !ok {
        return nil, ErrNotFound
    }
    cp := *r
    return &cp, nil
}

func (t *fakeTx) UpdateStatus(_ context.Context, id uint64, status model.Status) error {
    r, ok := t.store.requests[id]
    if !ok {
        return ErrNotFound
    }
    r.Status = status
    r.UpdatedAt = t.store.tick()
    return nil
}

func (t *fakeTx) AppendHistory(_ context.Context, entry *model.StatusHistory) error {
    if t.store.appendErr != nil {
        return t.store.appendErr
    }
    t.store.nextHistoryID++
    entry.ID = t.store.nextHistoryID
    entry.Timestamp = t.store.tick()
    t.store.history = append(t.store.history, *entry)
    return nil
}

// recordingPublisher captures audit events in order.
type recordingPublisher struct {
    events []queue.AuditEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.AuditEvent) error {
    p.events = append(p.events, ev)
    return nil
}

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, pub *recordingPublisher, limit int) *RequestService {
    var events AuditPublisher
    if pub != nil {
        events = pub
    }
    svc := NewRequestService(store, events, limit, time.Minute)
    svc.now = func() time.Time { return testNow }
    return svc
}

func day(offset int) time.Time {
    return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func input(municipality string, date time.Time) CreateInput {
    return CreateInput{
        MunicipalityCode:  "LISB12",
        MunicipalityName:  municipality,
        CitizenName:       "Joao Silva",
        PickupAddress:     "Rua das Flores 10",
        ItemDescription:   "Old sofa and two chairs",
        PreferredDate:     date,
        PreferredTimeSlot: model.SlotMorning,
    }
}

func mustCreate(t *testing.T, svc *RequestService, in CreateInput) *model.Request {
    t.Helper()
    req, err := svc.Create(context.Background(), in)
    if err != nil {
        t.Fatalf("unexpected create error: %v", err)
    }
    return req
}

func TestCreateAssignsTokenStatusAndInitialHistory(t *testing.T) {
    store := newFakeStore()
    pub := &recordingPublisher{}
    svc := newTestService(store, pub, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))

    if req.ID == 0 {
        t.Error("expected assigned id")
    }
    if len(req.Token) != 36 {
        t.Errorf("expected 36 character token, got %q", req.Token)
    }
    if req.Status != model.StatusReceived {
        t.Errorf("expected status RECEIVED, got %s", req.Status)
    }
    if len(req.History) != 1 {
        t.Fatalf("expected 1 history entry, got %d", len(req.History))
    }
    entry := req.History[0]
    if entry.PreviousStatus != nil {
        t.Errorf("expected nil previous status, got %v", *entry.PreviousStatus)
    }
    if entry.NewStatus != model.StatusReceived {
        t.Errorf("expected RECEIVED history entry, got %s", entry.NewStatus)
    }
    if entry.Notes == nil || *entry.Notes != "Initial request created" {
        t.Errorf("unexpected initial notes: %v", entry.Notes)
    }
    if len(pub.events) != 1 || pub.events[0].Action != queue.ActionRequestCreated {
        t.Errorf("expected one CREATE_REQUEST event, got %+v", pub.events)
    }
}

func TestCreateRejectsPastDate(t *testing.T) {
    store := newFakeStore()
    pub := &recordingPublisher{}
    svc := newTestService(store, pub, 10)

    _, err := svc.Create(context.Background(), input("Lisboa", day(-1)))
    if !IsBusiness(err) {
        t.Fatalf("expected business error, got %v", err)
    }
    if err.Error() != "Preferred date cannot be in the past" {
        t.Errorf("unexpected message: %q", err.Error())
    }
    if len(store.requests) != 0 {
        t.Error("expected no request persisted")
    }
    if len(pub.events) != 0 {
        t.Error("expected no events")
    }

    // Today itself is acceptable.
    if _, err := svc.Create(context.Background(), input("Lisboa", day(0))); err != nil {
        t.Errorf("expected same-day create to succeed, got %v", err)
    }
}

func TestCreateEnforcesDailyLimitPerMunicipalityAndDate(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    for i := 0; i < 10; i++ {
        mustCreate(t, svc, input("Lisboa", day(5)))
    }

    _, err := svc.Create(context.Background(), input("Lisboa", day(5)))
    if !IsBusiness(err) {
        t.Fatalf("expected business error, got %v", err)
    }
    want := "Daily limit reached for municipality Lisboa on 2026-09-05. Maximum 10 requests allowed per day."
    if err.Error() != want {
        t.Errorf("unexpected message:\n got %q\nwant %q", err.Error(), want)
    }

    // Other municipality or other date on the same day is unaffected.
    mustCreate(t, svc, input("Porto", day(5)))
    mustCreate(t, svc, input("Lisboa", day(6)))
}

func TestCreateQuotaExcludesCancelledAndCompleted(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    tokens := make([]string, 0, 10)
    for i := 0; i < 10; i++ {
        tokens = append(tokens, mustCreate(t, svc, input("Lisboa", day(5))).Token)
    }
    for _, tok := range tokens {
        if err := svc.CancelByToken(context.Background(), tok); err != nil {
            t.Fatalf("unexpected cancel error: %v", err)
        }
    }

    if _, err := svc.Create(context.Background(), input("Lisboa", day(5))); err != nil {
        t.Errorf("expected create to succeed with only cancelled requests, got %v", err)
    }
}

func TestCancelByToken(t *testing.T) {
    store := newFakeStore()
    pub := &recordingPublisher{}
    svc := newTestService(store, pub, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))

    if err := svc.CancelByToken(context.Background(), req.Token); err != nil {
        t.Fatalf("unexpected cancel error: %v", err)
    }

    got, err := svc.GetByToken(context.Background(), req.Token)
    if err != nil {
        t.Fatalf("unexpected fetch error: %v", err)
    }
    if got.Status != model.StatusCancelled {
        t.Errorf("expected CANCELLED, got %s", got.Status)
    }
    if len(got.History) != 2 {
        t.Fatalf("expected 2 history entries, got %d", len(got.History))
    }
    newest := got.History[0]
    if newest.PreviousStatus == nil || *newest.PreviousStatus != model.StatusReceived {
        t.Errorf("unexpected previous status: %v", newest.PreviousStatus)
    }
    if newest.NewStatus != model.StatusCancelled {
        t.Errorf("expected CANCELLED entry, got %s", newest.NewStatus)
    }
    if newest.Notes == nil || *newest.Notes != "Cancelled by citizen" {
        t.Errorf("unexpected notes: %v", newest.Notes)
    }

    // Second cancel fails with its own message.
    err = svc.CancelByToken(context.Background(), req.Token)
    if !IsBusiness(err) || err.Error() != "Request is already cancelled" {
        t.Errorf("expected already-cancelled error, got %v", err)
    }
    if got, _ := svc.GetByToken(context.Background(), req.Token); len(got.History) != 2 {
        t.Error("failed cancel must not grow the history")
    }
}

func TestCancelRejectsCompletedAndUnknown(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))
    advance(t, svc, req.ID, model.StatusAssigned, model.StatusInProgress, model.StatusCompleted)

    err := svc.CancelByToken(context.Background(), req.Token)
    if !IsBusiness(err) || err.Error() != "Cannot cancel a completed request" {
        t.Errorf("expected completed-cancel error, got %v", err)
    }

    if err := svc.CancelByToken(context.Background(), "no-such-token"); !errors.Is(err, ErrNotFound) {
        t.Errorf("expected ErrNotFound, got %v", err)
    }
}

func TestUpdateStatusRecordsHistoryNewestFirst(t *testing.T) {
    store := newFakeStore()
    pub := &recordingPublisher{}
    svc := newTestService(store, pub, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))

    notes := "team A"
    updated, err := svc.UpdateStatus(context.Background(), req.ID, model.StatusAssigned, &notes)
    if err != nil {
        t.Fatalf("unexpected update error: %v", err)
    }
    if updated.Status != model.StatusAssigned {
        t.Errorf("expected ASSIGNED, got %s", updated.Status)
    }
    if len(updated.History) != 2 {
        t.Fatalf("expected 2 history entries, got %d", len(updated.History))
    }
    if updated.History[0].NewStatus != model.StatusAssigned || updated.History[1].NewStatus != model.StatusReceived {
        t.Errorf("expected newest-first ordering, got %s then %s",
            updated.History[0].NewStatus, updated.History[1].NewStatus)
    }
    if updated.History[0].Notes == nil || *updated.History[0].Notes != "team A" {
        t.Errorf("unexpected notes: %v", updated.History[0].Notes)
    }

    updated, err = svc.UpdateStatus(context.Background(), req.ID, model.StatusInProgress, nil)
    if err != nil {
        t.Fatalf("unexpected update error: %v", err)
    }
    if len(updated.History) != 3 {
        t.Fatalf("create plus two updates must yield 3 entries, got %d", len(updated.History))
    }

    if len(pub.events) != 3 {
        t.Errorf("expected 3 audit events, got %d", len(pub.events))
    }
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))
    advance(t, svc, req.ID, model.StatusAssigned)

    // Completion is only reachable from IN_PROGRESS.
    _, err := svc.UpdateStatus(context.Background(), req.ID, model.StatusCompleted, nil)
    if !IsBusiness(err) || err.Error() != "Invalid status transition from ASSIGNED to COMPLETED" {
        t.Errorf("expected generic transition error, got %v", err)
    }

    advance(t, svc, req.ID, model.StatusInProgress, model.StatusCompleted)

    // Completed requests reject every target with the dedicated message.
    for _, target := range []model.Status{model.StatusReceived, model.StatusAssigned, model.StatusInProgress, model.StatusCancelled} {
        _, err := svc.UpdateStatus(context.Background(), req.ID, target, nil)
        if !IsBusiness(err) || err.Error() != "Cannot change status of completed request" {
            t.Errorf("target %s: expected completed-request error, got %v", target, err)
        }
    }
}

func TestUpdateStatusReopensCancelledOnlyToReceived(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    req := mustCreate(t, svc, input("Lisboa", day(5)))
    if err := svc.CancelByToken(context.Background(), req.Token); err != nil {
        t.Fatalf("unexpected cancel error: %v", err)
    }

    _, err := svc.UpdateStatus(context.Background(), req.ID, model.StatusAssigned, nil)
    if !IsBusiness(err) || err.Error() != "Can only reopen cancelled requests to RECEIVED status" {
        t.Errorf("expected reopen error, got %v", err)
    }

    reopened, err := svc.UpdateStatus(context.Background(), req.ID, model.StatusReceived, nil)
    if err != nil {
        t.Fatalf("unexpected reopen error: %v", err)
    }
    if reopened.Status != model.StatusReceived {
        t.Errorf("expected RECEIVED after reopen, got %s", reopened.Status)
    }
    if len(reopened.History) != 3 {
        t.Errorf("expected 3 history entries after reopen, got %d", len(reopened.History))
    }
}

func TestLookupsReturnNotFound(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    if _, err := svc.GetByToken(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
        t.Errorf("expected ErrNotFound, got %v", err)
    }
    if _, err := svc.UpdateStatus(context.Background(), 99, model.StatusAssigned, nil); !errors.Is(err, ErrNotFound) {
        t.Errorf("expected ErrNotFound, got %v", err)
    }
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    first := mustCreate(t, svc, input("Lisboa", day(5)))
    mustCreate(t, svc, input("Porto", day(5)))
    last := mustCreate(t, svc, input("Lisboa", day(6)))

    all, err := svc.List(context.Background(), "")
    if err != nil {
        t.Fatalf("unexpected list error: %v", err)
    }
    if len(all) != 3 {
        t.Fatalf("expected 3 requests, got %d", len(all))
    }
    if all[0].ID != last.ID || all[2].ID != first.ID {
        t.Error("expected newest-created-first ordering")
    }

    lisboa, err := svc.List(context.Background(), "Lisboa")
    if err != nil {
        t.Fatalf("unexpected list error: %v", err)
    }
    if len(lisboa) != 2 {
        t.Errorf("expected 2 Lisboa requests, got %d", len(lisboa))
    }

    empty, err := svc.List(context.Background(), "Faro")
    if err != nil {
        t.Fatalf("unexpected list error: %v", err)
    }
    if len(empty) != 0 {
        t.Errorf("expected empty result, got %d", len(empty))
    }
}

func TestCreateAbortsWhenAuditWriteFails(t *testing.T) {
    store := newFakeStore()
    svc := newTestService(store, nil, 10)

    store.appendErr = errors.New("history insert failed")
    if _, err := svc.Create(context.Background(), input("Lisboa", day(5))); err == nil {
        t.Fatal("expected create to fail when history cannot be written")
    }
    if len(store.requests) != 0 || len(store.history) != 0 {
        t.Error("expected rollback to leave no partial state")
    }

    store.appendErr = nil
    req := mustCreate(t, svc, input("Lisboa", day(5)))

    store.appendErr = errors.New("history insert failed")
    if _, err := svc.UpdateStatus(context.Background(), req.ID, model.StatusAssigned, nil); err == nil {
        t.Fatal("expected update to fail when history cannot be written")
    }
    got, _ := svc.GetByToken(context.Background(), req.Token)
    if got.Status != model.StatusReceived || len(got.History) != 1 {
        t.Error("expected rollback to preserve the original status and history")
    }
}

func advance(t *testing.T, svc *RequestService, id uint64, statuses ...model.Status) {
    t.Helper()
    for _, st := range statuses {
        if _, err := svc.UpdateStatus(context.Background(), id, st, nil); err != nil {
            t.Fatalf("unexpected error advancing to %s: %v", st, err)
        }
    }
}
