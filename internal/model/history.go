package model

import "time"

// StatusHistory is one immutable entry in a request's audit trail.
// An entry is written for every status change, including the initial
// assignment of RECEIVED at creation, for which PreviousStatus is nil.
// Entries are append-only: they are never edited or deleted, so the
// trail length always equals the number of status changes plus one.
type StatusHistory struct {
    ID             uint64    // status_history.id
    RequestID      uint64    // status_history.request_id
    PreviousStatus *Status   // status_history.previous_status (nullable)
    NewStatus      Status    // status_history.new_status
    Timestamp      time.Time // status_history.timestamp
    Notes          *string   // status_history.notes (nullable)
}
