package model

// Status is the lifecycle state of a service request.  The set of
// states and the transitions between them are fixed: a request is
// RECEIVED on creation, moves through ASSIGNED and IN_PROGRESS while
// staff work on it, and terminates in COMPLETED or CANCELLED.  A
// cancelled request may be reopened, a completed one may not.
type Status string

const (
    StatusReceived   Status = "RECEIVED"
    StatusAssigned   Status = "ASSIGNED"
    StatusInProgress Status = "IN_PROGRESS"
    StatusCompleted  Status = "COMPLETED"
    StatusCancelled  Status = "CANCELLED"
)

// Description returns a short human description of the status, shown
// to citizens when they track their request.
func (s Status) Description() string {
    switch s {
    case StatusReceived:
        return "Request received and pending assignment"
    case StatusAssigned:
        return "Request assigned to collection team"
    case StatusInProgress:
        return "Collection in progress"
    case StatusCompleted:
        return "Collection completed successfully"
    case StatusCancelled:
        return "Request cancelled by user or system"
    }
    return ""
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
    switch s {
    case StatusReceived, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

// Terminal reports whether no further transitions leave s, apart from
// the single reopen edge out of CANCELLED.
func (s Status) Terminal() bool {
    return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the transition graph allows moving a
// request from current to next.  The graph is intentionally closed:
//
//	RECEIVED    -> ASSIGNED, CANCELLED
//	ASSIGNED    -> IN_PROGRESS, CANCELLED
//	IN_PROGRESS -> COMPLETED, CANCELLED
//	CANCELLED   -> RECEIVED (reopen)
//	COMPLETED   -> (none)
//
// Policy-level distinctions (why a transition is refused, and the
// citizen-facing cancel rules) are layered on top by the service.
func CanTransition(current, next Status) bool {
    switch current {
    case StatusReceived:
        return next == StatusAssigned || next == StatusCancelled
    case StatusAssigned:
        return next == StatusInProgress || next == StatusCancelled
    case StatusInProgress:
        return next == StatusCompleted || next == StatusCancelled
    case StatusCancelled:
        return next == StatusReceived
    case StatusCompleted:
        return false
    }
    return false
}
