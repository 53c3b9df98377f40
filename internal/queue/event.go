// Package queue defines the audit events published to the message
// broker and the background consumer that records them.
package queue

// Audit event actions.
const (
    ActionRequestCreated   = "CREATE_REQUEST"
    ActionRequestCancelled = "CANCEL_REQUEST"
    ActionStatusUpdated    = "UPDATE_STATUS"
)

// AuditEvent is published whenever a request is created or its status
// changes.  It mirrors the authoritative status_history table and
// exists so that downstream consumers can log or notify without
// querying the primary database; the table, not the queue, is the
// durable audit trail.
type AuditEvent struct {
    Action           string `json:"action"`
    RequestID        uint64 `json:"request_id"`
    Token            string `json:"token"`
    MunicipalityName string `json:"municipality_name"`
    PreviousStatus   string `json:"previous_status,omitempty"`
    NewStatus        string `json:"new_status"`
    Notes            string `json:"notes,omitempty"`
    OccurredAt       string `json:"occurred_at"`
}
