package model

import "time"

// Request is a bulky-waste collection request submitted by a citizen.
// Each request carries two identities: the numeric primary key used by
// staff, and an opaque access token handed to the citizen for tracking.
// The token is assigned once at creation and never changes.
//
// All timestamp fields are stored and compared in UTC.  PreferredDate
// is a calendar date; its time-of-day component is always midnight.
type Request struct {
    ID                uint64          // service_requests.id
    Token             string          // service_requests.token (unique, immutable)
    MunicipalityCode  string          // service_requests.municipality_code
    MunicipalityName  string          // service_requests.municipality_name
    CitizenName       string          // service_requests.citizen_name
    CitizenEmail      *string         // service_requests.citizen_email (nullable)
    CitizenPhone      *string         // service_requests.citizen_phone (nullable)
    PickupAddress     string          // service_requests.pickup_address
    ItemDescription   string          // service_requests.item_description
    PreferredDate     time.Time       // service_requests.preferred_date (DATE)
    PreferredTimeSlot TimeSlot        // service_requests.preferred_time_slot
    Status            Status          // service_requests.status
    CreatedAt         time.Time       // service_requests.created_at
    UpdatedAt         time.Time       // service_requests.updated_at
    History           []StatusHistory // audit trail, newest first
}

// Active reports whether the request still counts toward the
// per-municipality daily admission limit.  Cancelled and completed
// requests do not occupy a slot.
func (r *Request) Active() bool {
    return r.Status != StatusCancelled && r.Status != StatusCompleted
}
