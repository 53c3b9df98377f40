package handler

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/zeremonos/waste-collection/internal/model"
	"github.com/zeremonos/waste-collection/internal/service"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02T15:04:05"
)

var phonePattern = regexp.MustCompile(`^[0-9]{9}$`)

// createRequestBody is the JSON payload accepted by POST /api/requests.
type createRequestBody struct {
	MunicipalityCode  string  `json:"municipalityCode"`
	MunicipalityName  string  `json:"municipalityName"`
	CitizenName       string  `json:"citizenName"`
	CitizenEmail      *string `json:"citizenEmail"`
	CitizenPhone      *string `json:"citizenPhone"`
	PickupAddress     string  `json:"pickupAddress"`
	ItemDescription   string  `json:"itemDescription"`
	PreferredDate     string  `json:"preferredDate"`
	PreferredTimeSlot string  `json:"preferredTimeSlot"`
}

// validate applies the field-level rules and collects every violation
// into a field-to-message map.  It returns the parsed service input
// when the map is empty.
func (b *createRequestBody) validate(now time.Time) (service.CreateInput, map[string]string) {
	errs := map[string]string{}

	if strings.TrimSpace(b.MunicipalityCode) == "" {
		errs["municipalityCode"] = "Municipality code is required"
	}
	if strings.TrimSpace(b.MunicipalityName) == "" {
		errs["municipalityName"] = "Municipality name is required"
	}

	name := strings.TrimSpace(b.CitizenName)
	switch {
	case name == "":
		errs["citizenName"] = "Citizen name is required"
	case len([]rune(name)) < 2 || len([]rune(name)) > 100:
		errs["citizenName"] = "Name must be between 2 and 100 characters"
	}

	if b.CitizenEmail != nil && *b.CitizenEmail != "" {
		if _, err := mail.ParseAddress(*b.CitizenEmail); err != nil {
			errs["citizenEmail"] = "Invalid email format"
		}
	}
	if b.CitizenPhone != nil && *b.CitizenPhone != "" && !phonePattern.MatchString(*b.CitizenPhone) {
		errs["citizenPhone"] = "Phone must have 9 digits"
	}

	if strings.TrimSpace(b.PickupAddress) == "" {
		errs["pickupAddress"] = "Pickup address is required"
	} else if len([]rune(b.PickupAddress)) > 200 {
		errs["pickupAddress"] = "Address must not exceed 200 characters"
	}

	desc := strings.TrimSpace(b.ItemDescription)
	switch {
	case desc == "":
		errs["itemDescription"] = "Item description is required"
	case len([]rune(desc)) < 10 || len([]rune(desc)) > 500:
		errs["itemDescription"] = "Description must be between 10 and 500 characters"
	}

	var date time.Time
	if b.PreferredDate == "" {
		errs["preferredDate"] = "Preferred date is required"
	} else if d, err := time.Parse(dateFormat, b.PreferredDate); err != nil {
		errs["preferredDate"] = "Preferred date must be a valid date in YYYY-MM-DD format"
	} else {
		date = d
		today := now.UTC().Truncate(24 * time.Hour)
		if !d.After(today) {
			errs["preferredDate"] = "Preferred date must be in the future"
		}
	}

	slot := model.TimeSlot(strings.ToUpper(strings.TrimSpace(b.PreferredTimeSlot)))
	if b.PreferredTimeSlot == "" {
		errs["preferredTimeSlot"] = "Preferred time slot is required"
	} else if !slot.Valid() {
		errs["preferredTimeSlot"] = "Preferred time slot must be one of MORNING, AFTERNOON, EVENING"
	}

	if len(errs) > 0 {
		return service.CreateInput{}, errs
	}
	return service.CreateInput{
		MunicipalityCode:  strings.TrimSpace(b.MunicipalityCode),
		MunicipalityName:  strings.TrimSpace(b.MunicipalityName),
		CitizenName:       name,
		CitizenEmail:      b.CitizenEmail,
		CitizenPhone:      b.CitizenPhone,
		PickupAddress:     strings.TrimSpace(b.PickupAddress),
		ItemDescription:   desc,
		PreferredDate:     date,
		PreferredTimeSlot: slot,
	}, nil
}

// updateStatusBody is the JSON payload accepted by
// PUT /api/staff/requests/:id/status.
type updateStatusBody struct {
	NewStatus string  `json:"newStatus"`
	Notes     *string `json:"notes"`
}

func (b *updateStatusBody) validate() (model.Status, map[string]string) {
	if b.NewStatus == "" {
		return "", map[string]string{"newStatus": "New status is required"}
	}
	st := model.Status(strings.ToUpper(strings.TrimSpace(b.NewStatus)))
	if !st.Valid() {
		return "", map[string]string{"newStatus": "New status must be one of RECEIVED, ASSIGNED, IN_PROGRESS, COMPLETED, CANCELLED"}
	}
	return st, nil
}

// historyResponse mirrors one audit trail entry in API responses.
type historyResponse struct {
	ID             uint64  `json:"id"`
	PreviousStatus *string `json:"previousStatus"`
	NewStatus      string  `json:"newStatus"`
	Timestamp      string  `json:"timestamp"`
	Notes          *string `json:"notes"`
}

// requestResponse is the API representation of a service request with
// its full status history.
type requestResponse struct {
	ID                uint64            `json:"id"`
	Token             string            `json:"token"`
	MunicipalityCode  string            `json:"municipalityCode"`
	MunicipalityName  string            `json:"municipalityName"`
	CitizenName       string            `json:"citizenName"`
	CitizenEmail      *string           `json:"citizenEmail"`
	CitizenPhone      *string           `json:"citizenPhone"`
	PickupAddress     string            `json:"pickupAddress"`
	ItemDescription   string            `json:"itemDescription"`
	PreferredDate     string            `json:"preferredDate"`
	PreferredTimeSlot string            `json:"preferredTimeSlot"`
	Status            string            `json:"status"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
	StatusHistory     []historyResponse `json:"statusHistory"`
}

func toResponse(req *model.Request) requestResponse {
	hist := make([]historyResponse, 0, len(req.History))
	for _, h := range req.History {
		entry := historyResponse{
			ID:        h.ID,
			NewStatus: string(h.NewStatus),
			Timestamp: h.Timestamp.UTC().Format(dateTimeFormat),
			Notes:     h.Notes,
		}
		if h.PreviousStatus != nil {
			s := string(*h.PreviousStatus)
			entry.PreviousStatus = &s
		}
		hist = append(hist, entry)
	}
	return requestResponse{
		ID:                req.ID,
		Token:             req.Token,
		MunicipalityCode:  req.MunicipalityCode,
		MunicipalityName:  req.MunicipalityName,
		CitizenName:       req.CitizenName,
		CitizenEmail:      req.CitizenEmail,
		CitizenPhone:      req.CitizenPhone,
		PickupAddress:     req.PickupAddress,
		ItemDescription:   req.ItemDescription,
		PreferredDate:     req.PreferredDate.Format(dateFormat),
		PreferredTimeSlot: string(req.PreferredTimeSlot),
		Status:            string(req.Status),
		CreatedAt:         req.CreatedAt.UTC().Format(dateTimeFormat),
		UpdatedAt:         req.UpdatedAt.UTC().Format(dateTimeFormat),
		StatusHistory:     hist,
	}
}
