package queue

import (
	"strings"
	"testing"
)

func TestFormatLine(t *testing.T) {
	ev := AuditEvent{
		Action:           ActionStatusUpdated,
		RequestID:        42,
		Token:            "b2c0a1ee-9d0f-4e53-9a83-0ac1e74f2c11",
		MunicipalityName: "Lisboa",
		PreviousStatus:   "RECEIVED",
		NewStatus:        "ASSIGNED",
		Notes:            "Crew assigned",
		OccurredAt:       "2026-08-31T12:00:00Z",
	}
	line := formatLine(ev)
	if !strings.HasSuffix(line, "\n") {
		t.Error("expected newline-terminated line")
	}
	for _, want := range []string{
		"ACTION=UPDATE_STATUS",
		"request_id=42",
		"RECEIVED->ASSIGNED",
		`municipality="Lisboa"`,
		`notes="Crew assigned"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestFormatLinePlaceholdersForEmptyFields(t *testing.T) {
	line := formatLine(AuditEvent{
		Action:    ActionRequestCreated,
		RequestID: 1,
		NewStatus: "RECEIVED",
	})
	if !strings.Contains(line, "-->RECEIVED") {
		t.Errorf("expected placeholder previous status in %q", line)
	}
	if !strings.Contains(line, `notes="-"`) {
		t.Errorf("expected placeholder notes in %q", line)
	}
}
