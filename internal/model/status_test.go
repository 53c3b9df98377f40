package model

import "testing"

func TestCanTransitionCoversEveryPair(t *testing.T) {
    all := []Status{StatusReceived, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled}

    allowed := map[Status][]Status{
        StatusReceived:   {StatusAssigned, StatusCancelled},
        StatusAssigned:   {StatusInProgress, StatusCancelled},
        StatusInProgress: {StatusCompleted, StatusCancelled},
        StatusCancelled:  {StatusReceived},
        StatusCompleted:  {},
    }

    for _, from := range all {
        for _, to := range all {
            want := false
            for _, a := range allowed[from] {
                if a == to {
                    want = true
                }
            }
            if got := CanTransition(from, to); got != want {
                t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
            }
        }
    }
}

func TestStatusValid(t *testing.T) {
    for _, s := range []Status{StatusReceived, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled} {
        if !s.Valid() {
            t.Errorf("expected %s to be valid", s)
        }
        if s.Description() == "" {
            t.Errorf("expected description for %s", s)
        }
    }
    if Status("UNKNOWN").Valid() {
        t.Error("expected UNKNOWN to be invalid")
    }
    if CanTransition(Status("UNKNOWN"), StatusReceived) {
        t.Error("expected no transitions out of an unknown status")
    }
}

func TestTerminalStatuses(t *testing.T) {
    if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
        t.Error("expected COMPLETED and CANCELLED to be terminal")
    }
    if StatusReceived.Terminal() || StatusAssigned.Terminal() || StatusInProgress.Terminal() {
        t.Error("expected working statuses to be non-terminal")
    }
}

func TestTimeSlotValid(t *testing.T) {
    for _, s := range []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening} {
        if !s.Valid() {
            t.Errorf("expected %s to be valid", s)
        }
        if s.Window() == "" {
            t.Errorf("expected window for %s", s)
        }
    }
    if TimeSlot("NIGHT").Valid() {
        t.Error("expected NIGHT to be invalid")
    }
}
