package model

// TimeSlot is the part of the day a citizen prefers for the pickup.
type TimeSlot string

const (
    SlotMorning   TimeSlot = "MORNING"
    SlotAfternoon TimeSlot = "AFTERNOON"
    SlotEvening   TimeSlot = "EVENING"
)

// Valid reports whether t is one of the known slots.
func (t TimeSlot) Valid() bool {
    switch t {
    case SlotMorning, SlotAfternoon, SlotEvening:
        return true
    }
    return false
}

// Window returns the wall-clock window of the slot.
func (t TimeSlot) Window() string {
    switch t {
    case SlotMorning:
        return "08:00 - 12:00"
    case SlotAfternoon:
        return "12:00 - 18:00"
    case SlotEvening:
        return "18:00 - 21:00"
    }
    return ""
}
