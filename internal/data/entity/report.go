package entity

import "time"

// EventSummary aggregates ticket and check-in counts of one event.
type EventSummary struct {
	Event            *Event
	ActiveTickets    int
	UsedTickets      int
	CancelledTickets int
	FailedCheckins   int
	CheckinsByHour   []HourlyCount
}

type HourlyCount struct {
	Hour  time.Time
	Count int
}

// SystemSummary aggregates all events that start within a date range.
type SystemSummary struct {
	From            time.Time
	To              time.Time
	TotalEvents     int
	EventsByStatus  map[EventStatus]int
	TotalSeats      int
	TotalRegistered int
	TotalCheckedIn  int
	UniqueAttendees int
}
