package response

import (
	"math"
	"time"

	"event-registration/internal/data/entity"
)

type HourlyCheckins struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

type EventReportResponse struct {
	Event            EventResponse    `json:"event"`
	TotalSeats       int              `json:"total_seats"`
	Registered       int              `json:"registered"`
	CheckedIn        int              `json:"checked_in"`
	ActiveTickets    int              `json:"active_tickets"`
	UsedTickets      int              `json:"used_tickets"`
	CancelledTickets int              `json:"cancelled_tickets"`
	FailedCheckins   int              `json:"failed_checkins"`
	OccupancyRate    float64          `json:"occupancy_rate"`
	CheckinRate      float64          `json:"checkin_rate"`
	CheckinsByHour   []HourlyCheckins `json:"checkins_by_hour"`
}

type SystemReportResponse struct {
	From            string                     `json:"from"`
	To              string                     `json:"to"`
	TotalEvents     int                        `json:"total_events"`
	EventsByStatus  map[entity.EventStatus]int `json:"events_by_status"`
	TotalSeats      int                        `json:"total_seats"`
	TotalRegistered int                        `json:"total_registered"`
	TotalCheckedIn  int                        `json:"total_checked_in"`
	UniqueAttendees int                        `json:"unique_attendees"`
	OccupancyRate   float64                    `json:"occupancy_rate"`
	AttendanceRate  float64                    `json:"attendance_rate"`
}

// percent returns part/whole as a percentage rounded to two decimals, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(whole)) / 100
}

func EventSummaryToResponse(s *entity.EventSummary, now time.Time, loc *time.Location) EventReportResponse {
	hours := make([]HourlyCheckins, len(s.CheckinsByHour))
	for i, h := range s.CheckinsByHour {
		hours[i] = HourlyCheckins{Hour: h.Hour, Count: h.Count}
	}
	return EventReportResponse{
		Event:            EventToResponse(s.Event, now, loc),
		TotalSeats:       s.Event.TotalSeats,
		Registered:       s.Event.RegisteredCount,
		CheckedIn:        s.Event.CheckedInCount,
		ActiveTickets:    s.ActiveTickets,
		UsedTickets:      s.UsedTickets,
		CancelledTickets: s.CancelledTickets,
		FailedCheckins:   s.FailedCheckins,
		OccupancyRate:    percent(s.Event.RegisteredCount, s.Event.TotalSeats),
		CheckinRate:      percent(s.Event.CheckedInCount, s.Event.RegisteredCount),
		CheckinsByHour:   hours,
	}
}

func SystemSummaryToResponse(s *entity.SystemSummary) SystemReportResponse {
	return SystemReportResponse{
		From:            s.From.Format("2006-01-02"),
		To:              s.To.Format("2006-01-02"),
		TotalEvents:     s.TotalEvents,
		EventsByStatus:  s.EventsByStatus,
		TotalSeats:      s.TotalSeats,
		TotalRegistered: s.TotalRegistered,
		TotalCheckedIn:  s.TotalCheckedIn,
		UniqueAttendees: s.UniqueAttendees,
		OccupancyRate:   percent(s.TotalRegistered, s.TotalSeats),
		AttendanceRate:  percent(s.TotalCheckedIn, s.TotalRegistered),
	}
}
