package entity

type HallStatus string

const (
	HallStatusActive      HallStatus = "active"
	HallStatusMaintenance HallStatus = "maintenance"
	HallStatusClosed      HallStatus = "closed"
)

func (s HallStatus) Valid() bool {
	switch s {
	case HallStatusActive, HallStatusMaintenance, HallStatusClosed:
		return true
	}
	return false
}

const (
	DefaultMaxRows        = 20
	DefaultMaxSeatsPerRow = 20
	MaxHallCapacity       = 10000
)

type Hall struct {
	Base
	Name           string     `db:"name"`
	Address        string     `db:"address"`
	Capacity       int        `db:"capacity"`
	MaxRows        int        `db:"max_rows"`
	MaxSeatsPerRow int        `db:"max_seats_per_row"`
	Status         HallStatus `db:"status"`
}

// FitsGrid reports whether a rows x cols grid fits this hall's limits.
func (h *Hall) FitsGrid(rows, cols int) bool {
	return rows <= h.MaxRows && cols <= h.MaxSeatsPerRow && rows*cols <= h.Capacity
}

// DefaultGrid is the largest full-width layout within the hall's limits and capacity.
func (h *Hall) DefaultGrid() (rows, cols int) {
	cols = min(h.MaxSeatsPerRow, h.Capacity)
	if cols < 1 {
		return 0, 0
	}
	rows = min(h.MaxRows, h.Capacity/cols)
	return rows, cols
}
