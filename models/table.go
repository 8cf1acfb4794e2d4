package models

import "time"

// Table status values. A table's status is a projection of its active
// reservation and is always pushed as a full entity on the tables topic.
const (
	TableAvailable = "AVAILABLE"
	TableOccupied  = "OCCUPIED"
	TableReserved  = "RESERVED"
	TableCleaning  = "CLEANING"
)

// Table shapes as rendered on the floor plan.
const (
	ShapeCircle    = "CIRCLE"
	ShapeSquare    = "SQUARE"
	ShapeRectangle = "RECTANGLE"
)

// Floor plan bounds in pixels.
const (
	CanvasWidth  = 800
	CanvasHeight = 600
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"tableNumber"`
	Capacity    int       `gorm:"not null;default:4" json:"capacity"`
	Shape       string    `gorm:"type:varchar(20);not null;default:'CIRCLE'" json:"shape"`
	Status      string    `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	XPosition   int       `gorm:"not null;default:0" json:"xPosition"`
	YPosition   int       `gorm:"not null;default:0" json:"yPosition"`
	Rotation    int       `gorm:"default:0" json:"rotation"`
	IsOutdoor   bool      `gorm:"default:false" json:"isOutdoor"`
	CompanyID   uint      `gorm:"not null;index" json:"companyId"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableDelta is a partial table update as delivered on the tables topic or
// produced by a local optimistic edit. Nil fields are left untouched by the
// merge. A full Table JSON payload decodes into a TableDelta with every
// field set, so both wire forms share one merge path.
type TableDelta struct {
	ID          uint    `json:"id"`
	TableNumber *string `json:"tableNumber,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Shape       *string `json:"shape,omitempty"`
	Status      *string `json:"status,omitempty"`
	XPosition   *int    `json:"xPosition,omitempty"`
	YPosition   *int    `json:"yPosition,omitempty"`
	Rotation    *int    `json:"rotation,omitempty"`
	IsOutdoor   *bool   `json:"isOutdoor,omitempty"`
	CompanyID   *uint   `json:"companyId,omitempty"`
}

// StatusDelta builds a delta that only changes the table status.
func StatusDelta(id uint, status string) TableDelta {
	return TableDelta{ID: id, Status: &status}
}

// PositionDelta builds a delta that only moves the table.
func PositionDelta(id uint, x, y int) TableDelta {
	return TableDelta{ID: id, XPosition: &x, YPosition: &y}
}

// Merge applies the non-nil fields of d on top of t and returns the result.
func (t Table) Merge(d TableDelta) Table {
	if d.TableNumber != nil {
		t.TableNumber = *d.TableNumber
	}
	if d.Capacity != nil {
		t.Capacity = *d.Capacity
	}
	if d.Shape != nil {
		t.Shape = *d.Shape
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.XPosition != nil {
		t.XPosition = *d.XPosition
	}
	if d.YPosition != nil {
		t.YPosition = *d.YPosition
	}
	if d.Rotation != nil {
		t.Rotation = *d.Rotation
	}
	if d.IsOutdoor != nil {
		t.IsOutdoor = *d.IsOutdoor
	}
	if d.CompanyID != nil {
		t.CompanyID = *d.CompanyID
	}
	return t
}
