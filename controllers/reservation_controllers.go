package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

type ReservationController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewReservationController(db *gorm.DB, h *hub.Hub) *ReservationController {
	return &ReservationController{DB: db, Hub: h}
}

type reservationRequest struct {
	CompanyID       uint      `json:"companyId" binding:"required"`
	TableID         uint      `json:"tableId"`
	UserID          uint      `json:"userId" binding:"required"`
	NumberOfPeople  int       `json:"numberOfPeople" binding:"required"`
	ReservationDate time.Time `json:"reservationDate" binding:"required"`
	Duration        int       `json:"duration"`
	SpecialRequests string    `json:"specialRequests"`
	Status          string    `json:"status"`
}

func (req *reservationRequest) toModel() models.Reservation {
	r := models.Reservation{
		CompanyID:       req.CompanyID,
		TableID:         req.TableID,
		UserID:          req.UserID,
		NumberOfPeople:  req.NumberOfPeople,
		ReservationDate: req.ReservationDate,
		Duration:        req.Duration,
		SpecialRequests: req.SpecialRequests,
		Status:          req.Status,
	}
	if r.Duration == 0 {
		r.Duration = models.DefaultDurationMinutes
	}
	if r.Status == "" {
		r.Status = models.ReservationPending
	}
	return r
}

// CreateReservation -> future-dated reservation. The operating-hours check
// lives here authoritatively; clients only pre-flight it.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.ReservationDate.Hour() < 6 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("The restaurant is closed at the requested time"))
		return
	}

	reservation := req.toModel()
	if req.TableID != 0 {
		var table models.Table
		if err := rc.DB.First(&table, req.TableID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return
		}
		if req.NumberOfPeople > table.Capacity {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("Table %s seats at most %d guests", table.TableNumber, table.Capacity))
			return
		}
	}

	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Reservation %d created for company %d", reservation.ID, reservation.CompanyID)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// QuickReservation -> immediate or minutes-away seating of one table. The
// table must be AVAILABLE; on success it flips to RESERVED and the full
// entity goes out on the tables topic.
func (rc *ReservationController) QuickReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TableID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("tableId is required"))
		return
	}

	var table models.Table
	if err := rc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	if table.Status != models.TableAvailable {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("Table %s is not available", table.TableNumber))
		return
	}
	if req.NumberOfPeople > table.Capacity {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("Table %s seats at most %d guests", table.TableNumber, table.Capacity))
		return
	}

	reservation := req.toModel()
	reservation.Status = models.ReservationConfirmed

	tx := rc.DB.Begin()
	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	table.Status = models.TableReserved
	if err := tx.Save(&table).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rc.Hub.Publish(hub.TableTopic(table.CompanyID), table)

	immediate := c.Query("immediate") == "true"
	utils.InfoLogger.Printf("Quick reservation %d (table=%d immediate=%t)", reservation.ID, table.ID, immediate)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetCompanyReservations -> all reservations of a restaurant, for the staff
// dashboard and the lateness poller.
func (rc *ReservationController) GetCompanyReservations(c *gin.Context) {
	companyID := c.Param("company_id")
	var reservations []models.Reservation
	if err := rc.DB.Where("company_id = ?", companyID).Order("reservation_date").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// CheckIn -> CONFIRMED to ARRIVED. Retrying a check-in on an already
// seated reservation succeeds without effect.
func (rc *ReservationController) CheckIn(c *gin.Context) {
	rc.transition(c, models.ReservationArrived, func(r *models.Reservation, table *models.Table) {
		table.Status = models.TableOccupied
	})
}

// CheckOut -> ARRIVED to COMPLETED; the table frees up.
func (rc *ReservationController) CheckOut(c *gin.Context) {
	rc.transition(c, models.ReservationCompleted, func(r *models.Reservation, table *models.Table) {
		table.Status = models.TableAvailable
	})
}

// NoShow -> CONFIRMED to NO_SHOW; a held table is released.
func (rc *ReservationController) NoShow(c *gin.Context) {
	rc.transition(c, models.ReservationNoShow, func(r *models.Reservation, table *models.Table) {
		if table.Status == models.TableReserved {
			table.Status = models.TableAvailable
		}
	})
}

// Cancel -> PENDING or CONFIRMED to CANCELLED; a held table is released.
func (rc *ReservationController) Cancel(c *gin.Context) {
	rc.transition(c, models.ReservationCancelled, func(r *models.Reservation, table *models.Table) {
		if table.Status == models.TableReserved {
			table.Status = models.TableAvailable
		}
	})
}

// Extend -> lengthen a seated reservation. Duration only, no transition.
func (rc *ReservationController) Extend(c *gin.Context) {
	reservationID := c.Param("reservation_id")

	var body struct {
		Duration int `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, reservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}
	if reservation.Status != models.ReservationArrived {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("Cannot extend a %s reservation", reservation.Status))
		return
	}

	reservation.Duration = body.Duration
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Reservation %d extended to %d minutes", reservation.ID, reservation.Duration)
	utils.RespondJSON(c, http.StatusOK, "Reservation extended", reservation)
}

// transition loads the reservation, enforces the state machine, lets apply
// adjust the table projection, persists both and pushes the table plus a
// TABLE_STATUS_CHANGED notification. A same-state retry is a no-op only for
// check-in; every other action on a reservation already in its target state
// is rejected, so a terminal state never re-runs its table side effect.
func (rc *ReservationController) transition(c *gin.Context, to string, apply func(*models.Reservation, *models.Table)) {
	reservationID := c.Param("reservation_id")

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, reservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	var table models.Table
	if reservation.TableID != 0 {
		if err := rc.DB.First(&table, reservation.TableID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return
		}
	}

	if reservation.Status == to {
		if to == models.ReservationArrived {
			utils.RespondJSON(c, http.StatusOK, "Reservation unchanged", reservation)
			return
		}
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("Cannot move a %s reservation to %s", reservation.Status, to))
		return
	}
	if !models.CanTransition(reservation.Status, to) {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("Cannot move a %s reservation to %s", reservation.Status, to))
		return
	}

	apply(&reservation, &table)

	from := reservation.Status
	reservation.Status = to

	tx := rc.DB.Begin()
	if err := tx.Save(&reservation).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if table.ID != 0 {
		if err := tx.Save(&table).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if table.ID != 0 {
		rc.Hub.Publish(hub.TableTopic(table.CompanyID), table)
		rc.Hub.Publish(hub.NotificationTopic(table.CompanyID), models.Notification{
			ID:      fmt.Sprintf("table-status-%d-%d", table.ID, time.Now().UnixNano()),
			Type:    models.NotificationTableStatusChanged,
			Message: fmt.Sprintf("Table %s is now %s", table.TableNumber, table.Status),
			Time:    time.Now(),
		})
	}

	utils.InfoLogger.Printf("Reservation %d: %s -> %s", reservation.ID, from, reservation.Status)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}
