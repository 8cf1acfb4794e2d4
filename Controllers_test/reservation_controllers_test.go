package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dinesync/tablemap/controllers"
	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

func setupTestDBForReservations() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := db.AutoMigrate(&models.Company{}, &models.Table{}, &models.Reservation{}); err != nil {
		panic(err)
	}
	return db
}

func setupReservationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	ctrl := controllers.NewReservationController(db, hub.New())
	router.POST("/reservations", ctrl.CreateReservation)
	router.POST("/reservations/quick", ctrl.QuickReservation)
	router.GET("/staff/reservations/company/:company_id", ctrl.GetCompanyReservations)
	router.POST("/staff/reservations/:reservation_id/check-in", ctrl.CheckIn)
	router.POST("/staff/reservations/:reservation_id/check-out", ctrl.CheckOut)
	router.POST("/staff/reservations/:reservation_id/no-show", ctrl.NoShow)
	router.POST("/staff/reservations/:reservation_id/extend", ctrl.Extend)
	router.POST("/staff/reservations/:reservation_id/cancel", ctrl.Cancel)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestQuickReservationFlipsTableToReserved(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()

	db.Create(&models.Company{Name: "Test Bistro"})
	table := models.Table{TableNumber: "T1", Capacity: 4, Status: models.TableAvailable, CompanyID: 1}
	db.Create(&table)

	router := setupReservationRouter(db)
	w := postJSON(t, router, "/reservations/quick?immediate=true", map[string]interface{}{
		"companyId":       1,
		"tableId":         table.ID,
		"userId":          1,
		"numberOfPeople":  2,
		"reservationDate": time.Now().Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Reservation created", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", data["status"])

	var saved models.Table
	db.First(&saved, table.ID)
	assert.Equal(t, models.TableReserved, saved.Status)
}

func TestQuickReservationRejectsUnavailableTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()

	table := models.Table{TableNumber: "T7", Capacity: 2, Status: models.TableOccupied, CompanyID: 1}
	db.Create(&table)

	router := setupReservationRouter(db)
	w := postJSON(t, router, "/reservations/quick?immediate=true", map[string]interface{}{
		"companyId":       1,
		"tableId":         table.ID,
		"userId":          1,
		"numberOfPeople":  2,
		"reservationDate": time.Now().Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Table T7 is not available", response["message"])

	// No reservation row was written.
	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateReservationRejectsClosedHours(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	router := setupReservationRouter(db)

	w := postJSON(t, router, "/reservations", map[string]interface{}{
		"companyId":       1,
		"userId":          1,
		"numberOfPeople":  2,
		"reservationDate": time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "The restaurant is closed at the requested time", response["message"])
}

func TestCreateReservationRejectsOversizedParty(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()

	table := models.Table{TableNumber: "T2", Capacity: 2, Status: models.TableAvailable, CompanyID: 1}
	db.Create(&table)

	router := setupReservationRouter(db)
	w := postJSON(t, router, "/reservations", map[string]interface{}{
		"companyId":       1,
		"tableId":         table.ID,
		"userId":          1,
		"numberOfPeople":  6,
		"reservationDate": time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Table T2 seats at most 2 guests", response["message"])
}

func seedReservation(db *gorm.DB, status, tableStatus string) (models.Reservation, models.Table) {
	table := models.Table{TableNumber: "T1", Capacity: 4, Status: tableStatus, CompanyID: 1}
	db.Create(&table)
	reservation := models.Reservation{
		TableID:         table.ID,
		UserID:          1,
		CompanyID:       1,
		NumberOfPeople:  2,
		ReservationDate: time.Now(),
		Duration:        models.DefaultDurationMinutes,
		Status:          status,
	}
	db.Create(&reservation)
	return reservation, table
}

func TestCheckInSeatsTheGuest(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	reservation, table := seedReservation(db, models.ReservationConfirmed, models.TableReserved)

	router := setupReservationRouter(db)
	w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/check-in", reservation.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "ARRIVED", data["status"])

	var savedTable models.Table
	db.First(&savedTable, table.ID)
	assert.Equal(t, models.TableOccupied, savedTable.Status)
}

func TestCheckInRetryIsANoOp(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	reservation, table := seedReservation(db, models.ReservationArrived, models.TableOccupied)

	router := setupReservationRouter(db)
	w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/check-in", reservation.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Reservation unchanged", response["message"])

	var savedTable models.Table
	db.First(&savedTable, table.ID)
	assert.Equal(t, models.TableOccupied, savedTable.Status)
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	router := setupReservationRouter(db)

	cases := []struct {
		from   string
		action string
	}{
		{models.ReservationPending, "check-in"},
		{models.ReservationCompleted, "cancel"},
		{models.ReservationArrived, "no-show"},
		{models.ReservationCancelled, "check-out"},
	}
	for _, tc := range cases {
		reservation, _ := seedReservation(db, tc.from, models.TableOccupied)
		w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/%s", reservation.ID, tc.action), nil)
		assert.Equal(t, http.StatusConflict, w.Code, "%s on %s reservation", tc.action, tc.from)
	}
}

func TestTerminalStateRetriesAreRejected(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	router := setupReservationRouter(db)

	// The reservation is terminal and the table was re-reserved by someone
	// else since; a retried action must not release it again.
	cases := []struct {
		status string
		action string
	}{
		{models.ReservationCompleted, "check-out"},
		{models.ReservationCancelled, "cancel"},
		{models.ReservationNoShow, "no-show"},
	}
	for _, tc := range cases {
		reservation, table := seedReservation(db, tc.status, models.TableReserved)
		w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/%s", reservation.ID, tc.action), nil)
		assert.Equal(t, http.StatusConflict, w.Code, "%s on %s reservation", tc.action, tc.status)

		var savedTable models.Table
		assert.NoError(t, db.First(&savedTable, table.ID).Error)
		assert.Equal(t, models.TableReserved, savedTable.Status, "%s on %s reservation", tc.action, tc.status)
	}
}

func TestCheckOutFreesTheTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	reservation, table := seedReservation(db, models.ReservationArrived, models.TableOccupied)

	router := setupReservationRouter(db)
	w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/check-out", reservation.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var savedTable models.Table
	db.First(&savedTable, table.ID)
	assert.Equal(t, models.TableAvailable, savedTable.Status)
}

func TestNoShowReleasesHeldTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	reservation, table := seedReservation(db, models.ReservationConfirmed, models.TableReserved)

	router := setupReservationRouter(db)
	w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/no-show", reservation.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "NO_SHOW", data["status"])

	var savedTable models.Table
	db.First(&savedTable, table.ID)
	assert.Equal(t, models.TableAvailable, savedTable.Status)
}

func TestExtendRequiresArrivedStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	router := setupReservationRouter(db)

	seated, _ := seedReservation(db, models.ReservationArrived, models.TableOccupied)
	w := postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/extend", seated.ID), map[string]int{"duration": 240})
	assert.Equal(t, http.StatusOK, w.Code)
	var saved models.Reservation
	db.First(&saved, seated.ID)
	assert.Equal(t, 240, saved.Duration)

	pending, _ := seedReservation(db, models.ReservationConfirmed, models.TableReserved)
	w = postJSON(t, router, fmt.Sprintf("/staff/reservations/%d/extend", pending.ID), map[string]int{"duration": 240})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetCompanyReservations(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations()
	seedReservation(db, models.ReservationConfirmed, models.TableReserved)
	seedReservation(db, models.ReservationPending, models.TableAvailable)

	router := setupReservationRouter(db)
	req, err := http.NewRequest("GET", "/staff/reservations/company/1", nil)
	assert.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "List of reservations", response["message"])
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
}
