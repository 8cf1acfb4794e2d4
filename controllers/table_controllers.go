package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

var ErrNoPermission = errors.New("you do not have permission for this action")

type TableController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewTableController(db *gorm.DB, h *hub.Hub) *TableController {
	return &TableController{DB: db, Hub: h}
}

// GetRestaurantTables -> full snapshot of a restaurant's floor plan.
func (tc *TableController) GetRestaurantTables(c *gin.Context) {
	companyID := c.Param("company_id")
	var tables []models.Table
	if err := tc.DB.Where("company_id = ?", companyID).Order("id").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> add a table to the floor plan. Applied eagerly, not part
// of the staged layout batch.
func (tc *TableController) CreateTable(c *gin.Context) {
	companyID := c.Param("company_id")

	var req models.Table
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var company models.Company
	if err := tc.DB.First(&company, companyID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	table := req
	table.ID = 0
	table.CompanyID = company.ID
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	if table.Shape == "" {
		table.Shape = models.ShapeCircle
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Publish(hub.TableTopic(table.CompanyID), table)

	utils.InfoLogger.Printf("New table created: %s (company=%d)", table.TableNumber, table.CompanyID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateDispatch routes the two PUT shapes under /tables/. They cannot be
// separate gin routes: a :table_id param and the static "company" segment
// would conflict in the same method tree.
func (tc *TableController) UpdateDispatch(c *gin.Context) {
	path := strings.Trim(c.Param("path"), "/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		tc.updateTable(c, parts[0])
	case len(parts) == 3 && parts[0] == "company" && parts[2] == "positions":
		tc.updatePositions(c, parts[1])
	default:
		utils.RespondError(c, http.StatusNotFound, errors.New("not found"))
	}
}

// updateTable -> full update of one table (manager edit form).
func (tc *TableController) updateTable(c *gin.Context, tableID string) {
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	var req models.Table
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Capacity < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("capacity must be at least 1"))
		return
	}

	table.TableNumber = req.TableNumber
	table.Capacity = req.Capacity
	table.Shape = req.Shape
	table.Status = req.Status
	table.XPosition = req.XPosition
	table.YPosition = req.YPosition
	table.Rotation = req.Rotation
	table.IsOutdoor = req.IsOutdoor
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Publish(hub.TableTopic(table.CompanyID), table)

	utils.InfoLogger.Printf("Table %d updated", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// updatePositions -> batch save of a layout edit session. The body is the
// sparse set of moved tables, never the full floor plan.
func (tc *TableController) updatePositions(c *gin.Context, companyID string) {
	var updates []struct {
		ID        uint `json:"id"`
		XPosition int  `json:"xPosition"`
		YPosition int  `json:"yPosition"`
		CompanyID uint `json:"companyId"`
	}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tx := tc.DB.Begin()
	saved := make([]models.Table, 0, len(updates))
	for _, u := range updates {
		var table models.Table
		if err := tx.First(&table, u.ID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %d not found", u.ID))
			return
		}
		table.XPosition = u.XPosition
		table.YPosition = u.YPosition
		if err := tx.Save(&table).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		saved = append(saved, table)
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// One entity per message on the wire; no batches.
	for _, table := range saved {
		tc.Hub.Publish(hub.TableTopic(table.CompanyID), table)
	}

	utils.InfoLogger.Printf("Saved %d table positions (company=%s)", len(saved), companyID)
	utils.RespondJSON(c, http.StatusOK, "Positions updated", saved)
}

// DeleteTable -> remove a table. Applied eagerly; subscribers learn via a
// TABLE_STATUS_CHANGED notification and refetch.
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Publish(hub.NotificationTopic(table.CompanyID), models.Notification{
		ID:      fmt.Sprintf("table-deleted-%d", table.ID),
		Type:    models.NotificationTableStatusChanged,
		Message: fmt.Sprintf("Table %s was removed", table.TableNumber),
	})

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}
