package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/utils"
)

type CompanyController struct {
	DB *gorm.DB
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{DB: db}
}

// GetCompany -> restaurant metadata for the map header.
func (cc *CompanyController) GetCompany(c *gin.Context) {
	companyID := c.Param("company_id")
	var company models.Company
	if err := cc.DB.First(&company, companyID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", company)
}

// CreateCompany -> register a restaurant (admin).
func (cc *CompanyController) CreateCompany(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	company := models.Company{Name: req.Name, Address: req.Address}
	if err := cc.DB.Create(&company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New restaurant registered: %s (id=%d)", company.Name, company.ID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", company)
}
