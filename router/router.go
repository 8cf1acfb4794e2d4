package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinesync/tablemap/controllers"
	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/middlewares"
	"github.com/dinesync/tablemap/models"
)

func SetupRouter(db *gorm.DB, h *hub.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, h)
	companyCtrl := controllers.NewCompanyController(db)
	reservationCtrl := controllers.NewReservationController(db, h)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Push channel. Auth happens via token query param inside the
	// middleware since browsers cannot set websocket headers.
	r.GET("/ws", middlewares.AuthMiddleware(), controllers.WSHandler(h))

	// Rate limiter for login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Customer-facing reads
	r.GET("/companies/:company_id", companyCtrl.GetCompany)
	r.GET("/tables/restaurant/:company_id/tables", tableCtrl.GetRestaurantTables)

	// Reservations (authenticated customers and staff)
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.POST("/reservations/quick", reservationCtrl.QuickReservation)
	}

	// Staff dashboard and transitions
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleStaff, models.RoleManager, models.RoleAdmin))
	{
		staff.GET("/reservations/company/:company_id", reservationCtrl.GetCompanyReservations)
		staff.POST("/reservations/:reservation_id/check-in", reservationCtrl.CheckIn)
		staff.POST("/reservations/:reservation_id/check-out", reservationCtrl.CheckOut)
		staff.POST("/reservations/:reservation_id/no-show", reservationCtrl.NoShow)
		staff.POST("/reservations/:reservation_id/extend", reservationCtrl.Extend)
		staff.POST("/reservations/:reservation_id/cancel", reservationCtrl.Cancel)
	}

	// Floor plan management (managers)
	manage := r.Group("/")
	manage.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleManager, models.RoleAdmin))
	{
		manage.POST("/tables/company/:company_id", tableCtrl.CreateTable)
		// Covers PUT /tables/:table_id and
		// PUT /tables/company/:company_id/positions, see UpdateDispatch.
		manage.PUT("/tables/*path", tableCtrl.UpdateDispatch)
		manage.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	}

	// Admin: restaurant management
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleAdmin))
	{
		admin.POST("/companies", companyCtrl.CreateCompany)
	}

	return r
}
