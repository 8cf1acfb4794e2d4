package models

import "time"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string    `gorm:"type:varchar(100)" json:"lastName"`
	Email       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	PhoneNumber string    `gorm:"type:varchar(30)" json:"phoneNumber"`
	Role        string    `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CompanyID   uint      `gorm:"index" json:"companyId"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
