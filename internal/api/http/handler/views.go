package handler

import (
	"time"

	"github.com/dtroode/auth-service/internal/model"
)

type idResponse struct {
	ID int64 `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userView never carries the password hash.
type userView struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TenantID  *int64     `json:"tenantId"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newUserView(u model.User) userView {
	return userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		TenantID:  u.TenantID,
		CreatedAt: u.CreatedAt,
	}
}

type tenantView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTenantView(t model.Tenant) tenantView {
	return tenantView{
		ID:        t.ID,
		Name:      t.Name,
		Address:   t.Address,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
