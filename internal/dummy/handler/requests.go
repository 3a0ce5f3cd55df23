package handler

import (
	"strings"

	"dummyapi/internal/dummy/models"
	"dummyapi/pkg/validation"
)

// DummyRequest is the JSON body for create, update and the criteria lookups.
type DummyRequest struct {
	ID         int64        `json:"id" validate:"gte=0"`
	Name       string       `json:"dummy" validate:"max=255"`
	NationalID *int64       `json:"dni"`
	Email      *string      `json:"email" validate:"omitempty,max=255"`
	Phone      *int64       `json:"tel"`
	BirthDate  *models.Date `json:"fecha_Nac"`
}

func (r *DummyRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		r.Email = &e
	}
}

func (r *DummyRequest) Validate() error {
	return validation.Validate(r)
}

func (r *DummyRequest) toModel() *models.Dummy {
	return &models.Dummy{
		ID:         models.DummyID(r.ID),
		Name:       r.Name,
		NationalID: r.NationalID,
		Email:      r.Email,
		Phone:      r.Phone,
		BirthDate:  r.BirthDate,
	}
}
