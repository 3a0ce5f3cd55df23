package handler

import "dummyapi/internal/dummy/models"

type DummyResponse struct {
	ID         int64        `json:"id,omitempty"`
	Name       string       `json:"dummy"`
	NationalID *int64       `json:"dni"`
	Email      *string      `json:"email"`
	Phone      *int64       `json:"tel"`
	BirthDate  *models.Date `json:"fecha_Nac"`
}

func toResponse(d *models.Dummy) *DummyResponse {
	return &DummyResponse{
		ID:         int64(d.ID),
		Name:       d.Name,
		NationalID: d.NationalID,
		Email:      d.Email,
		Phone:      d.Phone,
		BirthDate:  d.BirthDate,
	}
}

func toResponses(ds []*models.Dummy) []*DummyResponse {
	out := make([]*DummyResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toResponse(d))
	}
	return out
}
