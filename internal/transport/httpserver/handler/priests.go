package handler

import (
	"net/http"
	"strings"

	priestsdomain "parish-app-go/internal/domain/priests"
)

type priestRequest struct {
	ID                int64   `json:"id"`
	Names             string  `json:"names" validate:"required,max=150"`
	PriestType        string  `json:"priestType" validate:"required,enum=DIOCESAN RELIGIOUS EXTERN RETIRED BISHOP DEACON SEMINARIAN"`
	OrdinationDate    *date   `json:"ordinationDate"`
	BirthDate         *date   `json:"birthDate"`
	ParishOfOrigin    string  `json:"parishOfOrigin" validate:"max=150"`
	Email             *string `json:"email" validate:"omitempty,email,max=150"`
	Phone             string  `json:"phone" validate:"max=30"`
	ProfilePictureURL string  `json:"profilePictureUrl"`
	IsActive          *bool   `json:"isActive"`
	IsAssigned        bool    `json:"isAssigned"`
}

type priestResponse struct {
	ID                int64     `json:"id"`
	Names             string    `json:"names"`
	PriestType        string    `json:"priestType"`
	OrdinationDate    *date     `json:"ordinationDate"`
	BirthDate         *date     `json:"birthDate"`
	ParishOfOrigin    string    `json:"parishOfOrigin"`
	Email             *string   `json:"email"`
	Phone             string    `json:"phone"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	IsActive          bool      `json:"isActive"`
	IsAssigned        bool      `json:"isAssigned"`
	CreatedAt         timestamp `json:"createdAt"`
	UpdatedAt         timestamp `json:"updatedAt"`
}

func (h *Handlers) CreatePriest(w http.ResponseWriter, r *http.Request) {
	var req priestRequest
	if !h.decodeAndValidate(w, r, "priests.create", &req) {
		return
	}
	if req.ID <= 0 {
		writeValidationError(w, map[string]string{"id": "must be greater than 0"})
		return
	}

	created, err := h.Priests.Create(r.Context(), req.ID, toPriestInput(req))
	if err != nil {
		args := []any{"priest_id", req.ID}
		if req.Email != nil {
			args = append(args, "email", *req.Email)
		}
		h.fail(w, r, "priests.create", err, args...)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusCreated, toPriestResponse(*created))
}

func (h *Handlers) UpdatePriest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req priestRequest
	if !h.decodeAndValidate(w, r, "priests.update", &req) {
		return
	}

	updated, err := h.Priests.Update(r.Context(), id, toPriestInput(req))
	if err != nil {
		h.fail(w, r, "priests.update", err, "priest_id", id)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusOK, toPriestResponse(*updated))
}

func (h *Handlers) GetPriest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	priest, err := h.Priests.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "priests.get", err, "priest_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toPriestResponse(*priest))
}

func (h *Handlers) ListPriests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	active, err := parseBoolParam(query.Get("active"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "active must be true or false")
		return
	}
	assigned, err := parseBoolParam(query.Get("assigned"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "assigned must be true or false")
		return
	}

	filter := priestsdomain.ListFilter{
		Type:         priestsdomain.PriestType(strings.ToUpper(strings.TrimSpace(query.Get("type")))),
		ActiveOnly:   active != nil && *active,
		AssignedOnly: assigned != nil && *assigned,
	}
	priests, err := h.Priests.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "priests.list", err)
		return
	}

	response := make([]priestResponse, 0, len(priests))
	for _, priest := range priests {
		response = append(response, toPriestResponse(priest))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) DeletePriest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Priests.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "priests.delete", err, "priest_id", id)
		return
	}
	h.dashboardsChanged()
	w.WriteHeader(http.StatusNoContent)
}

func toPriestInput(req priestRequest) priestsdomain.Input {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return priestsdomain.Input{
		Names:             req.Names,
		PriestType:        priestsdomain.PriestType(req.PriestType),
		OrdinationDate:    fromDate(req.OrdinationDate),
		BirthDate:         fromDate(req.BirthDate),
		ParishOfOrigin:    req.ParishOfOrigin,
		Email:             req.Email,
		Phone:             req.Phone,
		ProfilePictureURL: req.ProfilePictureURL,
		IsActive:          isActive,
		IsAssigned:        req.IsAssigned,
	}
}

func toPriestResponse(priest priestsdomain.Priest) priestResponse {
	return priestResponse{
		ID:                priest.ID,
		Names:             priest.Names,
		PriestType:        string(priest.PriestType),
		OrdinationDate:    toDate(priest.OrdinationDate),
		BirthDate:         toDate(priest.BirthDate),
		ParishOfOrigin:    priest.ParishOfOrigin,
		Email:             priest.Email,
		Phone:             priest.Phone,
		ProfilePictureURL: priest.ProfilePictureURL,
		IsActive:          priest.IsActive,
		IsAssigned:        priest.IsAssigned,
		CreatedAt:         timestamp{Time: priest.CreatedAt},
		UpdatedAt:         timestamp{Time: priest.UpdatedAt},
	}
}
