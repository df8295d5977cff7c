package handler

import (
	"net/http"
	"strings"

	eventsdomain "parish-app-go/internal/domain/events"
)

type massRequest struct {
	Title            string  `json:"title" validate:"max=100"`
	Description      string  `json:"description" validate:"max=2000"`
	EventDate        *date   `json:"eventDate" validate:"required"`
	Location         string  `json:"location" validate:"required,max=200"`
	IsPublic         *bool   `json:"isPublic"`
	ImageURL         string  `json:"imageUrl"`
	MassType         string  `json:"massType" validate:"required,enum=SUNDAY WEEKDAY SOLEMNITY FEAST MEMORIAL FUNERAL WEDDING REQUIEM SPECIAL"`
	LiturgicalSeason *string `json:"liturgicalSeason" validate:"omitempty,enum=ADVENT CHRISTMAS ORDINARY_TIME LENT EASTER_TRIDUUM EASTER"`
	Readings         string  `json:"readings"`
	MainCelebrantID  int64   `json:"mainCelebrantId" validate:"required,gt=0"`
	ConcelebrantIDs  []int64 `json:"concelebrantIds" validate:"dive,gt=0"`
}

type celebrantResponse struct {
	ID                int64   `json:"id"`
	Names             string  `json:"names"`
	PriestType        string  `json:"priestType"`
	Email             *string `json:"email"`
	Phone             string  `json:"phone"`
	ProfilePictureURL string  `json:"profilePictureUrl"`
}

type massIntentionResponse struct {
	ID            int64  `json:"id"`
	IntentionType string `json:"intentionType"`
	IntentionText string `json:"intentionText"`
	IsPaid        bool   `json:"isPaid"`
	RequestorName string `json:"requestorName"`
}

type massResponse struct {
	ID               int64                   `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	EventDate        date                    `json:"eventDate"`
	Location         string                  `json:"location"`
	EventType        string                  `json:"eventType"`
	IsPublic         bool                    `json:"isPublic"`
	ImageURL         string                  `json:"imageUrl"`
	MassType         string                  `json:"massType"`
	LiturgicalSeason *string                 `json:"liturgicalSeason"`
	Readings         string                  `json:"readings"`
	MainCelebrant    celebrantResponse       `json:"mainCelebrant"`
	Concelebrants    []celebrantResponse     `json:"concelebrants"`
	Intentions       []massIntentionResponse `json:"intentions"`
	CreatedAt        timestamp               `json:"createdAt"`
	UpdatedAt        timestamp               `json:"updatedAt"`
}

func (h *Handlers) CreateMass(w http.ResponseWriter, r *http.Request) {
	var req massRequest
	if !h.decodeAndValidate(w, r, "masses.create", &req) {
		return
	}

	created, err := h.Events.CreateMass(r.Context(), toMassInput(req))
	if err != nil {
		h.fail(w, r, "masses.create", err, "main_celebrant_id", req.MainCelebrantID)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusCreated, toMassResponse(*created))
}

func (h *Handlers) UpdateMass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req massRequest
	if !h.decodeAndValidate(w, r, "masses.update", &req) {
		return
	}

	updated, err := h.Events.UpdateMass(r.Context(), id, toMassInput(req))
	if err != nil {
		h.fail(w, r, "masses.update", err, "mass_id", id)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusOK, toMassResponse(*updated))
}

func (h *Handlers) GetMass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	mass, err := h.Events.GetMass(r.Context(), id)
	if err != nil {
		h.fail(w, r, "masses.get", err, "mass_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toMassResponse(*mass))
}

func (h *Handlers) ListMasses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startDate, err := parseDateParam(query.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "startDate must be a YYYY-MM-DD date")
		return
	}
	endDate, err := parseDateParam(query.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "endDate must be a YYYY-MM-DD date")
		return
	}
	onDate, err := parseDateParam(query.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be a YYYY-MM-DD date")
		return
	}
	priestID, err := parseInt64Param(query.Get("priestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "priestId must be a positive integer")
		return
	}

	masses, err := h.Events.ListMasses(r.Context(), eventsdomain.MassFilter{
		StartDate: startDate,
		EndDate:   endDate,
		Date:      onDate,
		MassType:  eventsdomain.MassType(strings.ToUpper(strings.TrimSpace(query.Get("massType")))),
		PriestID:  priestID,
	})
	if err != nil {
		h.fail(w, r, "masses.list", err)
		return
	}
	writeJSON(w, http.StatusOK, toMassResponses(masses))
}

func (h *Handlers) ListMassesByPriest(w http.ResponseWriter, r *http.Request) {
	priestID, err := pathID(r, "priestId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	masses, err := h.Events.ListMassesByPriest(r.Context(), priestID)
	if err != nil {
		h.fail(w, r, "masses.by_priest", err, "priest_id", priestID)
		return
	}
	writeJSON(w, http.StatusOK, toMassResponses(masses))
}

func (h *Handlers) DeleteMass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Events.DeleteMass(r.Context(), id); err != nil {
		h.fail(w, r, "masses.delete", err, "mass_id", id)
		return
	}
	h.dashboardsChanged()
	w.WriteHeader(http.StatusNoContent)
}

func toMassInput(req massRequest) eventsdomain.MassInput {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	var season *eventsdomain.LiturgicalSeason
	if req.LiturgicalSeason != nil {
		value := eventsdomain.LiturgicalSeason(*req.LiturgicalSeason)
		season = &value
	}
	return eventsdomain.MassInput{
		Title:            req.Title,
		Description:      req.Description,
		EventDate:        req.EventDate.Time,
		Location:         req.Location,
		IsPublic:         isPublic,
		ImageURL:         req.ImageURL,
		MassType:         eventsdomain.MassType(req.MassType),
		LiturgicalSeason: season,
		Readings:         req.Readings,
		MainCelebrantID:  req.MainCelebrantID,
		ConcelebrantIDs:  req.ConcelebrantIDs,
	}
}

func toMassResponses(masses []eventsdomain.MassView) []massResponse {
	response := make([]massResponse, 0, len(masses))
	for _, mass := range masses {
		response = append(response, toMassResponse(mass))
	}
	return response
}

func toMassResponse(view eventsdomain.MassView) massResponse {
	response := massResponse{
		ID:            view.ID,
		Title:         view.Title,
		Description:   view.Description,
		EventDate:     date{Time: view.EventDate},
		Location:      view.Location,
		EventType:     string(view.EventType),
		IsPublic:      view.IsPublic,
		ImageURL:      view.ImageURL,
		MainCelebrant: toCelebrantResponse(view.MainCelebrant),
		Concelebrants: make([]celebrantResponse, 0, len(view.Concelebrants)),
		Intentions:    make([]massIntentionResponse, 0, len(view.Intentions)),
		CreatedAt:     timestamp{Time: view.CreatedAt},
		UpdatedAt:     timestamp{Time: view.UpdatedAt},
	}
	if view.Mass != nil {
		response.MassType = string(view.Mass.MassType)
		response.LiturgicalSeason = seasonString(view.Mass.LiturgicalSeason)
		response.Readings = view.Mass.Readings
	}
	for _, celebrant := range view.Concelebrants {
		response.Concelebrants = append(response.Concelebrants, toCelebrantResponse(celebrant))
	}
	for _, intention := range view.Intentions {
		response.Intentions = append(response.Intentions, massIntentionResponse{
			ID:            intention.ID,
			IntentionType: intention.IntentionType,
			IntentionText: intention.IntentionText,
			IsPaid:        intention.IsPaid,
			RequestorName: intention.RequestorName,
		})
	}
	return response
}

func toCelebrantResponse(celebrant eventsdomain.CelebrantSummary) celebrantResponse {
	return celebrantResponse{
		ID:                celebrant.ID,
		Names:             celebrant.Names,
		PriestType:        celebrant.PriestType,
		Email:             celebrant.Email,
		Phone:             celebrant.Phone,
		ProfilePictureURL: celebrant.ProfilePictureURL,
	}
}

func seasonString(season *eventsdomain.LiturgicalSeason) *string {
	if season == nil {
		return nil
	}
	value := string(*season)
	return &value
}
