package handler

import (
	"net/http"
	"strings"

	eventsdomain "parish-app-go/internal/domain/events"
)

type eventRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	EventDate   *date  `json:"eventDate" validate:"required"`
	Location    string `json:"location" validate:"required,max=200"`
	EventType   string `json:"eventType" validate:"required,enum=MASS WEDDING BAPTISM FUNERAL CONFIRMATION FIRST_COMMUNION RETREAT MEETING FEAST OTHER"`
	IsPublic    *bool  `json:"isPublic"`
	ImageURL    string `json:"imageUrl"`
}

type eventResponse struct {
	ID               int64     `json:"id"`
	Kind             string    `json:"kind"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EventDate        date      `json:"eventDate"`
	Location         string    `json:"location"`
	EventType        string    `json:"eventType"`
	IsPublic         bool      `json:"isPublic"`
	ImageURL         string    `json:"imageUrl"`
	MassType         string    `json:"massType,omitempty"`
	LiturgicalSeason *string   `json:"liturgicalSeason,omitempty"`
	Readings         string    `json:"readings,omitempty"`
	MainCelebrantID  int64     `json:"mainCelebrantId,omitempty"`
	ConcelebrantIDs  []int64   `json:"concelebrantIds,omitempty"`
	CreatedAt        timestamp `json:"createdAt"`
	UpdatedAt        timestamp `json:"updatedAt"`
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !h.decodeAndValidate(w, r, "events.create", &req) {
		return
	}

	created, err := h.Events.CreateEvent(r.Context(), toEventInput(req))
	if err != nil {
		h.fail(w, r, "events.create", err)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusCreated, toEventResponse(*created))
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req eventRequest
	if !h.decodeAndValidate(w, r, "events.update", &req) {
		return
	}

	updated, err := h.Events.UpdateEvent(r.Context(), id, toEventInput(req))
	if err != nil {
		h.fail(w, r, "events.update", err, "event_id", id)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusOK, toEventResponse(*updated))
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	event, err := h.Events.GetEvent(r.Context(), id)
	if err != nil {
		h.fail(w, r, "events.get", err, "event_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
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
	year, err := parseIntParam(query.Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "year must be a positive integer")
		return
	}
	month, err := parseIntParam(query.Get("month"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "month must be a positive integer")
		return
	}
	public, err := parseBoolParam(query.Get("public"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "public must be true or false")
		return
	}

	events, err := h.Events.ListEvents(r.Context(), eventsdomain.EventFilter{
		StartDate:  startDate,
		EndDate:    endDate,
		EventType:  eventsdomain.EventType(strings.ToUpper(strings.TrimSpace(query.Get("eventType")))),
		Year:       year,
		Month:      month,
		PublicOnly: public != nil && *public,
	})
	if err != nil {
		h.fail(w, r, "events.list", err)
		return
	}

	response := make([]eventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Events.DeleteEvent(r.Context(), id); err != nil {
		h.fail(w, r, "events.delete", err, "event_id", id)
		return
	}
	h.dashboardsChanged()
	w.WriteHeader(http.StatusNoContent)
}

func toEventInput(req eventRequest) eventsdomain.EventInput {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	return eventsdomain.EventInput{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate.Time,
		Location:    req.Location,
		EventType:   eventsdomain.EventType(req.EventType),
		IsPublic:    isPublic,
		ImageURL:    req.ImageURL,
	}
}

func toEventResponse(event eventsdomain.Event) eventResponse {
	response := eventResponse{
		ID:          event.ID,
		Kind:        string(event.Kind),
		Title:       event.Title,
		Description: event.Description,
		EventDate:   date{Time: event.EventDate},
		Location:    event.Location,
		EventType:   string(event.EventType),
		IsPublic:    event.IsPublic,
		ImageURL:    event.ImageURL,
		CreatedAt:   timestamp{Time: event.CreatedAt},
		UpdatedAt:   timestamp{Time: event.UpdatedAt},
	}
	if event.IsMass() {
		response.MassType = string(event.Mass.MassType)
		response.LiturgicalSeason = seasonString(event.Mass.LiturgicalSeason)
		response.Readings = event.Mass.Readings
		response.MainCelebrantID = event.Mass.MainCelebrantID
		response.ConcelebrantIDs = event.Mass.ConcelebrantIDs
	}
	return response
}
