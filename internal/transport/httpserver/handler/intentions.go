package handler

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	intentionsdomain "parish-app-go/internal/domain/intentions"
)

type intentionRequest struct {
	IntentionType        string           `json:"intentionType" validate:"required,enum=DECEASED SICK THANKSGIVING SPECIAL_NEED ANNIVERSARY BIRTHDAY PATRON_SAINT OTHER"`
	IntentionText        string           `json:"intentionText" validate:"required,max=1000"`
	RequestedDate        *date            `json:"requestedDate"`
	IsPaid               *bool            `json:"isPaid"`
	OfferingAmount       *decimal.Decimal `json:"offeringAmount"`
	MassID               *int64           `json:"massId" validate:"omitempty,gt=0"`
	FaithfulID           *int64           `json:"faithfulId" validate:"omitempty,gt=0"`
	ExternalFaithfulName *string          `json:"externalFaithfulName" validate:"omitempty,max=150"`
}

type paymentRequest struct {
	IsPaid *bool `json:"isPaid" validate:"required"`
}

type intentionMassResponse struct {
	ID                int64  `json:"id"`
	MassDate          date   `json:"massDate"`
	MassType          string `json:"massType"`
	MainCelebrantName string `json:"mainCelebrantName"`
}

type intentionResponse struct {
	ID                   int64                  `json:"id"`
	IntentionType        string                 `json:"intentionType"`
	IntentionText        string                 `json:"intentionText"`
	RequestedDate        date                   `json:"requestedDate"`
	IsPaid               bool                   `json:"isPaid"`
	OfferingAmount       *decimal.Decimal       `json:"offeringAmount"`
	MassID               *int64                 `json:"massId"`
	FaithfulID           *int64                 `json:"faithfulId"`
	ExternalFaithfulName *string                `json:"externalFaithfulName"`
	RequestorName        string                 `json:"requestorName"`
	Mass                 *intentionMassResponse `json:"mass"`
	CreatedAt            timestamp              `json:"createdAt"`
}

func (h *Handlers) CreateIntention(w http.ResponseWriter, r *http.Request) {
	var req intentionRequest
	if !h.decodeAndValidate(w, r, "intentions.create", &req) {
		return
	}

	created, err := h.Intentions.Create(r.Context(), toIntentionInput(req))
	if err != nil {
		h.fail(w, r, "intentions.create", err)
		return
	}
	if h.metrics != nil {
		h.metrics.IntentionsRecorded.Inc()
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusCreated, toIntentionResponse(*created))
}

func (h *Handlers) UpdateIntention(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req intentionRequest
	if !h.decodeAndValidate(w, r, "intentions.update", &req) {
		return
	}

	updated, err := h.Intentions.Update(r.Context(), id, toIntentionInput(req))
	if err != nil {
		h.fail(w, r, "intentions.update", err, "intention_id", id)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusOK, toIntentionResponse(*updated))
}

func (h *Handlers) GetIntention(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	intention, err := h.Intentions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "intentions.get", err, "intention_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toIntentionResponse(*intention))
}

func (h *Handlers) ListIntentions(w http.ResponseWriter, r *http.Request) {
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
	massID, err := parseInt64Param(query.Get("massId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "massId must be a positive integer")
		return
	}
	faithfulID, err := parseInt64Param(query.Get("faithfulId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "faithfulId must be a positive integer")
		return
	}
	unpaid, err := parseBoolParam(query.Get("unpaid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unpaid must be true or false")
		return
	}

	intentions, err := h.Intentions.List(r.Context(), intentionsdomain.ListFilter{
		StartDate:     startDate,
		EndDate:       endDate,
		IntentionType: intentionsdomain.IntentionType(strings.ToUpper(strings.TrimSpace(query.Get("intentionType")))),
		MassID:        massID,
		FaithfulID:    faithfulID,
		UnpaidOnly:    unpaid != nil && *unpaid,
	})
	if err != nil {
		h.fail(w, r, "intentions.list", err)
		return
	}

	response := make([]intentionResponse, 0, len(intentions))
	for _, intention := range intentions {
		response = append(response, toIntentionResponse(intention))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateIntentionPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req paymentRequest
	if !h.decodeAndValidate(w, r, "intentions.payment", &req) {
		return
	}

	updated, err := h.Intentions.MarkPaid(r.Context(), id, *req.IsPaid)
	if err != nil {
		h.fail(w, r, "intentions.payment", err, "intention_id", id)
		return
	}
	h.dashboardsChanged()
	writeJSON(w, http.StatusOK, toIntentionResponse(*updated))
}

func (h *Handlers) DeleteIntention(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Intentions.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "intentions.delete", err, "intention_id", id)
		return
	}
	h.dashboardsChanged()
	w.WriteHeader(http.StatusNoContent)
}

func toIntentionInput(req intentionRequest) intentionsdomain.Input {
	return intentionsdomain.Input{
		IntentionType:        intentionsdomain.IntentionType(req.IntentionType),
		IntentionText:        req.IntentionText,
		RequestedDate:        fromDate(req.RequestedDate),
		IsPaid:               req.IsPaid,
		OfferingAmount:       req.OfferingAmount,
		MassID:               req.MassID,
		FaithfulID:           req.FaithfulID,
		ExternalFaithfulName: req.ExternalFaithfulName,
	}
}

func toIntentionResponse(view intentionsdomain.View) intentionResponse {
	response := intentionResponse{
		ID:                   view.ID,
		IntentionType:        string(view.IntentionType),
		IntentionText:        view.IntentionText,
		RequestedDate:        date{Time: view.RequestedDate},
		IsPaid:               view.IsPaid,
		OfferingAmount:       view.OfferingAmount,
		MassID:               view.MassID,
		FaithfulID:           view.FaithfulID,
		ExternalFaithfulName: view.ExternalFaithfulName,
		RequestorName:        view.RequestorName,
		CreatedAt:            timestamp{Time: view.CreatedAt},
	}
	if view.Mass != nil {
		response.Mass = &intentionMassResponse{
			ID:                view.Mass.ID,
			MassDate:          date{Time: view.Mass.MassDate},
			MassType:          view.Mass.MassType,
			MainCelebrantName: view.Mass.MainCelebrantName,
		}
	}
	return response
}
