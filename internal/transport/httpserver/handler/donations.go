package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	donationsdomain "parish-app-go/internal/domain/donations"
)

type createDonationRequest struct {
	FaithfulID       int64           `json:"faithfulId" validate:"required,gt=0"`
	Year             int             `json:"year" validate:"required,gte=1900,lte=2100"`
	Amount           decimal.Decimal `json:"amount"`
	Date             *date           `json:"date" validate:"required"`
	ContributionType string          `json:"contributionType" validate:"max=50"`
	PaymentMethod    string          `json:"paymentMethod" validate:"max=50"`
	ReferenceNumber  string          `json:"referenceNumber" validate:"max=100"`
	Notes            string          `json:"notes" validate:"max=500"`
	RecordedBy       string          `json:"recordedBy" validate:"max=100"`
}

type updateDonationRequest struct {
	Year             *int             `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Amount           *decimal.Decimal `json:"amount"`
	Date             *date            `json:"date"`
	ContributionType *string          `json:"contributionType" validate:"omitempty,max=50"`
	PaymentMethod    *string          `json:"paymentMethod" validate:"omitempty,max=50"`
	ReferenceNumber  *string          `json:"referenceNumber" validate:"omitempty,max=100"`
	Notes            *string          `json:"notes" validate:"omitempty,max=500"`
	RecordedBy       *string          `json:"recordedBy" validate:"omitempty,max=100"`
}

type donationResponse struct {
	ID               int64           `json:"id"`
	FaithfulID       int64           `json:"faithfulId"`
	FaithfulName     string          `json:"faithfulName"`
	Year             int             `json:"year"`
	Amount           decimal.Decimal `json:"amount"`
	Date             date            `json:"date"`
	ContributionType string          `json:"contributionType"`
	PaymentMethod    string          `json:"paymentMethod"`
	ReferenceNumber  string          `json:"referenceNumber"`
	Notes            string          `json:"notes"`
	RecordedBy       string          `json:"recordedBy"`
	CreatedAt        timestamp       `json:"createdAt"`
	UpdatedAt        timestamp       `json:"updatedAt"`
}

type donationSummaryResponse struct {
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	DonationCount int64           `json:"donationCount"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
	MaxAmount     decimal.Decimal `json:"maxAmount"`
	MinAmount     decimal.Decimal `json:"minAmount"`
	Period        string          `json:"period"`
}

type donorResponse struct {
	FaithfulID   int64           `json:"faithfulId"`
	FaithfulName string          `json:"faithfulName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

func (h *Handlers) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if !h.decodeAndValidate(w, r, "donations.create", &req) {
		return
	}

	created, err := h.Donations.Create(r.Context(), donationsdomain.CreateInput{
		FaithfulID:       req.FaithfulID,
		Year:             req.Year,
		Amount:           req.Amount,
		Date:             req.Date.Time,
		ContributionType: req.ContributionType,
		PaymentMethod:    req.PaymentMethod,
		ReferenceNumber:  req.ReferenceNumber,
		Notes:            req.Notes,
		RecordedBy:       req.RecordedBy,
	})
	if err != nil {
		h.fail(w, r, "donations.create", err, "faithful_id", req.FaithfulID)
		return
	}
	if h.metrics != nil {
		h.metrics.DonationsRecorded.Inc()
	}
	writeJSON(w, http.StatusCreated, toDonationResponse(*created))
}

func (h *Handlers) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req updateDonationRequest
	if !h.decodeAndValidate(w, r, "donations.update", &req) {
		return
	}

	updated, err := h.Donations.Update(r.Context(), id, donationsdomain.UpdateInput{
		Year:             req.Year,
		Amount:           req.Amount,
		Date:             fromDate(req.Date),
		ContributionType: req.ContributionType,
		PaymentMethod:    req.PaymentMethod,
		ReferenceNumber:  req.ReferenceNumber,
		Notes:            req.Notes,
		RecordedBy:       req.RecordedBy,
	})
	if err != nil {
		h.fail(w, r, "donations.update", err, "donation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(*updated))
}

func (h *Handlers) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	donation, err := h.Donations.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "donations.get", err, "donation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(*donation))
}

// ListDonations applies only the first present filter.
func (h *Handlers) ListDonations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	faithfulID, err := parseInt64Param(query.Get("faithfulId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "faithfulId must be a positive integer")
		return
	}
	year, err := parseIntParam(query.Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "year must be a positive integer")
		return
	}
	// The range only matters when it is the selected criterion; the service
	// rejects it as inverted in that case.
	startDate, endDate, ok := parseOptionalDates(w, r)
	if !ok {
		return
	}
	var minAmount *decimal.Decimal
	if raw := strings.TrimSpace(query.Get("minAmount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "minAmount must be a decimal number")
			return
		}
		minAmount = &parsed
	}

	donations, err := h.Donations.Search(r.Context(), donationsdomain.Query{
		FaithfulID:       faithfulID,
		Year:             year,
		StartDate:        startDate,
		EndDate:          endDate,
		ContributionType: query.Get("contributionType"),
		PaymentMethod:    query.Get("paymentMethod"),
		Reference:        query.Get("reference"),
		MinAmount:        minAmount,
	})
	if err != nil {
		h.fail(w, r, "donations.list", err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) ListDonationsByFaithful(w http.ResponseWriter, r *http.Request) {
	faithfulID, err := pathID(r, "faithfulId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	year, err := parseIntParam(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "year must be a positive integer")
		return
	}
	startDate, endDate, ok := parseOptionalRange(w, r)
	if !ok {
		return
	}

	donations, err := h.Donations.List(r.Context(), donationsdomain.ListFilter{
		FaithfulID: faithfulID,
		Year:       year,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		h.fail(w, r, "donations.by_faithful", err, "faithful_id", faithfulID)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) ListDonationsByYear(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	donations, err := h.Donations.List(r.Context(), donationsdomain.ListFilter{Year: year})
	if err != nil {
		h.fail(w, r, "donations.by_year", err, "year", year)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) ListDonationsByType(w http.ResponseWriter, r *http.Request) {
	contributionType := strings.TrimSpace(chi.URLParam(r, "contributionType"))
	startDate, endDate, ok := parseOptionalRange(w, r)
	if !ok {
		return
	}

	donations, err := h.Donations.List(r.Context(), donationsdomain.ListFilter{
		ContributionType: contributionType,
		StartDate:        startDate,
		EndDate:          endDate,
	})
	if err != nil {
		h.fail(w, r, "donations.by_type", err, "contribution_type", contributionType)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Donations.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "donations.delete", err, "donation_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteDonationsByFaithful(w http.ResponseWriter, r *http.Request) {
	faithfulID, err := pathID(r, "faithfulId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	deleted, err := h.Donations.DeleteByFaithful(r.Context(), faithfulID)
	if err != nil {
		h.fail(w, r, "donations.delete_by_faithful", err, "faithful_id", faithfulID)
		return
	}
	h.logFor(r).Info("donations.delete_by_faithful: removed donations", "faithful_id", faithfulID, "count", deleted)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DonationTotalByFaithful(w http.ResponseWriter, r *http.Request) {
	faithfulID, err := pathID(r, "faithfulId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	total, err := h.Donations.TotalByFaithful(r.Context(), faithfulID)
	if err != nil {
		h.fail(w, r, "donations.total_by_faithful", err, "faithful_id", faithfulID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
}

func (h *Handlers) DonationCountByFaithful(w http.ResponseWriter, r *http.Request) {
	faithfulID, err := pathID(r, "faithfulId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	count, err := h.Donations.CountByFaithful(r.Context(), faithfulID)
	if err != nil {
		h.fail(w, r, "donations.count_by_faithful", err, "faithful_id", faithfulID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handlers) DonationTotalByYear(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	total, err := h.Donations.TotalByYear(r.Context(), year)
	if err != nil {
		h.fail(w, r, "donations.total_by_year", err, "year", year)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total, "year": decimal.NewFromInt(int64(year))})
}

// DonationTotal sums every donation, or only those in startDate..endDate when
// both are given.
func (h *Handlers) DonationTotal(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := parseOptionalRange(w, r)
	if !ok {
		return
	}

	var total decimal.Decimal
	var err error
	if startDate != nil && endDate != nil {
		total, err = h.Donations.TotalByDateRange(r.Context(), *startDate, *endDate)
	} else {
		total, err = h.Donations.Total(r.Context())
	}
	if err != nil {
		h.fail(w, r, "donations.total", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
}

func (h *Handlers) DonationSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startDate, err := parseDateRequired(query.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "startDate must be a YYYY-MM-DD date")
		return
	}
	endDate, err := parseDateRequired(query.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "endDate must be a YYYY-MM-DD date")
		return
	}
	period := strings.TrimSpace(query.Get("period"))
	if period == "" {
		period = fmt.Sprintf("%d - %d", startDate.Year(), endDate.Year())
	}

	summary, err := h.Donations.Summary(r.Context(), startDate, endDate, period)
	if err != nil {
		h.fail(w, r, "donations.summary", err)
		return
	}
	writeJSON(w, http.StatusOK, donationSummaryResponse{
		TotalAmount:   summary.TotalAmount,
		DonationCount: summary.DonationCount,
		AverageAmount: summary.AverageAmount,
		MaxAmount:     summary.MaxAmount,
		MinAmount:     summary.MinAmount,
		Period:        summary.Period,
	})
}

func (h *Handlers) DonationYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.Donations.AvailableYears(r.Context())
	if err != nil {
		h.fail(w, r, "donations.available_years", err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

func (h *Handlers) DonationTotalsByType(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	totals, err := h.Donations.TotalsByContributionType(r.Context(), year)
	if err != nil {
		h.fail(w, r, "donations.by_type_totals", err, "year", year)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handlers) DonationMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	totals, err := h.Donations.MonthlyTotals(r.Context(), year)
	if err != nil {
		h.fail(w, r, "donations.monthly", err, "year", year)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handlers) TopDonors(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	limit, err := parseIntParam(r.URL.Query().Get("limit"), 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return
	}

	donors, err := h.Donations.TopDonors(r.Context(), year, limit)
	if err != nil {
		h.fail(w, r, "donations.top_donors", err, "year", year)
		return
	}
	response := make([]donorResponse, 0, len(donors))
	for _, donor := range donors {
		response = append(response, donorResponse{
			FaithfulID:   donor.FaithfulID,
			FaithfulName: donor.FaithfulName,
			TotalAmount:  donor.TotalAmount,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) DonationTotalsBySubparish(w http.ResponseWriter, r *http.Request) {
	year, ok := optionalYear(w, r)
	if !ok {
		return
	}

	totals, err := h.Donations.TotalsBySubparish(r.Context(), year)
	if err != nil {
		h.fail(w, r, "donations.by_subparish", err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handlers) DonationTotalsByBEC(w http.ResponseWriter, r *http.Request) {
	year, ok := optionalYear(w, r)
	if !ok {
		return
	}
	subparish := r.URL.Query().Get("subParish")

	totals, err := h.Donations.TotalsByBEC(r.Context(), subparish, year)
	if err != nil {
		h.fail(w, r, "donations.by_bec", err, "subparish", subparish)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func parseOptionalDates(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	startDate, err := parseDateParam(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "startDate must be a YYYY-MM-DD date")
		return nil, nil, false
	}
	endDate, err := parseDateParam(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "endDate must be a YYYY-MM-DD date")
		return nil, nil, false
	}
	return startDate, endDate, true
}

func parseOptionalRange(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	startDate, endDate, ok := parseOptionalDates(w, r)
	if !ok {
		return nil, nil, false
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		writeError(w, http.StatusBadRequest, "invalid_request", donationsdomain.ErrInvalidRange.Error())
		return nil, nil, false
	}
	return startDate, endDate, true
}

func optionalYear(w http.ResponseWriter, r *http.Request) (*int, bool) {
	year, err := parseIntParam(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "year must be a positive integer")
		return nil, false
	}
	if year == 0 {
		return nil, true
	}
	return &year, true
}

func toDonationResponses(views []donationsdomain.View) []donationResponse {
	response := make([]donationResponse, 0, len(views))
	for _, view := range views {
		response = append(response, toDonationResponse(view))
	}
	return response
}

func toDonationResponse(view donationsdomain.View) donationResponse {
	return donationResponse{
		ID:               view.ID,
		FaithfulID:       view.FaithfulID,
		FaithfulName:     view.FaithfulName,
		Year:             view.Year,
		Amount:           view.Amount,
		Date:             date{Time: view.Date},
		ContributionType: view.ContributionType,
		PaymentMethod:    view.PaymentMethod,
		ReferenceNumber:  view.ReferenceNumber,
		Notes:            view.Notes,
		RecordedBy:       view.RecordedBy,
		CreatedAt:        timestamp{Time: view.CreatedAt},
		UpdatedAt:        timestamp{Time: view.UpdatedAt},
	}
}
