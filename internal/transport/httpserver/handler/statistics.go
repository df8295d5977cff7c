package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
	statisticsdomain "parish-app-go/internal/domain/statistics"
)

type celebrantCountResponse struct {
	PriestID   int64   `json:"priestId"`
	Names      string  `json:"names"`
	PriestType string  `json:"priestType"`
	Email      *string `json:"email"`
	Phone      string  `json:"phone"`
	IsAssigned bool    `json:"isAssigned"`
	MassCount  int64   `json:"massCount"`
}

type rankedPriestResponse struct {
	Rank int `json:"rank"`
	celebrantCountResponse
}

type massStatisticsResponse struct {
	TotalMasses           int64                    `json:"totalMasses"`
	MassesByType          map[string]int64         `json:"massesByType"`
	TopCelebratingPriests []celebrantCountResponse `json:"topCelebratingPriests"`
}

type intentionStatisticsResponse struct {
	TotalIntentions       int64            `json:"totalIntentions"`
	IntentionsByType      map[string]int64 `json:"intentionsByType"`
	DeceasedIntentions    int64            `json:"deceasedIntentions"`
	UnpaidIntentionsCount int64            `json:"unpaidIntentionsCount"`
	PaymentRate           string           `json:"paymentRate"`
}

type unpaidIntentionResponse struct {
	IntentionID   int64  `json:"intentionId"`
	IntentionType string `json:"intentionType"`
	IntentionText string `json:"intentionText"`
	RequestedDate date   `json:"requestedDate"`
	RequestorName string `json:"requestorName"`
	MassID        *int64 `json:"massId"`
	MassDate      *date  `json:"massDate"`
}

type priestStatisticsResponse struct {
	TotalPriests                int64            `json:"totalPriests"`
	PriestsByType               map[string]int64 `json:"priestsByType"`
	ActivePriests               int64            `json:"activePriests"`
	InactivePriests             int64            `json:"inactivePriests"`
	PriestsCelebratingThisMonth int64            `json:"priestsCelebratingThisMonth"`
}

type typeShareResponse struct {
	PriestType string `json:"priestType"`
	Count      int64  `json:"count"`
	Percentage string `json:"percentage"`
}

type priestTypeBreakdownResponse struct {
	TotalPriests  int64               `json:"totalPriests"`
	TypeBreakdown []typeShareResponse `json:"typeBreakdown"`
}

type yearCountResponse struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

type periodResponse struct {
	StartDate date `json:"startDate"`
	EndDate   date `json:"endDate"`
}

type dashboardResponse struct {
	Period             periodResponse   `json:"period"`
	TotalMasses        int64            `json:"totalMasses"`
	TotalIntentions    int64            `json:"totalIntentions"`
	TotalEvents        int64            `json:"totalEvents"`
	TotalPriests       int64            `json:"totalPriests"`
	NewPriests         int64            `json:"newPriests"`
	DeceasedIntentions int64            `json:"deceasedIntentions"`
	UnpaidIntentions   int64            `json:"unpaidIntentions"`
	MassTypeBreakdown  map[string]int64 `json:"massTypeBreakdown"`
	MassesToday        int64            `json:"massesToday"`
}

type monthlyMassesResponse struct {
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	MassCount int64  `json:"massCount"`
}

type monthlyOfferingResponse struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type yearStatisticsResponse struct {
	Year                   int                       `json:"year"`
	MonthlyMasses          []monthlyMassesResponse   `json:"monthlyMasses"`
	MonthlyOfferings       []monthlyOfferingResponse `json:"monthlyOfferings"`
	TotalMassesForYear     int64                     `json:"totalMassesForYear"`
	TotalIntentionsForYear int64                     `json:"totalIntentionsForYear"`
}

type periodTotalsResponse struct {
	StartDate  date  `json:"startDate"`
	EndDate    date  `json:"endDate"`
	Masses     int64 `json:"masses"`
	Intentions int64 `json:"intentions"`
}

type comparisonResponse struct {
	Period1 periodTotalsResponse `json:"period1"`
	Period2 periodTotalsResponse `json:"period2"`
	Changes struct {
		MassChange             int64  `json:"massChange"`
		IntentionChange        int64  `json:"intentionChange"`
		MassPercentChange      string `json:"massPercentChange"`
		IntentionPercentChange string `json:"intentionPercentChange"`
	} `json:"changes"`
}

func (h *Handlers) MassStatistics(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	stats, err := h.Statistics.MassStatistics(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.masses", err)
		return
	}
	writeJSON(w, http.StatusOK, massStatisticsResponse{
		TotalMasses:           stats.TotalMasses,
		MassesByType:          stats.MassesByType,
		TopCelebratingPriests: toCelebrantCountResponses(stats.TopCelebratingPriests),
	})
}

func (h *Handlers) MassCountByPriest(w http.ResponseWriter, r *http.Request) {
	priestID, err := pathID(r, "priestId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	count, err := h.Statistics.MassCountByPriest(r.Context(), priestID, period)
	if err != nil {
		h.fail(w, r, "statistics.masses_by_priest", err, "priest_id", priestID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"priestId": priestID, "massCount": count})
}

func (h *Handlers) YearlyMassCounts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Statistics.YearlyMassCounts(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.masses_yearly", err)
		return
	}
	writeJSON(w, http.StatusOK, toYearCountResponses(rows))
}

func (h *Handlers) MassTypeDistribution(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	distribution, err := h.Statistics.MassTypeDistribution(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.mass_types", err)
		return
	}
	writeJSON(w, http.StatusOK, distribution)
}

func (h *Handlers) IntentionTypeCounts(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	counts, err := h.Statistics.IntentionCountsByType(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.intention_types", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *Handlers) TopCelebratingPriests(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return
	}

	ranked, err := h.Statistics.TopCelebratingPriests(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "statistics.top_priests", err)
		return
	}
	response := make([]rankedPriestResponse, 0, len(ranked))
	for _, priest := range ranked {
		response = append(response, rankedPriestResponse{
			Rank:                   priest.Rank,
			celebrantCountResponse: toCelebrantCountResponse(priest.CelebrantCount),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) AllCelebratingPriests(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Statistics.AllCelebratingPriests(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.celebrating_priests", err)
		return
	}
	writeJSON(w, http.StatusOK, toCelebrantCountResponses(rows))
}

func (h *Handlers) PriestStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Statistics.PriestStatistics(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.priests", err)
		return
	}
	writeJSON(w, http.StatusOK, priestStatisticsResponse{
		TotalPriests:                stats.TotalPriests,
		PriestsByType:               stats.PriestsByType,
		ActivePriests:               stats.ActivePriests,
		InactivePriests:             stats.InactivePriests,
		PriestsCelebratingThisMonth: stats.PriestsCelebratingThisMonth,
	})
}

func (h *Handlers) CelebratingPriestsInPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	rows, err := h.Statistics.CelebratingPriests(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.priests_in_period", err)
		return
	}
	writeJSON(w, http.StatusOK, toCelebrantCountResponses(rows))
}

func (h *Handlers) PriestWorkload(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	rows, err := h.Statistics.PriestWorkload(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.priest_workload", err)
		return
	}
	writeJSON(w, http.StatusOK, toCelebrantCountResponses(rows))
}

func (h *Handlers) PriestTypeBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.Statistics.PriestTypeBreakdown(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.priest_types", err)
		return
	}
	response := priestTypeBreakdownResponse{
		TotalPriests:  breakdown.TotalPriests,
		TypeBreakdown: make([]typeShareResponse, 0, len(breakdown.TypeBreakdown)),
	}
	for _, share := range breakdown.TypeBreakdown {
		response.TypeBreakdown = append(response.TypeBreakdown, typeShareResponse{
			PriestType: share.PriestType,
			Count:      share.Count,
			Percentage: share.Percentage,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) OrdinationYears(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Statistics.OrdinationYearCounts(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.ordination_years", err)
		return
	}
	writeJSON(w, http.StatusOK, toYearCountResponses(rows))
}

func (h *Handlers) IntentionStatistics(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	stats, err := h.Statistics.IntentionStatistics(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.intentions", err)
		return
	}
	writeJSON(w, http.StatusOK, intentionStatisticsResponse{
		TotalIntentions:       stats.TotalIntentions,
		IntentionsByType:      stats.IntentionsByType,
		DeceasedIntentions:    stats.DeceasedIntentions,
		UnpaidIntentionsCount: stats.UnpaidIntentionsCount,
		PaymentRate:           stats.PaymentRate,
	})
}

func (h *Handlers) UnpaidIntentionDetails(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Statistics.UnpaidIntentions(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.unpaid_intentions", err)
		return
	}
	response := make([]unpaidIntentionResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, unpaidIntentionResponse{
			IntentionID:   row.IntentionID,
			IntentionType: row.IntentionType,
			IntentionText: row.IntentionText,
			RequestedDate: date{Time: row.RequestedDate},
			RequestorName: row.RequestorName,
			MassID:        row.MassID,
			MassDate:      toDate(row.MassDate),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredPeriod(w, r, "startDate", "endDate")
	if !ok {
		return
	}

	dashboard, err := h.Statistics.Dashboard(r.Context(), period)
	if err != nil {
		h.fail(w, r, "statistics.dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func (h *Handlers) CurrentMonthDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Statistics.CurrentMonthDashboard(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.dashboard_month", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func (h *Handlers) CurrentWeekDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Statistics.CurrentWeekDashboard(r.Context())
	if err != nil {
		h.fail(w, r, "statistics.dashboard_week", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func (h *Handlers) YearStatistics(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stats, err := h.Statistics.YearStatistics(r.Context(), year)
	if err != nil {
		h.fail(w, r, "statistics.year", err, "year", year)
		return
	}
	response := yearStatisticsResponse{
		Year:                   stats.Year,
		MonthlyMasses:          make([]monthlyMassesResponse, 0, len(stats.MonthlyMasses)),
		MonthlyOfferings:       make([]monthlyOfferingResponse, 0, len(stats.MonthlyOfferings)),
		TotalMassesForYear:     stats.TotalMassesForYear,
		TotalIntentionsForYear: stats.TotalIntentionsForYear,
	}
	for _, month := range stats.MonthlyMasses {
		response.MonthlyMasses = append(response.MonthlyMasses, monthlyMassesResponse{
			Month:     month.Month,
			MonthName: month.MonthName,
			MassCount: month.MassCount,
		})
	}
	for _, offering := range stats.MonthlyOfferings {
		response.MonthlyOfferings = append(response.MonthlyOfferings, monthlyOfferingResponse{
			Month: offering.Month,
			Total: offering.Total,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ComparePeriods(w http.ResponseWriter, r *http.Request) {
	period1, ok := requiredPeriod(w, r, "period1Start", "period1End")
	if !ok {
		return
	}
	period2, ok := requiredPeriod(w, r, "period2Start", "period2End")
	if !ok {
		return
	}

	comparison, err := h.Statistics.Compare(r.Context(), period1, period2)
	if err != nil {
		h.fail(w, r, "statistics.compare", err)
		return
	}

	var response comparisonResponse
	response.Period1 = toPeriodTotalsResponse(comparison.Period1)
	response.Period2 = toPeriodTotalsResponse(comparison.Period2)
	response.Changes.MassChange = comparison.Changes.MassChange
	response.Changes.IntentionChange = comparison.Changes.IntentionChange
	response.Changes.MassPercentChange = comparison.Changes.MassPercentChange
	response.Changes.IntentionPercentChange = comparison.Changes.IntentionPercentChange
	writeJSON(w, http.StatusOK, response)
}

func requiredPeriod(w http.ResponseWriter, r *http.Request, startKey, endKey string) (statisticsdomain.Period, bool) {
	start, err := parseDateRequired(r.URL.Query().Get(startKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", startKey+" must be a YYYY-MM-DD date")
		return statisticsdomain.Period{}, false
	}
	end, err := parseDateRequired(r.URL.Query().Get(endKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", endKey+" must be a YYYY-MM-DD date")
		return statisticsdomain.Period{}, false
	}
	return statisticsdomain.Period{Start: start, End: end}, true
}

func toCelebrantCountResponses(rows []statisticsdomain.CelebrantCount) []celebrantCountResponse {
	response := make([]celebrantCountResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toCelebrantCountResponse(row))
	}
	return response
}

func toCelebrantCountResponse(row statisticsdomain.CelebrantCount) celebrantCountResponse {
	return celebrantCountResponse{
		PriestID:   row.PriestID,
		Names:      row.Names,
		PriestType: row.PriestType,
		Email:      row.Email,
		Phone:      row.Phone,
		IsAssigned: row.IsAssigned,
		MassCount:  row.MassCount,
	}
}

func toYearCountResponses(rows []statisticsdomain.YearCount) []yearCountResponse {
	response := make([]yearCountResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, yearCountResponse{Year: row.Year, Count: row.Count})
	}
	return response
}

func toDashboardResponse(dashboard statisticsdomain.Dashboard) dashboardResponse {
	return dashboardResponse{
		Period: periodResponse{
			StartDate: date{Time: dashboard.Period.Start},
			EndDate:   date{Time: dashboard.Period.End},
		},
		TotalMasses:        dashboard.TotalMasses,
		TotalIntentions:    dashboard.TotalIntentions,
		TotalEvents:        dashboard.TotalEvents,
		TotalPriests:       dashboard.TotalPriests,
		NewPriests:         dashboard.NewPriests,
		DeceasedIntentions: dashboard.DeceasedIntentions,
		UnpaidIntentions:   dashboard.UnpaidIntentions,
		MassTypeBreakdown:  dashboard.MassTypeBreakdown,
		MassesToday:        dashboard.MassesToday,
	}
}

func toPeriodTotalsResponse(totals statisticsdomain.PeriodTotals) periodTotalsResponse {
	return periodTotalsResponse{
		StartDate:  date{Time: totals.StartDate},
		EndDate:    date{Time: totals.EndDate},
		Masses:     totals.Masses,
		Intentions: totals.Intentions,
	}
}

// dashboardsChanged drops cached dashboards after a write they summarize.
func (h *Handlers) dashboardsChanged() {
	if h.Statistics != nil {
		h.Statistics.InvalidateDashboards()
	}
}
