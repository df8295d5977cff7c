package handler

import (
	"net/http"
	"strings"

	faithfuldomain "parish-app-go/internal/domain/faithful"
)

type lapseRequest struct {
	LapseType   string `json:"lapseType" validate:"required,max=100"`
	LapseDate   *date  `json:"lapseDate"`
	LapseReason string `json:"lapseReason" validate:"max=500"`
	ReturnDate  *date  `json:"returnDate"`
}

type faithfulRequest struct {
	FirstName     string `json:"firstname" validate:"required,max=100"`
	Name          string `json:"name" validate:"required,max=100"`
	FatherName    string `json:"fatherName" validate:"max=100"`
	MotherName    string `json:"motherName" validate:"max=100"`
	GodparentName string `json:"godparentName" validate:"max=100"`

	DateOfBirth     *date   `json:"dateOfBirth"`
	DateOfBaptism   *date   `json:"dateOfBaptism"`
	BaptismID       *string `json:"baptismId" validate:"omitempty,max=50"`
	BaptismMinister string  `json:"baptismMinister" validate:"max=100"`

	DateOfFirstCommunion *date `json:"dateOfFirstCommunion"`

	DateOfConfirmation *date   `json:"dateOfConfirmation"`
	ConfirmationID     *string `json:"confirmationId" validate:"omitempty,max=50"`

	DateOfMatrimony *date   `json:"dateOfMatrimony"`
	MatrimonyID     *string `json:"matrimonyId" validate:"omitempty,max=50"`
	SpouseName      string  `json:"spouseName" validate:"max=100"`
	SpouseBaptismID *string `json:"spouseBaptismId" validate:"omitempty,max=50"`

	HasDiaconate     bool  `json:"hasDiaconate"`
	DateOfDiaconate  *date `json:"dateOfDiaconate"`
	HasPriesthood    bool  `json:"hasPriesthood"`
	DateOfPriesthood *date `json:"dateOfPriesthood"`
	HasEpiscopate    bool  `json:"hasEpiscopate"`
	DateOfEpiscopate *date `json:"dateOfEpiscopate"`

	CongregationName        string `json:"congregationName" validate:"max=150"`
	HasTemporalProfession   bool   `json:"hasTemporalProfession"`
	DateTemporalProfession  *date  `json:"dateTemporalProfession"`
	HasPermanentProfession  bool   `json:"hasPermanentProfession"`
	DatePermanentProfession *date  `json:"datePermanentProfession"`

	Ministries           []string       `json:"ministries" validate:"dive,required,max=50"`
	OtherMinistryDetails string         `json:"otherMinistryDetails"`
	LapseHistory         []lapseRequest `json:"lapseHistory" validate:"dive"`

	HasRelocated  bool   `json:"hasRelocated"`
	NewParishName string `json:"newParishName" validate:"max=150"`
	IsDeceased    bool   `json:"isDeceased"`
	DateOfDeath   *date  `json:"dateOfDeath"`

	Diocese                 string `json:"diocese" validate:"max=100"`
	Parish                  string `json:"parish" validate:"max=100"`
	Subparish               string `json:"subparish" validate:"max=100"`
	BasicEcclesialCommunity string `json:"basicEcclesialCommunity" validate:"max=100"`
}

type lapseResponse struct {
	ID          int64  `json:"id"`
	LapseType   string `json:"lapseType"`
	LapseDate   *date  `json:"lapseDate"`
	LapseReason string `json:"lapseReason"`
	ReturnDate  *date  `json:"returnDate"`
}

type faithfulResponse struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"firstname"`
	Name          string `json:"name"`
	FatherName    string `json:"fatherName"`
	MotherName    string `json:"motherName"`
	GodparentName string `json:"godparentName"`

	DateOfBirth     *date   `json:"dateOfBirth"`
	DateOfBaptism   *date   `json:"dateOfBaptism"`
	BaptismID       *string `json:"baptismId"`
	BaptismMinister string  `json:"baptismMinister"`

	DateOfFirstCommunion *date `json:"dateOfFirstCommunion"`

	DateOfConfirmation *date   `json:"dateOfConfirmation"`
	ConfirmationID     *string `json:"confirmationId"`

	DateOfMatrimony *date   `json:"dateOfMatrimony"`
	MatrimonyID     *string `json:"matrimonyId"`
	SpouseName      string  `json:"spouseName"`
	SpouseBaptismID *string `json:"spouseBaptismId"`

	HasDiaconate     bool  `json:"hasDiaconate"`
	DateOfDiaconate  *date `json:"dateOfDiaconate"`
	HasPriesthood    bool  `json:"hasPriesthood"`
	DateOfPriesthood *date `json:"dateOfPriesthood"`
	HasEpiscopate    bool  `json:"hasEpiscopate"`
	DateOfEpiscopate *date `json:"dateOfEpiscopate"`

	CongregationName        string `json:"congregationName"`
	HasTemporalProfession   bool   `json:"hasTemporalProfession"`
	DateTemporalProfession  *date  `json:"dateTemporalProfession"`
	HasPermanentProfession  bool   `json:"hasPermanentProfession"`
	DatePermanentProfession *date  `json:"datePermanentProfession"`

	Ministries           []string        `json:"ministries"`
	OtherMinistryDetails string          `json:"otherMinistryDetails"`
	LapseHistory         []lapseResponse `json:"lapseHistory"`

	HasRelocated  bool   `json:"hasRelocated"`
	NewParishName string `json:"newParishName"`
	IsDeceased    bool   `json:"isDeceased"`
	DateOfDeath   *date  `json:"dateOfDeath"`

	Diocese                 string `json:"diocese"`
	Parish                  string `json:"parish"`
	Subparish               string `json:"subparish"`
	BasicEcclesialCommunity string `json:"basicEcclesialCommunity"`

	HasCompletedAllSacraments bool      `json:"hasCompletedAllSacraments"`
	CreatedAt                 timestamp `json:"createdAt"`
	UpdatedAt                 timestamp `json:"updatedAt"`
}

type sacramentInfoResponse struct {
	ID                      int64   `json:"id"`
	FirstName               string  `json:"firstname"`
	Name                    string  `json:"name"`
	FatherName              string  `json:"fatherName"`
	MotherName              string  `json:"motherName"`
	GodparentName           string  `json:"godparentName"`
	DateOfBirth             *date   `json:"dateOfBirth"`
	Diocese                 string  `json:"diocese"`
	Parish                  string  `json:"parish"`
	Subparish               string  `json:"subparish"`
	BasicEcclesialCommunity string  `json:"basicEcclesialCommunity"`
	DateOfBaptism           *date   `json:"dateOfBaptism"`
	BaptismID               *string `json:"baptismId"`
	BaptismMinister         string  `json:"baptismMinister"`
	DateOfFirstCommunion    *date   `json:"dateOfFirstCommunion"`
	DateOfConfirmation      *date   `json:"dateOfConfirmation"`
	ConfirmationID          *string `json:"confirmationId"`
	DateOfMatrimony         *date   `json:"dateOfMatrimony"`
	MatrimonyID             *string `json:"matrimonyId"`
	SpouseName              string  `json:"spouseName"`
	HasAllSacraments        bool    `json:"hasAllSacraments"`
}

type territoryCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func (h *Handlers) CreateFaithful(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeFaithful(w, r, "faithful.create")
	if !ok {
		return
	}

	created, err := h.Faithful.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, "faithful.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFaithfulResponse(*created))
}

func (h *Handlers) UpdateFaithful(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	input, ok := h.decodeFaithful(w, r, "faithful.update")
	if !ok {
		return
	}

	updated, err := h.Faithful.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "faithful.update", err, "faithful_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponse(*updated))
}

func (h *Handlers) GetFaithful(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	record, err := h.Faithful.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "faithful.get", err, "faithful_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponse(*record))
}

func (h *Handlers) ListFaithful(w http.ResponseWriter, r *http.Request) {
	h.listFaithful(w, r, "faithful.list", faithfuldomain.ListFilter{})
}

func (h *Handlers) DeleteFaithful(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Faithful.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "faithful.delete", err, "faithful_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SearchFaithfulByName(w http.ResponseWriter, r *http.Request) {
	records, err := h.Faithful.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, "faithful.search_name", err)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponses(records))
}

func (h *Handlers) SearchFaithfulByParish(w http.ResponseWriter, r *http.Request) {
	value, ok := requiredQuery(w, r, "parish")
	if !ok {
		return
	}
	h.listFaithful(w, r, "faithful.search_parish", faithfuldomain.ListFilter{Parish: value})
}

func (h *Handlers) SearchFaithfulBySubparish(w http.ResponseWriter, r *http.Request) {
	value, ok := requiredQuery(w, r, "subparish")
	if !ok {
		return
	}
	h.listFaithful(w, r, "faithful.search_subparish", faithfuldomain.ListFilter{Subparish: value})
}

func (h *Handlers) SearchFaithfulByBEC(w http.ResponseWriter, r *http.Request) {
	value, ok := requiredQuery(w, r, "bec")
	if !ok {
		return
	}
	h.listFaithful(w, r, "faithful.search_bec", faithfuldomain.ListFilter{BEC: value})
}

func (h *Handlers) FaithfulByBaptismID(w http.ResponseWriter, r *http.Request) {
	record, err := h.Faithful.GetByBaptismID(r.Context(), r.URL.Query().Get("baptismId"))
	h.writeFaithfulLookup(w, r, "faithful.search_baptism", record, err)
}

func (h *Handlers) FaithfulByConfirmationID(w http.ResponseWriter, r *http.Request) {
	record, err := h.Faithful.GetByConfirmationID(r.Context(), r.URL.Query().Get("confirmationId"))
	h.writeFaithfulLookup(w, r, "faithful.search_confirmation", record, err)
}

func (h *Handlers) FaithfulByMatrimonyID(w http.ResponseWriter, r *http.Request) {
	record, err := h.Faithful.GetByMatrimonyID(r.Context(), r.URL.Query().Get("matrimonyId"))
	h.writeFaithfulLookup(w, r, "faithful.search_matrimony", record, err)
}

func (h *Handlers) FaithfulBySpouseBaptismID(w http.ResponseWriter, r *http.Request) {
	record, err := h.Faithful.GetBySpouseBaptismID(r.Context(), r.URL.Query().Get("spouseBaptismId"))
	h.writeFaithfulLookup(w, r, "faithful.search_spouse", record, err)
}

func (h *Handlers) SearchFaithfulBornBetween(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateRequired(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must be a YYYY-MM-DD date")
		return
	}
	to, err := parseDateRequired(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must be a YYYY-MM-DD date")
		return
	}

	records, err := h.Faithful.ListBornBetween(r.Context(), from, to)
	if err != nil {
		h.fail(w, r, "faithful.search_born", err)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponses(records))
}

func (h *Handlers) SearchFaithfulByStatus(w http.ResponseWriter, r *http.Request) {
	relocated, err := parseBoolParam(r.URL.Query().Get("relocated"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "relocated must be true or false")
		return
	}
	deceased, err := parseBoolParam(r.URL.Query().Get("deceased"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "deceased must be true or false")
		return
	}
	h.listFaithful(w, r, "faithful.search_status", faithfuldomain.ListFilter{Relocated: relocated, Deceased: deceased})
}

func (h *Handlers) FaithfulWithAllSacraments(w http.ResponseWriter, r *http.Request) {
	records, err := h.Faithful.ListWithAllSacraments(r.Context())
	if err != nil {
		h.fail(w, r, "faithful.sacraments_completed", err)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponses(records))
}

func (h *Handlers) CountFaithful(w http.ResponseWriter, r *http.Request) {
	count, err := h.Faithful.Count(r.Context())
	if err != nil {
		h.fail(w, r, "faithful.count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handlers) FaithfulByParishStats(w http.ResponseWriter, r *http.Request) {
	h.territoryStats(w, r, "faithful.stats_parish", faithfuldomain.LevelParish)
}

func (h *Handlers) FaithfulBySubparishStats(w http.ResponseWriter, r *http.Request) {
	h.territoryStats(w, r, "faithful.stats_subparish", faithfuldomain.LevelSubparish)
}

func (h *Handlers) FaithfulByBECStats(w http.ResponseWriter, r *http.Request) {
	h.territoryStats(w, r, "faithful.stats_bec", faithfuldomain.LevelBEC)
}

func (h *Handlers) SearchSacramentInfo(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Faithful.SearchSacramentInfo(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, "faithful.sacrament_search", err)
		return
	}
	response := make([]sacramentInfoResponse, 0, len(infos))
	for _, info := range infos {
		response = append(response, toSacramentInfoResponse(info))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetSacramentInfo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	info, err := h.Faithful.SacramentInfo(r.Context(), id)
	if err != nil {
		h.fail(w, r, "faithful.sacrament_info", err, "faithful_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toSacramentInfoResponse(*info))
}

func (h *Handlers) decodeFaithful(w http.ResponseWriter, r *http.Request, op string) (faithfuldomain.Input, bool) {
	var req faithfulRequest
	if !h.decodeAndValidate(w, r, op, &req) {
		return faithfuldomain.Input{}, false
	}

	lapses := make([]faithfuldomain.LapseInput, 0, len(req.LapseHistory))
	for _, lapse := range req.LapseHistory {
		lapses = append(lapses, faithfuldomain.LapseInput{
			LapseType:   lapse.LapseType,
			LapseDate:   fromDate(lapse.LapseDate),
			LapseReason: lapse.LapseReason,
			ReturnDate:  fromDate(lapse.ReturnDate),
		})
	}

	return faithfuldomain.Input{
		FirstName:               req.FirstName,
		Name:                    req.Name,
		FatherName:              req.FatherName,
		MotherName:              req.MotherName,
		GodparentName:           req.GodparentName,
		DateOfBirth:             fromDate(req.DateOfBirth),
		DateOfBaptism:           fromDate(req.DateOfBaptism),
		BaptismID:               req.BaptismID,
		BaptismMinister:         req.BaptismMinister,
		DateOfFirstCommunion:    fromDate(req.DateOfFirstCommunion),
		DateOfConfirmation:      fromDate(req.DateOfConfirmation),
		ConfirmationID:          req.ConfirmationID,
		DateOfMatrimony:         fromDate(req.DateOfMatrimony),
		MatrimonyID:             req.MatrimonyID,
		SpouseName:              req.SpouseName,
		SpouseBaptismID:         req.SpouseBaptismID,
		HasDiaconate:            req.HasDiaconate,
		DateOfDiaconate:         fromDate(req.DateOfDiaconate),
		HasPriesthood:           req.HasPriesthood,
		DateOfPriesthood:        fromDate(req.DateOfPriesthood),
		HasEpiscopate:           req.HasEpiscopate,
		DateOfEpiscopate:        fromDate(req.DateOfEpiscopate),
		CongregationName:        req.CongregationName,
		HasTemporalProfession:   req.HasTemporalProfession,
		DateTemporalProfession:  fromDate(req.DateTemporalProfession),
		HasPermanentProfession:  req.HasPermanentProfession,
		DatePermanentProfession: fromDate(req.DatePermanentProfession),
		Ministries:              req.Ministries,
		OtherMinistryDetails:    req.OtherMinistryDetails,
		LapseHistory:            lapses,
		HasRelocated:            req.HasRelocated,
		NewParishName:           req.NewParishName,
		IsDeceased:              req.IsDeceased,
		DateOfDeath:             fromDate(req.DateOfDeath),
		Diocese:                 req.Diocese,
		Parish:                  req.Parish,
		Subparish:               req.Subparish,
		BasicEcclesialCommunity: req.BasicEcclesialCommunity,
	}, true
}

func (h *Handlers) listFaithful(w http.ResponseWriter, r *http.Request, op string, filter faithfuldomain.ListFilter) {
	records, err := h.Faithful.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponses(records))
}

func (h *Handlers) writeFaithfulLookup(w http.ResponseWriter, r *http.Request, op string, record *faithfuldomain.Record, err error) {
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toFaithfulResponse(*record))
}

func (h *Handlers) territoryStats(w http.ResponseWriter, r *http.Request, op string, level faithfuldomain.TerritoryLevel) {
	counts, err := h.Faithful.CountByTerritory(r.Context(), level)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response := make([]territoryCountResponse, 0, len(counts))
	for _, count := range counts {
		response = append(response, territoryCountResponse{Name: count.Name, Count: count.Count})
	}
	writeJSON(w, http.StatusOK, response)
}

func requiredQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", name+" is required")
		return "", false
	}
	return value, true
}

func toFaithfulResponses(records []faithfuldomain.Record) []faithfulResponse {
	response := make([]faithfulResponse, 0, len(records))
	for _, record := range records {
		response = append(response, toFaithfulResponse(record))
	}
	return response
}

func toFaithfulResponse(record faithfuldomain.Record) faithfulResponse {
	f := record.Faithful
	ministries := make([]string, 0, len(record.Ministries))
	for _, ministry := range record.Ministries {
		ministries = append(ministries, ministry.MinistryType)
	}
	lapses := make([]lapseResponse, 0, len(record.LapseEvents))
	for _, lapse := range record.LapseEvents {
		lapses = append(lapses, lapseResponse{
			ID:          lapse.ID,
			LapseType:   lapse.LapseType,
			LapseDate:   toDate(lapse.LapseDate),
			LapseReason: lapse.LapseReason,
			ReturnDate:  toDate(lapse.ReturnDate),
		})
	}

	return faithfulResponse{
		ID:                        f.ID,
		FirstName:                 f.FirstName,
		Name:                      f.Name,
		FatherName:                f.FatherName,
		MotherName:                f.MotherName,
		GodparentName:             f.GodparentName,
		DateOfBirth:               toDate(f.DateOfBirth),
		DateOfBaptism:             toDate(f.DateOfBaptism),
		BaptismID:                 f.BaptismID,
		BaptismMinister:           f.BaptismMinister,
		DateOfFirstCommunion:      toDate(f.DateOfFirstCommunion),
		DateOfConfirmation:        toDate(f.DateOfConfirmation),
		ConfirmationID:            f.ConfirmationID,
		DateOfMatrimony:           toDate(f.DateOfMatrimony),
		MatrimonyID:               f.MatrimonyID,
		SpouseName:                f.SpouseName,
		SpouseBaptismID:           f.SpouseBaptismID,
		HasDiaconate:              f.HasDiaconate,
		DateOfDiaconate:           toDate(f.DateOfDiaconate),
		HasPriesthood:             f.HasPriesthood,
		DateOfPriesthood:          toDate(f.DateOfPriesthood),
		HasEpiscopate:             f.HasEpiscopate,
		DateOfEpiscopate:          toDate(f.DateOfEpiscopate),
		CongregationName:          f.CongregationName,
		HasTemporalProfession:     f.HasTemporalProfession,
		DateTemporalProfession:    toDate(f.DateTemporalProfession),
		HasPermanentProfession:    f.HasPermanentProfession,
		DatePermanentProfession:   toDate(f.DatePermanentProfession),
		Ministries:                ministries,
		OtherMinistryDetails:      f.OtherMinistryDetails,
		LapseHistory:              lapses,
		HasRelocated:              f.HasRelocated,
		NewParishName:             f.NewParishName,
		IsDeceased:                f.IsDeceased,
		DateOfDeath:               toDate(f.DateOfDeath),
		Diocese:                   f.Diocese,
		Parish:                    f.Parish,
		Subparish:                 f.Subparish,
		BasicEcclesialCommunity:   f.BasicEcclesialCommunity,
		HasCompletedAllSacraments: f.HasAllSacraments(),
		CreatedAt:                 timestamp{Time: f.CreatedAt},
		UpdatedAt:                 timestamp{Time: f.UpdatedAt},
	}
}

func toSacramentInfoResponse(info faithfuldomain.SacramentInfo) sacramentInfoResponse {
	return sacramentInfoResponse{
		ID:                      info.ID,
		FirstName:               info.FirstName,
		Name:                    info.Name,
		FatherName:              info.FatherName,
		MotherName:              info.MotherName,
		GodparentName:           info.GodparentName,
		DateOfBirth:             toDate(info.DateOfBirth),
		Diocese:                 info.Diocese,
		Parish:                  info.Parish,
		Subparish:               info.Subparish,
		BasicEcclesialCommunity: info.BasicEcclesialCommunity,
		DateOfBaptism:           toDate(info.DateOfBaptism),
		BaptismID:               info.BaptismID,
		BaptismMinister:         info.BaptismMinister,
		DateOfFirstCommunion:    toDate(info.DateOfFirstCommunion),
		DateOfConfirmation:      toDate(info.DateOfConfirmation),
		ConfirmationID:          info.ConfirmationID,
		DateOfMatrimony:         toDate(info.DateOfMatrimony),
		MatrimonyID:             info.MatrimonyID,
		SpouseName:              info.SpouseName,
		HasAllSacraments:        info.HasAllSacraments,
	}
}
