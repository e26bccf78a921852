package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/kyoolapp/lifestyle-sub000/internal/health"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

type WaterHandler struct {
	hydration Hydration
}

func NewWaterHandler(hydration Hydration) *WaterHandler {
	return &WaterHandler{hydration: hydration}
}

// WaterAmountRequest takes either millilitres or US fluid ounces.
type WaterAmountRequest struct {
	AmountML   *int     `json:"amount_ml"`
	AmountFlOz *float64 `json:"amount_fl_oz"`
}

type WaterResponse struct {
	Water      *models.WaterIntake `json:"water"`
	AmountFlOz float64             `json:"amount_fl_oz"`
}

func newWaterResponse(intake *models.WaterIntake) WaterResponse {
	resp := WaterResponse{Water: intake}
	if intake != nil {
		resp.AmountFlOz = math.Round(health.MlToFlOz(float64(intake.AmountML))*10) / 10
	}
	return resp
}

type WaterHistoryResponse struct {
	History []models.WaterHistoryEntry `json:"history"`
}

func (h *WaterHandler) Today(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	intake, err := h.hydration.Today(r.Context(), session.UserID)
	if err != nil {
		writeBackendError(w, "getting water intake", err)
		return
	}
	writeJSON(w, http.StatusOK, newWaterResponse(intake))
}

func (h *WaterHandler) Log(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	intake, err := h.hydration.Log(r.Context(), session.UserID, amount)
	if err != nil {
		writeWaterError(w, "logging water", err)
		return
	}
	writeJSON(w, http.StatusOK, newWaterResponse(intake))
}

func (h *WaterHandler) Set(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	intake, err := h.hydration.Set(r.Context(), session.UserID, amount)
	if err != nil {
		writeWaterError(w, "setting water", err)
		return
	}
	writeJSON(w, http.StatusOK, newWaterResponse(intake))
}

func (h *WaterHandler) History(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	days := 0
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days")
			return
		}
		days = parsed
	}

	history, err := h.hydration.History(r.Context(), session.UserID, days)
	if err != nil {
		writeWaterError(w, "getting water history", err)
		return
	}
	if history == nil {
		history = []models.WaterHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, WaterHistoryResponse{History: history})
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req WaterAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return 0, false
	}
	switch {
	case req.AmountML != nil:
		return *req.AmountML, true
	case req.AmountFlOz != nil:
		return int(math.Round(health.FlOzToMl(*req.AmountFlOz))), true
	}
	writeError(w, http.StatusBadRequest, "amount_ml is required")
	return 0, false
}

func writeWaterError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, services.ErrInvalidWaterAmount) || errors.Is(err, services.ErrInvalidHistoryDays) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeBackendError(w, op, err)
}
