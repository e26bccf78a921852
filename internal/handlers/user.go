package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kyoolapp/lifestyle-sub000/internal/health"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

const searchResolveLimit = 4

type UserHandler struct {
	users    UserAPI
	resolver FriendshipResolver
}

func NewUserHandler(users UserAPI, resolver FriendshipResolver) *UserHandler {
	return &UserHandler{users: users, resolver: resolver}
}

type UserResponse struct {
	User *models.User `json:"user"`
}

// UpdateProfileRequest is a profile patch that may give height and weight in
// imperial units. Imperial values override their metric counterparts.
type UpdateProfileRequest struct {
	models.ProfilePatch
	WeightLbs    *float64 `json:"weight_lbs,omitempty"`
	HeightFeet   *int     `json:"height_ft,omitempty"`
	HeightInches *float64 `json:"height_in,omitempty"`
}

func (req UpdateProfileRequest) toPatch() models.ProfilePatch {
	patch := req.ProfilePatch
	if req.WeightLbs != nil {
		kg := math.Round(health.LbsToKg(*req.WeightLbs)*10) / 10
		patch.Weight = &kg
	}
	if req.HeightFeet != nil || req.HeightInches != nil {
		var feet int
		var inches float64
		if req.HeightFeet != nil {
			feet = *req.HeightFeet
		}
		if req.HeightInches != nil {
			inches = *req.HeightInches
		}
		cm := math.Round(health.FeetInchesToCm(feet, inches)*10) / 10
		patch.Height = &cm
	}
	return patch
}

type MetricsResponse struct {
	Metrics health.Metrics `json:"metrics"`
}

type SearchResult struct {
	User   models.User             `json:"user"`
	Status models.FriendshipStatus `json:"status"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type FriendshipStatusResponse struct {
	UserID    string                  `json:"user_id"`
	Status    models.FriendshipStatus `json:"status"`
	RequestID string                  `json:"request_id,omitempty"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	user, err := h.users.GetUser(r.Context(), session.UserID)
	if err != nil {
		writeBackendError(w, "getting profile", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := req.toPatch()
	if patch.Username != nil {
		if err := models.ValidateUsername(*patch.Username); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	user, err := h.users.UpdateProfile(r.Context(), session.UserID, patch)
	if err != nil {
		writeBackendError(w, "updating profile", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

// Metrics recomputes BMI, BMR and TDEE locally from the stored profile. The
// optional waist, neck and hip query parameters (cm) add a body fat estimate.
func (h *UserHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	var tape health.Circumferences
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"waist", &tape.WaistCm}, {"neck", &tape.NeckCm}, {"hip", &tape.HipCm}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid "+p.name)
			return
		}
		*p.dst = v
	}

	user, err := h.users.GetUser(r.Context(), session.UserID)
	if err != nil {
		writeBackendError(w, "getting profile", err)
		return
	}

	metrics, err := health.ComputeMetricsWith(*user, tape)
	if errors.Is(err, health.ErrMissingMeasurements) {
		writeError(w, http.StatusUnprocessableEntity, "Height and weight are required")
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MetricsResponse{Metrics: metrics})
}

// Search lists matching users in backend order, each annotated with the
// viewer's relationship to them. Resolution failures show as none.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, SearchResponse{Results: []SearchResult{}})
		return
	}

	users, err := h.users.SearchUsers(r.Context(), query)
	if err != nil {
		writeBackendError(w, "searching users", err)
		return
	}

	results := make([]SearchResult, 0, len(users))
	for _, u := range users {
		if u.ID == session.UserID {
			continue
		}
		results = append(results, SearchResult{User: u, Status: models.FriendshipStatusNone})
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(searchResolveLimit)
	for i := range results {
		g.Go(func() error {
			results[i].Status = h.resolver.ResolveOrNone(ctx, session.UserID, results[i].User.ID).Status
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (h *UserHandler) FriendshipStatus(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	otherID := r.PathValue("id")
	if otherID == "" {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	state, err := h.resolver.Resolve(r.Context(), session.UserID, otherID)
	if err != nil {
		writeBackendError(w, "resolving friendship", err)
		return
	}
	writeJSON(w, http.StatusOK, FriendshipStatusResponse{
		UserID:    otherID,
		Status:    state.Status,
		RequestID: state.RequestID,
	})
}
