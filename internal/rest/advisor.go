package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"phoneGuide/business/advisor"
	"phoneGuide/domain"
	"phoneGuide/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Blocking alert shown when a deep feature comparison fails; the popup state
// is discarded with it.
const msgFeatureCompareFailed = "Özellik karşılaştırması sırasında bir hata oluştu."

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

type (
	AdvisorHandler struct {
		validate       *validator.Validate
		advisorService AdvisorService
		timeout        time.Duration
	}

	AdvisorService interface {
		SubmitSearch(ctx context.Context, sessionID string, prefs domain.UserPreferences) error
		Results(sessionID string) (advisor.ResultsView, error)
		SetFilter(sessionID, axis, value string) error
		ClearFilters(sessionID string) error
		AddToComparison(sessionID, model string) error
		RemoveFromComparison(sessionID, model string) error
		ClearComparison(sessionID string) error
		ToggleFavorite(ctx context.Context, sessionID, model string) (bool, error)
		ShowSimilar(ctx context.Context, sessionID, model string) error
		CloseSimilar(sessionID string) error
		Similar(sessionID string) (advisor.SimilarView, error)
		CompareFeature(ctx context.Context, sessionID, featureTitle string, values []domain.FeatureValue) (advisor.FeatureComparison, error)
		PhoneImage(ctx context.Context, sessionID, model string) (string, error)
		SearchHistory(ctx context.Context, sessionID string, limit int) ([]advisor.SearchLogEntry, error)
	}

	SearchRequest struct {
		Budget      int    `json:"budget" validate:"required,min=5000,max=100000"`
		Camera      string `json:"camera" validate:"required,oneof=oncelikli standart onemsiz"`
		Battery     string `json:"battery" validate:"required,oneof=oncelikli standart onemsiz"`
		Performance string `json:"performance" validate:"required,oneof=oyun gunluk temel"`
		ScreenSize  string `json:"screenSize" validate:"required,oneof=buyuk kompakt farketmez"`
		OS          string `json:"os" validate:"required,oneof=android ios farketmez"`
	}

	FilterRequest struct {
		Axis  string `json:"axis" validate:"required,oneof=brand os"`
		Value string `json:"value" validate:"required"`
	}

	ModelRequest struct {
		Model string `json:"model" validate:"required"`
	}

	FeatureCompareRequest struct {
		Feature string              `json:"feature" validate:"required"`
		Values  []FeatureValueEntry `json:"values" validate:"required,min=2,dive"`
	}

	FeatureValueEntry struct {
		Model string `json:"model" validate:"required"`
		Value string `json:"value" validate:"required"`
	}

	HistoryQuery struct {
		Limit int `query:"limit"`
	}
)

func NewAdvisorHandler(svc AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{
		validate:       validator.New(),
		advisorService: svc,
		timeout:        10 * time.Second,
	}
}

// sessionID is set by the session middleware.
func sessionID(c echo.Context) (string, bool) {
	id, ok := c.Get("session_id").(string)
	return id, ok && id != ""
}

// SubmitSearch accepts the preference form and dispatches the recommendation
// search. The search runs asynchronously; poll GET /recommendations for the
// outcome.
func (h *AdvisorHandler) SubmitSearch(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		logger.Error("Failed to validate search request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	prefs := domain.UserPreferences{
		Budget:      req.Budget,
		Camera:      req.Camera,
		Battery:     req.Battery,
		Performance: req.Performance,
		ScreenSize:  req.ScreenSize,
		OS:          req.OS,
	}

	err := h.advisorService.SubmitSearch(c.Request().Context(), sid, prefs)
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, fres.Response.StatusOK("search started"))
	case errors.Is(err, domain.ErrSearchInFlight):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		logger.Error("Failed to submit search", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
}

// GetRecommendations returns the filtered result view plus all surface flags.
func (h *AdvisorHandler) GetRecommendations(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	view, err := h.advisorService.Results(sid)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (h *AdvisorHandler) SetFilter(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.advisorService.SetFilter(sid, req.Axis, req.Value); err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("filter updated"))
}

func (h *AdvisorHandler) ClearFilters(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if err := h.advisorService.ClearFilters(sid); err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("filters cleared"))
}

// AddToComparison adds a model to the comparison tray. A full tray is a 409
// carrying the user notification; adding a model already present succeeds
// without changing anything.
func (h *AdvisorHandler) AddToComparison(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	err := h.advisorService.AddToComparison(sid, req.Model)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, fres.Response.StatusOK("added to comparison"))
	case errors.Is(err, domain.ErrComparisonFull):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrPhoneNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		return h.mapSessionError(c, err)
	}
}

func (h *AdvisorHandler) RemoveFromComparison(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	model := c.Param("model")
	if model == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing model"})
	}

	if err := h.advisorService.RemoveFromComparison(sid, model); err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("removed from comparison"))
}

func (h *AdvisorHandler) ClearComparison(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if err := h.advisorService.ClearComparison(sid); err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("comparison cleared"))
}

// CompareFeature runs the deep comparison of one spec row. Failures close the
// popup client-side, so nothing partial is ever returned.
func (h *AdvisorHandler) CompareFeature(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeatureCompareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	values := make([]domain.FeatureValue, 0, len(req.Values))
	for _, v := range req.Values {
		values = append(values, domain.FeatureValue{Model: v.Model, Value: v.Value})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	result, err := h.advisorService.CompareFeature(ctx, sid, req.Feature, values)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
	case errors.Is(err, domain.ErrTooFewPhones):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		logger.Error("Feature comparison failed", err)
		return c.JSON(http.StatusBadGateway, ResponseError{Message: msgFeatureCompareFailed})
	}
}

// ToggleFavorite flips favorite membership and reports the new state.
func (h *AdvisorHandler) ToggleFavorite(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	isFavorite, err := h.advisorService.ToggleFavorite(ctx, sid, req.Model)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"model":      req.Model,
		"isFavorite": isFavorite,
	}))
}

func (h *AdvisorHandler) GetFavorites(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	view, err := h.advisorService.Results(sid)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view.Favorites))
}

// ShowSimilar targets the similar-phones modal and dispatches the lookup
// asynchronously; poll GET /similar.
func (h *AdvisorHandler) ShowSimilar(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	err := h.advisorService.ShowSimilar(c.Request().Context(), sid, req.Model)
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, fres.Response.StatusOK("similar lookup started"))
	case errors.Is(err, domain.ErrPhoneNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		return h.mapSessionError(c, err)
	}
}

func (h *AdvisorHandler) GetSimilar(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	view, err := h.advisorService.Similar(sid)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (h *AdvisorHandler) CloseSimilar(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if err := h.advisorService.CloseSimilar(sid); err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("similar modal closed"))
}

// PhoneImage always answers 200 with a usable image source; generation
// failures are absorbed into the deterministic placeholder upstream.
func (h *AdvisorHandler) PhoneImage(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	model := c.Param("model")
	if model == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing model"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	src, err := h.advisorService.PhoneImage(ctx, sid, model)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"model": model,
		"src":   src,
	}))
}

func (h *AdvisorHandler) SearchHistory(c echo.Context) error {
	sid, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q HistoryQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entries, err := h.advisorService.SearchHistory(ctx, sid, q.Limit)
	if err != nil {
		return h.mapSessionError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entries))
}

func (h *AdvisorHandler) mapSessionError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}
	logger.Error("Advisor request failed", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
}
