package rest

import (
	"context"
	"net/http"
	"time"

	"phoneGuide/business/advisor"
	"phoneGuide/pkg/logger"
	"phoneGuide/pkg/utils"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SessionService interface {
	StartSession(ctx context.Context, clientID string) (*advisor.SessionState, error)
}

type SessionHandler struct {
	sessionService SessionService
	sessionTTL     time.Duration
	timeout        time.Duration
}

func NewSessionHandler(sessionService SessionService, sessionTTL time.Duration) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		sessionTTL:     sessionTTL,
		timeout:        10 * time.Second,
	}
}

type CreateSessionRequest struct {
	// ClientID re-attaches a returning client to its persisted favorites.
	// Left empty, a fresh identity is minted.
	ClientID string `json:"client_id,omitempty"`
}

type CreateSessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sess, err := h.sessionService.StartSession(ctx, req.ClientID)
	if err != nil {
		logger.Error("Failed to start session", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	token, err := utils.GenerateSessionJWT(sess.ID, sess.ClientID, h.sessionTTL)
	if err != nil {
		logger.Error("Failed to mint session token", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(CreateSessionResponse{
		Token:     token,
		SessionID: sess.ID,
		ClientID:  sess.ClientID,
	}))
}
