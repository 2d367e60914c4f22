package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

const agentFailureMessage = "The AI agent encountered a problem. Please try rephrasing."

// AgentRunner answers a question for a user.
type AgentRunner interface {
	Run(ctx context.Context, userID, question string) (string, error)
}

type AgentHandler struct {
	agent   AgentRunner
	limiter ports.RateLimiter // nil disables limiting
	log     zerolog.Logger
}

func NewAgentHandler(agent AgentRunner, limiter ports.RateLimiter, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{agent: agent, limiter: limiter, log: log}
}

// Invoke asks the finance agent a natural-language question.
//
// @Summary      Ask the finance agent
// @Tags         agent
// @Accept       json
// @Produce      json
// @Param        body  body      agentRequest  true  "Question"
// @Success      200   {object}  agentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Security     BearerAuth
// @Router       /ai/agent/invoke [post]
func (h *AgentHandler) Invoke(c echo.Context) error {
	var req agentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid JSON payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("user_id and question are required"))
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, "agent:"+req.UserID)
		if err != nil {
			h.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !allowed {
			return c.JSON(http.StatusTooManyRequests, errorBody("Too many agent requests. Please wait and try again."))
		}
	}

	answer, err := h.agent.Run(ctx, req.UserID, req.Question)
	if errors.Is(err, domain.ErrValidation) {
		return c.JSON(http.StatusBadRequest, errorBody("user_id and question are required"))
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("agent execution failed")
		return c.JSON(http.StatusInternalServerError, errorBody(agentFailureMessage))
	}

	return c.JSON(http.StatusOK, agentResponse{Status: statusSuccess, Answer: answer})
}
