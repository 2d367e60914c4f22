package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

type TransactionHandler struct {
	service ports.TransactionService
	log     zerolog.Logger
}

func NewTransactionHandler(service ports.TransactionService, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, log: log}
}

// Create records a transaction entered manually.
//
// @Summary      Add a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body      createTransactionRequest  true  "Transaction"
// @Success      201   {object}  createTransactionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Security     BearerAuth
// @Router       /transaction [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid JSON payload"))
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		return err
	}

	id, err := h.service.Write(c.Request().Context(), ports.WriteTransactionInput{
		TransactionID:   req.TransactionID,
		UserID:          req.UserID,
		Title:           req.Title,
		Description:     req.Description,
		Amount:          req.Amount,
		Category:        req.Category,
		TransactionType: req.TransactionType,
		Date:            req.Date,
		Source:          ports.SourceAPI,
	})
	if err != nil {
		msg := "Failed to add transaction"
		if errors.Is(err, domain.ErrValidation) {
			msg = err.Error()
		} else {
			h.log.Error().Err(err).Str("user_id", req.UserID).Msg("create transaction failed")
		}
		return c.JSON(http.StatusInternalServerError, errorBody(msg))
	}

	return c.JSON(http.StatusCreated, createTransactionResponse{
		Status:        statusSuccess,
		Message:       "Transaction added successfully",
		TransactionID: id,
	})
}

// List returns a user's transactions, newest first.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  listTransactionsResponse
// @Failure      403      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Security     BearerAuth
// @Router       /transactions/{user_id} [get]
func (h *TransactionHandler) List(c echo.Context) error {
	userID := c.Param("user_id")
	if err := authorizeUser(c, userID); err != nil {
		return err
	}

	txs, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list transactions failed")
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch transactions"))
	}

	return c.JSON(http.StatusOK, listTransactionsResponse{
		Status:       statusSuccess,
		Transactions: toTransactionItems(txs),
	})
}
