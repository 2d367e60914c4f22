package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid JSON payload"))
	}
	// Validation failures share the 500 of every non-conflict register error.
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		PhoneNo:  req.PhoneNo,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusConflict, errorBody("User with this email already exists"))
		case errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		}
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Status:  statusSuccess,
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login authenticates a user and returns the profile plus a JWT when signing
// is enabled.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid JSON payload"))
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorBody("Invalid email or password"))
		}
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Status:  statusSuccess,
		Message: "Login successful",
		UserID:  user.ID,
		Name:    user.Name,
		PhoneNo: user.PhoneNo,
		Email:   user.Email,
		Token:   token,
	})
}
