package controllers

import (
	"errors"
	"net/http"

	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/responses"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/labstack/echo/v4"
)

// AuthController : Registration and login controller struct
type AuthController struct {
	svc *service.FacturechainService
}

func NewAuthController(svc *service.FacturechainService) *AuthController {
	return &AuthController{svc: svc}
}

type RegisterRequestBody struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CompanyName string `json:"companyName"`
	Siret       string `json:"siret"`
	Address     string `json:"address"`
}

type LoginRequestBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseBody struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ForgotPasswordRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequestBody struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (controller *AuthController) Register(c echo.Context) error {
	var body RegisterRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load register request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, token, err := controller.svc.RegisterUser(c.Request().Context(), service.RegisterParams{
		Email:       body.Email,
		Password:    body.Password,
		CompanyName: body.CompanyName,
		Siret:       body.Siret,
		Address:     body.Address,
	})
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, responses.EmailTakenError)
	case errors.Is(err, service.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, responses.WeakPasswordError)
	case err != nil:
		c.Logger().Errorf("Failed to register user: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusCreated, &AuthResponseBody{Token: token, User: user})
}

func (controller *AuthController) Login(c echo.Context) error {
	var body LoginRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load login request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, token, err := controller.svc.LoginUser(c.Request().Context(), body.Email, body.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		return c.JSON(http.StatusUnauthorized, responses.InvalidCredentialsError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to log user in: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{Token: token, User: user})
}

// ForgotPassword always answers the same way so the endpoint cannot be used
// to probe for registered emails.
func (controller *AuthController) ForgotPassword(c echo.Context) error {
	var body ForgotPasswordRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	queued, err := controller.svc.StartPasswordReset(c.Request().Context(), body.Email)
	if err != nil {
		c.Logger().Errorf("Failed to start password reset: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	if queued {
		c.Logger().Infof("Password reset requested for a registered account")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "If this email is registered, a reset link has been sent",
	})
}

func (controller *AuthController) ResetPassword(c echo.Context) error {
	var body ResetPasswordRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	err := controller.svc.FinishPasswordReset(c.Request().Context(), body.Email, body.NewPassword)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	case errors.Is(err, service.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, responses.WeakPasswordError)
	case err != nil:
		c.Logger().Errorf("Failed to reset password: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
