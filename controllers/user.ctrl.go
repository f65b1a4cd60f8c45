package controllers

import (
	"errors"
	"net/http"

	"github.com/facturechain/facturechain/lib/responses"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/labstack/echo/v4"
)

// UserController : Account profile controller struct
type UserController struct {
	svc *service.FacturechainService
}

func NewUserController(svc *service.FacturechainService) *UserController {
	return &UserController{svc: svc}
}

type UpdateUserRequestBody struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	CompanyName *string `json:"companyName"`
	Siret       *string `json:"siret"`
	Address     *string `json:"address"`
}

type ChangePasswordRequestBody struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (controller *UserController) GetMe(c echo.Context) error {
	userID := c.Get("UserID").(string)
	user, err := controller.svc.FindUser(c.Request().Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to load user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, user)
}

func (controller *UserController) UpdateMe(c echo.Context) error {
	userID := c.Get("UserID").(string)
	var body UpdateUserRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load update user request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.UpdateUser(c.Request().Context(), userID, service.UpdateUserParams{
		Email:       body.Email,
		CompanyName: body.CompanyName,
		Siret:       body.Siret,
		Address:     body.Address,
	})
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, responses.EmailTakenError)
	case err != nil:
		c.Logger().Errorf("Failed to update user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, user)
}

func (controller *UserController) ChangePassword(c echo.Context) error {
	userID := c.Get("UserID").(string)
	var body ChangePasswordRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	err := controller.svc.ChangePassword(c.Request().Context(), userID, body.CurrentPassword, body.NewPassword)
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		return c.JSON(http.StatusBadRequest, responses.WrongPasswordError)
	case errors.Is(err, service.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, responses.WeakPasswordError)
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	case err != nil:
		c.Logger().Errorf("Failed to change password for user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (controller *UserController) DeleteMe(c echo.Context) error {
	userID := c.Get("UserID").(string)
	err := controller.svc.DeleteUser(c.Request().Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to delete user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.NoContent(http.StatusNoContent)
}
