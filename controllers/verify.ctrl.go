package controllers

import (
	"io"
	"net/http"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/responses"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/labstack/echo/v4"
)

// VerifyController : Public verification controller struct. No auth, every
// attempt is logged with the caller's IP.
type VerifyController struct {
	svc *service.FacturechainService
}

func NewVerifyController(svc *service.FacturechainService) *VerifyController {
	return &VerifyController{svc: svc}
}

type VerifyResponseBody struct {
	Status        string                `json:"status"`
	Hash          string                `json:"hash"`
	Certification *models.Certification `json:"certification,omitempty"`
	Invoice       *models.Invoice       `json:"invoice,omitempty"`
}

func (controller *VerifyController) VerifyHash(c echo.Context) error {
	hash := c.Param("hash")
	if hash == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	outcome, err := controller.svc.VerifyByHash(c.Request().Context(), hash, common.VerificationMethodHash, c.RealIP())
	if err != nil {
		c.Logger().Errorf("Failed to verify hash: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, verifyResponse(outcome))
}

func (controller *VerifyController) VerifyUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.FileMissingError)
	}
	if fileHeader.Size > controller.svc.Config.UploadLimitBytes {
		return c.JSON(http.StatusBadRequest, responses.FileTooLargeError)
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Logger().Errorf("Failed to open uploaded file: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	defer file.Close()
	buf, err := io.ReadAll(io.LimitReader(file, controller.svc.Config.UploadLimitBytes+1))
	if err != nil {
		c.Logger().Errorf("Failed to read uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	if int64(len(buf)) > controller.svc.Config.UploadLimitBytes {
		return c.JSON(http.StatusBadRequest, responses.FileTooLargeError)
	}

	outcome, err := controller.svc.VerifyUploadedBuffer(c.Request().Context(), buf, c.RealIP())
	if err != nil {
		c.Logger().Errorf("Failed to verify uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, verifyResponse(outcome))
}

func verifyResponse(outcome *service.VerifyOutcome) *VerifyResponseBody {
	return &VerifyResponseBody{
		Status:        outcome.Status,
		Hash:          outcome.Hash,
		Certification: outcome.Certification,
		Invoice:       outcome.Invoice,
	}
}
