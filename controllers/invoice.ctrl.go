package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/responses"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/labstack/echo/v4"
)

// InvoiceController : Invoice CRUD and certification controller struct
type InvoiceController struct {
	svc *service.FacturechainService
}

func NewInvoiceController(svc *service.FacturechainService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type InvoiceRequestBody struct {
	InvoiceNumber     *string            `json:"invoiceNumber"`
	IssueDate         *string            `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate           *string            `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	ClientCompanyName *string            `json:"clientCompanyName"`
	ClientSiret       *string            `json:"clientSiret"`
	ClientAddress     *string            `json:"clientAddress"`
	ClientEmail       *string            `json:"clientEmail" validate:"omitempty,email"`
	LineItems         *[]models.LineItem `json:"lineItems" validate:"omitempty,dive"`
	Notes             *string            `json:"notes"`
}

type InvoiceResponseBody struct {
	*models.Invoice
	Certification *models.Certification `json:"certification,omitempty"`
}

type InvoiceListResponseBody struct {
	Invoices []InvoiceResponseBody `json:"invoices"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}

type CertifyResponseBody struct {
	Invoice       *models.Invoice       `json:"invoice"`
	Certification *models.Certification `json:"certification"`
}

func (body *InvoiceRequestBody) toParams() service.InvoiceParams {
	return service.InvoiceParams{
		InvoiceNumber:     body.InvoiceNumber,
		IssueDate:         body.IssueDate,
		DueDate:           body.DueDate,
		ClientCompanyName: body.ClientCompanyName,
		ClientSiret:       body.ClientSiret,
		ClientAddress:     body.ClientAddress,
		ClientEmail:       body.ClientEmail,
		LineItems:         body.LineItems,
		Notes:             body.Notes,
	}
}

func (controller *InvoiceController) List(c echo.Context) error {
	userID := c.Get("UserID").(string)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	invoices, total, err := controller.svc.ListInvoices(c.Request().Context(), userID, service.ListInvoicesParams{
		Page:   page,
		Limit:  limit,
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		c.Logger().Errorf("Failed to list invoices for user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	certs, err := controller.svc.CertificationsForInvoices(c.Request().Context(), invoices)
	if err != nil {
		c.Logger().Errorf("Failed to load certifications: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	body := InvoiceListResponseBody{
		Invoices: make([]InvoiceResponseBody, len(invoices)),
		Total:    total,
		Page:     pageOrDefault(page),
		Limit:    limitOrDefault(limit),
	}
	for i := range invoices {
		body.Invoices[i] = InvoiceResponseBody{
			Invoice:       &invoices[i],
			Certification: certs[invoices[i].ID],
		}
	}
	return c.JSON(http.StatusOK, &body)
}

func (controller *InvoiceController) Get(c echo.Context) error {
	userID := c.Get("UserID").(string)
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to load invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	cert, err := controller.svc.Stores.Certifications.FindByInvoiceID(c.Request().Context(), invoice.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.Logger().Errorf("Failed to load certification: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, &InvoiceResponseBody{Invoice: invoice, Certification: cert})
}

func (controller *InvoiceController) Create(c echo.Context) error {
	userID := c.Get("UserID").(string)
	var body InvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), userID, body.toParams())
	if err != nil {
		c.Logger().Errorf("Failed to create invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusCreated, &InvoiceResponseBody{Invoice: invoice})
}

func (controller *InvoiceController) Update(c echo.Context) error {
	userID := c.Get("UserID").(string)
	var body InvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load update invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.UpdateInvoice(c.Request().Context(), userID, c.Param("id"), body.toParams())
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	case errors.Is(err, service.ErrInvoiceCertified):
		return c.JSON(http.StatusConflict, responses.InvoiceCertifiedError)
	case err != nil:
		c.Logger().Errorf("Failed to update invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, &InvoiceResponseBody{Invoice: invoice})
}

func (controller *InvoiceController) Delete(c echo.Context) error {
	userID := c.Get("UserID").(string)
	err := controller.svc.DeleteInvoice(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to delete invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

func (controller *InvoiceController) Duplicate(c echo.Context) error {
	userID := c.Get("UserID").(string)
	invoice, err := controller.svc.DuplicateInvoice(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to duplicate invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusCreated, &InvoiceResponseBody{Invoice: invoice})
}

// Certify anchors the invoice hash and returns the certification. Repeated
// calls return the existing certification with a 200.
func (controller *InvoiceController) Certify(c echo.Context) error {
	userID := c.Get("UserID").(string)
	invoice, cert, err := controller.svc.CertifyInvoice(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to certify invoice %s: %v", c.Param("id"), err)
		return c.JSON(http.StatusBadGateway, responses.AnchoringError)
	}
	return c.JSON(http.StatusOK, &CertifyResponseBody{Invoice: invoice, Certification: cert})
}

func (controller *InvoiceController) GetCertification(c echo.Context) error {
	userID := c.Get("UserID").(string)
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to load invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	cert, err := controller.svc.Stores.Certifications.FindByInvoiceID(c.Request().Context(), invoice.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to load certification: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, cert)
}

func pageOrDefault(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func limitOrDefault(limit int) int {
	if limit < 1 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
