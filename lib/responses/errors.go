package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var InvalidCredentialsError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "invalid email or password",
	HttpStatusCode: 401,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "resource not found",
	HttpStatusCode: 404,
}

var InvoiceNotFoundError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "invoice not found",
	HttpStatusCode: 404,
}

var EmailTakenError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "email is already registered",
	HttpStatusCode: 409,
}

var InvoiceCertifiedError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "certified invoices are immutable",
	HttpStatusCode: 409,
}

var WeakPasswordError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "password does not meet the minimum requirements",
	HttpStatusCode: 400,
}

var WrongPasswordError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "current password is incorrect",
	HttpStatusCode: 400,
}

var AnchoringError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "could not anchor the invoice hash. Please try again later",
	HttpStatusCode: 502,
}

var FileMissingError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "no file was uploaded",
	HttpStatusCode: 400,
}

var FileTooLargeError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "uploaded file exceeds the size limit",
	HttpStatusCode: 400,
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserID", c.Get("UserID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, ErrorResponse{
			Error:          true,
			Code:           he.Code,
			Message:        http.StatusText(he.Code),
			HttpStatusCode: he.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, GeneralServerError)
}
