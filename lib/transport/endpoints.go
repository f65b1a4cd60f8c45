package transport

import (
	"github.com/facturechain/facturechain/controllers"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterEndpoints(svc *service.FacturechainService, e *echo.Echo, secured *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.GET("/health", controllers.NewHealthController().Check)

	authCtrl := controllers.NewAuthController(svc)
	e.POST("/api/auth/register", authCtrl.Register, strictRateLimitMiddleware, logMw)
	e.POST("/api/auth/login", authCtrl.Login, strictRateLimitMiddleware, logMw)
	e.POST("/api/auth/forgot-password", authCtrl.ForgotPassword, strictRateLimitMiddleware, logMw)
	e.POST("/api/auth/reset-password", authCtrl.ResetPassword, strictRateLimitMiddleware, logMw)

	userCtrl := controllers.NewUserController(svc)
	secured.GET("/api/users/me", userCtrl.GetMe)
	secured.PUT("/api/users/me", userCtrl.UpdateMe)
	secured.POST("/api/users/me/password", userCtrl.ChangePassword)
	secured.DELETE("/api/users/me", userCtrl.DeleteMe)

	invoiceCtrl := controllers.NewInvoiceController(svc)
	secured.GET("/api/invoices", invoiceCtrl.List)
	secured.POST("/api/invoices", invoiceCtrl.Create)
	secured.GET("/api/invoices/:id", invoiceCtrl.Get)
	secured.PUT("/api/invoices/:id", invoiceCtrl.Update)
	secured.DELETE("/api/invoices/:id", invoiceCtrl.Delete)
	secured.POST("/api/invoices/:id/duplicate", invoiceCtrl.Duplicate)
	// certification writes to the chain, so it shares the strict limiter
	secured.POST("/api/invoices/:id/certify", invoiceCtrl.Certify, strictRateLimitMiddleware)
	secured.GET("/api/invoices/:id/certification", invoiceCtrl.GetCertification)

	verifyCtrl := controllers.NewVerifyController(svc)
	e.GET("/api/verify/:hash", verifyCtrl.VerifyHash, logMw)
	uploadBodyLimit := CreateUploadBodyLimitMiddleware(svc.Config.UploadLimitBytes)
	e.POST("/api/verify/upload", verifyCtrl.VerifyUpload, uploadBodyLimit, strictRateLimitMiddleware, logMw)
}
