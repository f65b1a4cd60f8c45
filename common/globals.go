package common

const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusCertified = "certified"

	VerificationMethodHash      = "hash"
	VerificationMethodPDFUpload = "pdf_upload"

	VerificationResultVerified = "verified"
	VerificationResultNotFound = "not_found"
)
