package handler

import "facturo/internal/service"

// Swagger type definitions for API documentation.
// Types also returned by handlers are noted on the type.

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"invoice deleted"`
}

// PDFURLResponse carries a presigned link to an archived PDF. Returned by
// the archived-pdf endpoint.
type PDFURLResponse struct {
	URL string `json:"url" example:"https://bucket.s3.amazonaws.com/invoices/2026/F-2026-0001.pdf?X-Amz-Signature=..."`
}

// CronTickResponse is the outcome of one scheduler pass triggered over HTTP.
type CronTickResponse struct {
	service.TickResult
	ExpiredQuotes int `json:"expired_quotes" example:"2"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
