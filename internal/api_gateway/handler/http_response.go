package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/middleware"
)

// Error codes not derived from a ledger rule
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateKey   = "DUPLICATE_KEY"
	CodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// Response is the envelope of every JSON answer. Error is set instead of
// Data on failure; Meta only accompanies paged lists.
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func respond(c *gin.Context, status int, resp Response) {
	resp.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, resp)
}

func RespondOK(c *gin.Context, data any) {
	respond(c, http.StatusOK, Response{Data: data})
}

func RespondCreated(c *gin.Context, data any) {
	respond(c, http.StatusCreated, Response{Data: data})
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondPage sends one page of a list; totalItems counts the whole list
func RespondPage(c *gin.Context, data any, page, perPage, totalItems int) {
	totalPages := (totalItems + perPage - 1) / perPage
	respond(c, http.StatusOK, Response{
		Data: data,
		Meta: &MetaInfo{Page: page, PerPage: perPage, TotalPages: totalPages, TotalItems: totalItems},
	})
}

// RespondError sends an error envelope; code is a machine readable constant
// or a ledger rule
func RespondError(c *gin.Context, status int, code, message string) {
	respond(c, status, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, CodeBadRequest, message)
}

// RespondInternalError hides the cause; it is logged by the caller
func RespondInternalError(c *gin.Context) {
	RespondError(c, http.StatusInternalServerError, CodeInternalServer, "An internal server error occurred")
}
