package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every API handler writes. The dashboard frontend
// treats code 0 as success and surfaces message verbatim otherwise.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is an error that carries its own HTTP status. Services return it
// for domain failures (missing conversation, duplicate feedback, ownership
// violations) so handlers can pass it straight to Error.
type AppError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func newAppError(status int, msg string) *AppError {
	return &AppError{HTTPStatus: status, Code: status, Message: msg}
}

func NewBadRequest(msg string) *AppError {
	return newAppError(http.StatusBadRequest, msg)
}

func NewForbidden(msg string) *AppError {
	return newAppError(http.StatusForbidden, msg)
}

func NewNotFound(msg string) *AppError {
	return newAppError(http.StatusNotFound, msg)
}

func NewConflict(msg string) *AppError {
	return newAppError(http.StatusConflict, msg)
}

// Success sends a 200 with data in the envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

// Created sends a 201 with data in the envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

// Error maps an error onto the envelope. An *AppError keeps its own status
// and code; anything else is a 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		fail(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	fail(c, http.StatusInternalServerError, err.Error())
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Code: status, Message: msg})
}

func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}

func Unauthorized(c *gin.Context, msg string) {
	fail(c, http.StatusUnauthorized, msg)
}

func Forbidden(c *gin.Context, msg string) {
	fail(c, http.StatusForbidden, msg)
}

func NotFound(c *gin.Context, msg string) {
	fail(c, http.StatusNotFound, msg)
}

func ServerError(c *gin.Context, msg string) {
	fail(c, http.StatusInternalServerError, msg)
}
