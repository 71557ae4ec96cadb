// Package response writes the JSON envelope every endpoint answers with:
// {success, message, data, error{code, message, details}}.
package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

type PaginatedResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// failure is the code and fallback message used for a status when the
// caller passes an empty message.
type failure struct {
	code    string
	message string
}

var failures = map[int]failure{
	fiber.StatusBadRequest:          {"BAD_REQUEST", "Bad request"},
	fiber.StatusUnauthorized:        {"UNAUTHORIZED", "Unauthorized access"},
	fiber.StatusForbidden:           {"FORBIDDEN", "Access forbidden"},
	fiber.StatusNotFound:            {"NOT_FOUND", "Resource not found"},
	fiber.StatusConflict:            {"CONFLICT", "Resource already exists"},
	fiber.StatusTooManyRequests:     {"TOO_MANY_REQUESTS", "Too many requests"},
	fiber.StatusInternalServerError: {"INTERNAL_ERROR", "Internal server error"},
	fiber.StatusServiceUnavailable:  {"SERVICE_UNAVAILABLE", "Service temporarily unavailable"},
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	f := failures[status]
	if message == "" {
		message = f.message
	}
	return Error(c, status, message, f.code)
}

func Success(c *fiber.Ctx, data any) error {
	return ok(c, fiber.StatusOK, "", data)
}

func SuccessWithMessage(c *fiber.Ctx, message string, data any) error {
	return ok(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, data any) error {
	return ok(c, fiber.StatusCreated, "Resource created successfully", data)
}

// Paginated wraps a page of results with its metadata.
func Paginated(c *fiber.Ctx, data any, pagination PaginationMeta) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

// Error writes a failure envelope with an explicit code.
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return c.Status(statusCode).JSON(Response{
		Error: &ErrorDetail{Code: code, Message: message},
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusNotFound, message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusConflict, message)
}

func TooManyRequests(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusTooManyRequests, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, message)
}

func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusServiceUnavailable, message)
}

// ValidationError reports every failed field in error.details.
func ValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Error: &ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
			Details: validation.Details(err),
		},
	})
}

// CalculatePagination clamps page and limit and derives the page count.
func CalculatePagination(page, limit int, total int64) PaginationMeta {
	page = max(page, 1)
	if limit < 1 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
	}
}

// DBErrorOptions overrides the messages and the duplicate key status used by
// FromDBError.
type DBErrorOptions struct {
	DuplicateStatus  int
	DuplicateMessage string
	NotFoundMessage  string
}

// FromDBError maps a store error onto the envelope. Unrecognised errors are
// logged and answered with 500.
func FromDBError(c *fiber.Ctx, err error, opts ...DBErrorOptions) error {
	var o DBErrorOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		status := o.DuplicateStatus
		if status == 0 {
			status = fiber.StatusConflict
		}
		message := o.DuplicateMessage
		if message == "" {
			message = failures[fiber.StatusConflict].message
		}
		return Error(c, status, message, "DUPLICATE_ENTRY")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(c, o.NotFoundMessage)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Error(c, fiber.StatusBadRequest, "Referenced resource does not exist", "FOREIGN_KEY_VIOLATION")
	case errors.Is(err, database.ErrNotReady):
		return ServiceUnavailable(c, "Database is not available")
	}

	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("database error")
	return InternalServerError(c, "")
}
