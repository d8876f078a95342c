package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"TimedIn/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// asDefinition 提取业务错误码和附带的细节
func asDefinition(err error) (errors.Definition, map[string]interface{}, bool) {
	if de, ok := err.(*errors.DetailedError); ok {
		return de.Definition, de.Details, true
	}
	if def, ok := err.(errors.Definition); ok {
		return def, nil, true
	}
	return errors.Definition{}, nil, false
}

func errorToHTTPStatus(err error) int {
	def, _, ok := asDefinition(err)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "UNAUTHENTICATED", "INVALID_CREDENTIALS":
		return http.StatusUnauthorized // 401
	case "ROLE_FORBIDDEN":
		return http.StatusForbidden // 403
	case "USER_NOT_FOUND":
		return http.StatusNotFound // 404
	case "CLOCK_BUSY":
		return http.StatusConflict // 409
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "ATTENDANCE_ALREADY_COMPLETED", "CLOCK_IN_ALREADY_OPEN",
		"NO_OPEN_SESSION", "LOCATION_UNAVAILABLE", "OUT_OF_SITE_RANGE",
		"NOTE_DATE_IN_FUTURE", "NOTE_ALREADY_SAVED",
		"EMAIL_ALREADY_REGISTERED", "INVALID_USER_ID", "INVALID_REQUEST", "INVALID_DATE", "INVALID_TIMEZONE":
		return http.StatusBadRequest // 400
	case "STORE_READ_FAILED", "STORE_WRITE_FAILED":
		return http.StatusServiceUnavailable // 503，可重试
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	var details map[string]interface{}

	if def, d, ok := asDefinition(err); ok {
		code = def.Code
		message = def.Message
		details = d
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorWithDetails 返回错误响应，附带结构化细节（如围栏拒绝时的实测距离）
func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, _, ok := asDefinition(err); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
