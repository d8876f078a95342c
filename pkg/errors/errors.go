package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthenticated        = Definition{Code: "UNAUTHENTICATED", Message: "Authentication required"}
	InvalidCredentials     = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	EmailAlreadyRegistered = Definition{Code: "EMAIL_ALREADY_REGISTERED", Message: "Email already registered"}
	UserNotFound           = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	InvalidUserID          = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	RoleForbidden          = Definition{Code: "ROLE_FORBIDDEN", Message: "Insufficient role"}
	InvalidTimezone        = Definition{Code: "INVALID_TIMEZONE", Message: "Unknown IANA timezone name"}
	TooManyRequests        = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, try again later"}
)

// 打卡状态机错误。
var (
	AttendanceAlreadyCompleted = Definition{Code: "ATTENDANCE_ALREADY_COMPLETED", Message: "Time in/out already completed for today"}
	ClockInAlreadyOpen         = Definition{Code: "CLOCK_IN_ALREADY_OPEN", Message: "An open time-in already exists for today"}
	NoOpenSession              = Definition{Code: "NO_OPEN_SESSION", Message: "No active time-in record found"}
	ClockBusy                  = Definition{Code: "CLOCK_BUSY", Message: "Another clock operation is in flight"}
)

// 围栏 / 定位错误。
var (
	LocationUnavailable = Definition{Code: "LOCATION_UNAVAILABLE", Message: "Location required to time in"}
	OutOfSiteRange      = Definition{Code: "OUT_OF_SITE_RANGE", Message: "You must be at the site location to time in"}
)

// 工作笔记错误。
var (
	NoteDateInFuture = Definition{Code: "NOTE_DATE_IN_FUTURE", Message: "Cannot save a note for a future date"}
	NoteAlreadySaved = Definition{Code: "NOTE_ALREADY_SAVED", Message: "Today's note was already saved, edit it from the calendar"}
	InvalidDate      = Definition{Code: "INVALID_DATE", Message: "Invalid date, expected YYYY-MM-DD"}
)

// 存储错误：upsert 要么全量生效要么不生效，失败后之前的持久状态不变。
var (
	StoreReadFailed  = Definition{Code: "STORE_READ_FAILED", Message: "Failed to read attendance records"}
	StoreWriteFailed = Definition{Code: "STORE_WRITE_FAILED", Message: "Failed to write attendance record"}
)

// 基础设施 sentinel 错误（非业务码，用于 %w 判断）。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator is not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected token signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token claims")
)

// DetailedError 在业务错误上附带结构化细节，比如围栏拒绝时的实测距离。
type DetailedError struct {
	Definition
	Details map[string]interface{}
}

// Unwrap 让 errors.Is 能直接匹配内嵌的 Definition。
func (e *DetailedError) Unwrap() error {
	return e.Definition
}

// WithDetails 给业务错误附加细节。
func WithDetails(def Definition, details map[string]interface{}) *DetailedError {
	return &DetailedError{Definition: def, Details: details}
}

// SkipMessageError 消费者跳过重复消息时返回，不触发 requeue。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}

// IsSkipMessageError 判断是否为跳过消息错误。
func IsSkipMessageError(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthenticated.Code:            Unauthenticated,
	InvalidCredentials.Code:         InvalidCredentials,
	EmailAlreadyRegistered.Code:     EmailAlreadyRegistered,
	UserNotFound.Code:               UserNotFound,
	InvalidUserID.Code:              InvalidUserID,
	RoleForbidden.Code:              RoleForbidden,
	InvalidTimezone.Code:            InvalidTimezone,
	TooManyRequests.Code:            TooManyRequests,
	AttendanceAlreadyCompleted.Code: AttendanceAlreadyCompleted,
	ClockInAlreadyOpen.Code:         ClockInAlreadyOpen,
	NoOpenSession.Code:              NoOpenSession,
	ClockBusy.Code:                  ClockBusy,
	LocationUnavailable.Code:        LocationUnavailable,
	OutOfSiteRange.Code:             OutOfSiteRange,
	NoteDateInFuture.Code:           NoteDateInFuture,
	NoteAlreadySaved.Code:           NoteAlreadySaved,
	InvalidDate.Code:                InvalidDate,
	StoreReadFailed.Code:            StoreReadFailed,
	StoreWriteFailed.Code:           StoreWriteFailed,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
