package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK             ErrorCode = "OK"
	CodeUnknown        ErrorCode = "COMMON_000"
	CodeInternal       ErrorCode = "COMMON_001"
	CodeInvalidParam   ErrorCode = "COMMON_002"
	CodeNotFound       ErrorCode = "COMMON_003"
	CodeConflict       ErrorCode = "COMMON_004"
	CodeValidation     ErrorCode = "COMMON_005"
	CodeSerialization  ErrorCode = "COMMON_006"
	CodeDatabaseError  ErrorCode = "COMMON_007"
	CodeCacheError     ErrorCode = "COMMON_008"
	CodeNetworkFailure ErrorCode = "COMMON_009"
	CodePartialFailure ErrorCode = "COMMON_010"
)

// Comparison module error codes.
const (
	CodeSubjectExists       ErrorCode = "CMP_001"
	CodeNoSubjects          ErrorCode = "CMP_002"
	CodeBackendError        ErrorCode = "CMP_003"
	CodeStaleResult         ErrorCode = "CMP_004"
	CodeSnapshotNotComputed ErrorCode = "CMP_005"
)

// Change-log module error codes.
const (
	CodeCursorExhausted ErrorCode = "CHG_001"
	CodePageFetchFailed ErrorCode = "CHG_002"
)

// Preset module error codes.
const (
	CodePresetNotFound ErrorCode = "PRS_001"
	CodePresetInvalid  ErrorCode = "PRS_002"
)

// Export module error codes.
const (
	CodeExportRenderFailed ErrorCode = "EXP_001"
	CodeExportUploadFailed ErrorCode = "EXP_002"
	CodeFormatUnsupported  ErrorCode = "EXP_003"
)

// Analytics job error codes.
const (
	CodeJobTriggerFailed ErrorCode = "JOB_001"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	CodeInternal:       http.StatusInternalServerError,
	CodeInvalidParam:   http.StatusBadRequest,
	CodeNotFound:       http.StatusNotFound,
	CodeConflict:       http.StatusConflict,
	CodeValidation:     http.StatusUnprocessableEntity,
	CodeSerialization:  http.StatusInternalServerError,
	CodeDatabaseError:  http.StatusInternalServerError,
	CodeCacheError:     http.StatusInternalServerError,
	CodeNetworkFailure: http.StatusBadGateway,
	CodePartialFailure: http.StatusBadGateway,

	CodeSubjectExists:       http.StatusConflict,
	CodeNoSubjects:          http.StatusBadRequest,
	CodeBackendError:        http.StatusBadGateway,
	CodeStaleResult:         http.StatusConflict,
	CodeSnapshotNotComputed: http.StatusNotFound,

	CodeCursorExhausted: http.StatusBadRequest,
	CodePageFetchFailed: http.StatusBadGateway,

	CodePresetNotFound: http.StatusNotFound,
	CodePresetInvalid:  http.StatusBadRequest,

	CodeExportRenderFailed: http.StatusInternalServerError,
	CodeExportUploadFailed: http.StatusBadGateway,
	CodeFormatUnsupported:  http.StatusBadRequest,

	CodeJobTriggerFailed: http.StatusBadGateway,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
