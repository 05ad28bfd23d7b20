package plugin

import "errors"

// InvokeResult is the envelope returned for every invocation.
type InvokeResult struct {
	OK        bool         `json:"ok"`
	RequestID string       `json:"request_id"`
	Result    any          `json:"result,omitempty"`
	Error     *InvokeError `json:"error,omitempty"`
}

type InvokeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(requestID string, result any) InvokeResult {
	return InvokeResult{OK: true, RequestID: requestID, Result: result}
}

func Failure(requestID string, err error) InvokeResult {
	ie := &InvokeError{Code: CodeOf(err), Message: err.Error()}
	var pe *Error
	if errors.As(err, &pe) {
		ie.Message = pe.Message
		ie.Details = pe.Details
	}
	return InvokeResult{OK: false, RequestID: requestID, Error: ie}
}
