package pkg

import "fmt"

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Code       string
	Message    string
	Err        error
	HTTPStatus int
}

// CodeBudgetConflict marks a write that lost a race with another update.
const CodeBudgetConflict = "BUDGET_CONFLICT"

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func NewDomainError(code, message string, err error, status int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: status}
}

func NewDomainErrorSimple(code, message string, status int) *AppError {
	return NewDomainError(code, message, nil, status)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// ToHTTPError hides the wrapped error; only Message reaches the client.
func (e *AppError) ToHTTPError() HTTPError {
	return HTTPError{Code: e.Code, Detail: e.Message}
}
