package httperror

import (
	"fmt"
	"net/http"
)

// HTTPError is returned by handlers to answer with a specific status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// NotFound returns a 404 HTTPError
func NotFound(format string, args ...any) HTTPError {
	return HTTPError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequest returns a 400 HTTPError
func BadRequest(format string, args ...any) HTTPError {
	return HTTPError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}
