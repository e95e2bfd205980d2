package usecase

import (
	"errors"
	"fmt"
)

// usecaseの失敗はHTTPステータス付きでhandlerへ返す。
// 呼び出し元の操作で回復できる失敗（入力不備・決済拒否・在庫競合）はここに畳む。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
