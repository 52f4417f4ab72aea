package engagement

import "errors"

var (
	ErrSourceUnavailable = errors.New("engagement source unavailable")
	ErrInvalidTable      = errors.New("invalid engagement table name")
	ErrInvalidImport     = errors.New("unsupported engagement import file")
	ErrInvalidResponse   = errors.New("invalid engagement response")
)
