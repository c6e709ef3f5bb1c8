package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong username or pin")
	ErrInvalidToken     = errors.New("invalid token")
	ErrForbidden        = errors.New("operation requires admin role")
	ErrSelfDelete       = errors.New("cannot delete own account")
	ErrNoSession        = errors.New("no authenticated session")

	ErrCategoryNotFound = errors.New("category doesn't exist")
	ErrCategoryInUse    = errors.New("category is referenced by actions")
	ErrActionNotFound   = errors.New("action doesn't exist")

	ErrDocumentNotFound = errors.New("document doesn't exist")

	ErrInvalidEmail           = errors.New("invalid email address")
	ErrUnsupportedFormat      = errors.New("unsupported report format")
	ErrTransportNotConfigured = errors.New("email transport is not configured")
)
