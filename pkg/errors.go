// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error karşılaştırması string yerine sentinel değer ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Handler katmanı bu error'ları HTTP status code'larına map'ler,
// service katmanı fmt.Errorf("%w: ...") ile wrap edip döner.
package pkg

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
