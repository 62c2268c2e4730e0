// file: internals/helpers/errors.go
package helper

import (
	stdErrors "errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Sentinel error layer service. Dibungkus errors.Wrap supaya pesan
// tetap informatif, lalu dipetakan ke HTTP status oleh FromServiceError.
var (
	ErrNotFound     = errors.New("data tidak ditemukan")
	ErrConflict     = errors.New("konflik data")
	ErrBadRequest   = errors.New("permintaan tidak valid")
	ErrForbidden    = errors.New("akses ditolak")
	ErrInvalidState = errors.New("status tidak mengizinkan aksi ini")
)

// pesan untuk user = teks yang dibungkus sebelum ": <sentinel>"
type causer interface{ Cause() error }

func rootCause(err error) error {
	for err != nil {
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return err
}

// StatusFor memetakan error service/DB ke HTTP status.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var fe *fiber.Error
	if stdErrors.As(err, &fe) {
		return fe.Code
	}
	switch rootCause(err) {
	case ErrNotFound, gorm.ErrRecordNotFound:
		return fiber.StatusNotFound
	case ErrConflict:
		return fiber.StatusConflict
	case ErrBadRequest:
		return fiber.StatusBadRequest
	case ErrForbidden:
		return fiber.StatusForbidden
	case ErrInvalidState:
		return fiber.StatusConflict
	}
	if IsUniqueViolation(err) {
		return fiber.StatusConflict
	}
	if IsForeignKeyViolation(err) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// UserMessage: untuk error wrap "pesan: sentinel" ambil "pesan" saja.
func UserMessage(err error) string {
	var fe *fiber.Error
	if stdErrors.As(err, &fe) {
		return fe.Message
	}
	msg := err.Error()
	root := rootCause(err)
	if root != nil && root != err {
		suffix := ": " + root.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	if IsUniqueViolation(err) {
		return "Data duplikat: " + uniqueConstraint(err)
	}
	return msg
}

// FromServiceError → JSON envelope standar.
func FromServiceError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= 500 {
		// detail internal tidak dibocorkan, error asli dilempar ke ErrorHandler/rollbar via locals
		c.Locals("internal_error", err)
		return JsonError(c, status, "Terjadi kesalahan pada server")
	}
	return JsonError(c, status, UserMessage(err))
}

/* ===============================
   Postgres error codes
=================================*/

func pgCode(err error) (string, *pgconn.PgError) {
	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) {
		return pgErr.Code, pgErr
	}
	return "", nil
}

// 23505 unique_violation
func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == "23505"
}

// 23503 foreign_key_violation
func IsForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == "23503"
}

func uniqueConstraint(err error) string {
	if _, pe := pgCode(err); pe != nil && pe.ConstraintName != "" {
		return pe.ConstraintName
	}
	return "unique"
}
