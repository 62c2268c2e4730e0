package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(errors.Wrap(ErrNotFound, "kelas tidak ditemukan")))
	assert.Equal(t, fiber.StatusNotFound, StatusFor(gorm.ErrRecordNotFound))
	assert.Equal(t, fiber.StatusConflict, StatusFor(errors.Wrap(ErrConflict, "kelas penuh")))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(errors.Wrap(ErrBadRequest, "x")))
	assert.Equal(t, fiber.StatusTeapot, StatusFor(fiber.NewError(fiber.StatusTeapot, "teh")))
	assert.Equal(t, fiber.StatusConflict, StatusFor(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "kelas penuh", UserMessage(errors.Wrap(ErrConflict, "kelas penuh")))
	assert.Equal(t, "Data duplikat: uq_students_matricule",
		UserMessage(&pgconn.PgError{Code: "23505", ConstraintName: "uq_students_matricule"}))
}

func TestFromServiceErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return FromServiceError(c, errors.Wrap(ErrConflict, "siswa sudah terdaftar"))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
