package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("settling sale: %w", Conflictf("vehicle ABC1D23 is already sold"))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindValidation))
	assert.False(t, Is(errors.New("plain"), KindConflict))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "vehicle"))

	err := FromDB(gorm.ErrRecordNotFound, "vehicle")
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "vehicle not found: record not found", err.Error())

	err = FromDB(&pgconn.PgError{Code: "23503"}, "expense type")
	assert.True(t, Is(err, KindInUse))

	err = FromDB(&pgconn.PgError{Code: "23505"}, "vehicle")
	assert.True(t, Is(err, KindConflict))

	// Unknown driver errors pass through untranslated.
	plain := errors.New("connection refused")
	assert.Equal(t, plain, FromDB(plain, "vehicle"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validationf("bad input")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("vehicle not found")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("already sold")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(InUsef("still in use")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))

	wrapped := fmt.Errorf("handler: %w", NotFoundf("sale not found"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}
