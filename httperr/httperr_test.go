package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"atec/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteValidationError(t *testing.T) {
	v := NewValidationError()
	v.Add("lot", "Informe o número do lote para entrada de estoque")
	v.Add("lot", "ignored second message")

	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("wrapped: %w", v))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "Informe o número do lote para entrada de estoque", fields["lot"])
	assert.Equal(t, "Dados inválidos.", body["message"])
}

func TestWriteMapsDatabaseSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("get: %w", database.ErrNotFound), http.StatusNotFound},
		{"protected", fmt.Errorf("delete: %w", database.ErrProtected), http.StatusConflict},
		{"duplicate", fmt.Errorf("create: %w", database.ErrDuplicate), http.StatusConflict},
		{"conflict", Conflict("em uso"), http.StatusConflict},
		{"stock", &database.InsufficientStockError{Available: 1, Required: 3}, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestValidationOrNil(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())
	v.Add("", "geral")
	v.Add("name", "obrigatório")
	assert.Error(t, v.OrNil())
	assert.Equal(t, "geral; name: obrigatório", v.Error())
}
