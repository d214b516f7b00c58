package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"atec/database"

	"go.uber.org/zap"
)

// ValidationError carries form-field messages. An empty field key holds
// messages that are not tied to a single field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Invalid is a shortcut for a single-field validation error.
func Invalid(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// ConflictError is a user-facing warning about a refused operation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, map[string]string{"message": message})
}

// Write maps err onto a status code and a JSON body.
func Write(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var conflict *ConflictError
	var stock *database.InsufficientStockError

	switch {
	case errors.As(err, &validation):
		message := validation.Fields[""]
		if message == "" {
			message = "Dados inválidos."
		}
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": message,
			"fields":  validation.Fields,
		})
	case errors.As(err, &stock):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": stock.Error(),
			"fields":  map[string]string{"quantity": stock.Error()},
		})
	case errors.As(err, &conflict):
		writeJSONError(w, conflict.Message, http.StatusConflict)
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, "Registro não encontrado.", http.StatusNotFound)
	case errors.Is(err, database.ErrProtected):
		writeJSONError(w, "Não é possível excluir este registro, pois ele está em uso.", http.StatusConflict)
	case errors.Is(err, database.ErrDuplicate):
		writeJSONError(w, "Já existe um registro com este nome.", http.StatusConflict)
	default:
		zap.S().Errorf("request failed: %v", err)
		writeJSONError(w, "Erro interno do servidor.", http.StatusInternalServerError)
	}
}

// BadRequest writes a plain 400 with message.
func BadRequest(w http.ResponseWriter, message string) {
	writeJSONError(w, message, http.StatusBadRequest)
}
