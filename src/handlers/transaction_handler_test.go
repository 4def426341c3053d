package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/username/fintrack/backend/src/models"
)

func TestSelectionUnmarshal(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantExisting string
		wantNew      string
		wantErr      bool
	}{
		{"bare string is existing", `"餐飲"`, "餐飲", "", false},
		{"existing object", `{"existing": "餐飲"}`, "餐飲", "", false},
		{"new object", `{"new": "醫療"}`, "", "醫療", false},
		{"not a selection", `42`, "", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var s Selection
			err := json.Unmarshal([]byte(test.input), &s)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.wantExisting, s.Existing)
			assert.Equal(t, test.wantNew, s.New)
		})
	}
}

func TestSelectionValidate(t *testing.T) {
	assert.NoError(t, Selection{Existing: "餐飲"}.validate())
	assert.NoError(t, Selection{New: "醫療"}.validate())
	assert.Error(t, Selection{}.validate())
	assert.Error(t, Selection{Existing: "a", New: "b"}.validate())
}

func TestSelectionValue(t *testing.T) {
	assert.Equal(t, "餐飲", Selection{Existing: "餐飲"}.value())
	assert.Equal(t, "醫療", Selection{New: "醫療"}.value())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrAccountNotFound, http.StatusNotFound},
		{models.ErrTransactionNotFound, http.StatusNotFound},
		{models.ErrDuplicateCategory, http.StatusConflict},
		{models.ErrDuplicateItem, http.StatusConflict},
		{models.ErrInvalidAmount, http.StatusBadRequest},
		{models.ErrSameAccount, http.StatusBadRequest},
		{models.ErrEmptyName, http.StatusBadRequest},
		{models.ErrUnknownCategory, http.StatusBadRequest},
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", models.ErrSameAccount), http.StatusBadRequest},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, statusForError(test.err))
	}
}
