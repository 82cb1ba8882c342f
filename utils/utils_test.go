package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	require.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestValidID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{id: GenerateID(), want: true},
		{id: "6f1c2b9e-3a4d-4e5f-8a7b-1c2d3e4f5a6b", want: true},
		{id: "", want: false},
		{id: "nonexistent", want: false},
		{id: "6f1c2b9e-3a4d-4e5f-8a7b", want: false},
		{id: "urn:uuid:6f1c2b9e-3a4d-4e5f-8a7b-1c2d3e4f5a6b", want: false},
		{id: "{6f1c2b9e-3a4d-4e5f-8a7b-1c2d3e4f5a6b}", want: false},
		{id: "6f1c2b9e3a4d4e5f8a7b1c2d3e4f5a6b", want: false},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, ValidID(tc.id), "id %q", tc.id)
	}
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, SetLevel("debug"))
	require.NoError(t, SetLevel("info"))
	require.Error(t, SetLevel("loud"))
}

func TestJSONErrorWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSONErrorWithDetails(c, http.StatusBadRequest, errors.New("bid amount too low"), "bid rejected", gin.H{"reason": "BidTooLow"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, float64(http.StatusBadRequest), body["status"])
	require.Equal(t, "bid rejected", body["message"])
	require.Equal(t, "bid amount too low", body["error"])
	require.Equal(t, "BidTooLow", body["reason"])
}
