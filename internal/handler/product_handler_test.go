package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menuBody struct {
	Items []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Slug  string `json:"slug"`
		Image string `json:"image"`
	} `json:"items"`
}

type productBody struct {
	ID       int64  `json:"id"`
	Slug     string `json:"slug"`
	Variants []struct {
		ID    int64   `json:"id"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"variants"`
}

func TestProductHandler_List(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/menu", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out menuBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 2)
	assert.Equal(t, "milkshake", out.Items[0].Slug)
	assert.NotEmpty(t, out.Items[0].Image)
}

func TestProductHandler_Detail(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/menu/milkshake", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out productBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "milkshake", out.Slug)
	require.Len(t, out.Variants, 6)
	assert.Equal(t, "Caramel", out.Variants[0].Title)
	assert.InDelta(t, 5.78, out.Variants[0].Price, 0.0001)
}

func TestProductHandler_Detail_NotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/menu/pizza", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeError(t, rec))
}
