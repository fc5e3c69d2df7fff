package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     string   `json:"-"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags"`
}

func TestEncodeFields(t *testing.T) {
	fields, err := EncodeFields(sample{ID: "ignored", Name: "Acme", Active: true, Tags: []string{"web"}})
	require.NoError(t, err)
	require.Equal(t, "Acme", fields["name"])
	require.Equal(t, true, fields["active"])
	require.Equal(t, []any{"web"}, fields["tags"])
	require.NotContains(t, fields, "id")
}

func TestDecodeDocument(t *testing.T) {
	doc := Document{
		ID: "d1",
		Fields: Fields{
			"id":     "bogus",
			"name":   "Beta",
			"active": false,
			"tags":   []any{"mobile"},
		},
	}

	var out sample
	require.NoError(t, DecodeDocument(doc, &out))
	require.Equal(t, "Beta", out.Name)
	require.False(t, out.Active)
	require.Equal(t, []string{"mobile"}, out.Tags)
	require.Empty(t, out.ID)
}

func TestDecodeDocument_TypeMismatch(t *testing.T) {
	doc := Document{ID: "d1", Fields: Fields{"name": 42}}

	var out sample
	err := DecodeDocument(doc, &out)
	require.ErrorIs(t, err, ErrInvalidInput)
}
