package reviews

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testimonials/pkg/models"
)

func TestCSVRoundTrip(t *testing.T) {
	want := []models.Review{
		{ID: "a", Rating: 5, Comment: `Fast, friendly and "cheap"`, Reply: "", Date: "January 5, 2024"},
		{Rating: 1, Comment: "line one\nline two", Reply: "sorry", Date: "5 de enero de 2024"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, want))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadCSVByHeaderName(t *testing.T) {
	in := "comment,rating,extra\nhello,4,x\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Review{Rating: 4, Comment: "hello"}, got[0])
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,comment\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("rating,comment\nfive,hi\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}
