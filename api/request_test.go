package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/oneword-blog-backend/errs"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		checkErr  func(error) bool
		wantField string
	}{
		{
			name:      "truncated",
			body:      `{"word":`,
			checkErr:  errs.IsInvalidJSONError,
			wantField: "json",
		},
		{
			name:      "wrong type",
			body:      `{"word":42}`,
			checkErr:  errs.IsInvalidJSONError,
			wantField: "json",
		},
		{
			name:      "over the size cap",
			body:      `{"word":"` + strings.Repeat("a", int(maxBodyBytes)) + `"}`,
			checkErr:  errs.IsMaxBodySizeExceededError,
			wantField: "body_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst generateRequest
			err := decodeJSON(rec, req, &dst)
			require.Error(t, err)
			assert.True(t, tt.checkErr(err), "got %v", err)

			var apiErr *errs.ApiErr
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantField, apiErr.Field)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"word":"ocean"}`))
	var dst generateRequest
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "ocean", dst.Word)
}

func TestValidateStruct(t *testing.T) {
	err := validateStruct(createBlogRequest{Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrMissingRequiredField))

	err = validateStruct(createBlogRequest{Title: strings.Repeat("t", 301), Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidField))

	assert.NoError(t, validateStruct(createBlogRequest{Title: "My Post", Content: "x"}))
}
