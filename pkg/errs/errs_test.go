package errs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unheard/unheard-backend/pkg/errs"
)

func TestKindIsFindsNestedKind(t *testing.T) {
	inner := errs.E(errs.NotExist, errs.Op("inner.Op"), errs.Str("not found"))
	outer := errs.E(errs.Op("outer.Op"), inner)

	assert.True(t, errs.KindIs(errs.NotExist, outer))
	assert.False(t, errs.KindIs(errs.Database, outer))
	assert.False(t, errs.KindIs(errs.NotExist, errs.Str("plain")))
}

func TestOpStack(t *testing.T) {
	inner := errs.E(errs.Database, errs.Op("storage.GetStory"), errs.Str("connection reset"))
	middle := errs.E(errs.Op("syncService.PullStories"), inner)
	outer := errs.E(errs.Op("SyncHandler.TriggerSync"), middle)

	stack := errs.OpStack(outer)

	require.Len(t, stack, 3)
	assert.Equal(t, "SyncHandler.TriggerSync", stack[0])
	assert.Equal(t, "storage.GetStory", stack[2])
}

func TestMatch(t *testing.T) {
	err := errs.E(errs.Validation, errs.Op("service.ParseRemoteStatus"), errs.Parameter("status"), errs.Str("unrecognized status: published"))

	assert.True(t, errs.Match(&errs.Error{Kind: errs.Validation}, err))
	assert.True(t, errs.Match(&errs.Error{Param: errs.Parameter("status")}, err))
	assert.False(t, errs.Match(&errs.Error{Kind: errs.Database}, err))
}

func TestHTTPErrorResponseStatusCodes(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "not exist", err: errs.E(errs.NotExist, errs.Str("x")), statusCode: http.StatusNotFound},
		{name: "validation", err: errs.E(errs.Validation, errs.Str("x")), statusCode: http.StatusBadRequest},
		{name: "invalid request", err: errs.E(errs.InvalidRequest, errs.Str("x")), statusCode: http.StatusBadRequest},
		{name: "unauthenticated", err: errs.E(errs.Unauthenticated, errs.Str("x")), statusCode: http.StatusUnauthorized},
		{name: "unauthorized", err: errs.E(errs.Unauthorized, errs.Str("x")), statusCode: http.StatusForbidden},
		{name: "database", err: errs.E(errs.Database, errs.Str("x")), statusCode: http.StatusInternalServerError},
		{name: "unwrapped error", err: errs.Str("x"), statusCode: http.StatusInternalServerError},
		{name: "nil error", err: nil, statusCode: http.StatusInternalServerError},
	}

	log := zerolog.New(zerolog.NewConsoleWriter())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errs.HTTPErrorResponse(rec, log, tc.err)
			assert.Equal(t, tc.statusCode, rec.Code)
		})
	}
}

func TestHTTPErrorResponseBody(t *testing.T) {
	rec := httptest.NewRecorder()
	log := zerolog.New(zerolog.NewConsoleWriter())

	errs.HTTPErrorResponse(rec, log, errs.E(errs.Validation, errs.Parameter("status"), errs.Str("unrecognized status: published")))

	body := rec.Body.String()
	assert.Contains(t, body, `"kind":"input_validation_error"`)
	assert.Contains(t, body, `"param":"status"`)
	assert.Contains(t, body, "unrecognized status: published")
}
