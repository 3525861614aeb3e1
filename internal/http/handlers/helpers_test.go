package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tarcart/internal/service"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrSubmissionNotFound, http.StatusNotFound},
		{service.ErrStationNotFound, http.StatusNotFound},
		{service.ErrAlreadyReviewed, http.StatusConflict},
		{service.ErrMalformedSubmission, http.StatusBadRequest},
		{service.ErrHomeStationProtected, http.StatusBadRequest},
		{service.ErrUnknownAction, http.StatusBadRequest},
		{service.ErrUnknownStatus, http.StatusBadRequest},
		{fmt.Errorf("decide: %w", service.ErrAlreadyReviewed), http.StatusConflict},
		{errors.New("driver: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content type, got %q", ct)
		}
	}
}
