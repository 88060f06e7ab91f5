package deleteEvent

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventRegistry/internal/http-server/handlers/event/deleteEvent/mocks"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/handlers/slogdiscard"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testEventID = "1e2d3c4b-5a69-4788-96a5-b4c3d2e1f001"

func TestDeleteEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","message":"Event Deleted Successfully"}`,
		},
		{
			name:           "Not found",
			mockErr:        apperr.NotFound("Event Not found"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"Event Not found"}`,
		},
		{
			name:           "Store failure",
			mockErr:        errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deleter := mocks.NewEventDeleter(t)
			deleter.On("DeleteEvent", mock.Anything, testEventID).Return(tc.mockErr)

			router := chi.NewRouter()
			router.Delete("/events/{id}", New(logger, deleter))

			req := httptest.NewRequest(http.MethodDelete, "/events/"+testEventID, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
