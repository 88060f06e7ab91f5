package createEvent

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventRegistry/internal/http-server/handlers/event/createEvent/mocks"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/handlers/slogdiscard"
	"eventRegistry/internal/models"
	"eventRegistry/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"place": "Bengaluru",
	"eventname": "Go Meetup",
	"participationNumber": 100,
	"duration": "3h",
	"address": "MG Road 1",
	"image": "https://img.example/go.png",
	"startTime": "18:00",
	"endTime": "21:00"
}`

var validInput = ledger.CreateEventInput{
	Place:     "Bengaluru",
	Name:      "Go Meetup",
	Capacity:  100,
	Duration:  "3h",
	Address:   "MG Road 1",
	Image:     "https://img.example/go.png",
	StartTime: "18:00",
	EndTime:   "21:00",
}

func TestCreateEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	created := &models.Event{
		ID:        "3d6f0c2e-8a4b-4c1d-9e2f-7a6b5c4d3e21",
		Place:     "Bengaluru",
		Name:      "Go Meetup",
		Capacity:  100,
		Attendees: []models.Attendee{},
	}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.EventCreator)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: validBody,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, validInput).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				var resp EventResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, "OK", resp.Status)
				require.NotNil(t, resp.Event)
				assert.Equal(t, created.ID, resp.Event.ID)
				assert.Equal(t, 0, resp.Event.SeatsTaken)
			},
		},
		{
			name:           "Invalid JSON",
			requestBody:    `invalid json`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name: "Missing event name",
			requestBody: `{
				"place": "Bengaluru",
				"participationNumber": 100,
				"duration": "3h",
				"address": "MG Road 1",
				"startTime": "18:00",
				"endTime": "21:00"
			}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"Error"`)
				assert.Contains(t, body, "EventName")
			},
		},
		{
			name: "Non-positive participation number",
			requestBody: `{
				"place": "Bengaluru",
				"eventname": "Go Meetup",
				"participationNumber": 0,
				"duration": "3h",
				"address": "MG Road 1",
				"startTime": "18:00",
				"endTime": "21:00"
			}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("ledger.CreateEventInput")).
					Return(nil, apperr.Validation("Participation number must be a positive number"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"Participation number must be a positive number"}`,
		},
		{
			name:        "Internal server error",
			requestBody: validBody,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, validInput).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			creator := mocks.NewEventCreator(t)
			tc.mockSetup(creator)

			handler := New(logger, creator)

			req, err := http.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	creator := mocks.NewEventCreator(t)
	handler := New(slogdiscard.NewDiscardLogger(), creator)

	req, err := http.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(`{}`))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body := rr.Body.String()
	for _, field := range []string{"Place", "EventName", "Duration", "Address", "StartTime", "EndTime"} {
		assert.Contains(t, body, field)
	}
	assert.NotContains(t, body, "Image")
}
