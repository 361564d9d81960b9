package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

const (
	callerID = "11111111-1111-1111-1111-111111111111"
	busyID   = "22222222-2222-2222-2222-222222222222"
	idleID   = "33333333-3333-3333-3333-333333333333"
)

var start = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type fakeService struct {
	report    *scheduling.AggregateReport
	slots     []scheduling.Slot
	next      *scheduling.Slot
	err       error
	organizer string
	cand      scheduling.Candidate
	suggest   scheduling.SuggestRequest
	nextReq   scheduling.NextSlotRequest
}

func (f *fakeService) CheckConflicts(_ context.Context, organizerID string, cand scheduling.Candidate) (*scheduling.AggregateReport, error) {
	f.organizer, f.cand = organizerID, cand
	return f.report, f.err
}

func (f *fakeService) PersonConflicts(_ context.Context, personID string, s, e time.Time, _ string) (*scheduling.ConflictReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &scheduling.ConflictReport{PersonID: personID, WithinAvailability: true}, nil
}

func (f *fakeService) SuggestSlots(_ context.Context, req scheduling.SuggestRequest) ([]scheduling.Slot, []string, error) {
	f.suggest = req
	return f.slots, []string{"ghost"}, f.err
}

func (f *fakeService) FindNextAvailableSlot(_ context.Context, req scheduling.NextSlotRequest) (*scheduling.Slot, []string, error) {
	f.nextReq = req
	return f.next, nil, f.err
}

func newRouter(svc scheduling.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", callerID)
		c.Next()
	}
	h := NewHandler(svc, zap.NewNop())
	h.now = func() time.Time { return start }
	RegisterRoutes(r.Group("/v1"), h, fakeAuth)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckConflicts(t *testing.T) {
	svc := &fakeService{report: &scheduling.AggregateReport{
		OrganizerReport: &scheduling.ConflictReport{PersonID: callerID, WithinAvailability: true},
		ParticipantConflicts: map[string]scheduling.ParticipantConflict{
			busyID: {PersonID: busyID, Name: "Bashir", Report: &scheduling.ConflictReport{
				PersonID:            busyID,
				HasConflicts:        true,
				ConflictingMeetings: []scheduling.MeetingRef{{ID: "m1", Title: "Sync", Start: start, End: start.Add(time.Hour)}},
			}},
		},
		HasAnyConflicts:       true,
		SuggestedAlternatives: []scheduling.Slot{{Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), DurationMinutes: 60}},
	}}
	r := newRouter(svc)

	w := post(r, "/v1/scheduling/conflicts", `{
		"start_time": "2024-06-03T09:00:00Z",
		"duration_minutes": 60,
		"participant_ids": ["`+busyID+`", "`+idleID+`"]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, callerID, svc.organizer)
	assert.Equal(t, 60, svc.cand.DurationMinutes)
	assert.True(t, svc.cand.End.IsZero())
	assert.Equal(t, []string{busyID, idleID}, svc.cand.ParticipantIDs)

	var body struct {
		HasConflicts bool                    `json:"has_conflicts"`
		Data         AggregateReportResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.HasConflicts)
	require.Len(t, body.Data.ParticipantConflicts, 1)
	assert.Equal(t, "Bashir", body.Data.ParticipantConflicts[0].Name)
	assert.Equal(t, "m1", body.Data.ParticipantConflicts[0].Report.ConflictingMeetings[0].ID)
	assert.Len(t, body.Data.SuggestedAlternatives, 1)
}

func TestCheckConflicts_BadRequests(t *testing.T) {
	r := newRouter(&fakeService{report: &scheduling.AggregateReport{}})

	tests := []struct {
		name string
		body string
	}{
		{"missing start", `{"duration_minutes": 30}`},
		{"short duration", `{"start_time": "2024-06-03T09:00:00Z", "duration_minutes": 4}`},
		{"long duration", `{"start_time": "2024-06-03T09:00:00Z", "duration_minutes": 481}`},
		{"bad participant id", `{"start_time": "2024-06-03T09:00:00Z", "participant_ids": ["nope"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/v1/scheduling/conflicts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{scheduling.ErrInvalidWindow, http.StatusBadRequest},
		{scheduling.ErrOrganizerNotFound, http.StatusNotFound},
		{&scheduling.DataUnavailableError{Op: "find meetings", Err: assert.AnError}, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newRouter(&fakeService{err: tt.err})
			w := post(r, "/v1/scheduling/conflicts", `{"start_time": "2024-06-03T09:00:00Z"}`)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSuggestions(t *testing.T) {
	svc := &fakeService{slots: []scheduling.Slot{{Start: start, End: start.Add(30 * time.Minute), Date: "2024-06-03", TimeDisplay: "09:00-09:30"}}}
	r := newRouter(svc)

	w := post(r, "/v1/scheduling/suggestions", `{"preferred_date": "2024-06-03", "duration_minutes": 30, "num_suggestions": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, callerID, svc.suggest.OrganizerID)
	assert.Equal(t, 3, svc.suggest.NumSuggestions)
	assert.Zero(t, svc.suggest.DaysToSearch)
	y, m, d := svc.suggest.PreferredDate.Date()
	assert.Equal(t, []int{2024, 6, 3}, []int{y, int(m), d})

	var body struct {
		Items []SlotResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "09:00-09:30", body.Items[0].TimeDisplay)

	for _, bad := range []string{
		`{"preferred_date": "03/06/2024"}`,
		`{"preferred_date": "2024-06-03", "num_suggestions": 21}`,
		`{"preferred_date": "2024-06-03", "days_to_search": 32}`,
	} {
		assert.Equal(t, http.StatusBadRequest, post(r, "/v1/scheduling/suggestions", bad).Code, bad)
	}
}

func TestNextSlot(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := post(r, "/v1/scheduling/next-slot", `{"duration_minutes": 45}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"slot": null}`, w.Body.String())
	assert.Equal(t, start, svc.nextReq.After, "after defaults to now")

	svc.next = &scheduling.Slot{Start: start, End: start.Add(45 * time.Minute), DurationMinutes: 45}
	w = post(r, "/v1/scheduling/next-slot", `{"after": "2024-06-04T10:00:00Z", "max_days": 3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.nextReq.MaxDays)
	assert.True(t, svc.nextReq.After.Equal(time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)))

	var body struct {
		Slot *SlotResponse `json:"slot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Slot)
	assert.Equal(t, 45, body.Slot.DurationMinutes)

	assert.Equal(t, http.StatusBadRequest, post(r, "/v1/scheduling/next-slot", `{"max_days": 61}`).Code)
}

func TestPersonConflicts(t *testing.T) {
	r := newRouter(&fakeService{})

	w := post(r, "/v1/scheduling/users/"+busyID+"/conflicts", `{"start_time": "2024-06-03T09:00:00Z", "end_time": "2024-06-03T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body ConflictReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, busyID, body.PersonID)

	w = post(r, "/v1/scheduling/users/not-a-uuid/conflicts", `{"start_time": "2024-06-03T09:00:00Z", "end_time": "2024-06-03T10:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
