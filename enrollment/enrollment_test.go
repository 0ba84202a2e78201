package enrollment_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-enrollment-client/enrollment"
	"github.com/jrsteele09/go-enrollment-client/httpclient"
	apperrors "github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

type testFixture struct {
	api      *enrollment.API
	requests chan recordedRequest
}

// setupTestFixture answers every request with the given status and body and
// records what was sent.
func setupTestFixture(t *testing.T, status int, body string) *testFixture {
	t.Helper()
	f := &testFixture{requests: make(chan recordedRequest, 10)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.requests <- recordedRequest{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery, body: string(data)}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := httpclient.New(srv.URL+"/api", &http.Client{}, zerolog.Nop())
	require.NoError(t, err)
	f.api = enrollment.NewAPI(client)
	return f
}

func TestResource_List(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[{"id":"c1","code":"CS101","title":"Intro","units":3}]`},
		{name: "data envelope", body: `{"success":true,"data":[{"id":"c1","code":"CS101","title":"Intro","units":3}]}`},
		{name: "paginated", body: `{"data":{"items":[{"id":"c1","code":"CS101","title":"Intro","units":3}],"total":1,"page":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, http.StatusOK, tt.body)

			courses, err := f.api.Courses.List(context.Background(), url.Values{"search": {"intro"}})

			require.NoError(t, err)
			require.Equal(t, []enrollment.Course{{ID: "c1", Code: "CS101", Title: "Intro", Units: 3}}, courses)
			req := <-f.requests
			require.Equal(t, http.MethodGet, req.method)
			require.Equal(t, "/api/courses", req.path)
			require.Equal(t, "search=intro", req.query)
		})
	}
}

func TestResource_GetEscapesID(t *testing.T) {
	f := setupTestFixture(t, http.StatusOK, `{"data":{"id":"2021/42","schoolId":"2021-0042","firstName":"Ana","lastName":"Reyes","email":"ana@school.edu"}}`)

	student, err := f.api.Students.Get(context.Background(), "2021/42")

	require.NoError(t, err)
	require.Equal(t, "Ana", student.FirstName)
	require.Equal(t, "/api/students/2021%2F42", (<-f.requests).path)
}

func TestResource_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, http.StatusOK, `{"data":{"id":"s1","name":"1st Semester","schoolYear":"2025-2026","isActive":true}}`)
	in := enrollment.Semester{Name: "1st Semester", SchoolYear: "2025-2026", IsActive: true}

	created, err := f.api.Semesters.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "s1", created.ID)
	req := <-f.requests
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "/api/semesters", req.path)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &sent))
	require.NotContains(t, sent, "id")
	require.Equal(t, "2025-2026", sent["schoolYear"])

	_, err = f.api.Semesters.Update(ctx, "s1", *created)
	require.NoError(t, err)
	req = <-f.requests
	require.Equal(t, http.MethodPut, req.method)
	require.Equal(t, "/api/semesters/s1", req.path)
}

func TestResource_Delete(t *testing.T) {
	f := setupTestFixture(t, http.StatusNoContent, "")

	require.NoError(t, f.api.Sections.Delete(context.Background(), "sec-9"))
	req := <-f.requests
	require.Equal(t, http.MethodDelete, req.method)
	require.Equal(t, "/api/sections/sec-9", req.path)
}

func TestResource_EmptyIDRejected(t *testing.T) {
	f := setupTestFixture(t, http.StatusOK, `{}`)

	_, err := f.api.ClearingOfficers.Get(context.Background(), " ")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.ErrorIs(t, f.api.Courses.Delete(context.Background(), ""), apperrors.ErrInvalidRequest)
	require.Empty(t, f.requests)
}

func TestResource_BackendErrorMessage(t *testing.T) {
	f := setupTestFixture(t, http.StatusUnprocessableEntity, `{"message":["code is required","units must be positive"]}`)

	_, err := f.api.Courses.Create(context.Background(), enrollment.Course{})

	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)
	require.Equal(t, "code is required; units must be positive", httpErr.Message)
}

func TestEnrollments_SetStatus(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, http.StatusOK, `{"data":{"id":"e1","studentId":"st1","sectionId":"sec1","semesterId":"s1","status":"cleared"}}`)

	got, err := f.api.Enrollments.SetStatus(ctx, "e1", enrollment.StatusCleared, "")
	require.NoError(t, err)
	require.Equal(t, enrollment.StatusCleared, got.Status)
	req := <-f.requests
	require.Equal(t, http.MethodPatch, req.method)
	require.Equal(t, "/api/enrollments/e1/status", req.path)
	require.JSONEq(t, `{"status":"cleared"}`, req.body)

	_, err = f.api.Enrollments.SetStatus(ctx, "e1", enrollment.StatusRejected, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	_, err = f.api.Enrollments.SetStatus(ctx, "e1", "archived", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestAPI_Collection(t *testing.T) {
	f := setupTestFixture(t, http.StatusOK, `{"data":[{"id":"e1","status":"pending"},{"id":"e2","status":"approved"}]}`)

	lister, err := f.api.Collection("enrollments")
	require.NoError(t, err)
	items, err := lister.ListAny(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, enrollment.StatusApproved, items[1].(enrollment.Enrollment).Status)

	_, err = f.api.Collection("grades")
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
	require.Equal(t, []string{"clearing-officers", "courses", "enrollments", "sections", "semesters", "students"}, f.api.CollectionNames())
}
