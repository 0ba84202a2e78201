package httpclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/stretchr/testify/require"
)

type course struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

func TestDecode_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare object", body: `{"id":"c-1","code":"CS101"}`},
		{name: "data envelope", body: `{"success":true,"data":{"id":"c-1","code":"CS101"}}`},
		{name: "result envelope", body: `{"message":"ok","result":{"id":"c-1","code":"CS101"}}`},
		{name: "payload envelope", body: `{"payload":{"id":"c-1","code":"CS101"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c course
			require.NoError(t, httpclient.Decode([]byte(tt.body), &c))
			require.Equal(t, course{ID: "c-1", Code: "CS101"}, c)
		})
	}
}

func TestDecode_DataFieldOnEntityIsNotAnEnvelope(t *testing.T) {
	var out struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	}
	require.NoError(t, httpclient.Decode([]byte(`{"id":"x","data":"raw"}`), &out))
	require.Equal(t, "x", out.ID)
	require.Equal(t, "raw", out.Data)
}

func TestDecode_InvalidJSON(t *testing.T) {
	var c course
	err := httpclient.Decode([]byte(`<html>`), &c)

	var decodeErr *httpclient.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeList_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":"1"},{"id":"2"}]`, want: 2},
		{name: "data array", body: `{"data":[{"id":"1"}],"success":true}`, want: 1},
		{name: "items with total", body: `{"items":[{"id":"1"},{"id":"2"}],"total":2}`, want: 2},
		{name: "data with items", body: `{"data":{"items":[{"id":"1"}],"page":1}}`, want: 1},
		{name: "named collection", body: `{"courses":[{"id":"1"},{"id":"2"},{"id":"3"}],"count":3}`, want: 3},
		{name: "null", body: `null`, want: 0},
		{name: "empty data", body: `{"data":[]}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := httpclient.DecodeList[course]([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, list)
			require.Len(t, list, tt.want)
		})
	}
}

func TestDecodeList_Ambiguous(t *testing.T) {
	_, err := httpclient.DecodeList[course]([]byte(`{"courses":[],"sections":[]}`))

	var decodeErr *httpclient.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestClient_ValidationMessages(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"message":["email must be an email","password is too short"]}`))
	})

	err := f.client.Post(context.Background(), "/students", map[string]string{}, nil)

	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "email must be an email; password is too short", httpErr.Message)
	require.Contains(t, httpErr.Error(), "http 400")
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := httpclient.New("not a url", nil, nopLogger())
	require.Error(t, err)
}
