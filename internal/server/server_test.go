package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvlens/internal/server"
)

const salesCSV = "region,amount,paid\nnorth,10,true\nsouth,12,false\neast,,true\nwest,11,true\nbad,row\n"

func newTestServer(t *testing.T, maxBytes int64) *httptest.Server {
	t.Helper()
	s := server.New(server.Config{MaxUploadBytes: maxBytes}, nil)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func upload(t *testing.T, ts *httptest.Server, name, body string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/datasets", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type uploaded struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Summary struct {
		TotalRows      int `json:"totalRows"`
		NumericColumns int `json:"numericColumns"`
		BooleanColumns int `json:"booleanColumns"`
	} `json:"summary"`
	Insights []struct {
		Type  string `json:"type"`
		Title string `json:"title"`
	} `json:"insights"`
	Skipped []struct {
		Line int `json:"line"`
	} `json:"skipped"`
}

func mustUpload(t *testing.T, ts *httptest.Server) uploaded {
	t.Helper()
	resp := upload(t, ts, "sales.csv", salesCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var u uploaded
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	return u
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadAnalyzesDataset(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "sales.csv", u.Name)
	assert.Equal(t, 4, u.Rows)
	assert.Equal(t, 4, u.Summary.TotalRows)
	assert.Equal(t, 1, u.Summary.NumericColumns)
	assert.Equal(t, 1, u.Summary.BooleanColumns)
	require.Len(t, u.Skipped, 1)
	assert.Equal(t, 6, u.Skipped[0].Line)
	require.NotEmpty(t, u.Insights)
	assert.Equal(t, "Dataset Overview", u.Insights[0].Title)

	resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadRejections(t *testing.T) {
	ts := newTestServer(t, 64)
	cases := []struct {
		name   string
		file   string
		body   string
		status int
	}{
		{"wrong extension", "data.txt", "a,b\n1,2\n", http.StatusBadRequest},
		{"empty file", "data.csv", "", http.StatusBadRequest},
		{"too large", "data.csv", "a\n" + strings.Repeat("1\n", 100), http.StatusRequestEntityTooLarge},
		{"header only", "data.csv", "a,b\n", http.StatusUnprocessableEntity},
		{"no valid rows", "data.csv", "a,b\n1\n2\n", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := upload(t, ts, tc.file, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			var e struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestRowsPaging(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	type page struct {
		Offset  int             `json:"offset"`
		Limit   int             `json:"limit"`
		Total   int             `json:"total"`
		Columns []string        `json:"columns"`
		Rows    json.RawMessage `json:"rows"`
	}
	get := func(query string) page {
		t.Helper()
		resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID + "/rows" + query)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, query)
		var p page
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		return p
	}

	p := get("?offset=1&limit=2")
	assert.Equal(t, 1, p.Offset)
	assert.Equal(t, 2, p.Limit)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, []string{"region", "amount", "paid"}, p.Columns)
	assert.JSONEq(t, `[{"region":"south","amount":12,"paid":false},{"region":"east","amount":null,"paid":true}]`, string(p.Rows))

	p = get("?offset=2&shape=arrays")
	assert.Equal(t, 50, p.Limit)
	assert.JSONEq(t, `[["east",null,true],["west",11,true]]`, string(p.Rows))

	p = get("?offset=10")
	assert.JSONEq(t, `[]`, string(p.Rows))

	for _, query := range []string{"?limit=0", "?offset=-1", "?limit=abc", "?shape=columns"} {
		resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID + "/rows" + query)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestColumnStatistics(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID + "/columns/amount/statistics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Column     string `json:"column"`
		Statistics struct {
			Mean  float64 `json:"mean"`
			Count int     `json:"count"`
		} `json:"statistics"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "amount", out.Column)
	assert.Equal(t, 3, out.Statistics.Count)
	assert.InDelta(t, 11.0, out.Statistics.Mean, 1e-9)

	for path, status := range map[string]int{
		"/columns/region/statistics":  http.StatusUnprocessableEntity,
		"/columns/missing/statistics": http.StatusNotFound,
	} {
		resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode, path)
	}
}

func TestAsk(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	resp, err := http.Post(ts.URL+"/api/datasets/"+u.ID+"/ask", "application/json",
		strings.NewReader(`{"question":"Any missing values?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Topic  string `json:"topic"`
		Answer string `json:"answer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "missing", out.Topic)
	assert.Contains(t, out.Answer, "amount")

	bad, err := http.Post(ts.URL+"/api/datasets/"+u.ID+"/ask", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestExports(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	resp, err := http.Get(ts.URL + "/api/datasets/" + u.ID + "/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "processed_sales.csv")
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "region,amount,paid\nnorth,10,true\nsouth,12,false\neast,,true\nwest,11,true", body.String())

	rep, err := http.Get(ts.URL + "/api/datasets/" + u.ID + "/report.txt")
	require.NoError(t, err)
	defer rep.Body.Close()
	require.Equal(t, http.StatusOK, rep.StatusCode)
	body.Reset()
	_, err = body.ReadFrom(rep.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "DATASET SUMMARY")
}

func TestDeleteAndUnknownSession(t *testing.T) {
	ts := newTestServer(t, 0)
	u := mustUpload(t, ts)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/datasets/"+u.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/datasets/" + u.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEachUploadIsANewSession(t *testing.T) {
	ts := newTestServer(t, 0)
	a := mustUpload(t, ts)
	b := mustUpload(t, ts)
	assert.NotEqual(t, a.ID, b.ID)

	resp, err := http.Get(ts.URL + "/api/datasets")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []uploaded
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)
}
