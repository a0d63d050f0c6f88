package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	. "github.com/Melvinkheturus/examinerpro-web-sub001/apps/api/echo"
	testutil "github.com/Melvinkheturus/examinerpro-web-sub001/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func setup(t *testing.T) (*testutil.Services, *Server) {
	s := testutil.NewServices()
	validate, translator := testutil.NewValidator()

	srv := NewServer(ServerDeps{
		Conf:           s.Conf,
		Logger:         testutil.NewLogger(),
		ExaminerSvc:    s.ExaminerSvc,
		CalculationSvc: s.CalculationSvc,
		ReportSvc:      s.ReportSvc,
		Settings:       s.Settings,
		Validate:       validate,
		Translator:     translator,
		Metrics:        NewMetrics(prometheus.NewRegistry()),
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return s, srv
}

func jan(day int) time.Time {
	return time.Date(2024, time.January, day, 10, 0, 0, 0, time.UTC)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, s *testutil.Services) string {
	token, err := GenerateToken(s.Conf.JWTSecret, NewClaims("5a3c7b7e-1f1e-4c55-9a57-0f2d1e4c1b10", "office@college.test", time.Hour))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, srv *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestServer_home(t *testing.T) {
	_, srv := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to ExaminerPro API!", rec.Body.String())
}

func TestServer_auth(t *testing.T) {
	s, srv := setup(t)

	anon, err := GenerateToken(s.Conf.JWTSecret, &Claims{Role: "anon"})
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	forged, err := GenerateToken("not-the-secret", NewClaims("someone", "", time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	expired, err := GenerateToken(s.Conf.JWTSecret, NewClaims("someone", "", -time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	runTests(t, srv, []httpTest{
		{name: "Auth required", path: "/v1/examiners", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "Anon key refused", path: "/v1/examiners", token: anon, wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"})},
		{name: "Forged token", path: "/v1/examiners", token: forged, wantCode: http.StatusUnauthorized},
		{name: "Expired token", path: "/v1/examiners", token: expired, wantCode: http.StatusUnauthorized},
		{name: "Signed in", path: "/v1/examiners", token: getToken(t, s), wantCode: http.StatusOK, wantData: marshalList(t)},
	})
}
