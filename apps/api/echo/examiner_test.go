package echoapi_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	testutil "github.com/Melvinkheturus/examinerpro-web-sub001/tests"
)

func Test_examinerApi_query(t *testing.T) {
	s, srv := setup(t)
	token := getToken(t, s)

	path := func(search, department, ordering string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if department != "" {
			v.Add("department", department)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/v1/examiners?" + v.Encode()
	}

	anita := testutil.CreateExaminer(t, s.ExaminerRepo, "Anita Raman", "EX-101", "Physics")
	bala := testutil.CreateExaminer(t, s.ExaminerRepo, "Bala K", "EX-102", "Chemistry")
	chitra := testutil.CreateExaminer(t, s.ExaminerRepo, "Chitra S", "EX-203", "Physics")

	runTests(t, srv, []httpTest{
		{name: "Get all", path: "/v1/examiners", token: token, wantCode: http.StatusOK, wantData: marshalList(t, anita, bala, chitra)},
		{name: "search (unknown)", path: path("lol", "", ""), token: token, wantCode: http.StatusOK, wantData: marshalList(t)},
		{name: "search=ex-10", path: path("ex-10", "", ""), token: token, wantCode: http.StatusOK, wantData: marshalList(t, anita, bala)},
		{name: "department=physics", path: path("", "physics", ""), token: token, wantCode: http.StatusOK, wantData: marshalList(t, anita, chitra)},
		{name: "search & department", path: path("chitra", "physics", ""), token: token, wantCode: http.StatusOK, wantData: marshalList(t, chitra)},
		{name: "ordering=-name", path: path("", "", "-name"), token: token, wantCode: http.StatusOK, wantData: marshalList(t, chitra, bala, anita)},
		{name: "ordering (unknown field)", path: path("", "", "password"), token: token, wantCode: http.StatusOK, wantData: marshalList(t, anita, bala, chitra)},
	})
}

func Test_examinerApi_create(t *testing.T) {
	s, srv := setup(t)
	token := getToken(t, s)
	testutil.CreateExaminer(t, s.ExaminerRepo, "Anita Raman", "EX-101", "Physics")

	runTests(t, srv, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/examiners", token: token,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required", "examiner_id": "this field is required"}`),
		},
		{
			name: "examiner ID taken", method: http.MethodPost, path: "/v1/examiners", token: token,
			body:     []byte(`{"name": "Another Anita", "examiner_id": "EX-101"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"examiner_id": "an examiner with this examiner ID already exists"}`),
		},
		{
			name: "bad email", method: http.MethodPost, path: "/v1/examiners", token: token,
			body:     []byte(`{"name": "Bala K", "examiner_id": "EX-102", "email": "bala"}`),
			wantCode: http.StatusBadRequest,
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/examiners", token,
		[]byte(`{"name": " Bala K ", "examiner_id": "EX-102", "department": "Chemistry", "email": "Bala@College.test"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ex examiner.Examiner
	unmarshal(t, rec, &ex)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, "Bala K", ex.Name)
	assert.Equal(t, "bala@college.test", ex.Email)

	saved, err := s.ExaminerRepo.GetExaminerByID(context.Background(), ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "EX-102", saved.ExaminerID)
}

func Test_examinerApi_detail(t *testing.T) {
	s, srv := setup(t)
	token := getToken(t, s)
	anita := testutil.CreateExaminer(t, s.ExaminerRepo, "Anita Raman", "EX-101", "Physics")
	bala := testutil.CreateExaminer(t, s.ExaminerRepo, "Bala K", "EX-102", "Chemistry")
	notFound := marshalObj(t, httpErr{Error: examiner.ErrNotFound.Error()})

	runTests(t, srv, []httpTest{
		{name: "unknown", path: "/v1/examiners/1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "not a uuid", path: "/v1/examiners/lol", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "retrieve", path: "/v1/examiners/" + anita.ID, token: token, wantCode: http.StatusOK, wantData: marshalObj(t, anita)},
		{
			name: "update: code taken", method: http.MethodPut, path: "/v1/examiners/" + anita.ID, token: token,
			body:     []byte(`{"examiner_id": "EX-102"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"examiner_id": "an examiner with this examiner ID already exists"}`),
		},
		{
			name: "update: blank name", method: http.MethodPut, path: "/v1/examiners/" + anita.ID, token: token,
			body:     []byte(`{"name": "   "}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "photo (none)", path: "/v1/examiners/" + bala.ID + "/photo", token: token, wantCode: http.StatusNotFound},
	})

	// partial update keeps the other fields
	req, rec := newAuthRequest(http.MethodPut, "/v1/examiners/"+anita.ID, token, []byte(`{"department": "Applied Physics"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated examiner.Examiner
	unmarshal(t, rec, &updated)
	assert.Equal(t, "Applied Physics", updated.Department)
	assert.Equal(t, anita.Name, updated.Name)
	assert.Equal(t, anita.ExaminerID, updated.ExaminerID)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/examiners/"+bala.ID, token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/examiners/"+bala.ID, token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_examinerApi_photo(t *testing.T) {
	s, srv := setup(t)
	token := getToken(t, s)
	anita := testutil.CreateExaminer(t, s.ExaminerRepo, "Anita Raman", "EX-101", "Physics")

	upload := func(content []byte, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		if content != nil {
			fw, err := w.CreateFormFile("photo", "me.png")
			require.NoError(t, err)
			_, err = fw.Write(content)
			require.NoError(t, err)
		}
		for k, v := range fields {
			require.NoError(t, w.WriteField(k, v))
		}
		require.NoError(t, w.Close())

		req, rec := newAuthRequest(http.MethodPut, "/v1/examiners/"+anita.ID+"/photo", token, body.Bytes())
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, rec
	}

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	t.Run("missing file", func(t *testing.T) {
		req, rec := upload(nil, nil)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		req, rec := upload([]byte("definitely not a picture"), nil)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("bad crop", func(t *testing.T) {
		req, rec := upload(pngBuf.Bytes(), map[string]string{"width": "-3"})
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(rec.Body.Bytes(), []byte(`{"width": "enter a positive whole number"}`))
		require.NoError(t, err)
		assert.True(t, ok, rec.Body.String())
	})

	t.Run("cropped upload", func(t *testing.T) {
		req, rec := upload(pngBuf.Bytes(), map[string]string{"x": "5", "y": "5", "width": "20", "height": "20"})
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var ex examiner.Examiner
		unmarshal(t, rec, &ex)
		assert.Equal(t, "/v1/examiners/"+anita.ID+"/photo", ex.ProfileImageURL)

		req, rec = newAuthRequest(http.MethodGet, "/v1/examiners/"+anita.ID+"/photo", token)
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
		assert.NotEmpty(t, rec.Header().Get("Content-Type"))
		assert.NotZero(t, rec.Body.Len())
	})
}
