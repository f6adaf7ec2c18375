package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	. "github.com/Hanyshennawy/moe-scorm-lms/apps/api/echo"
	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
	"github.com/Hanyshennawy/moe-scorm-lms/services/logger"
	"github.com/Hanyshennawy/moe-scorm-lms/storage/database/sqlx"
	"github.com/Hanyshennawy/moe-scorm-lms/tests"
)

const secretKey = "secret"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	db      *sqlx.DB
	server  *Server
	courses course.Repository
	svc     *progress.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "SCORM LMS",
		SecretKey: secretKey,
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	db := testutil.PrepareDB(t)
	courses := sqlxrepos.NewCourseRepository(db)
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	svc := progress.NewService(
		sqlxrepos.NewProgressRepository(db),
		session.NewTracker(sqlxrepos.NewSessionRepository(db)),
		courses,
		validate,
	)

	srv := NewServer(conf, logger, svc, courses, validate, translator)
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{db: db, server: srv, courses: courses, svc: svc}
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
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

func getToken(t *testing.T, learnerID, name string, isAdmin bool) string {
	token, err := GenerateToken(NewClaims(learnerID, name, isAdmin, time.Hour), secretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
