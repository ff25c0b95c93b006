package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	echoapi "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/apps/api/echo"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/cohort"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/progress"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/quiz"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	emailsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/email"
	logsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/logger"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database/gormdb"
	testutil "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/tests"
)

const strongPwd = "Xk9!mQ2#vTz"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*echoapi.Server
	conf       *core.Config
	usrRepo    user.Repository
	courseRepo course.Repository
	cohortRepo cohort.Repository
	quizRepo   quiz.Repository
	mailSvc    *emailsvc.ConsoleServiceMock
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := newTranslator()
	echoapi.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)
	user.LoadCommonPasswords(logger)

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := gormdb.NewUserRepository(db)
	courseRepo := gormdb.NewCourseRepository(db)
	cohortRepo := gormdb.NewCohortRepository(db)
	quizRepo := gormdb.NewQuizRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	courseSvc := course.NewService(courseRepo)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		CohortSvc:      cohort.NewService(cohortRepo, cohortRepo, courseSvc, usrSvc, mailSvc),
		QuizSvc:        quiz.NewService(quizRepo, courseSvc, usrSvc, conf),
		ProgressSvc:    progress.NewService(gormdb.NewProgressRepository(db), courseSvc),
		Publisher:      course.NewPublisher(courseRepo, cohortRepo, logger),
	})
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	return &testApp{
		Server:     server,
		conf:       conf,
		usrRepo:    usrRepo,
		courseRepo: courseRepo,
		cohortRepo: cohortRepo,
		quizRepo:   quizRepo,
		mailSvc:    mailSvc,
	}
}

func (app *testApp) createUser(t *testing.T, name, email, role string, isActive ...bool) user.User {
	active := len(isActive) == 0 || isActive[0]
	return testutil.CreateUser(t, app.usrRepo, name, email, strongPwd, role, active)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

// do serves a request; body may be nil, raw []byte or any JSON-marshalable value.
func (app *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		data = b
	default:
		data = marchallObj(t, b)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.ServeHTTP(rec, req)
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// ids extracts the `id` of every object of a JSON list response.
func ids(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var objs []struct {
		ID string `json:"id"`
	}
	decode(t, rec, &objs)
	res := make([]string, 0, len(objs))
	for _, o := range objs {
		res = append(res, o.ID)
	}
	return res
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
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
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

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
