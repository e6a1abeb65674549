package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/klu2500030136/lptd-app/apps/api/echo"
	"github.com/klu2500030136/lptd-app/core/user"
	logsvc "github.com/klu2500030136/lptd-app/services/logger"
	testutil "github.com/klu2500030136/lptd-app/tests"
)

const (
	testSecret  = "test-secret"
	testAppName = "Marksheet"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type fixture struct {
	env     *testutil.Env
	srv     Server
	auth    *Auth
	admin   user.User
	teacher user.User
	student user.User
	other   user.User
}

func setup(t *testing.T) *fixture {
	env := testutil.NewEnv(t)

	srv, err := NewServer(&Options{
		TestMode:       true,
		DisableReqLogs: true,
		AppName:        testAppName,
		SecretKey:      testSecret,
		JWTExpiration:  time.Hour,
		Logger:         logsvc.NewNopLogger(),
		Validator:      env.Validator,
		UserSvc:        env.UserSvc,
		MarkSvc:        env.MarkSvc,
	})
	require.NoError(t, err)

	fx := &fixture{env: env, srv: srv, auth: NewAuth(testSecret, testAppName, time.Hour)}
	fx.admin = testutil.CreateUser(t, env.UserRepo, "System Admin", "admin", "admin", user.RoleAdmin)
	fx.teacher = testutil.CreateUser(t, env.UserRepo, "Mr. Smith", "teacher", "teacher", user.RoleTeacher)
	fx.student = testutil.CreateUser(t, env.UserRepo, "Arjun Reddy", "2100030001", "student", user.RoleStudent, "CSE")
	fx.other = testutil.CreateUser(t, env.UserRepo, "Meera Iyer", "2100030002", "meera", user.RoleStudent, "ECE")
	return fx
}

func (fx *fixture) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := fx.auth.UserToken(usr)
	require.NoError(t, err)
	return token
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

func (fx *fixture) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, tt.path, bytes.NewReader(tt.body))
	req.Header.Set("Content-Type", "application/json")
	if tt.token != "" {
		req.Header.Set("Authorization", "Bearer "+tt.token)
	}
	rec := httptest.NewRecorder()
	fx.srv.ServeHTTP(rec, req)
	return rec
}

func (fx *fixture) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, fx.do(tt))
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}
