package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
	"github.com/smanielp/cactusgolf/core/user"
	consolemail "github.com/smanielp/cactusgolf/services/email/console"
	inmemdb "github.com/smanielp/cactusgolf/storage/database/inmem"
	"github.com/smanielp/cactusgolf/storage/local"
)

type testLogger struct{ std *log.Logger }

func (l testLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg) }
func (l testLogger) Info(msg string, args ...interface{})  { l.std.Println(msg) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg) }
func (l testLogger) Error(msg string, args ...interface{}) { l.std.Println(msg) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.std.Fatal(msg) }

type testEnv struct {
	server   *Server
	conf     *core.Config
	usrSvc   *user.Service
	drillSvc *drill.Service
	pracSvc  *practice.Service
	mailSvc  *consolemail.Service
}

func newTestConfig() *core.Config {
	conf := &core.Config{
		TestMode:   true,
		Env:        "TEST",
		AppName:    "CactusGolf",
		SecretKey:  []byte("secret"),
		AdminEmail: "admin@test.test",

		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          "noreply@test.test",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Practice.DefaultTier = string(drill.Tier1)
	conf.Practice.RequirementTier = string(drill.Tier1)
	conf.Practice.DefaultTargetCount = 5
	conf.Practice.ImportDefaultDuration = 10
	conf.Practice.WarmupMinutes = 5
	conf.Practice.AddedAckDelay = 2 * time.Second
	return conf
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := newTestConfig()
	lg := testLogger{std: log.New(ioutil.Discard, "", 0)}

	memDB := inmemdb.NewDB()
	userRepo := inmemdb.NewUserRepository(memDB)
	drillRepo := inmemdb.NewDrillRepository(memDB)
	practiceRepo := inmemdb.NewPracticeRepository(memDB)

	localStore, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStore() failed: %v", err)
	}

	mailSvc := consolemail.NewService(conf.AppName, conf.DefaultFromEmail, lg)
	usrSvc := user.NewService(userRepo, mailSvc, lg, conf)
	drillSvc := drill.NewService(drillRepo, lg, conf)
	pracSvc := practice.NewService(practiceRepo, localStore, lg, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	drill.InitValidators(validate, translator)
	practice.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         lg,
		UserSvc:        usrSvc,
		DrillSvc:       drillSvc,
		PracticeSvc:    pracSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	return &testEnv{
		server:   server,
		conf:     conf,
		usrSvc:   usrSvc,
		drillSvc: drillSvc,
		pracSvc:  pracSvc,
		mailSvc:  mailSvc,
	}
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

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func (env *testEnv) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()

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
	env.server.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("code = %d, want %d; body: %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		if got := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(got, tt.wantData) {
			t.Errorf("body = %s, want %s", got, tt.wantData)
		}
	}
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd string) user.User {
	t.Helper()

	usr, err := env.usrSvc.Register(context.Background(), user.NewUser{
		Name: name, Email: email, Password: pwd, PasswordConfirm: pwd,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createDrill(t *testing.T, category, name string, duration int, achievements drill.Achievements) drill.Drill {
	t.Helper()

	d, err := env.drillSvc.Create(context.Background(), drill.NewDrill{
		Category:     category,
		Name:         name,
		Description:  name + " description",
		Duration:     duration,
		Achievements: achievements,
	})
	if err != nil {
		t.Fatalf("createDrill() failed: %v", err)
	}
	return d
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(usr, env.usrSvc.IsAdmin(usr), env.conf)
	token, err := GenerateToken(claims, env.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, v interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}
