package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core/drill"
)

func TestDrillCatalog(t *testing.T) {
	env := newTestEnv(t)

	t.Run("embedded seed when store empty", func(t *testing.T) {
		tt := httpTest{path: "/v1/drills", wantCode: http.StatusOK}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)

		var catalog map[string][]drill.Drill
		if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil || len(catalog) == 0 {
			t.Errorf("catalog response = %s", rec.Body.String())
		}
	})

	t.Run("stored drills", func(t *testing.T) {
		env.createDrill(t, "putting", "Gate Drill", 15, nil)

		tt := httpTest{path: "/v1/drills", wantCode: http.StatusOK}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)

		var catalog map[string][]drill.Drill
		if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
			t.Fatalf("catalog response = %s", rec.Body.String())
		}
		if len(catalog["putting"]) != 1 || catalog["putting"][0].ID != "putting-gate-drill" {
			t.Errorf("catalog = %v", catalog)
		}
	})
}

func TestDrillSearch(t *testing.T) {
	env := newTestEnv(t)
	env.createDrill(t, "putting", "Gate Drill", 15, nil)
	env.createDrill(t, "chipping", "Towel Drill", 10, nil)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "by category", path: "/v1/drills/search?category=putting", want: 1},
		{name: "by search term", path: "/v1/drills/search?search=towel", want: 1},
		{name: "no filter returns all", path: "/v1/drills/search", want: 2},
		{name: "no match", path: "/v1/drills/search?category=bunker", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ht := httpTest{path: tt.path, wantCode: http.StatusOK}
			rec := env.do(t, ht)
			env.checkResponse(t, ht, rec)

			var drills []drill.Drill
			if err := json.Unmarshal(rec.Body.Bytes(), &drills); err != nil {
				t.Fatalf("search response = %s", rec.Body.String())
			}
			if len(drills) != tt.want {
				t.Errorf("got %d drills, want %d", len(drills), tt.want)
			}
		})
	}
}

type failingBinder struct{}

func (failingBinder) Bind(i interface{}, ctx echo.Context) error {
	return echo.NewHTTPError(http.StatusBadRequest, "bad query")
}

// A filter that fails to bind surfaces the error instead of masquerading as an
// empty result.
func TestDrillSearchBindError(t *testing.T) {
	env := newTestEnv(t)

	e := echo.New()
	e.Binder = failingBinder{}
	req := httptest.NewRequest(http.MethodGet, "/v1/drills/search", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	api := drillApi{svc: env.drillSvc, validate: env.server.deps.Validate}
	err := api.search(ctx)
	if err == nil {
		t.Fatal("search() error = nil, want bind failure")
	}
	herr, ok := errors.Cause(err).(*echo.HTTPError)
	if !ok || herr.Code != http.StatusBadRequest {
		t.Errorf("search() error = %v, want a 400", err)
	}
}

func TestDrillRetrieve(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDrill(t, "putting", "Gate Drill", 15, nil)

	tests := []httpTest{
		{
			name:     "not found",
			path:     "/v1/drills/nope",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "ok",
			path:     "/v1/drills/" + d.ID,
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)
		})
	}
}

func TestDrillAdminCRUD(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "T", "t@test.test", "Str0ngPwd!")
	admin := env.createUser(t, "Admin", env.conf.AdminEmail, "Str0ngPwd!")
	adminToken := env.getToken(t, admin)

	body := []byte(`{"category":"putting","name":"Gate Drill","description":"putt through a gate","duration":15}`)

	tests := []httpTest{
		{
			name:     "auth required",
			method:   http.MethodPost,
			path:     "/v1/drills",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "admin required",
			method:   http.MethodPost,
			path:     "/v1/drills",
			body:     body,
			token:    env.getToken(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "invalid category",
			method:   http.MethodPost,
			path:     "/v1/drills",
			body:     []byte(`{"category":"Not Valid!","name":"X","description":"x","duration":10}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"category": "must be lowercase words separated by hyphens"}),
		},
		{
			name:     "create ok",
			method:   http.MethodPost,
			path:     "/v1/drills",
			body:     body,
			token:    adminToken,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)
		})
	}

	t.Run("update", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPut,
			path:     "/v1/drills/putting-gate-drill",
			body:     []byte(`{"duration":25}`),
			token:    adminToken,
			wantCode: http.StatusOK,
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)

		var d drill.Drill
		if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
			t.Fatalf("update response = %s", rec.Body.String())
		}
		// untouched fields survive a partial update
		if d.Duration != 25 || d.Name != "Gate Drill" || d.Category != "putting" {
			t.Errorf("updated drill = %+v", d)
		}
	})

	t.Run("delete", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodDelete,
			path:     "/v1/drills/putting-gate-drill",
			token:    adminToken,
			wantCode: http.StatusNoContent,
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)

		tt = httpTest{
			method:   http.MethodDelete,
			path:     "/v1/drills/putting-gate-drill",
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		}
		rec = env.do(t, tt)
		env.checkResponse(t, tt, rec)
	})
}

func TestDrillImport(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", env.conf.AdminEmail, "Str0ngPwd!")
	adminToken := env.getToken(t, admin)

	t.Run("csv via content type", func(t *testing.T) {
		csvBody := "category,name,description,duration\nputting,Gate Drill,putt through a gate,15\nputting,,missing name,10\n"

		req := httptest.NewRequest(http.MethodPost, "/v1/drills/import", bytes.NewReader([]byte(csvBody)))
		req.Header.Set("Content-Type", "text/csv")
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body: %s", rec.Code, rec.Body.String())
		}
		var res drill.ImportResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("import response = %s", rec.Body.String())
		}
		if res.Imported != 1 || res.Skipped != 1 {
			t.Errorf("ImportResult = %+v, want 1 imported / 1 skipped", res)
		}
	})

	t.Run("json via format param", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/drills/import?format=json",
			body:     []byte(`{"chipping":[{"name":"Towel","description":"land on the towel"}]}`),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, drill.ImportResult{Imported: 1}),
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)
	})

	t.Run("bad payload", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/drills/import?format=json",
			body:     []byte(`not json at all`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)
	})

	t.Run("unsupported format", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/drills/import?format=xml",
			body:     []byte(``),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)
	})
}
