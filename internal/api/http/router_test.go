package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/mind-engage/mindengage-qtype/internal/api/http"
	authmw "github.com/mind-engage/mindengage-qtype/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qtype/internal/db"
	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/builtin"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/calculated"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/calculatedsimple"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
	syncx "github.com/mind-engage/mindengage-qtype/internal/sync"
)

type env struct {
	srv    *httptest.Server
	auth   *authmw.AuthService
	flags  *enable.StaticSource
	events *syncx.EventRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	flags := enable.NewStaticSource(nil)
	reg := qtype.NewRegistry()
	require.NoError(t, builtin.Register(reg, builtin.Options{Flags: flags, DefaultEnabled: true}))

	dbh, err := db.Open(ctx, db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	events := syncx.NewEventRepo(dbh)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := authmw.NewAuthService("test-secret")
	srv := httptest.NewServer(apihttp.NewRouter(apihttp.Deps{
		Dispatcher: qtype.NewDispatcher(reg, qtype.WithConcurrency(4)),
		Auth:       auth,
		Admin:      &authmw.Admin{User: "admin", PassHash: string(hash)},
		Flags:      flags,
		Events:     events,
		Logger:     zap.NewNop(),
	}))
	t.Cleanup(srv.Close)
	return &env{srv: srv, auth: auth, flags: flags, events: events}
}

func (e *env) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := e.auth.IssueJWT("tester", role)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, tok string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func evalBody(typ string, answers map[string]any) map[string]any {
	return map[string]any{
		"question": map[string]any{"id": "q1", "type": typ},
		"answers":  answers,
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusOK, e.do(t, "GET", "/healthz", "", nil).StatusCode)
	require.Equal(t, http.StatusOK, e.do(t, "GET", "/readyz", "", nil).StatusCode)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusUnauthorized, e.do(t, "GET", "/qtypes", "", nil).StatusCode)
	require.Equal(t, http.StatusUnauthorized, e.do(t, "GET", "/qtypes", "not-a-jwt", nil).StatusCode)

	other := authmw.NewAuthService("other-secret")
	tok, err := other.IssueJWT("x", "admin")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, e.do(t, "GET", "/qtypes", tok, nil).StatusCode)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, "POST", "/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, "POST", "/auth/login", "", map[string]string{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)

	resp = e.do(t, "GET", "/qtypes", out.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListQtypes(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, "GET", "/qtypes", e.token(t, "engine"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []struct {
		Type      string `json:"type"`
		Name      string `json:"name"`
		Component string `json:"component"`
		Enabled   bool   `json:"enabled"`
	}
	decode(t, resp, &got)
	require.Len(t, got, 2)
	require.Equal(t, calculated.Type, got[0].Type)
	require.Equal(t, calculatedsimple.Type, got[1].Type)
	require.Equal(t, calculatedsimple.Name, got[1].Name)
	for _, q := range got {
		require.Equal(t, string(calculated.Component), q.Component)
		require.True(t, q.Enabled)
	}
}

func TestEvaluate(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, "engine")

	cases := []struct {
		name     string
		typ      string
		answers  map[string]any
		complete int
		gradable int
	}{
		{"number", calculatedsimple.Type, map[string]any{"answer": "5"}, 1, 1},
		{"blank", calculatedsimple.Type, map[string]any{"answer": ""}, 0, 0},
		{"empty", calculated.Type, map[string]any{}, 0, 0},
		{"not a number", calculated.Type, map[string]any{"answer": "five"}, 0, 1},
		{"trailing unit", calculated.Type, map[string]any{"answer": "5 m"}, -1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := e.do(t, "POST", "/questions/evaluate", tok, evalBody(c.typ, c.answers))
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var ev struct {
				Type      string `json:"type"`
				Enabled   bool   `json:"enabled"`
				Complete  int    `json:"complete"`
				Gradable  int    `json:"gradable"`
				Component string `json:"component"`
			}
			decode(t, resp, &ev)
			require.True(t, ev.Enabled)
			require.Equal(t, c.complete, ev.Complete)
			require.Equal(t, c.gradable, ev.Gradable)
			require.Equal(t, string(calculated.Component), ev.Component)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, "engine")

	require.Equal(t, http.StatusNotFound,
		e.do(t, "POST", "/questions/evaluate", tok, evalBody("qtype_essay", map[string]any{})).StatusCode)
	require.Equal(t, http.StatusBadRequest,
		e.do(t, "POST", "/questions/evaluate", tok, map[string]any{"answers": map[string]any{}}).StatusCode)
}

func TestEvaluateBatch(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{"requests": []any{
		evalBody(calculated.Type, map[string]any{"answer": "1.5"}),
		evalBody("qtype_unknown", map[string]any{"answer": "1"}),
		evalBody(calculatedsimple.Type, map[string]any{}),
	}}
	resp := e.do(t, "POST", "/questions/evaluate/batch", e.token(t, "engine"), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Results []struct {
			Type     string `json:"type"`
			Complete int    `json:"complete"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	decode(t, resp, &out)
	require.Len(t, out.Results, 3)
	require.Equal(t, 1, out.Results[0].Complete)
	require.Equal(t, "qtype_unknown", out.Results[1].Type)
	require.Equal(t, -1, out.Results[1].Complete)
	require.NotEmpty(t, out.Results[1].Error)
	require.Equal(t, 0, out.Results[2].Complete)
}

func TestSameResponse(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, "engine")
	q := map[string]any{"id": "q1", "type": calculatedsimple.Type}

	same := func(prev, next map[string]any) bool {
		resp := e.do(t, "POST", "/questions/same", tok, map[string]any{
			"question": q, "prev_answers": prev, "new_answers": next,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out struct {
			Same bool `json:"same"`
		}
		decode(t, resp, &out)
		return out.Same
	}
	require.True(t, same(map[string]any{"ans0": 5}, map[string]any{"ans0": 5}))
	require.False(t, same(map[string]any{"ans0": 5}, map[string]any{"ans0": 6}))
	require.True(t, same(map[string]any{}, map[string]any{}))
}

func TestAdminToggle(t *testing.T) {
	e := newEnv(t)
	path := "/admin/qtypes/" + calculated.Type + "/enabled"

	resp := e.do(t, "PUT", path, e.token(t, "engine"), map[string]bool{"enabled": false})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := e.token(t, "admin")
	resp = e.do(t, "PUT", path, admin, map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = e.do(t, "PUT", "/admin/qtypes/qtype_essay/enabled", admin, map[string]bool{"enabled": false})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, "PUT", path, admin, map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Enabled bool `json:"enabled"`
	}
	decode(t, resp, &out)
	require.False(t, out.Enabled)

	// the derived type follows its family by default
	resp = e.do(t, "POST", "/questions/evaluate", e.token(t, "engine"),
		evalBody(calculatedsimple.Type, map[string]any{"answer": "5"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ev struct {
		Enabled  bool `json:"enabled"`
		Complete int  `json:"complete"`
	}
	decode(t, resp, &ev)
	require.False(t, ev.Enabled)
	require.Equal(t, -1, ev.Complete)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log, err := e.events.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	require.Equal(t, syncx.TypeQtypeDisabled, log[0].Type)
	require.Equal(t, calculated.Type, log[0].Key)
	require.Contains(t, log[0].DataJSON, `"actor":"tester"`)
}

func TestEvaluate_PrefixedRawAnswers(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"question": map[string]any{"id": "q9", "type": calculated.Type},
		"prefix":   "q9:1_",
		"raw_answers": map[string]any{
			"q9:1_answer": "7.25",
			"q8:1_answer": "",
			"sesskey":     "abc",
		},
	}
	resp := e.do(t, "POST", "/questions/evaluate", e.token(t, "engine"), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ev struct {
		Complete int `json:"complete"`
		Gradable int `json:"gradable"`
	}
	decode(t, resp, &ev)
	require.Equal(t, 1, ev.Complete)
	require.Equal(t, 1, ev.Gradable)

	batch := map[string]any{"requests": []any{body}}
	resp = e.do(t, "POST", "/questions/evaluate/batch", e.token(t, "engine"), batch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Results []struct {
			Complete int `json:"complete"`
		} `json:"results"`
	}
	decode(t, resp, &out)
	require.Len(t, out.Results, 1)
	require.Equal(t, 1, out.Results[0].Complete)
}

func TestListQtypes_EnabledFilter(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.flags.Set(context.Background(), calculatedsimple.Type, false))

	resp := e.do(t, "GET", "/qtypes?enabled=true", e.token(t, "engine"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got []struct {
		Type string `json:"type"`
	}
	decode(t, resp, &got)
	require.Len(t, got, 1)
	require.Equal(t, calculated.Type, got[0].Type)
}

func TestListEvents(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin")
	for _, on := range []bool{false, true} {
		resp := e.do(t, "PUT", "/admin/qtypes/"+calculatedsimple.Type+"/enabled", admin, map[string]bool{"enabled": on})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Equal(t, http.StatusForbidden, e.do(t, "GET", "/admin/events", e.token(t, "engine"), nil).StatusCode)
	require.Equal(t, http.StatusBadRequest, e.do(t, "GET", "/admin/events?after=x", admin, nil).StatusCode)

	type view struct {
		Offset int64  `json:"offset"`
		Type   string `json:"type"`
		Key    string `json:"key"`
		Data   struct {
			Enabled bool `json:"enabled"`
		} `json:"data"`
	}
	resp := e.do(t, "GET", "/admin/events", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []view
	decode(t, resp, &all)
	require.Len(t, all, 2)
	require.Equal(t, syncx.TypeQtypeDisabled, all[0].Type)
	require.Equal(t, calculatedsimple.Type, all[0].Key)
	require.True(t, all[1].Data.Enabled)

	resp = e.do(t, "GET", fmt.Sprintf("/admin/events?after=%d", all[0].Offset), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tail []view
	decode(t, resp, &tail)
	require.Len(t, tail, 1)
	require.Equal(t, syncx.TypeQtypeEnabled, tail[0].Type)
}
