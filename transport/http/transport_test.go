package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/auth"
	"github.com/flarexio/faqbot/history"
	"github.com/flarexio/faqbot/persistence/redis"

	mcpE "github.com/flarexio/faqbot/mcp"
)

type stubService struct {
	answer    string
	err       error
	state     faqbot.State
	documents int
}

func (s *stubService) Query(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", faqbot.ErrInvalidQuery
	}

	return s.answer, s.err
}

func (s *stubService) Reindex(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubService) State(ctx context.Context) (faqbot.State, error) {
	return s.state, nil
}

func (s *stubService) Documents(ctx context.Context) (int, error) {
	return s.documents, nil
}

func (s *stubService) Close() error {
	return nil
}

type transportTestSuite struct {
	suite.Suite
	svc    *stubService
	router *gin.Engine
}

func (suite *transportTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	server := miniredis.RunT(suite.T())

	client, err := redis.NewClient(context.Background(), redis.Config{Address: server.Addr()})
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { client.Close() })

	authSvc, err := auth.NewService(
		auth.Config{Secret: "test-secret", TokenTTL: time.Hour},
		redis.NewUserRepository(client),
	)
	suite.Require().NoError(err)

	historySvc := history.NewService(history.Config{}, redis.NewHistoryRepository(client))

	suite.svc = &stubService{
		answer: "Hostel fees are paid each semester.",
		state:  faqbot.StateReady,
	}

	authEndpoints := auth.MakeEndpoints(authSvc)

	r := gin.New()
	UseCORS(r, []string{"http://localhost:5173"})
	AddRouters(r, faqbot.MakeEndpoints(suite.svc))
	AddAuthRouters(r, authEndpoints, CookieConfig{MaxAge: time.Hour})
	AddHistoryRouters(r, history.MakeEndpoints(historySvc), authEndpoints)
	AddStreamableRouters(r, mcpE.MakeEndpoints(suite.svc))

	suite.router = r
}

func (suite *transportTestSuite) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *transportTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (suite *transportTestSuite) login() *http.Cookie {
	w := suite.do(http.MethodPost, "/api/auth/signup",
		`{"name":"Asha","email":"asha@example.com","password":"secret123"}`)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/login",
		`{"email":"asha@example.com","password":"secret123"}`)
	suite.Require().Equal(http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == TokenCookie {
			return cookie
		}
	}

	suite.FailNow("login did not set a session cookie")
	return nil
}

func (suite *transportTestSuite) TestQuery() {
	w := suite.do(http.MethodPost, "/api/query", `{"query":"What are the hostel fees?"}`)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Hostel fees are paid each semester.", suite.decode(w)["response"])
}

func (suite *transportTestSuite) TestQueryBlank() {
	w := suite.do(http.MethodPost, "/api/query", `{"query":"   "}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.decode(w), "error")
}

func (suite *transportTestSuite) TestQueryMalformedBody() {
	w := suite.do(http.MethodPost, "/api/query", `{"query":`)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *transportTestSuite) TestQueryFailureHidesCause() {
	suite.svc.err = errors.Join(faqbot.ErrQueryFailed, errors.New("upstream 429"))

	w := suite.do(http.MethodPost, "/api/query", `{"query":"What are the hostel fees?"}`)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to process query", suite.decode(w)["error"])
	suite.NotContains(w.Body.String(), "429")
}

func (suite *transportTestSuite) TestHealth() {
	suite.svc.state = faqbot.StateReady
	suite.svc.documents = 12

	w := suite.do(http.MethodGet, "/api/health", "")

	suite.Equal(http.StatusOK, w.Code)

	body := suite.decode(w)
	suite.Equal("ok", body["status"])
	suite.Equal("ready", body["index"])
	suite.Equal(float64(12), body["documents"])
}

func (suite *transportTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal("http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	suite.Equal("true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func (suite *transportTestSuite) TestAuthFlow() {
	cookie := suite.login()
	suite.True(cookie.HttpOnly)
	suite.NotEmpty(cookie.Value)

	w := suite.do(http.MethodGet, "/api/auth/verify", "", cookie)
	suite.Equal(http.StatusOK, w.Code)

	user, ok := suite.decode(w)["user"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("asha@example.com", user["email"])
	suite.NotContains(user, "passwordHash")

	w = suite.do(http.MethodPost, "/api/auth/logout", "")
	suite.Equal(http.StatusOK, w.Code)

	cleared := w.Result().Cookies()
	suite.Require().Len(cleared, 1)
	suite.Equal(TokenCookie, cleared[0].Name)
	suite.Empty(cleared[0].Value)
}

func (suite *transportTestSuite) TestAuthErrors() {
	suite.login()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"duplicate email", "/api/auth/signup", `{"name":"A","email":"asha@example.com","password":"x"}`, http.StatusConflict},
		{"missing fields", "/api/auth/signup", `{"name":"","email":"b@example.com","password":"x"}`, http.StatusBadRequest},
		{"wrong password", "/api/auth/login", `{"email":"asha@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", "/api/auth/login", `{"email":"nobody@example.com","password":"x"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		w := suite.do(http.MethodPost, tt.path, tt.body)
		suite.Equal(tt.status, w.Code, tt.name)
	}

	w := suite.do(http.MethodGet, "/api/auth/verify", "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/api/auth/verify", "", &http.Cookie{Name: TokenCookie, Value: "forged"})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *transportTestSuite) TestHistory() {
	w := suite.do(http.MethodGet, "/api/history", "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	cookie := suite.login()

	w = suite.do(http.MethodPost, "/api/history",
		`{"query":"What are the hostel fees?","response":"Paid each semester."}`, cookie)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/history", `{"query":"","response":""}`, cookie)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/history", "", cookie)
	suite.Require().Equal(http.StatusOK, w.Code)

	var list history.ListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	suite.Require().Len(list.History, 1)
	suite.Equal("What are the hostel fees?", list.History[0].Query)
	suite.NotEmpty(list.History[0].UserID)

	w = suite.do(http.MethodGet, "/api/suggestions?q=hostel", "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var suggestions history.SuggestionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &suggestions))
	suite.Equal([]string{"What are the hostel fees?"}, suggestions.Suggestions)
}

func (suite *transportTestSuite) TestMCP() {
	w := suite.do(http.MethodPost, "/mcp/",
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_faq","arguments":{"question":"hostel fees?"}}}`)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Hostel fees are paid each semester.")

	w = suite.do(http.MethodPost, "/mcp/", `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/mcp/", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	suite.Equal(http.StatusAccepted, w.Code)
}

func TestTransportTestSuite(t *testing.T) {
	suite.Run(t, new(transportTestSuite))
}
