package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"irrigation_node/internal/models"
	"irrigation_node/internal/service"

	"github.com/gin-gonic/gin"
)

type mockAuth struct {
	mu sync.Mutex

	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	return 0, nil
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

func (m *mockAuth) parsedToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParseToken
}

type mockMonitoring struct {
	status models.NodeStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.NodeStatus, error) {
	return m.status, m.err
}

type mockCommands struct {
	mu    sync.Mutex
	err   error
	lines []string
}

func (m *mockCommands) Submit(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lines = append(m.lines, line)
	return nil
}

type mockEventLog struct {
	resp     []models.NodeEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.NodeEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
