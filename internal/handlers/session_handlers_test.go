package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lendborrow/lendborrow-api/internal/mocks"
	"github.com/lendborrow/lendborrow-api/internal/services"
	"github.com/lendborrow/lendborrow-api/internal/walletgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testWallet = "0x742d35cc6634c0532925a3b8d12c67d8b12b9873"

type testEnv struct {
	router     *gin.Engine
	service    *services.SessionService
	classifier *mocks.MockWalletClassifier
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockWalletClassifier(ctrl)
	service := services.NewSessionService(classifier, time.Second, zap.NewNop())
	t.Cleanup(service.Close)

	sessions := NewSessionHandler(service, []string{"http://localhost:3000"})
	health := NewHealthHandler(service)

	router := gin.New()
	router.GET("/health", health.Health)
	router.POST("/sessions", sessions.CreateSession)
	router.GET("/sessions/:session_id", sessions.GetSession)
	router.PUT("/sessions/:session_id/connection", sessions.ConnectWallet)
	router.DELETE("/sessions/:session_id/connection", sessions.DisconnectWallet)
	router.DELETE("/sessions/:session_id", sessions.CloseSession)
	router.GET("/sessions/:session_id/navigation", sessions.StreamNavigation)

	return &testEnv{router: router, service: service, classifier: classifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createSession(t *testing.T) services.SessionSnapshot {
	t.Helper()
	w := e.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var snap services.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestHealthHandler_Health(t *testing.T) {
	env := setupTestEnv(t)
	env.createSession(t)

	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, w.Body.String())
}

func TestSessionHandler_CreateAndGet(t *testing.T) {
	env := setupTestEnv(t)
	created := env.createSession(t)

	w := env.do(t, http.MethodGet, "/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap services.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, created.ID, snap.ID)
	assert.False(t, snap.Connected)
	assert.False(t, snap.Shared.Defined)
}

func TestSessionHandler_Errors(t *testing.T) {
	env := setupTestEnv(t)
	created := env.createSession(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "malformed session id",
			method:         http.MethodGet,
			path:           "/sessions/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid session ID format",
		},
		{
			name:           "unknown session",
			method:         http.MethodGet,
			path:           "/sessions/00000000-0000-0000-0000-000000000001",
			expectedStatus: http.StatusNotFound,
			expectedError:  "Session not found",
		},
		{
			name:           "invalid wallet address",
			method:         http.MethodPut,
			path:           "/sessions/" + created.ID.String() + "/connection",
			body:           ConnectWalletRequest{Address: "0xnothex"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid wallet address",
		},
		{
			name:           "close unknown session",
			method:         http.MethodDelete,
			path:           "/sessions/00000000-0000-0000-0000-000000000001",
			expectedStatus: http.StatusNotFound,
			expectedError:  "Session not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

func TestSessionHandler_ConnectNormalisesAddress(t *testing.T) {
	env := setupTestEnv(t)
	created := env.createSession(t)

	checksummed := walletgate.ConnectionAddress("0x742d35Cc6634C0532925a3B8d12C67d8b12b9873")
	env.classifier.EXPECT().Classify(gomock.Any(), checksummed).Return(walletgate.WalletTypeLender, nil)

	w := env.do(t, http.MethodPut, "/sessions/"+created.ID.String()+"/connection", ConnectWalletRequest{Address: testWallet})
	require.Equal(t, http.StatusOK, w.Code)

	var snap services.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.Connected)
	assert.Equal(t, string(checksummed), snap.Address)

	require.Eventually(t, func() bool {
		s, err := env.service.GetSession(created.ID)
		return err == nil && s.Destination == "/"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionHandler_Disconnect(t *testing.T) {
	env := setupTestEnv(t)
	created := env.createSession(t)
	path := "/sessions/" + created.ID.String() + "/connection"

	block := make(chan struct{})
	env.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ walletgate.ConnectionAddress) (walletgate.WalletType, error) {
			select {
			case <-ctx.Done():
			case <-block:
			}
			return walletgate.WalletTypeUnset, errors.New("cancelled")
		}).AnyTimes()
	defer close(block)

	tests := []struct {
		name   string
		method string
		body   interface{}
	}{
		{name: "delete connection", method: http.MethodDelete},
		{name: "put empty address", method: http.MethodPut, body: ConnectWalletRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, path, ConnectWalletRequest{Address: testWallet})
			require.Equal(t, http.StatusOK, w.Code)

			w = env.do(t, tt.method, path, tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var snap services.SessionSnapshot
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
			assert.False(t, snap.Connected)
			assert.Empty(t, snap.WalletType)
		})
	}
}

func TestSessionHandler_CloseSession(t *testing.T) {
	env := setupTestEnv(t)
	created := env.createSession(t)

	w := env.do(t, http.MethodDelete, "/sessions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/sessions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, env.service.Count())
}

func dialNavigation(t *testing.T, server *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + id + "/navigation"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSessionHandler_StreamNavigation(t *testing.T) {
	env := setupTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	created := env.createSession(t)
	conn := dialNavigation(t, server, created.ID.String())

	env.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(walletgate.WalletTypeInActive, nil)
	w := env.do(t, http.MethodPut, "/sessions/"+created.ID.String()+"/connection", ConnectWalletRequest{Address: testWallet})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event services.NavigationEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, created.ID, event.SessionID)
	assert.Equal(t, "/signup", event.Path)
	assert.Equal(t, walletgate.WalletTypeInActive, event.WalletType)
	assert.Equal(t, uint64(1), event.Sequence)

	// closing the session ends the stream with a normal close
	w = env.do(t, http.MethodDelete, "/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestSessionHandler_StreamNavigationRejectsForeignOrigin(t *testing.T) {
	env := setupTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	created := env.createSession(t)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + created.ID.String() + "/navigation"

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSessionHandler_StreamNavigationUnknownSession(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/sessions/00000000-0000-0000-0000-000000000001/navigation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
