// Package testutil provides helpers for spinning up an in-process server
// with a mock model for integration tests.
package testutil

import (
	"math/rand"
	"net/http/httptest"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solace-ai/solace/internal/auth"
	"github.com/solace-ai/solace/internal/chat"
	"github.com/solace-ai/solace/internal/event"
	"github.com/solace-ai/solace/internal/mood"
	"github.com/solace-ai/solace/internal/server"
	"github.com/solace-ai/solace/internal/storage"
)

// TestSecret signs the tokens used against the test server.
const TestSecret = "integration-test-secret"

// TestServer is a fully wired server listening on a local port, backed by
// a temp-dir store and a mock model.
type TestServer struct {
	BaseURL string
	Model   *MockModel
	Bus     *event.Bus

	httpSrv *httptest.Server
	dataDir string
}

// StartTestServer wires up and starts a server.
func StartTestServer() (*TestServer, error) {
	identity, err := auth.NewJWTIdentity(TestSecret)
	if err != nil {
		return nil, err
	}

	dataDir, err := os.MkdirTemp("", "solace-citest-*")
	if err != nil {
		return nil, err
	}

	store := storage.New(dataDir)
	bus := event.NewBus()
	notifier := event.NewNotifier(bus)
	model := &MockModel{}

	chatService := chat.NewService(
		chat.NewFileStore(store),
		model,
		chat.NewDetector(rand.New(rand.NewSource(1))),
		notifier,
	)
	moodService := mood.NewService(store, notifier)

	srv := server.New(server.DefaultConfig(), identity, chatService, moodService, bus)
	httpSrv := httptest.NewServer(srv.Router())

	return &TestServer{
		BaseURL: httpSrv.URL,
		Model:   model,
		Bus:     bus,
		httpSrv: httpSrv,
		dataDir: dataDir,
	}, nil
}

// Stop shuts the server down and removes its data directory.
func (ts *TestServer) Stop() {
	ts.httpSrv.Close()
	ts.Bus.Close()
	os.RemoveAll(ts.dataDir)
}

// SignToken issues an HS256 token for userID, valid for an hour.
func SignToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestSecret))
}
