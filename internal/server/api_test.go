package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/service"
	"github.com/ozcanhakn/kanban-app/internal/storage"
	"github.com/ozcanhakn/kanban-app/internal/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutil.TerminatePostgres()
	os.Exit(code)
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

// startAPI runs the full stack against a fresh database behind httptest.
func startAPI(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zaptest.NewLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := realtime.NewHub(log)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = hub.Run(ctx)
	}()

	ts := httptest.NewUnstartedServer(nil)
	store, err := storage.NewLocalStore(t.TempDir(), "http://"+ts.Listener.Addr().String(), []byte("test-secret"))
	require.NoError(t, err)

	services := service.New(repository.NewGormRepositories(db), store, hub, log, service.Options{
		Auth: service.AuthOptions{JWTSecret: "test-secret", ExposeMagicLink: true, BcryptCost: bcrypt.MinCost},
	})
	ts.Config.Handler = NewServer(Deps{
		PublicBaseURL: "http://" + ts.Listener.Addr().String(),
		Services:      services,
		Hub:           hub,
		Log:           log,
	}).Handler
	ts.Start()

	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-stopped
	})
	return &apiClient{t: t, base: ts.URL}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *apiClient) send(req *http.Request, out interface{}) int {
	c.t.Helper()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *apiClient) signUp(email string) {
	c.t.Helper()
	var auth service.AuthResponse
	code := c.do(http.MethodPost, "/auth/signup", map[string]string{"email": email, "password": "password123"}, &auth)
	require.Equal(c.t, http.StatusCreated, code)
	c.token = auth.Token
}

func TestBoardWorkflow(t *testing.T) {
	api := startAPI(t)
	api.signUp("owner@example.com")

	var board service.BoardResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/boards", map[string]string{"title": "Launch"}, &board))

	var view service.BoardView
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/boards/%d", board.ID), nil, &view))
	require.Len(t, view.Columns, 3)
	todo, done := view.Columns[0], view.Columns[2]

	var card service.CardResponse
	path := fmt.Sprintf("/columns/%d/cards", todo.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, map[string]string{"title": "Ship", "priority": "urgent"}, &card))

	var sub service.SubtaskResponse
	path = fmt.Sprintf("/cards/%d/subtasks", card.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, map[string]string{"title": "Tag release"}, &sub))

	var update service.SubtaskUpdate
	path = fmt.Sprintf("/subtasks/%d", sub.ID)
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, path, map[string]bool{"completed": true}, &update))
	assert.True(t, update.Automation.AutoMoved)
	assert.Equal(t, done.ID, update.Automation.TargetColumnID)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/boards/%d?priority=urgent", board.ID), nil, &view))
	assert.Equal(t, 0, view.Columns[0].CardCount)
	assert.Equal(t, 1, view.Columns[2].CardCount)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/boards/%d?priority=low", board.ID), nil, &view))
	assert.Equal(t, 0, view.Columns[2].CardCount)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, fmt.Sprintf("/boards/%d?due=someday", board.ID), nil, nil))

	other := &apiClient{t: t, base: api.base}
	other.signUp("other@example.com")
	assert.Equal(t, http.StatusForbidden, other.do(http.MethodGet, fmt.Sprintf("/boards/%d", board.ID), nil, nil))

	var activities []service.ActivityResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/boards/%d/activities?limit=10", board.ID), nil, &activities))
	assert.Equal(t, "card_auto_moved", activities[0].Action)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodPost, "/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/boards", nil, nil))
}

func TestWIPLimitConflict(t *testing.T) {
	api := startAPI(t)
	api.signUp("owner@example.com")

	var board service.BoardResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/boards", map[string]string{"title": "Limits"}, &board))

	var column service.ColumnResponse
	path := fmt.Sprintf("/boards/%d/columns", board.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, map[string]interface{}{"title": "Review", "wip_limit": 1}, &column))

	path = fmt.Sprintf("/columns/%d/cards", column.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, map[string]string{"title": "one"}, nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, path, map[string]string{"title": "two"}, nil))
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	api := startAPI(t)
	api.signUp("owner@example.com")

	var board service.BoardResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/boards", map[string]string{"title": "Files"}, &board))
	var view service.BoardView
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/boards/%d", board.ID), nil, &view))
	var card service.CardResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/columns/%d/cards", view.Columns[0].ID), map[string]string{"title": "docs"}, &card))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("release notes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/cards/%d/attachments", api.base, card.ID), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var att service.AttachmentResponse
	require.Equal(t, http.StatusCreated, api.send(req, &att))
	assert.Equal(t, "notes.txt", att.FileName)
	assert.Equal(t, int64(len("release notes")), att.FileSize)

	var signed service.SignedURLResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/attachments/%d/url", att.ID), nil, &signed))
	require.True(t, strings.HasPrefix(signed.URL, api.base+"/files/"), signed.URL)

	resp, err := http.Get(signed.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "release notes", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "notes.txt")

	resp, err = http.Get(api.base + "/files/" + att.FilePath + "?token=forged")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBoardSocketReceivesChanges(t *testing.T) {
	api := startAPI(t)
	api.signUp("owner@example.com")

	var board service.BoardResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/boards", map[string]string{"title": "Live"}, &board))

	wsURL := strings.Replace(api.base, "http://", "ws://", 1) + fmt.Sprintf("/boards/%d/ws?token=%s", board.ID, api.token)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var msg struct {
		Type string         `json:"type"`
		Data realtime.Event `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Type)

	// The pong proves the client is registered, so this change reaches it.
	path := fmt.Sprintf("/boards/%d/columns", board.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, map[string]string{"title": "Extra"}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "change", msg.Type)
	assert.Equal(t, "columns", msg.Data.Table)
	assert.Equal(t, realtime.EventInsert, msg.Data.Type)
	assert.Equal(t, board.ID, msg.Data.BoardID)
}
