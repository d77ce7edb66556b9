package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/services"
	"filelinkbot/utils"
)

const testAdminID int64 = 42

type fakeUpdates struct {
	got []tgbotapi.Update
	err error
}

func (f *fakeUpdates) HandleUpdate(_ context.Context, u tgbotapi.Update) error {
	f.got = append(f.got, u)
	return f.err
}

type fakeBatches map[string]*database.Batch

func (f fakeBatches) Resolve(_ context.Context, id string) (*database.Batch, error) {
	b, ok := f[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return b, nil
}

type fakeState struct {
	st  database.AdminState
	err error
}

func (f *fakeState) Status(context.Context, int64) (database.AdminState, error) {
	return f.st, f.err
}

type fakeStats struct{}

func (fakeStats) Get(context.Context) (services.Stats, error) {
	return services.Stats{Users: 3, Batches: 7}, nil
}

type fakeChannels struct {
	channels map[int64]string
}

func (f *fakeChannels) List(context.Context) ([]database.ForceSubChannel, error) {
	var out []database.ForceSubChannel
	for id, link := range f.channels {
		out = append(out, database.ForceSubChannel{ChannelID: id, InviteLink: link})
	}
	return out, nil
}

func (f *fakeChannels) Add(_ context.Context, id int64, link string) error {
	if !utils.ValidateInviteLink(link) {
		return fmt.Errorf("%w: bad link", services.ErrInvalidChannel)
	}
	f.channels[id] = link
	return nil
}

func (f *fakeChannels) Remove(_ context.Context, id int64) error {
	if _, ok := f.channels[id]; !ok {
		return services.ErrNotFound
	}
	delete(f.channels, id)
	return nil
}

type testServer struct {
	handler  http.Handler
	updates  *fakeUpdates
	state    *fakeState
	channels *fakeChannels
	auth     *services.AuthService
}

func newTestServer(t *testing.T, secret string, withAuth bool) *testServer {
	t.Helper()

	hash, err := utils.HashPassword("hunter2")
	require.NoError(t, err)

	ts := &testServer{
		updates:  &fakeUpdates{},
		state:    &fakeState{st: database.NewAdminState()},
		channels: &fakeChannels{channels: map[int64]string{}},
		auth:     services.NewAuthService("admin", hash, "jwt-secret"),
	}

	deps := Deps{
		Updates: ts.updates,
		Batches: fakeBatches{
			"abc12345": {BatchID: "abc12345", FileIDs: []string{"f1", "f2"}, Views: 4},
		},
		State:    ts.state,
		Stats:    fakeStats{},
		Channels: ts.channels,
		Logger:   zap.NewNop(),
	}
	if withAuth {
		deps.Auth = ts.auth
	}

	srv := NewServer(Config{Port: 0, WebhookPath: "/webhook", WebhookSecret: secret, AdminID: testAdminID}, deps)
	ts.handler = srv.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) token(t *testing.T) string {
	t.Helper()
	tok, err := ts.auth.GenerateJWT("admin")
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIndexAndHealth(t *testing.T) {
	ts := newTestServer(t, "", false)

	w := ts.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bot is running", decode(t, w)["status"])

	w = ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestWebhook(t *testing.T) {
	ts := newTestServer(t, "", false)

	body := `{"update_id": 9, "message": {"message_id": 1, "text": "hi", "chat": {"id": 5, "type": "private"}, "from": {"id": 5, "first_name": "A"}}}`
	w := ts.do(t, http.MethodPost, "/webhook", body, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	require.Len(t, ts.updates.got, 1)
	assert.Equal(t, 9, ts.updates.got[0].UpdateID)
	assert.Equal(t, "hi", ts.updates.got[0].Message.Text)
}

func TestWebhook_HandlerErrorStillOK(t *testing.T) {
	ts := newTestServer(t, "", false)
	ts.updates.err = errors.New("boom")

	w := ts.do(t, http.MethodPost, "/webhook", `{"update_id": 1}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "boom", resp["message"])
}

func TestWebhook_Malformed(t *testing.T) {
	ts := newTestServer(t, "", false)

	w := ts.do(t, http.MethodPost, "/webhook", `{not json`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
	assert.Empty(t, ts.updates.got)
}

func TestWebhook_Secret(t *testing.T) {
	ts := newTestServer(t, "s3cret", false)

	w := ts.do(t, http.MethodPost, "/webhook", `{"update_id": 1}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/webhook", `{"update_id": 1}`, "", webhookSecretHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/webhook", `{"update_id": 1}`, "", webhookSecretHeader, "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ts.updates.got, 1)
}

func TestAdminAPI_Disabled(t *testing.T) {
	ts := newTestServer(t, "", false)

	w := ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"hunter2"}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/stats", "", "anything")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, "", true)

	w := ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	tok, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, tok)

	w = ts.do(t, http.MethodGet, "/api/admin/stats", "", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthRequired(t *testing.T) {
	ts := newTestServer(t, "", true)

	w := ts.do(t, http.MethodGet, "/api/admin/state", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/state", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminState(t *testing.T) {
	ts := newTestServer(t, "", true)
	ts.state.st = database.AdminState{Mode: database.ModeBatching, PendingFiles: []string{"a", "b"}}

	w := ts.do(t, http.MethodGet, "/api/admin/state", "", ts.token(t))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "batching", resp["mode"])
	assert.Equal(t, float64(2), resp["pending_count"])
	assert.Equal(t, []interface{}{"a", "b"}, resp["pending_files"])
}

func TestAdminState_StoreUnavailable(t *testing.T) {
	ts := newTestServer(t, "", true)
	ts.state.err = fmt.Errorf("%w: disk gone", services.ErrStoreUnavailable)

	w := ts.do(t, http.MethodGet, "/api/admin/state", "", ts.token(t))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, "", true)

	w := ts.do(t, http.MethodGet, "/api/admin/stats", "", ts.token(t))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["users"])
	assert.Equal(t, float64(7), resp["batches"])
}

func TestGetBatch(t *testing.T) {
	ts := newTestServer(t, "", true)
	tok := ts.token(t)

	w := ts.do(t, http.MethodGet, "/api/admin/batches/abc12345", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "abc12345", resp["batch_id"])
	assert.Equal(t, []interface{}{"f1", "f2"}, resp["file_ids"])
	assert.Equal(t, float64(4), resp["views"])
	assert.Nil(t, resp["caption"])

	w = ts.do(t, http.MethodGet, "/api/admin/batches/missing", "", tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChannels(t *testing.T) {
	ts := newTestServer(t, "", true)
	tok := ts.token(t)

	w := ts.do(t, http.MethodPost, "/api/admin/channels", `{"channel_id": -1001, "invite_link": "https://t.me/+abc"}`, tok)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/channels", `{"channel_id": -1002, "invite_link": "nope"}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/channels", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = ts.do(t, http.MethodDelete, "/api/admin/channels/-1001", "", tok)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/admin/channels/-1001", "", tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/admin/channels/abc", "", tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
