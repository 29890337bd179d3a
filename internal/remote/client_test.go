package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsync/pawsync/internal/pet"
)

// rpcHandler answers one decoded request with a result or an error code.
type rpcHandler func(method string, params json.RawMessage) (result any, errCode string)

// startTestServer runs a websocket endpoint speaking the client's protocol.
func startTestServer(t *testing.T, handle rpcHandler) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var req struct {
				ID     int64           `json:"id"`
				Method string          `json:"method"`
				Params json.RawMessage `json:"params"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return
			}

			result, errCode := handle(req.Method, req.Params)
			resp := map[string]any{"id": req.ID}
			if errCode != "" {
				resp["error"] = map[string]string{"code": errCode, "message": errCode}
			} else {
				resp["result"] = result
			}
			out, _ := json.Marshal(resp)
			if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTest(t *testing.T, url string) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFetchPet(t *testing.T) {
	want := ToDoc(pet.NewRecord("dog", testEpoch))
	url := startTestServer(t, func(method string, params json.RawMessage) (any, string) {
		assert.Equal(t, "pet.fetch", method)
		var p petParams
		require.NoError(t, json.Unmarshal(params, &p))
		assert.Equal(t, "acct-1", p.AccountID)
		assert.Equal(t, "dog", p.PetID)
		return want, ""
	})

	client := dialTest(t, url)
	got, err := client.FetchPet(context.Background(), "acct-1", "dog")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFetchPet_NotFound(t *testing.T) {
	url := startTestServer(t, func(string, json.RawMessage) (any, string) {
		return nil, "not_found"
	})

	client := dialTest(t, url)
	_, err := client.FetchPet(context.Background(), "acct-1", "dog")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchPet_NullResultIsNotFound(t *testing.T) {
	url := startTestServer(t, func(string, json.RawMessage) (any, string) {
		return nil, ""
	})

	client := dialTest(t, url)
	_, err := client.FetchPet(context.Background(), "acct-1", "dog")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertPet(t *testing.T) {
	var gotSession string
	url := startTestServer(t, func(method string, params json.RawMessage) (any, string) {
		assert.Equal(t, "pet.upsert", method)
		var p petParams
		require.NoError(t, json.Unmarshal(params, &p))
		gotSession = p.SessionID
		return map[string]bool{"ok": true}, ""
	})

	client := dialTest(t, url)
	doc := ToDoc(pet.NewRecord("dog", testEpoch))
	err := client.UpsertPet(context.Background(), "acct-1", doc, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", gotSession)
}

func TestUpsertPet_Rejected(t *testing.T) {
	url := startTestServer(t, func(string, json.RawMessage) (any, string) {
		return nil, "invalid_document"
	})

	client := dialTest(t, url)
	doc := ToDoc(pet.NewRecord("dog", testEpoch))
	err := client.UpsertPet(context.Background(), "acct-1", doc, "session-1")
	assert.ErrorIs(t, err, ErrRejected)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestFetchAll(t *testing.T) {
	docs := []*Doc{
		ToDoc(pet.NewRecord("dog", testEpoch)),
		ToDoc(pet.NewRecord("cat", testEpoch)),
	}
	url := startTestServer(t, func(method string, _ json.RawMessage) (any, string) {
		assert.Equal(t, "pet.list", method)
		return docs, ""
	})

	client := dialTest(t, url)
	got, err := client.FetchAll(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestSettings_FetchAndUpsert(t *testing.T) {
	stored := &SettingsDoc{SelectedPetID: "cat", SoundOn: true, LastInteractionTime: testEpoch.UnixMilli()}
	url := startTestServer(t, func(method string, params json.RawMessage) (any, string) {
		switch method {
		case "settings.fetch":
			return stored, ""
		case "settings.upsert":
			return map[string]bool{"ok": true}, ""
		default:
			t.Errorf("unexpected method %s", method)
			return nil, "bad_method"
		}
	})

	client := dialTest(t, url)
	got, err := client.FetchSettings(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	err = client.UpsertSettings(context.Background(), "acct-1", stored, "session-1")
	require.NoError(t, err)
}

func TestCall_ConnectionLossIsUnavailable(t *testing.T) {
	url := startTestServer(t, func(string, json.RawMessage) (any, string) {
		return map[string]bool{"ok": true}, ""
	})

	client := dialTest(t, url)
	client.conn.Close(websocket.StatusNormalClosure, "gone")

	_, err := client.FetchPet(context.Background(), "acct-1", "dog")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
