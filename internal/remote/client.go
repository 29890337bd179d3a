// Package remote provides the async client for the cloud document store
// holding one pet document per pet per account plus one account-settings
// document. The wire protocol is a small JSON-RPC dialect over websocket.
//
// The client knows nothing about the local cache; format translation between
// the engine's model and the remote document shape lives in docformat.go.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/coder/websocket"
)

// Client is a connection to the remote document store. Calls are serialized
// over a single websocket; each request carries a correlation id.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	mu     sync.Mutex
	nextID int64
}

type request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Dial connects to the remote store at the given websocket URL.
//
// If logger is nil, a default logger writing to stderr is used.
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, url, err)
	}
	conn.SetReadLimit(1 << 20)
	return &Client{conn: conn, logger: logger}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// call performs one request/response exchange. The connection lock keeps
// request and response paired; the protocol answers in order.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := request{ID: c.nextID, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("%w: %s write: %v", ErrUnavailable, method, err)
	}

	_, payload, err := c.conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s read: %v", ErrUnavailable, method, err)
	}

	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("%w: %s: malformed response: %v", ErrRejected, method, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "not_found" {
			return fmt.Errorf("%w: %s", ErrNotFound, method)
		}
		return fmt.Errorf("%w: %s: %s (%s)", ErrRejected, method, resp.Error.Message, resp.Error.Code)
	}
	if out != nil {
		if len(resp.Result) == 0 || string(resp.Result) == "null" {
			return fmt.Errorf("%w: %s: empty result", ErrNotFound, method)
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%w: %s: malformed result: %v", ErrRejected, method, err)
		}
	}
	return nil
}

type petParams struct {
	AccountID string `json:"accountId"`
	PetID     string `json:"petId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Doc       any    `json:"doc,omitempty"`
}

// FetchPet retrieves the remote document for one pet. Returns ErrNotFound
// when no remote copy exists yet.
func (c *Client) FetchPet(ctx context.Context, accountID, petID string) (*Doc, error) {
	var doc Doc
	err := c.call(ctx, "pet.fetch", petParams{AccountID: accountID, PetID: petID}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FetchAll retrieves every pet document the account owns.
func (c *Client) FetchAll(ctx context.Context, accountID string) ([]*Doc, error) {
	var docs []*Doc
	err := c.call(ctx, "pet.list", petParams{AccountID: accountID}, &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpsertPet writes one pet document. sessionID identifies the writing
// coordinator instance; the server may use it to skip echoing changes back.
func (c *Client) UpsertPet(ctx context.Context, accountID string, doc *Doc, sessionID string) error {
	return c.call(ctx, "pet.upsert", petParams{AccountID: accountID, SessionID: sessionID, Doc: doc}, nil)
}

// FetchSettings retrieves the account-settings document. Returns
// ErrNotFound when the account has none yet.
func (c *Client) FetchSettings(ctx context.Context, accountID string) (*SettingsDoc, error) {
	var doc SettingsDoc
	err := c.call(ctx, "settings.fetch", petParams{AccountID: accountID}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpsertSettings writes the account-settings document.
func (c *Client) UpsertSettings(ctx context.Context, accountID string, doc *SettingsDoc, sessionID string) error {
	return c.call(ctx, "settings.upsert", petParams{AccountID: accountID, SessionID: sessionID, Doc: doc}, nil)
}
