package client

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/metadata"
	"github.com/wippyai/chaincall/scale"
)

// dialTimeout bounds the websocket handshake when the caller's context
// carries no deadline of its own.
const dialTimeout = 10 * time.Second

// Client is a JSON-RPC 2.0 connection to a chain node. Requests are
// serialized; a Client is safe for concurrent use.
type Client struct {
	url    string
	conn   *websocket.Conn
	mu     sync.Mutex
	nextID atomic.Uint64
}

type rpcRequest struct {
	Version string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RuntimeVersion is the node's reported runtime identity.
type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	ImplName           string `json:"implName"`
	SpecVersion        uint32 `json:"specVersion"`
	ImplVersion        uint32 `json:"implVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// NormalizeURL rewrites plain host/port or http(s) endpoints into their
// websocket form, so "localhost:9944" and "https://rpc.example.com" both
// dial cleanly.
func NormalizeURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "ws://"), strings.HasPrefix(raw, "wss://"):
		return raw
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "localhost"), strings.HasPrefix(raw, "127.0.0.1"):
		return "ws://" + raw
	default:
		return "wss://" + raw
	}
}

// Dial opens a websocket connection to the node at url. The url is
// normalized with NormalizeURL first.
func Dial(ctx context.Context, url string) (*Client, error) {
	url = NormalizeURL(url)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
			fmt.Sprintf("dial %s", url))
	}

	Logger().Debug("connected to node", zap.String("url", url))
	return &Client{url: url, conn: conn}, nil
}

// URL returns the normalized endpoint this client dialed.
func (c *Client) URL() string { return c.url }

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call performs one JSON-RPC request and unmarshals the result into out.
// Pass a nil out to discard the result.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{
		Version: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err, method)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err, method)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(errors.PhaseFetch, errors.KindInvalidInput, err, method)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
			fmt.Sprintf("send %s", method))
	}

	// Responses arrive in request order on this connection; skip anything
	// with a stale id, such as subscription notifications.
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
				fmt.Sprintf("receive %s", method))
		}
		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
				fmt.Sprintf("decode %s response", method))
		}
		if resp.ID != req.ID {
			Logger().Debug("skipping unsolicited message", zap.Uint64("id", resp.ID))
			continue
		}
		if resp.Error != nil {
			return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, resp.Error, method)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
				fmt.Sprintf("decode %s result", method))
		}
		return nil
	}
}

// SystemChain returns the node's chain name.
func (c *Client) SystemChain(ctx context.Context) (string, error) {
	var name string
	if err := c.Call(ctx, "system_chain", nil, &name); err != nil {
		return "", err
	}
	return name, nil
}

// RuntimeVersion returns the node's runtime version report.
func (c *Client) RuntimeVersion(ctx context.Context) (*RuntimeVersion, error) {
	var v RuntimeVersion
	if err := c.Call(ctx, "state_getRuntimeVersion", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Metadata fetches the chain's metadata and decodes it into a Snapshot.
// V15 is requested through the metadata runtime API first; nodes whose
// runtime predates it fall back to state_getMetadata.
func (c *Client) Metadata(ctx context.Context) (*metadata.Snapshot, error) {
	snap, err := c.MetadataAtVersion(ctx, 15)
	if err == nil {
		return snap, nil
	}
	if !errors.IsKind(err, errors.KindNotFound) {
		Logger().Debug("metadata runtime API unavailable, falling back",
			zap.Error(err))
	}

	var hexBlob string
	if err := c.Call(ctx, "state_getMetadata", nil, &hexBlob); err != nil {
		return nil, err
	}
	raw, err := decodeHex(hexBlob)
	if err != nil {
		return nil, err
	}
	return metadata.DecodeSnapshot(raw)
}

// MetadataAtVersion asks the Metadata_metadata_at_version runtime API for a
// specific format version. A KindNotFound error means the runtime does not
// provide that version.
func (c *Client) MetadataAtVersion(ctx context.Context, version uint32) (*metadata.Snapshot, error) {
	arg := encodeHex(scale.NewEncoder().U32(version).Bytes())

	var hexResult string
	if err := c.Call(ctx, "state_call",
		[]any{"Metadata_metadata_at_version", arg}, &hexResult); err != nil {
		return nil, err
	}
	raw, err := decodeHex(hexResult)
	if err != nil {
		return nil, err
	}

	// The runtime returns Option<OpaqueMetadata>, an optional length-prefixed
	// byte vector wrapping the actual blob.
	d := scale.NewDecoder(raw)
	present, err := d.Option()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
			"metadata option wrapper")
	}
	if !present {
		return nil, errors.NotFound(errors.PhaseFetch, "metadata version",
			fmt.Sprintf("%d", version))
	}
	blob, err := d.BytesVec()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
			"metadata byte vector")
	}
	return metadata.DecodeSnapshot(blob)
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func decodeHex(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err,
			"hex payload")
	}
	return b, nil
}
