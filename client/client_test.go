package client

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	ccerrors "github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/scale"
)

// fakeNode serves JSON-RPC over a websocket, answering each method from a
// handler table.
func fakeNode(t *testing.T, handlers map[string]func(params []any) (any, *rpcError)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			handler, ok := handlers[req.Method]
			if !ok {
				t.Errorf("unexpected method %q", req.Method)
				return
			}
			result, rpcErr := handler(req.Params)
			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			payload, _ := json.Marshal(resp)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}))
}

func dialFake(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := Dial(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// minimalMetadata is a valid but empty v14 blob: no types, no pallets, one
// byte of extrinsic metadata and the runtime type id.
func minimalMetadata() []byte {
	e := scale.NewEncoder()
	e.Raw([]byte("meta"))
	e.U8(14)
	e.Compact(0) // types
	e.Compact(0) // pallets
	e.Compact(0) // extrinsic type
	e.U8(4)      // extrinsic version
	e.Compact(0) // signed extensions
	e.Compact(0) // runtime type
	return e.Bytes()
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ws://node:9944", "ws://node:9944"},
		{"wss://rpc.example.com", "wss://rpc.example.com"},
		{"http://node:9944", "ws://node:9944"},
		{"https://rpc.example.com", "wss://rpc.example.com"},
		{"localhost:9944", "ws://localhost:9944"},
		{"127.0.0.1:9944", "ws://127.0.0.1:9944"},
		{"rpc.example.com", "wss://rpc.example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSystemChain(t *testing.T) {
	srv := fakeNode(t, map[string]func([]any) (any, *rpcError){
		"system_chain": func([]any) (any, *rpcError) {
			return "Westend", nil
		},
	})
	defer srv.Close()

	c := dialFake(t, srv)
	name, err := c.SystemChain(context.Background())
	if err != nil {
		t.Fatalf("SystemChain: %v", err)
	}
	if name != "Westend" {
		t.Errorf("chain = %q", name)
	}
}

func TestRuntimeVersion(t *testing.T) {
	srv := fakeNode(t, map[string]func([]any) (any, *rpcError){
		"state_getRuntimeVersion": func([]any) (any, *rpcError) {
			return map[string]any{
				"specName":    "westend",
				"specVersion": 1018000,
			}, nil
		},
	})
	defer srv.Close()

	c := dialFake(t, srv)
	v, err := c.RuntimeVersion(context.Background())
	if err != nil {
		t.Fatalf("RuntimeVersion: %v", err)
	}
	if v.SpecName != "westend" || v.SpecVersion != 1018000 {
		t.Errorf("version = %+v", v)
	}
}

func TestCall_RPCError(t *testing.T) {
	srv := fakeNode(t, map[string]func([]any) (any, *rpcError){
		"system_chain": func([]any) (any, *rpcError) {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		},
	})
	defer srv.Close()

	c := dialFake(t, srv)
	_, err := c.SystemChain(context.Background())
	if !ccerrors.IsKind(err, ccerrors.KindInvalidData) {
		t.Fatalf("expected invalid_data, got %v", err)
	}
	if !strings.Contains(err.Error(), "method not found") {
		t.Errorf("error should carry the node message: %v", err)
	}
}

func TestMetadataAtVersion(t *testing.T) {
	blob := minimalMetadata()
	wrapped := scale.NewEncoder().OptionSome().BytesVec(blob).Bytes()

	srv := fakeNode(t, map[string]func([]any) (any, *rpcError){
		"state_call": func(params []any) (any, *rpcError) {
			if len(params) != 2 || params[0] != "Metadata_metadata_at_version" {
				t.Errorf("params: %v", params)
			}
			want := encodeHex(scale.NewEncoder().U32(15).Bytes())
			if params[1] != want {
				t.Errorf("version arg = %v, want %v", params[1], want)
			}
			return encodeHex(wrapped), nil
		},
	})
	defer srv.Close()

	c := dialFake(t, srv)
	snap, err := c.MetadataAtVersion(context.Background(), 15)
	if err != nil {
		t.Fatalf("MetadataAtVersion: %v", err)
	}
	if snap.Version != 14 {
		t.Errorf("decoded version = %d", snap.Version)
	}
}

func TestMetadata_FallsBackToStateGetMetadata(t *testing.T) {
	none := scale.NewEncoder().OptionNone().Bytes()

	srv := fakeNode(t, map[string]func([]any) (any, *rpcError){
		"state_call": func([]any) (any, *rpcError) {
			return encodeHex(none), nil
		},
		"state_getMetadata": func([]any) (any, *rpcError) {
			return encodeHex(minimalMetadata()), nil
		},
	})
	defer srv.Close()

	c := dialFake(t, srv)
	snap, err := c.Metadata(context.Background())
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if snap.Version != 14 || snap.Registry.Len() != 0 {
		t.Errorf("snapshot: %+v", snap)
	}
}

func TestDecodeHex(t *testing.T) {
	got, err := decodeHex("0x6d657461")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "meta" {
		t.Errorf("decoded %q", got)
	}
	if _, err := decodeHex("0xzz"); !ccerrors.IsKind(err, ccerrors.KindInvalidData) {
		t.Errorf("expected invalid_data, got %v", err)
	}
	if hex.EncodeToString(got) != "6d657461" {
		t.Errorf("round trip mismatch")
	}
}
