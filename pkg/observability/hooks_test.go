package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Store hooks
	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", 5, time.Second, nil)
	s.OnWrite(ctx, "1", WritePrimary, time.Millisecond, nil)
	s.OnWrite(ctx, "2", WriteReciprocal, time.Millisecond, context.Canceled)

	// Codec hooks
	c := NoopCodecHooks{}
	c.OnEncode(ctx, "gedcom", 5, 2, time.Millisecond)
	c.OnDecode(ctx, "gedcom", 5, time.Millisecond, nil)

	// Cache hooks
	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "extract")
	ch.OnCacheMiss(ctx, "bio")
	ch.OnCacheSet(ctx, "bio", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.openai.com", "/v1/chat/completions")
	h.OnResponse(ctx, "POST", "api.openai.com", "/v1/chat/completions", 200, time.Second)
	h.OnError(ctx, "POST", "api.openai.com", "/v1/chat/completions", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Codec().(NoopCodecHooks); !ok {
		t.Error("Codec() should return NoopCodecHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customCodec := &testCodecHooks{}
	SetCodecHooks(customCodec)
	if Codec() != customCodec {
		t.Error("SetCodecHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)

	// Setting nil should be ignored
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testStoreHooks struct{ NoopStoreHooks }
type testCodecHooks struct{ NoopCodecHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
