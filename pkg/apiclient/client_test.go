package apiclient

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, token string, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })
	return New(Config{
		BaseURL: "http://api.test/",
		Token:   token,
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	})
}

func TestGetUnwrapsEnvelopeAndSendsToken(t *testing.T) {
	c := newTestClient(t, "secret", func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/listings", string(ctx.Path()))
		assert.Equal(t, "RENT", string(ctx.QueryArgs().Peek("deal_type")))
		assert.Equal(t, "Bearer secret", string(ctx.Request.Header.Peek("Authorization")))
		ctx.SetBodyString(`{"status":"success","data":[{"id":1},{"id":2}]}`)
	})

	var out []struct {
		ID int64 `json:"id"`
	}
	err := c.Get(context.Background(), "/listings", url.Values{"deal_type": {"RENT"}}, &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.EqualValues(t, 2, out[1].ID)
}

func TestNoTokenNoHeader(t *testing.T) {
	c := newTestClient(t, "", func(ctx *fasthttp.RequestCtx) {
		assert.Empty(t, ctx.Request.Header.Peek("Authorization"))
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), "/listings/1", nil))
}

func TestPostEncodesBody(t *testing.T) {
	c := newTestClient(t, "", func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, fasthttp.MethodPost, string(ctx.Method()))
		assert.JSONEq(t, `{"amount":"15"}`, string(ctx.PostBody()))
		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetBodyString(`{"status":"success","data":{"id":"pay-1"}}`)
	})
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.Post(context.Background(), "/payments", map[string]string{"amount": "15"}, &out))
	assert.Equal(t, "pay-1", out.ID)
}

func TestNon2xxIsHTTPError(t *testing.T) {
	c := newTestClient(t, "", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusForbidden)
		ctx.SetBodyString(`{"status":"error","code":"FORBIDDEN","error":"subscription is inactive"}`)
	})

	err := c.Put(context.Background(), "/listings/1", map[string]string{}, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, fasthttp.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "FORBIDDEN", httpErr.Code)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "subscription is inactive")
}

func TestSetToken(t *testing.T) {
	c := New(Config{})
	assert.Empty(t, c.Token())
	c.SetToken("t1")
	assert.Equal(t, "t1", c.Token())
}
