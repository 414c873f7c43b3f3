package main

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func run(t *testing.T, handler fasthttp.RequestHandler, args ...string) (string, error) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() {
		_ = ln.Close()
		httpClient = nil
		token = ""
		asJSON = false
	})
	httpClient = &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--server", "http://api.test"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoginPrintsToken(t *testing.T) {
	out, err := run(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/auth/login", string(ctx.Path()))
		assert.JSONEq(t, `{"email":"anna@realty.io","password":"correct-horse"}`, string(ctx.PostBody()))
		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetBodyString(`{"status":"success","data":{"access_token":"tok-1","token_type":"Bearer"}}`)
	}, "login", "--email", "anna@realty.io", "--password", "correct-horse")

	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", out)
}

func TestListingsListRendersTable(t *testing.T) {
	out, err := run(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/listings", string(ctx.Path()))
		assert.Equal(t, "rent", string(ctx.QueryArgs().Peek("deal_type")))
		assert.Equal(t, "PARKING,BALCONY", string(ctx.QueryArgs().Peek("tags")))
		assert.Equal(t, "Bearer tok-1", string(ctx.Request.Header.Peek("Authorization")))
		ctx.SetBodyString(`{"status":"success","data":[
			{"id":7,"title":"Loft","deal_type":"RENT","property_type":"STUDIO","price":"45000","property_status":"AVAILABLE"}
		]}`)
	}, "--token", "tok-1", "listings", "list", "--deal", "rent", "--tag", "PARKING", "--tag", "BALCONY")

	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Loft")
	assert.Contains(t, out, "studio")
	assert.Contains(t, out, "45000")
}

func TestSubscriptionPaySendsOverride(t *testing.T) {
	out, err := run(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/subscription/pay", string(ctx.Path()))
		assert.JSONEq(t, `{"amount":"15"}`, string(ctx.PostBody()))
		ctx.SetBodyString(`{"status":"success","data":{
			"payment":{"id":"pay-1","amount":"15","status":"SUCCESS"},
			"subscription":{"account":{"subscription_status":"ACTIVE","payment_history":[]}}
		}}`)
	}, "subscription", "pay", "--amount", "15")

	require.NoError(t, err)
	assert.Equal(t, "paid 15 (payment pay-1), status ACTIVE\n", out)
}

func TestServerErrorSurfaces(t *testing.T) {
	_, err := run(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusForbidden)
		ctx.SetBodyString(`{"status":"error","code":"FORBIDDEN","error":"subscription is inactive"}`)
	}, "listings", "delete", "7")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCreateRequiresFlags(t *testing.T) {
	_, err := run(t, func(ctx *fasthttp.RequestCtx) {
		t.Error("no request expected")
	}, "listings", "create", "--title", "Loft")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestRegionsShowOne(t *testing.T) {
	out, err := run(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/v1/regions/kazan", string(ctx.Path()))
		ctx.SetBodyString(`{"status":"success","data":{"id":3,"uuid":"u-3","slug":"kazan","name":"Казань"}}`)
	}, "regions", "kazan")

	require.NoError(t, err)
	assert.Equal(t, "3\tkazan\tКазань\tu-3\n", out)
}
