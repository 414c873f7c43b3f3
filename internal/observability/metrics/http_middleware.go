package metrics

import (
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// Middleware records request count and latency labeled by the matched route pattern,
// which keeps label cardinality bounded. The router must save matched route paths.
func Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		started := time.Now()
		next(ctx)

		path, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
		if path == "" {
			path = "unmatched"
		}
		ObserveHTTPRequest(
			string(ctx.Method()),
			path,
			strconv.Itoa(ctx.Response.StatusCode()),
			time.Since(started),
		)
	}
}
