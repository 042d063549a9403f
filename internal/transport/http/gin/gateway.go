package httpgin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Route sends every request under Prefix to Target with its path unchanged.
type Route struct {
	Prefix string
	Target string
}

// NewGatewayRouter serves the public entry point. It proxies each route to
// its upstream and answers 502 when the upstream cannot be reached.
func NewGatewayRouter(routes []Route, opts Options) (*gin.Engine, error) {
	r := newEngine("gateway", opts)
	logger := opts.logger()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	for _, route := range routes {
		target, err := url.Parse(route.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("gateway: invalid upstream %q for %s", route.Target, route.Prefix)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)

		// The gateway answers CORS itself.
		proxy.ModifyResponse = func(resp *http.Response) error {
			for name := range resp.Header {
				if strings.HasPrefix(name, "Access-Control-") {
					resp.Header.Del(name)
				}
			}
			return nil
		}

		proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			logger.WarnContext(req.Context(), "upstream unavailable",
				"upstream", target.String(),
				"path", req.URL.Path,
				"error", err,
			)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "upstream unavailable"})
		}

		prefix := strings.TrimSuffix(route.Prefix, "/")
		r.Any(prefix+"/*path", gin.WrapH(proxy))
	}

	return r, nil
}
