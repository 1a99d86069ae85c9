package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty, or a
	// single "*", allows every origin.
	AllowOrigins []string

	// AllowMethods lists methods clients may use. Empty defaults to
	// "GET, POST, PUT, DELETE, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists request headers clients may send. Empty echoes
	// the preflight's Access-Control-Request-Headers back.
	AllowHeaders []string

	// ExposeHeaders lists response headers the browser may read.
	ExposeHeaders []string

	// AllowCredentials permits cookies and Authorization headers
	// cross-origin. Incompatible with the wildcard origin, so enabling it
	// forces per-origin echo.
	AllowCredentials bool

	// MaxAge caches preflight results for this many seconds. Zero omits
	// the header; negative sends "0".
	MaxAge int
}

// cors is the precomputed middleware state: header values are joined once
// at construction, and origin matching is case-insensitive against the
// configured spelling.
type cors struct {
	cfg      CORSConfig
	allowAll bool
	origins  map[string]string

	methods string
	headers string
	expose  string
	maxAge  string
}

// CORS returns a middleware answering preflight requests and stamping
// allow headers on actual cross-origin requests. Responses vary on Origin
// so shared caches cannot leak one origin's answer to another.
func CORS(cfg CORSConfig) Middleware {
	c := &cors{
		cfg:      cfg,
		allowAll: len(cfg.AllowOrigins) == 0,
		origins:  make(map[string]string, len(cfg.AllowOrigins)),
		methods:  strings.Join(cfg.AllowMethods, ", "),
		headers:  strings.Join(cfg.AllowHeaders, ", "),
		expose:   strings.Join(cfg.ExposeHeaders, ", "),
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.allowAll = true
			break
		}
		c.origins[strings.ToLower(o)] = o
	}
	if cfg.AllowCredentials {
		c.allowAll = false
	}
	if c.methods == "" {
		c.methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	if cfg.MaxAge > 0 {
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	} else if cfg.MaxAge < 0 {
		c.maxAge = "0"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				if !c.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			allowOrigin := c.match(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				c.preflight(w, r, allowOrigin)
				return
			}

			if !c.allowAll {
				w.Header().Add("Vary", "Origin")
			}
			if allowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				if c.cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if c.expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", c.expose)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (c *cors) preflight(w http.ResponseWriter, r *http.Request, allowOrigin string) {
	w.Header().Add("Vary", "Origin")
	w.Header().Add("Vary", "Access-Control-Request-Method")
	w.Header().Add("Vary", "Access-Control-Request-Headers")

	// A disallowed origin still gets 204, just without allow headers.
	if allowOrigin == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", c.methods)

	if c.headers != "" {
		w.Header().Set("Access-Control-Allow-Headers", c.headers)
	} else if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
		w.Header().Set("Access-Control-Allow-Headers", rh)
	}

	if c.cfg.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	if c.maxAge != "" {
		w.Header().Set("Access-Control-Max-Age", c.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *cors) match(origin string) string {
	if c.allowAll {
		return "*"
	}
	if orig, ok := c.origins[strings.ToLower(origin)]; ok {
		return orig
	}
	return ""
}
