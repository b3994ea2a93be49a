package deps

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bambuco/boa/internal/catalogue"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/search"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	RedisClient *redis.Client        // Redis client connection
	Catalogue   *catalogue.Catalogue // In-memory repositories catalogue

	// Search behaviour shared by the suggest and search endpoints.
	SearchCache     *search.Cache
	SuggestionsSize int
	ResultsSize     int
	MinLetters      int

	// Upstream HTTP clients, shared so pooled connections are reused.
	BankHTTP  *http.Client
	ProxyHTTP *http.Client

	ProxyPrefix      string        // mount path of the content proxy (ex: "/proxy/")
	RepositoriesFile string        // Path to the repositories definitions file
	ReloadTrigger    chan struct{} // Channel to trigger manual repositories reload
}
