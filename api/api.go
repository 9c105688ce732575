package api

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/erikbos/jellymirror-server/database"
	"github.com/erikbos/jellymirror-server/imageresize"
	"github.com/erikbos/jellymirror-server/jellyfin"
	syncengine "github.com/erikbos/jellymirror-server/sync"
)

// Searcher is the search surface the api needs.
type Searcher interface {
	Search(ctx context.Context, searchTerm string, size int) ([]string, error)
}

type Options struct {
	Engine       *syncengine.Engine
	Repo         database.Repository
	Client       *jellyfin.Client
	Imageresizer *imageresize.Resizer
	Search       Searcher
	// APISecretHash is the bcrypt hash of the API secret required on all
	// endpoints except health. Empty disables authentication.
	APISecretHash string
}

// Api is the trigger surface of the mirror: endpoints to start syncs and to
// read synced data.
type Api struct {
	engine       *syncengine.Engine
	repo         database.Repository
	client       *jellyfin.Client
	imageresizer *imageresize.Resizer
	search       Searcher
	secretHash   string
	// syncRunning serializes sync triggers: the engine itself does not
	// guard against concurrent runs.
	syncRunning sync.Mutex
}

func New(o *Options) *Api {
	return &Api{
		engine:       o.Engine,
		repo:         o.Repo,
		client:       o.Client,
		imageresizer: o.Imageresizer,
		search:       o.Search,
		secretHash:   o.APISecretHash,
	}
}

func (a *Api) RegisterHandlers(r *mux.Router) {
	// middleware for endpoints to check the api secret
	middleware := func(handler http.HandlerFunc) http.Handler {
		return handlers.CompressHandler(a.authmiddleware(http.HandlerFunc(handler)))
	}

	r.Handle("/health", http.HandlerFunc(a.healthHandler))

	r.Handle("/Sync/Full", middleware(a.syncFullHandler)).Methods("POST")
	r.Handle("/Sync/Item", middleware(a.syncItemHandler)).Methods("POST")
	r.Handle("/Sync/Activity", middleware(a.syncActivityHandler)).Methods("POST")
	r.Handle("/Sync/Log", middleware(a.syncLogHandler)).Methods("GET")

	r.Handle("/Activity", middleware(a.activityHandler)).Methods("GET")
	r.Handle("/Stats/Libraries", middleware(a.libraryStatsHandler)).Methods("GET")
	r.Handle("/Search", middleware(a.searchHandler)).Methods("GET")

	r.Handle("/Proxy/Items/{item}/Images/{type}",
		middleware(a.imageProxyHandler)).Methods("GET")
}

// authmiddleware rejects requests not carrying the configured api secret.
func (a *Api) authmiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.secretHash != "" {
			token := r.Header.Get("X-API-Token")
			if token == "" {
				token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if bcrypt.CompareHashAndPassword([]byte(a.secretHash), []byte(token)) != nil {
				apierror(w, "Invalid api token", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
