package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/erikbos/jellymirror-server/api"
	"github.com/erikbos/jellymirror-server/database/sqlite"
	"github.com/erikbos/jellymirror-server/imageresize"
	"github.com/erikbos/jellymirror-server/jellyfin"
	"github.com/erikbos/jellymirror-server/search"
	syncengine "github.com/erikbos/jellymirror-server/sync"
)

func main() {
	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch config.Logfile {
	case "none":
		log.SetOutput(io.Discard)
	case "":
		fallthrough
	case "stdout":
	default:
		f, err := os.OpenFile(config.Logfile,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	log.Printf("dbinit")
	repo, err := sqlite.New(&config.Database)
	if err != nil {
		log.Fatalf("sqlite.New: %s", err)
	}

	client, err := jellyfin.New(&jellyfin.Options{
		URL:                config.Jellyfin.URL,
		APIKey:             config.Jellyfin.APIKey,
		InsecureSkipVerify: config.Jellyfin.InsecureSkipVerify,
		PageSize:           config.Jellyfin.PageSize,
	})
	if err != nil {
		log.Fatalf("jellyfin.New: %s", err)
	}

	index, err := search.New()
	if err != nil {
		log.Fatalf("search.New: %s", err)
	}

	engine := syncengine.New(&syncengine.Options{
		Catalog:           client,
		Repo:              repo,
		Index:             index,
		ExcludedLibraries: config.Sync.ExcludedLibraries,
		PreferredAdminID:  config.Sync.PreferredAdminID,
	})

	resizer := imageresize.New(imageresize.Options{
		Cachedir: config.Cachedir,
		Quality:  config.Jellyfin.ImageQualityPoster,
	})
	if config.Cachedir != "" {
		go resizer.CleanCache(time.Hour, 30*24*time.Hour)
	}

	r := mux.NewRouter()
	a := api.New(&api.Options{
		Engine:        engine,
		Repo:          repo,
		Client:        client,
		Imageresizer:  resizer,
		Search:        index,
		APISecretHash: config.API.SecretHash,
	})
	a.RegisterHandlers(r)

	if config.Sync.Interval > 0 {
		go a.ScheduledSync(config.Sync.Interval)
	}

	server := HttpLog(r)
	addr := fmt.Sprintf(":%d", config.Listen.Port)

	if config.Listen.TlsCert != "" && config.Listen.TlsKey != "" {
		kpr, err := NewKeypairReloader(config.Listen.TlsCert, config.Listen.TlsKey)
		if err != nil {
			log.Fatalf("error loading keypair: %v", err)
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: server,
			TLSConfig: &tls.Config{
				MinVersion:     tls.VersionTLS13,
				GetCertificate: kpr.GetCertificateFunc(),
			},
		}
		log.Printf("Serving HTTPS on %s", addr)
		log.Fatal(srv.ListenAndServeTLS("", ""))
	} else {
		log.Printf("Serving HTTP on %s", addr)
		log.Fatal(http.ListenAndServe(addr, server))
	}
}

type keypairReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
}

// NewKeypairReloader creates a new keypair reloader that will reload the TLS certificate
// and key from the specified paths every 15 seconds. If the certificate cannot be loaded,
// it will log an error and keep the old certificate in use.
func NewKeypairReloader(certPath, keyPath string) (*keypairReloader, error) {
	result := &keypairReloader{
		certPath: certPath,
		keyPath:  keyPath,
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	result.cert = &cert

	go func() {
		for {
			time.Sleep(15 * time.Second)
			if err := result.maybeReload(); err != nil {
				log.Printf("Keeping old TLS certificate because the new one could not be loaded: %v", err)
			}
		}
	}()
	return result, nil
}

func (kpr *keypairReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(clientHello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		kpr.certMu.RLock()
		defer kpr.certMu.RUnlock()
		return kpr.cert, nil
	}
}

func (kpr *keypairReloader) maybeReload() error {
	newCert, err := tls.LoadX509KeyPair(kpr.certPath, kpr.keyPath)
	if err != nil {
		return err
	}
	kpr.certMu.Lock()
	defer kpr.certMu.Unlock()
	kpr.cert = &newCert
	return nil
}
