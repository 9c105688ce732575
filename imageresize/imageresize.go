package imageresize

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"path"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/djherbis/times"

	"github.com/erikbos/jellymirror-server/idhash"
)

type Options struct {
	// Cachedir is where resized images are stored. Empty disables caching.
	Cachedir string
	// Quality is the JPEG quality of resized images, 1-100.
	Quality int
}

// Resizer scales remote poster images down and caches the result on disk.
type Resizer struct {
	cachedir string
	quality  int
	tmpExt   string
	// per-cache-entry locks so the same image is not resized twice concurrently
	resizeMutexMap     map[string]*sync.Mutex
	resizeMutexMapLock sync.Mutex
}

func New(o Options) *Resizer {
	quality := o.Quality
	if quality == 0 {
		quality = 90
	}
	return &Resizer{
		cachedir:       o.Cachedir,
		quality:        quality,
		tmpExt:         fmt.Sprintf(".%d", os.Getpid()),
		resizeMutexMap: make(map[string]*sync.Mutex),
	}
}

// Resize scales the given image down to fit within the requested width,
// returning a JPEG. Width 0 returns the original bytes untouched. Results
// are cached on disk keyed by image content and width.
func (r *Resizer) Resize(img []byte, width int) ([]byte, error) {
	if width == 0 {
		return img, nil
	}

	key := fmt.Sprintf("%s-w%d", idhash.HashBytes(img), width)

	lock := r.entryLock(key)
	lock.Lock()
	defer lock.Unlock()

	if cached := r.cacheRead(key); cached != nil {
		return cached, nil
	}

	decoded, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if decoded.Bounds().Dx() > width {
		decoded = imaging.Resize(decoded, width, 0, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, decoded, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	r.cacheWrite(key, out.Bytes())
	return out.Bytes(), nil
}

func (r *Resizer) entryLock(key string) *sync.Mutex {
	r.resizeMutexMapLock.Lock()
	defer r.resizeMutexMapLock.Unlock()
	lock, ok := r.resizeMutexMap[key]
	if !ok {
		lock = &sync.Mutex{}
		r.resizeMutexMap[key] = lock
	}
	return lock
}

func (r *Resizer) cacheRead(key string) []byte {
	if r.cachedir == "" {
		return nil
	}
	data, err := os.ReadFile(path.Join(r.cachedir, key))
	if err != nil {
		return nil
	}
	return data
}

func (r *Resizer) cacheWrite(key string, data []byte) {
	if r.cachedir == "" {
		return
	}
	fn := path.Join(r.cachedir, key)
	// write via tmpfile + rename so a concurrent read never sees a partial file
	tmp := fn + r.tmpExt
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return
	}
	os.Rename(tmp, fn)
}

// CleanCache removes cache entries not accessed within maxAge. Runs the
// sweep every interval until the process exits.
func (r *Resizer) CleanCache(interval, maxAge time.Duration) {
	if r.cachedir == "" {
		return
	}
	for {
		if err := r.sweepCache(maxAge); err != nil {
			log.Printf("imageresize: reading cache dir: %s", err)
			return
		}
		time.Sleep(interval)
	}
}

func (r *Resizer) sweepCache(maxAge time.Duration) error {
	entries, err := os.ReadDir(r.cachedir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fn := path.Join(r.cachedir, entry.Name())
		t, err := times.Stat(fn)
		if err != nil {
			continue
		}
		if time.Since(t.AccessTime()) > maxAge {
			os.Remove(fn)
		}
	}
	return nil
}
