package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	syncengine "github.com/erikbos/jellymirror-server/sync"
)

// healthHandler reports liveness, no auth required.
func (a *Api) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// SyncResponse summarizes a completed full sync run.
type SyncResponse struct {
	Trigger  string              `json:"Trigger"`
	Duration string              `json:"Duration"`
	Stages   []SyncStageResponse `json:"Stages"`
}

type SyncStageResponse struct {
	Name     string `json:"Name"`
	Duration string `json:"Duration"`
	Inserted int    `json:"Inserted"`
	Updated  int    `json:"Updated"`
	Deleted  int    `json:"Deleted"`
	Error    string `json:"Error,omitempty"`
}

// /Sync/Full
//
// syncFullHandler runs one full sync, blocking the caller until the run
// completes or fails. A run already in progress makes this a 409: two
// concurrent full syncs would corrupt each other's diff sets.
func (a *Api) syncFullHandler(w http.ResponseWriter, r *http.Request) {
	if !a.syncRunning.TryLock() {
		apierror(w, "Sync already running", http.StatusConflict)
		return
	}
	defer a.syncRunning.Unlock()

	// A run must finish or fail on its own terms, a caller hanging up
	// must not abort it halfway through a diff.
	report, err := a.engine.FullSync(context.WithoutCancel(r.Context()), "manual")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, syncengine.ErrNoLibraries) {
			status = http.StatusBadGateway
		}
		apierror(w, err.Error(), status)
		return
	}

	response := SyncResponse{
		Trigger:  report.Trigger,
		Duration: report.Finished.Sub(report.Started).String(),
	}
	for _, stage := range report.Stages {
		stageResponse := SyncStageResponse{
			Name:     stage.Name,
			Duration: stage.Duration.String(),
			Inserted: stage.Stats.Inserted,
			Updated:  stage.Stats.Updated,
			Deleted:  stage.Stats.Deleted,
		}
		if stage.Err != nil {
			stageResponse.Error = stage.Err.Error()
		}
		response.Stages = append(response.Stages, stageResponse)
	}
	serveJSON(response, w)
}

// SyncItemRequest is the body of a single-item re-sync request.
type SyncItemRequest struct {
	ItemId string `json:"ItemId"`
}

// /Sync/Item
//
// syncItemHandler fetches and upserts one item and its playback info,
// independent of a full sync.
func (a *Api) syncItemHandler(w http.ResponseWriter, r *http.Request) {
	var request SyncItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.ItemId == "" {
		apierror(w, "The ItemId field is required", http.StatusBadRequest)
		return
	}

	a.syncRunning.Lock()
	defer a.syncRunning.Unlock()

	if err := a.engine.SyncItem(r.Context(), request.ItemId); err != nil {
		switch {
		case errors.Is(err, syncengine.ErrItemNotFound):
			apierror(w, "Unable to find item", http.StatusNotFound)
		case errors.Is(err, syncengine.ErrNoLibraries):
			apierror(w, "No libraries synced yet", http.StatusConflict)
		default:
			apierror(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	serveJSON(map[string]string{"Status": "Item synced"}, w)
}

// /Sync/Activity
//
// syncActivityHandler runs only the incremental activity ingestion.
func (a *Api) syncActivityHandler(w http.ResponseWriter, r *http.Request) {
	a.syncRunning.Lock()
	defer a.syncRunning.Unlock()

	stats, err := a.engine.SyncActivity(r.Context())
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveJSON(map[string]int{"Ingested": stats.Inserted}, w)
}

// /Sync/Log
func (a *Api) syncLogHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := a.repo.SyncLogs(r.Context(), queryLimit(r, 50))
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveJSON(entries, w)
}

// /Activity
func (a *Api) activityHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := a.repo.Activity(r.Context(), queryLimit(r, 100))
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveJSON(rows, w)
}

// /Stats/Libraries
func (a *Api) libraryStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.repo.LibraryStats(r.Context())
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveJSON(stats, w)
}

// SearchResponse is one search hit.
type SearchResponse struct {
	Id   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"`
}

// /Search?q=...
func (a *Api) searchHandler(w http.ResponseWriter, r *http.Request) {
	if a.search == nil {
		apierror(w, "Search not enabled", http.StatusNotImplemented)
		return
	}
	query := r.URL.Query().Get("q")
	ids, err := a.search.Search(r.Context(), query, queryLimit(r, 25))
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}

	items, err := a.repo.Items(r.Context())
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}
	response := make([]SearchResponse, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			response = append(response, SearchResponse{
				Id:   items[i].ID,
				Name: items[i].Name,
				Type: items[i].Type,
			})
		}
	}
	serveJSON(response, w)
}

// /Proxy/Items/{item}/Images/{type}?width=...
//
// imageProxyHandler streams an item image from the remote server, resized
// and cached locally.
func (a *Api) imageProxyHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))

	img, contentType, err := a.client.FetchImage(r.Context(), vars["item"], vars["type"])
	if err != nil {
		apierror(w, "Unable to fetch image", http.StatusBadGateway)
		return
	}
	resized, err := a.imageresizer.Resize(img, width)
	if err != nil {
		apierror(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if width != 0 {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("cache-control", "max-age=2592000")
	w.Write(resized)
}

// ScheduledSync runs a full sync every interval, serialized with manual
// triggers. Runs until the process exits.
func (a *Api) ScheduledSync(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		a.syncRunning.Lock()
		if _, err := a.engine.FullSync(context.Background(), "scheduled"); err != nil {
			log.Printf("scheduled sync: %s", err)
		}
		a.syncRunning.Unlock()
	}
}

func queryLimit(r *http.Request, fallback int) int {
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		return limit
	}
	return fallback
}
