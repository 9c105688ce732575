package jellyfin

import (
	"time"
)

// API definitions: https://swagger.emby.media/ & https://api.jellyfin.org/

type JFUser struct {
	Name             string       `json:"Name"`
	ServerId         string       `json:"ServerId"`
	Id               string       `json:"Id"`
	HasPassword      bool         `json:"HasPassword"`
	LastLoginDate    time.Time    `json:"LastLoginDate"`
	LastActivityDate time.Time    `json:"LastActivityDate"`
	Policy           JFUserPolicy `json:"Policy"`
}

type JFUserPolicy struct {
	IsAdministrator bool `json:"IsAdministrator"`
	IsHidden        bool `json:"IsHidden"`
	IsDisabled      bool `json:"IsDisabled"`
}

type JFPluginResponse struct {
	Name                  string `json:"Name"`
	Version               string `json:"Version"`
	ConfigurationFileName string `json:"ConfigurationFileName"`
	Description           string `json:"Description"`
	Id                    string `json:"Id"`
	Status                string `json:"Status"`
}

// JFItem is the subset of the remote item representation the mirror keeps.
type JFItem struct {
	Name              string    `json:"Name"`
	ServerID          string    `json:"ServerId"`
	Id                string    `json:"Id"`
	Type              string    `json:"Type"`
	CollectionType    string    `json:"CollectionType,omitempty"`
	ParentId          string    `json:"ParentId,omitempty"`
	SeriesId          string    `json:"SeriesId,omitempty"`
	SeasonId          string    `json:"SeasonId,omitempty"`
	IndexNumber       int       `json:"IndexNumber,omitempty"`
	ParentIndexNumber int       `json:"ParentIndexNumber,omitempty"`
	ProductionYear    int       `json:"ProductionYear,omitempty"`
	CommunityRating   float32   `json:"CommunityRating,omitempty"`
	RunTimeTicks      int64     `json:"RunTimeTicks,omitempty"`
	DateCreated       time.Time `json:"DateCreated,omitempty"`
	PremiereDate      time.Time `json:"PremiereDate,omitempty"`
	Overview          string    `json:"Overview,omitempty"`
}

// JFItemsResponse is the paginated list envelope of the Items endpoints.
type JFItemsResponse struct {
	Items            []JFItem `json:"Items"`
	TotalRecordCount int      `json:"TotalRecordCount"`
	StartIndex       int      `json:"StartIndex"`
}

// JFMediaSource describes one playable source of an item.
type JFMediaSource struct {
	Id        string `json:"Id"`
	Path      string `json:"Path"`
	Container string `json:"Container"`
	Size      int64  `json:"Size"`
	Bitrate   int64  `json:"Bitrate"`
	Protocol  string `json:"Protocol"`
}

// JFPlaybackInfoResponse is the response of /Items/{item}/PlaybackInfo.
type JFPlaybackInfoResponse struct {
	MediaSources  []JFMediaSource `json:"MediaSources"`
	PlaySessionId string          `json:"PlaySessionId"`
}

// JFCustomQueryRequest is the request body of the playback reporting
// plugin's custom query endpoint.
type JFCustomQueryRequest struct {
	CustomQueryString string `json:"CustomQueryString"`
	ReplaceUserId     bool   `json:"ReplaceUserId"`
}

// JFCustomQueryResponse is the playback reporting plugin's custom query
// result: column names plus rows of column values. "colums" is how the
// plugin spells it on the wire.
type JFCustomQueryResponse struct {
	Columns []string   `json:"colums"`
	Results [][]string `json:"results"`
	Message string     `json:"message"`
}
