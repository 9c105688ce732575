package jellyfin

import (
	"context"
)

// PlaybackReportingConfigFile identifies the playback reporting plugin in
// the remote plugin list.
const PlaybackReportingConfigFile = "Jellyfin.Plugin.PlaybackReporting.xml"

// Plugins returns the plugins installed on the remote server.
func (c *Client) Plugins(ctx context.Context) ([]JFPluginResponse, error) {
	var plugins []JFPluginResponse
	if err := c.get(ctx, "/Plugins", nil, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// HasPlaybackReporting reports whether the remote server has the playback
// reporting plugin installed.
func (c *Client) HasPlaybackReporting(ctx context.Context) (bool, error) {
	plugins, err := c.Plugins(ctx)
	if err != nil {
		return false, err
	}
	for _, plugin := range plugins {
		if plugin.ConfigurationFileName == PlaybackReportingConfigFile {
			return true, nil
		}
	}
	return false, nil
}

// ActivityQuery runs a query against the playback reporting plugin's
// activity log and returns the raw result rows.
func (c *Client) ActivityQuery(ctx context.Context, query string) (*JFCustomQueryResponse, error) {
	request := JFCustomQueryRequest{
		CustomQueryString: query,
	}
	var response JFCustomQueryResponse
	if err := c.post(ctx, "/user_usage_stats/submit_custom_query", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
