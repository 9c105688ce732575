package jellyfin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Library types that are never mirrored.
var excludedCollectionTypes = []string{"boxsets", "playlists"}

// Libraries returns the remote media folders, minus the excluded collection
// types. An error means the fetch failed, never an empty library set.
func (c *Client) Libraries(ctx context.Context) ([]JFItem, error) {
	var response JFItemsResponse
	if err := c.get(ctx, "/Library/MediaFolders", nil, &response); err != nil {
		return nil, err
	}
	libraries := make([]JFItem, 0, len(response.Items))
	for _, item := range response.Items {
		if slices.Contains(excludedCollectionTypes, item.CollectionType) {
			continue
		}
		libraries = append(libraries, item)
	}
	return libraries, nil
}

// itemPages walks a paginated Items query until the reported total is
// reached, preserving remote order. The total is re-read from every page:
// if the remote collection changes mid-walk we follow the latest total and
// accept an over- or under-fetch of up to one page. Any page failure fails
// the whole walk.
func (c *Client) itemPages(ctx context.Context, params url.Values) ([]JFItem, error) {
	params.Set("recursive", "true")
	params.Set("limit", strconv.Itoa(c.pageSize))

	items := []JFItem{}
	offset := 0
	total := c.pageSize
	for offset < total {
		params.Set("startIndex", strconv.Itoa(offset))
		var page JFItemsResponse
		if err := c.get(ctx, "/Items", params, &page); err != nil {
			return nil, err
		}
		total = page.TotalRecordCount
		offset += c.pageSize
		items = append(items, page.Items...)
	}
	return items, nil
}

// ItemsByParent returns all items of the given types below one parent.
func (c *Client) ItemsByParent(ctx context.Context, parentID string, types []string) ([]JFItem, error) {
	params := url.Values{}
	params.Set("parentId", parentID)
	params.Set("includeItemTypes", strings.Join(types, ","))
	return c.itemPages(ctx, params)
}

// ItemsOfType returns all items of the given types in the given libraries,
// with ParentId stamped to the owning library. The remote does not reliably
// report the media folder as ParentId on deeply nested items, so we stamp
// it ourselves per library walk.
func (c *Client) ItemsOfType(ctx context.Context, libraryIDs []string, types []string) ([]JFItem, error) {
	items := []JFItem{}
	for _, libraryID := range libraryIDs {
		libraryItems, err := c.ItemsByParent(ctx, libraryID, types)
		if err != nil {
			return nil, err
		}
		for i := range libraryItems {
			libraryItems[i].ParentId = libraryID
		}
		items = append(items, libraryItems...)
	}
	return items, nil
}

// ItemByID returns a single item by its remote ID. An unknown ID yields an
// empty slice, not an error.
func (c *Client) ItemByID(ctx context.Context, itemID string) ([]JFItem, error) {
	params := url.Values{}
	params.Set("ids", itemID)
	return c.itemPages(ctx, params)
}

// PlaybackInfo returns the media sources of an item. The remote requires a
// user context for this call.
func (c *Client) PlaybackInfo(ctx context.Context, itemID, userID string) ([]JFMediaSource, error) {
	params := url.Values{}
	params.Set("userId", userID)
	var response JFPlaybackInfoResponse
	if err := c.get(ctx, "/Items/"+itemID+"/PlaybackInfo", params, &response); err != nil {
		return nil, err
	}
	return response.MediaSources, nil
}

// ImageURL returns the remote URL of an item image, used by the image proxy.
func (c *Client) ImageURL(itemID, imageType string) string {
	return c.url + "/Items/" + url.PathEscape(itemID) + "/Images/" + url.PathEscape(imageType)
}

// FetchImage retrieves an item image from the remote server.
func (c *Client) FetchImage(ctx context.Context, itemID, imageType string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.ImageURL(itemID, imageType), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set(authHeader, c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: image %s returned status %d",
			ErrFetchFailed, itemID, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}
