// ABOUTME: YouTube Data API v3 client implementing the engine's remote contract
// ABOUTME: Charges quota per call and maps API failures onto the engine taxonomy

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"yanger/engine"
	"yanger/playlist"
)

const pageSize = 50

// Client wraps the YouTube service with quota accounting. It implements
// engine.RemoteAPI for mutations and adds the paginated read path the TUI
// loads playlists through.
type Client struct {
	service *youtube.Service
	quota   *QuotaCounter
	debugf  func(format string, args ...interface{})
}

// NewClient wraps an authenticated YouTube service.
func NewClient(service *youtube.Service, quota *QuotaCounter, debugf func(string, ...interface{})) *Client {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &Client{service: service, quota: quota, debugf: debugf}
}

// charge reserves cost units before a call; the remote bills failures too.
func (c *Client) charge(cost int, what string) error {
	if !c.quota.Spend(cost) {
		c.debugf("[API] %s refused: %d units over budget", what, cost)

		return engine.ErrQuotaExceeded
	}

	return nil
}

// mapError converts a googleapi failure into the engine error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	for _, item := range gerr.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
			return engine.ErrQuotaExceeded
		}
	}

	return &engine.RemoteError{Status: gerr.Code, Message: gerr.Message}
}

// QuotaRemaining implements engine.RemoteAPI.
func (c *Client) QuotaRemaining() int { return c.quota.Remaining() }

// QuotaUsed returns the units spent today, for the status bar.
func (c *Client) QuotaUsed() int { return c.quota.Used() }

// QuotaLimit returns the daily budget, for the status bar.
func (c *Client) QuotaLimit() int { return c.quota.Limit() }

// AddVideo inserts a video into a playlist and returns the new
// playlist-item id.
func (c *Client) AddVideo(ctx context.Context, videoID, playlistID string) (string, error) {
	if err := c.charge(engine.CostInsert, "playlistItems.insert"); err != nil {
		return "", err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}

	created, err := c.service.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("add video %s to %s: %w", videoID, playlistID, mapError(err))
	}

	c.debugf("[API] Added video %s to %s as item %s", videoID, playlistID, created.Id)

	return created.Id, nil
}

// RemoveVideo deletes a playlist membership by its playlist-item id.
func (c *Client) RemoveVideo(ctx context.Context, playlistItemID string) error {
	if err := c.charge(engine.CostDelete, "playlistItems.delete"); err != nil {
		return err
	}

	if err := c.service.PlaylistItems.Delete(playlistItemID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("remove item %s: %w", playlistItemID, mapError(err))
	}

	return nil
}

// RenamePlaylist updates a playlist title. The update endpoint replaces
// the whole snippet, so the current one is fetched first.
func (c *Client) RenamePlaylist(ctx context.Context, playlistID, title string) error {
	if err := c.charge(engine.CostList, "playlists.list"); err != nil {
		return err
	}

	resp, err := c.service.Playlists.List([]string{"snippet"}).Id(playlistID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fetch playlist %s: %w", playlistID, mapError(err))
	}

	if len(resp.Items) == 0 {
		return &engine.RemoteError{Status: 404, Message: "playlist not found: " + playlistID}
	}

	if err := c.charge(engine.CostUpdate, "playlists.update"); err != nil {
		return err
	}

	update := resp.Items[0]
	update.Snippet.Title = title

	if _, err := c.service.Playlists.Update([]string{"snippet"}, update).Context(ctx).Do(); err != nil {
		return fmt.Errorf("rename playlist %s: %w", playlistID, mapError(err))
	}

	return nil
}

// RenameVideo updates a video title. Only videos owned by the account can
// be renamed; the remote rejects the rest with a 403.
func (c *Client) RenameVideo(ctx context.Context, videoID, title string) error {
	if err := c.charge(engine.CostList, "videos.list"); err != nil {
		return err
	}

	resp, err := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fetch video %s: %w", videoID, mapError(err))
	}

	if len(resp.Items) == 0 {
		return &engine.RemoteError{Status: 404, Message: "video not found: " + videoID}
	}

	if err := c.charge(engine.CostUpdate, "videos.update"); err != nil {
		return err
	}

	update := resp.Items[0]
	update.Snippet.Title = title

	if _, err := c.service.Videos.Update([]string{"snippet"}, update).Context(ctx).Do(); err != nil {
		return fmt.Errorf("rename video %s: %w", videoID, mapError(err))
	}

	return nil
}

// CreatePlaylist creates a playlist and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, title, description string, privacy playlist.Privacy) (string, error) {
	if err := c.charge(engine.CostInsert, "playlists.insert"); err != nil {
		return "", err
	}

	p := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       title,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{
			PrivacyStatus: string(privacy),
		},
	}

	created, err := c.service.Playlists.Insert([]string{"snippet", "status"}, p).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create playlist %q: %w", title, mapError(err))
	}

	return created.Id, nil
}

// DeletePlaylist deletes a playlist by id.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := c.charge(engine.CostDelete, "playlists.delete"); err != nil {
		return err
	}

	if err := c.service.Playlists.Delete(playlistID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete playlist %s: %w", playlistID, mapError(err))
	}

	return nil
}

// ListPlaylists returns the account's playlists across all pages.
func (c *Client) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	var out []playlist.Playlist

	pageToken := ""

	for {
		if err := c.charge(engine.CostList, "playlists.list"); err != nil {
			return nil, err
		}

		call := c.service.Playlists.List([]string{"snippet", "contentDetails", "status"}).
			Mine(true).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list playlists: %w", mapError(err))
		}

		for _, item := range resp.Items {
			p := playlist.Playlist{
				ID:          item.Id,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
			}

			if item.ContentDetails != nil {
				p.ItemCount = int(item.ContentDetails.ItemCount)
			}

			if item.Status != nil {
				p.Privacy = playlist.Privacy(item.Status.PrivacyStatus)
			}

			out = append(out, p)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

// ListVideos returns every video in a playlist, enriched with duration
// and view counts from the videos endpoint.
func (c *Client) ListVideos(ctx context.Context, playlistID string) ([]playlist.Video, error) {
	var out []playlist.Video

	pageToken := ""

	for {
		if err := c.charge(engine.CostList, "playlistItems.list"); err != nil {
			return nil, err
		}

		call := c.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list items of %s: %w", playlistID, mapError(err))
		}

		page := make([]playlist.Video, 0, len(resp.Items))

		for _, item := range resp.Items {
			v := playlist.Video{
				PlaylistItemID: item.Id,
				PlaylistID:     playlistID,
				Title:          item.Snippet.Title,
				Position:       int(item.Snippet.Position),
			}

			if item.Snippet.ResourceId != nil {
				v.ID = item.Snippet.ResourceId.VideoId
			}

			if t, err := parseTimestamp(item.Snippet.PublishedAt); err == nil {
				v.AddedAt = t
			}

			page = append(page, v)
		}

		if err := c.enrichVideos(ctx, page); err != nil {
			return nil, err
		}

		out = append(out, page...)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// enrichVideos fills duration, channel, and view counts via a batched
// videos.list call (one unit per page of ids).
func (c *Client) enrichVideos(ctx context.Context, videos []playlist.Video) error {
	if len(videos) == 0 {
		return nil
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		if v.ID != "" {
			ids = append(ids, v.ID)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	if err := c.charge(engine.CostList, "videos.list"); err != nil {
		return err
	}

	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("enrich videos: %w", mapError(err))
	}

	details := make(map[string]*youtube.Video, len(resp.Items))
	for _, item := range resp.Items {
		details[item.Id] = item
	}

	for i := range videos {
		item, ok := details[videos[i].ID]
		if !ok {
			continue // private or deleted video
		}

		if item.Snippet != nil {
			videos[i].ChannelTitle = item.Snippet.ChannelTitle
		}

		if item.ContentDetails != nil {
			videos[i].Duration = item.ContentDetails.Duration
		}

		if item.Statistics != nil {
			videos[i].ViewCount = int64(item.Statistics.ViewCount)
		}
	}

	return nil
}
