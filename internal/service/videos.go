package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/retry"
)

const (
	// MinTrainingVideos is the minimum number of parseable video IDs a
	// training request must carry.
	MinTrainingVideos = 3

	videoFetchTimeout = 30 * time.Second
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoService fetches video metadata from the platform's Data API and
// verifies channel ownership.
type VideoService struct {
	client  *resty.Client
	baseURL string
}

// NewVideoService creates a new VideoService.
func NewVideoService(cfg *config.VideoAPIConfig) *VideoService {
	client := resty.New()
	client.SetTimeout(videoFetchTimeout)

	return &VideoService{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// ParseVideoID extracts the platform-native video ID from the URL shapes
// users paste: canonical watch URLs, short-form share URLs, shorts URLs,
// embed URLs, and bare IDs. Returns empty if nothing parseable is found.
func ParseVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if videoIDPattern.MatchString(raw) {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDPattern.MatchString(id) {
			return id
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); videoIDPattern.MatchString(id) {
			return id
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				if videoIDPattern.MatchString(id) {
					return id
				}
			}
		}
	}
	return ""
}

// ParseVideoIDs extracts IDs from a heterogeneous URL list, dropping
// duplicates and unparseable entries.
func ParseVideoIDs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	ids := make([]string, 0, len(urls))
	for _, raw := range urls {
		id := ParseVideoID(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Data API response shapes (the subset the pipeline reads).
type videoListResponse struct {
	Items []videoItem `json:"items"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		ChannelID            string   `json:"channelId"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Tags                 []string `json:"tags"`
		DefaultAudioLanguage string   `json:"defaultAudioLanguage"`
		Thumbnails           struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	TopicDetails struct {
		TopicCategories []string `json:"topicCategories"`
	} `json:"topicDetails"`
}

// FetchVideos parses urls into IDs (failing with ErrInputValidation below
// MinTrainingVideos), fetches metadata for all IDs in one batch call with
// bounded retries, then verifies every returned video belongs to channelID.
// The ownership check runs after the whole batch is fetched: one foreign
// video fails the batch rather than being silently excluded.
func (s *VideoService) FetchVideos(ctx context.Context, urls []string, accessToken, channelID string) ([]domain.VideoRecord, error) {
	ids := ParseVideoIDs(urls)
	if len(ids) < MinTrainingVideos {
		return nil, domain.NewError(domain.ErrInputValidation,
			"need at least %d valid video URLs, got %d", MinTrainingVideos, len(ids))
	}

	policy := retry.Policy{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
		Backoff:     retry.BackoffExponential,
	}
	items, err := retry.Do(ctx, policy, func(ctx context.Context) ([]videoItem, error) {
		return s.fetchBatch(ctx, ids, accessToken)
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.VideoRecord, 0, len(items))
	for _, item := range items {
		if item.Snippet.ChannelID != channelID {
			return nil, domain.NewError(domain.ErrOwnershipViolation,
				"video %s belongs to channel %s, not the connected channel", item.ID, item.Snippet.ChannelID)
		}
		records = append(records, toVideoRecord(item))
	}
	if len(records) == 0 {
		return nil, domain.NewError(domain.ErrInputValidation, "video platform returned no metadata for the requested IDs")
	}
	return records, nil
}

// fetchBatch issues the single batch metadata call. Timeouts, 5xx, and
// rate limits come back retryable; auth and validation failures do not.
func (s *VideoService) fetchBatch(ctx context.Context, ids []string, accessToken string) ([]videoItem, error) {
	var result videoListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"part": "snippet,contentDetails,statistics,topicDetails",
			"id":   strings.Join(ids, ","),
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Get(s.baseURL + "/videos")
	if err != nil {
		return nil, domain.NewRetryable(domain.ErrExternalService, err, "video metadata request failed")
	}

	status := resp.StatusCode()
	switch {
	case status == 200:
		return result.Items, nil
	case status == 429 || status >= 500:
		return nil, domain.NewRetryable(domain.ErrExternalService,
			fmt.Errorf("HTTP %d", status), "video platform is unavailable")
	default:
		msg := fmt.Sprintf("HTTP %d", status)
		if result.Error != nil {
			msg = fmt.Sprintf("HTTP %d: %s", status, result.Error.Message)
		}
		return nil, domain.NewError(domain.ErrExternalService, "video metadata request rejected: %s", msg)
	}
}

func toVideoRecord(item videoItem) domain.VideoRecord {
	return domain.VideoRecord{
		ID:                   item.ID,
		ChannelID:            item.Snippet.ChannelID,
		Title:                item.Snippet.Title,
		Description:          item.Snippet.Description,
		Tags:                 item.Snippet.Tags,
		Duration:             item.ContentDetails.Duration,
		ThumbnailURL:         item.Snippet.Thumbnails.High.URL,
		DefaultAudioLanguage: item.Snippet.DefaultAudioLanguage,
		TopicCategories:      item.TopicDetails.TopicCategories,
		Stats: domain.VideoStats{
			Views:    parseCount(item.Statistics.ViewCount),
			Likes:    parseCount(item.Statistics.LikeCount),
			Comments: parseCount(item.Statistics.CommentCount),
		},
	}
}

func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// WatchURL rebuilds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
