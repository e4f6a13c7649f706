package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/patrickmn/go-cache"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
	"newsnotes/cmd/internal/utils/uid"
)

const homeCacheKey = "home"

type NewsRepository interface {
	FindLatest(limit int) ([]*entity.News, error)
	FindByID(id int64) (*entity.News, error)
	CreateAll(items []*entity.News) error
}

type DefaultNewsService struct {
	NewsRepo    NewsRepository
	CommentRepo CommentRepository
	Guard       *policy.Guard
	Validate    *validator.Validate
	HomeCount   int

	// nil when caching is disabled
	homeCache *cache.Cache
}

// NewNewsService creates the service, a non-positive cacheTTL disables the
// home listing cache.
func NewNewsService(
	newsRepo NewsRepository,
	commentRepo CommentRepository,
	guard *policy.Guard,
	validate *validator.Validate,
	homeCount int,
	cacheTTL time.Duration,
) *DefaultNewsService {
	var homeCache *cache.Cache
	if cacheTTL > 0 {
		homeCache = cache.New(cacheTTL, cacheTTL*2)
	}

	return &DefaultNewsService{
		NewsRepo:    newsRepo,
		CommentRepo: commentRepo,
		Guard:       guard,
		Validate:    validate,
		HomeCount:   homeCount,
		homeCache:   homeCache,
	}
}

// GetHome lists the newest news, at most HomeCount of them.
func (n *DefaultNewsService) GetHome(requester policy.Requester) (*contract.HomeResponse, apierror.ErrorResponse) {
	if apierr := authorize(n.Guard, requester, policy.ActionReadPublic, nil); apierr != nil {
		return nil, apierr
	}

	if n.homeCache != nil {
		if cached, found := n.homeCache.Get(homeCacheKey); found {
			return cached.(*contract.HomeResponse), nil
		}
	}

	news, err := n.NewsRepo.FindLatest(n.HomeCount)
	if err != nil {
		log.Errorf("failed to fetch latest news: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := &contract.HomeResponse{ObjectList: make([]*contract.NewsResponse, len(news))}
	for i, item := range news {
		resp.ObjectList[i] = toNewsResponse(item)
	}

	if n.homeCache != nil {
		n.homeCache.Set(homeCacheKey, resp, cache.DefaultExpiration)
	}
	return resp, nil
}

// GetNewsDetail returns a news item with all of its comments, oldest first.
// Only authenticated requesters get the comment form.
func (n *DefaultNewsService) GetNewsDetail(requester policy.Requester, newsID int64) (*contract.NewsDetailResponse, apierror.ErrorResponse) {
	if apierr := authorize(n.Guard, requester, policy.ActionReadPublic, nil); apierr != nil {
		return nil, apierr
	}

	news, err := n.NewsRepo.FindByID(newsID)
	if err != nil {
		log.Errorf("failed to fetch news %d: %v", newsID, err)
		return nil, apierror.InternalServerError
	}

	if news == nil {
		return nil, apierror.NotFoundError
	}

	comments, err := n.CommentRepo.FindByNewsID(newsID)
	if err != nil {
		log.Errorf("failed to fetch comments of news %d: %v", newsID, err)
		return nil, apierror.InternalServerError
	}

	resp := &contract.NewsDetailResponse{
		News:     toNewsResponse(news),
		Comments: make([]*contract.CommentResponse, len(comments)),
	}
	for i, comment := range comments {
		resp.Comments[i] = toCommentResponse(comment)
	}

	if !requester.IsAnonymous() {
		resp.Form = contract.NewCommentForm(contract.NewsURL(newsID), "")
	}
	return resp, nil
}

// ImportNews reads a JSON array of news items and stores all of them, or none
// when any item is invalid.
func (n *DefaultNewsService) ImportNews(r io.Reader) (int, error) {
	var items []*contract.ImportNewsItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("failed to decode news items: %w", err)
	}

	now := utils.NowUTC()
	news := make([]*entity.News, len(items))
	for i, item := range items {
		if item == nil {
			return 0, fmt.Errorf("item %d: null item", i)
		}

		utils.Sanitize(item)
		if err := n.Validate.Struct(item); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}

		publishedAt, err := parseNewsDate(item.Date, now)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}

		news[i] = &entity.News{
			ID:          uid.Generate(),
			Title:       item.Title,
			Text:        item.Text,
			PublishedAt: publishedAt,
		}
	}

	if err := n.NewsRepo.CreateAll(news); err != nil {
		return 0, fmt.Errorf("failed to store news: %w", err)
	}

	if n.homeCache != nil {
		n.homeCache.Flush()
	}
	return len(news), nil
}

func parseNewsDate(raw string, fallback int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().UnixMilli(), nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q, expected RFC 3339 or YYYY-MM-DD", raw)
	}
	return t.UTC().UnixMilli(), nil
}
