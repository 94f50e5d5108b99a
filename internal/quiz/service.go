package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"quiz-pocket/internal/gateway"
)

// Gateway is the slice of the remote service the read-through cache
// needs. *gateway.Client satisfies it.
type Gateway interface {
	Categories(ctx context.Context) ([]gateway.RawCategory, error)
	Banners(ctx context.Context) ([]gateway.RawBanner, error)
	Topics(ctx context.Context, categoryID int) ([]gateway.RawTopic, error)
	Topic(ctx context.Context, id int) (gateway.RawTopic, error)
	Questions(ctx context.Context, topicID int) ([]gateway.RawQuestion, error)
}

// Oracle reports a point-in-time connectivity snapshot. Every read
// re-queries it; the result is never cached across calls.
type Oracle interface {
	Online(ctx context.Context) bool
}

// AssetResolver turns a remote image URL into a best-available source,
// downloading as a side effect. It never fails; on trouble it hands
// back the remote URL.
type AssetResolver interface {
	Resolve(ctx context.Context, url string) string
}

// ServiceConfig wires a Service. Catalog, Gateway and Oracle are
// required; Assets and Logger may be nil.
type ServiceConfig struct {
	Catalog CatalogRepository
	Gateway Gateway
	Oracle  Oracle
	Assets  AssetResolver
	Logger  *slog.Logger

	// KeepCacheOnEmptyFetch skips persisting a successful fetch that
	// returned zero rows, protecting a warm cache from a flaky server.
	// Off by default: the fresh empty result overwrites the cache.
	KeepCacheOnEmptyFetch bool
}

// Service applies the read-through policy to every readable
// collection: online reads fetch, persist and return fresh data;
// offline reads and failed fetches fall back to the local store. A
// gateway failure only reaches the caller when the local fallback
// fails too, as ErrNoData.
type Service struct {
	catalog     CatalogRepository
	gateway     Gateway
	oracle      Oracle
	assets      AssetResolver
	logger      *slog.Logger
	keepOnEmpty bool

	persists sync.WaitGroup
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:     cfg.Catalog,
		gateway:     cfg.Gateway,
		oracle:      cfg.Oracle,
		assets:      cfg.Assets,
		logger:      logger,
		keepOnEmpty: cfg.KeepCacheOnEmptyFetch,
	}
}

// Flush waits for detached persistence tasks kicked off by earlier
// reads. Call before shutdown; reads never require it.
func (s *Service) Flush() {
	s.persists.Wait()
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if !s.oracle.Online(ctx) {
		return s.cachedCategories(ctx, nil)
	}

	raw, err := s.gateway.Categories(ctx)
	if err != nil {
		s.logger.Warn("category fetch failed, serving cache", "error", err)
		return s.cachedCategories(ctx, fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	categories := BuildCategories(raw)
	s.detach(ctx, "categories", len(categories), func(pctx context.Context) error {
		for i := range categories {
			s.warmAsset(pctx, categories[i].Image)
		}
		return s.catalog.ReplaceCategories(pctx, categories)
	})
	return categories, nil
}

func (s *Service) Banners(ctx context.Context) ([]Banner, error) {
	if !s.oracle.Online(ctx) {
		banners, err := s.catalog.GetBanners(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		return banners, nil
	}

	raw, err := s.gateway.Banners(ctx)
	if err != nil {
		s.logger.Warn("banner fetch failed, serving cache", "error", err)
		banners, cacheErr := s.catalog.GetBanners(ctx)
		if cacheErr != nil {
			return nil, fmt.Errorf("%w: fetch: %v; cache: %v", ErrNoData, err, cacheErr)
		}
		return banners, nil
	}

	banners := BuildBanners(raw)
	s.detach(ctx, "banners", len(banners), func(pctx context.Context) error {
		for i := range banners {
			s.warmAsset(pctx, banners[i].Image)
		}
		return s.catalog.ReplaceBanners(pctx, banners)
	})
	return banners, nil
}

func (s *Service) Topics(ctx context.Context, categoryID int) ([]Topic, error) {
	if !s.oracle.Online(ctx) {
		return s.cachedTopics(ctx, categoryID, nil)
	}

	raw, err := s.gateway.Topics(ctx, categoryID)
	if err != nil {
		s.logger.Warn("topic fetch failed, serving cache", "category", categoryID, "error", err)
		return s.cachedTopics(ctx, categoryID, fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	topics := BuildTopics(raw)
	for i := range topics {
		if topics[i].CategoryID == 0 {
			topics[i].CategoryID = categoryID
		}
	}
	s.detach(ctx, "topics", len(topics), func(pctx context.Context) error {
		resolved := make([]Topic, len(topics))
		copy(resolved, topics)
		for i := range resolved {
			resolved[i].LocalImagePath = s.localAsset(pctx, resolved[i].Image)
		}
		return s.catalog.ReplaceTopics(pctx, categoryID, resolved)
	})
	return topics, nil
}

func (s *Service) Topic(ctx context.Context, id int) (Topic, error) {
	if !s.oracle.Online(ctx) {
		return s.cachedTopic(ctx, id, nil)
	}

	raw, err := s.gateway.Topic(ctx, id)
	if err != nil {
		s.logger.Warn("topic detail fetch failed, serving cache", "topic", id, "error", err)
		return s.cachedTopic(ctx, id, fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	topic := BuildTopic(raw)
	if topic.ID == 0 {
		topic.ID = id
	}
	s.detach(ctx, "topic", 1, func(pctx context.Context) error {
		persisted := topic
		persisted.LocalImagePath = s.localAsset(pctx, persisted.Image)
		return s.catalog.UpsertTopic(pctx, persisted)
	})
	return topic, nil
}

func (s *Service) Questions(ctx context.Context, topicID int) ([]Question, error) {
	if !s.oracle.Online(ctx) {
		return s.cachedQuestions(ctx, topicID, nil)
	}

	raw, err := s.gateway.Questions(ctx, topicID)
	if err != nil {
		s.logger.Warn("question fetch failed, serving cache", "topic", topicID, "error", err)
		return s.cachedQuestions(ctx, topicID, fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	questions := BuildQuestions(raw)
	for i := range questions {
		if questions[i].TopicID == 0 {
			questions[i].TopicID = topicID
		}
	}
	s.detach(ctx, "questions", len(questions), func(pctx context.Context) error {
		return s.catalog.ReplaceQuestions(pctx, topicID, questions)
	})
	return questions, nil
}

func (s *Service) cachedCategories(ctx context.Context, fetchErr error) ([]Category, error) {
	categories, err := s.catalog.GetCategories(ctx)
	if err != nil {
		return nil, noData(fetchErr, err)
	}
	return categories, nil
}

func (s *Service) cachedTopics(ctx context.Context, categoryID int, fetchErr error) ([]Topic, error) {
	topics, err := s.catalog.GetTopicsByCategory(ctx, categoryID)
	if err != nil {
		return nil, noData(fetchErr, err)
	}
	return topics, nil
}

func (s *Service) cachedTopic(ctx context.Context, id int, fetchErr error) (Topic, error) {
	topic, err := s.catalog.GetTopicByID(ctx, id)
	if err != nil {
		return Topic{}, noData(fetchErr, err)
	}
	return topic, nil
}

func (s *Service) cachedQuestions(ctx context.Context, topicID int, fetchErr error) ([]Question, error) {
	questions, err := s.catalog.GetQuestionsByTopic(ctx, topicID)
	if err != nil {
		return nil, noData(fetchErr, err)
	}
	return questions, nil
}

// detach runs a persistence task on its own goroutine with a context
// that survives caller cancellation: an abandoned read still warms the
// cache for future reads. Empty results honor the overwrite policy.
func (s *Service) detach(ctx context.Context, collection string, fetched int, persist func(context.Context) error) {
	if fetched == 0 && s.keepOnEmpty {
		s.logger.Info("empty fetch, keeping cached rows", "collection", collection)
		return
	}

	pctx := context.WithoutCancel(ctx)
	s.persists.Add(1)
	go func() {
		defer s.persists.Done()
		if err := persist(pctx); err != nil {
			s.logger.Error("cache persist failed", "collection", collection, "error", err)
		}
	}()
}

func (s *Service) warmAsset(ctx context.Context, url string) {
	if s.assets == nil || url == "" {
		return
	}
	s.assets.Resolve(ctx, url)
}

// localAsset resolves an image and reports the local path, or "" when
// the resolver fell back to a remote URL.
func (s *Service) localAsset(ctx context.Context, url string) string {
	if s.assets == nil || url == "" {
		return ""
	}
	resolved := s.assets.Resolve(ctx, url)
	if strings.Contains(resolved, "://") {
		return ""
	}
	return resolved
}

func noData(fetchErr, cacheErr error) error {
	if fetchErr != nil {
		return fmt.Errorf("%w: fetch: %v; cache: %v", ErrNoData, fetchErr, cacheErr)
	}
	return fmt.Errorf("%w: %v", ErrNoData, cacheErr)
}
