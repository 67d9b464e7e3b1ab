package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"telehealth-consult/internal/converter"
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/faq"

	"github.com/sirupsen/logrus"
)

var ErrSearchFailed = errors.New("faq search failed")

type FAQUsecase interface {
	Search(ctx context.Context, query string, k int) (*dto.FAQSearchResponse, error)
	Reload(ctx context.Context, session *entity.Session) (int, error)
}

type FAQOptions struct {
	CorpusPath string
	DefaultK   int
	MinScore   float64
}

type faqUsecase struct {
	log  *logrus.Logger
	opts FAQOptions

	mu      sync.RWMutex
	matcher *faq.Matcher
}

func NewFAQUsecase(log *logrus.Logger, matcher *faq.Matcher, opts FAQOptions) FAQUsecase {
	if opts.DefaultK <= 0 {
		opts.DefaultK = faq.DefaultK
	}
	return &faqUsecase{
		log:     log,
		opts:    opts,
		matcher: matcher,
	}
}

// Search ranks the corpus against the query. Any failure is reported as
// ErrSearchFailed so callers can tell it apart from an empty result.
func (u *faqUsecase) Search(ctx context.Context, query string, k int) (*dto.FAQSearchResponse, error) {
	if k <= 0 {
		k = u.opts.DefaultK
	}

	u.mu.RLock()
	matcher := u.matcher
	u.mu.RUnlock()

	matches, err := matcher.Search(query, k, u.opts.MinScore)
	if err != nil {
		u.log.Warnf("Failed to search faq: %+v", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	return converter.FAQMatchesToResponse(query, matches), nil
}

// Reload re-reads the corpus and swaps the matcher. The previous matcher stays
// in place when the file cannot be loaded.
func (u *faqUsecase) Reload(ctx context.Context, session *entity.Session) (int, error) {
	if !session.IsAdmin() {
		return 0, ErrForbidden
	}

	entries, err := faq.LoadCorpus(u.opts.CorpusPath)
	if err != nil {
		u.log.Warnf("Failed to reload faq corpus: %+v", err)
		return 0, err
	}
	matcher := faq.NewMatcher(entries)

	u.mu.Lock()
	u.matcher = matcher
	u.mu.Unlock()

	u.log.WithField("entries", matcher.Len()).Info("FAQ corpus reloaded")
	return matcher.Len(), nil
}
