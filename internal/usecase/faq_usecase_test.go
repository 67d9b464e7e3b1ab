package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"telehealth-consult/internal/faq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultMatcher(t *testing.T) *faq.Matcher {
	t.Helper()
	entries, err := faq.DefaultCorpus()
	require.NoError(t, err)
	return faq.NewMatcher(entries)
}

func TestFAQSearchSelfMatch(t *testing.T) {
	uc := NewFAQUsecase(newTestLogger(), newDefaultMatcher(t), FAQOptions{})

	res, err := uc.Search(context.Background(), "What are the symptoms of diabetes?", 0)
	require.NoError(t, err)
	require.Len(t, res.Results, faq.DefaultK)
	assert.Equal(t, "What are the symptoms of diabetes?", res.Results[0].Question)
	assert.InDelta(t, 1.0, res.Results[0].Score, 1e-9)
}

func TestFAQSearchWithoutCorpus(t *testing.T) {
	uc := NewFAQUsecase(newTestLogger(), nil, FAQOptions{})

	_, err := uc.Search(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestFAQReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.yaml")
	corpus := "entries:\n  - question: Where is the pharmacy?\n    answer: Ground floor.\n"
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0o644))

	uc := NewFAQUsecase(newTestLogger(), newDefaultMatcher(t), FAQOptions{CorpusPath: path, DefaultK: 5})
	ctx := context.Background()

	_, err := uc.Reload(ctx, patientSession())
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := uc.Reload(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := uc.Search(ctx, "pharmacy", 0)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Ground floor.", res.Results[0].Answer)

	// a broken file keeps the loaded corpus
	require.NoError(t, os.WriteFile(path, []byte("entries: [{question: ''}]"), 0o644))
	_, err = uc.Reload(ctx, adminSession())
	assert.Error(t, err)

	res, err = uc.Search(ctx, "pharmacy", 0)
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
}
