package framework

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/framework/mocks"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGitHubSource_ListVersions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/povarna/agent-fwk/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"v1.1.0"},{"name":"v1.10.0"},{"name":"v1.2.0"},{"name":"nightly"}]`)
	})
	mux.HandleFunc("/repos/povarna/agent-fwk/releases/tags/v1.2.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v1.2.0","body":"Self-update endpoints","prerelease":true,"published_at":"2025-02-01T12:00:00Z"}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	logger := zerolog.Nop()
	source := NewGitHubSource("povarna", "agent-fwk", "", &logger)
	require.NoError(t, source.WithBaseURL(server.URL))

	versions, err := source.ListVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 4)

	var tags []string
	for _, v := range versions {
		tags = append(tags, v.Tag)
	}
	assert.Equal(t, []string{"v1.10.0", "v1.2.0", "v1.1.0", "nightly"}, tags)

	assert.Equal(t, "1.2.0", versions[1].Version)
	assert.Equal(t, "Self-update endpoints", versions[1].Changelog)
	assert.True(t, versions[1].IsPrerelease)
	assert.Equal(t, "2025-02-01T12:00:00Z", versions[1].ReleaseDate)
	assert.Empty(t, versions[0].Changelog)
}

func TestGitHubSource_ListVersionsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	logger := zerolog.Nop()
	source := NewGitHubSource("povarna", "agent-fwk", "token", &logger)
	require.NoError(t, source.WithBaseURL(server.URL))

	_, err := source.ListVersions(context.Background())
	assert.Error(t, err)
}

func TestSortVersions(t *testing.T) {
	versions := []models.FrameworkVersion{
		{Tag: "v1.2.0", Version: "1.2.0"},
		{Tag: "beta", Version: "beta"},
		{Tag: "v1.10.0", Version: "1.10.0"},
		{Tag: "v1.10.0-rc.1", Version: "1.10.0-rc.1"},
		{Tag: "alpha", Version: "alpha"},
	}

	SortVersions(versions)

	var got []string
	for _, v := range versions {
		got = append(got, v.Tag)
	}
	assert.Equal(t, []string{"v1.10.0", "v1.10.0-rc.1", "v1.2.0", "beta", "alpha"}, got)
}

func TestCachedSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockReleaseSource(ctrl)

	listing := []models.FrameworkVersion{{Tag: "v1.1.0", Version: "1.1.0"}}
	source.EXPECT().ListVersions(gomock.Any()).Return(listing, nil).Times(2)

	cached := NewCachedSource(source, time.Minute)

	for range 3 {
		versions, err := cached.ListVersions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, listing, versions)
	}

	cached.Invalidate()
	_, err := cached.ListVersions(context.Background())
	require.NoError(t, err)
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockReleaseSource(ctrl)

	gomock.InOrder(
		source.EXPECT().ListVersions(gomock.Any()).Return(nil, errors.New("rate limited")),
		source.EXPECT().ListVersions(gomock.Any()).Return([]models.FrameworkVersion{{Tag: "v1.0.0"}}, nil),
	)

	cached := NewCachedSource(source, time.Minute)

	_, err := cached.ListVersions(context.Background())
	assert.Error(t, err)

	versions, err := cached.ListVersions(context.Background())
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}
