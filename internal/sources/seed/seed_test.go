package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store/memory"
)

const seedYAML = `sites:
  - url: https://leetcode.com/problemset/
    title: LeetCode
    tags: [coding, daily]
  - url: https://news.ycombinator.com
  - url: chrome://settings
    title: Broken
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadParsesSeedFile(t *testing.T) {
	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	require.NoError(t, err)
	require.Len(t, f.Sites, 3)
	require.Equal(t, "https://leetcode.com/problemset/", f.Sites[0].URL)
	require.Equal(t, "LeetCode", f.Sites[0].Title)
	require.Equal(t, []string{"coding", "daily"}, f.Sites[0].Tags)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := NewLoader(writeSeedFile(t, "sites: [")).Load()
	require.Error(t, err)
}

func TestImportSkipsInvalidAndKnownURLs(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := logger.New("error", false)

	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	require.NoError(t, err)

	added, err := NewImporter(st, log).Import(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 2, added, "invalid chrome:// entry must be skipped")

	sites, err := st.GetSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	require.Equal(t, "https://leetcode.com/problemset", sites[0].URL, "stored form is normalized")
	require.Equal(t, "LeetCode", sites[0].Title)

	// Re-importing the same file adds nothing.
	added, err = NewImporter(st, log).Import(ctx, f)
	require.NoError(t, err)
	require.Zero(t, added)

	sites, err = st.GetSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
}

func TestImportDoesNotDuplicateExistingSites(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	existing, err := domain.NewSite("https://news.ycombinator.com", "HN", time.Now())
	require.NoError(t, err)
	require.NoError(t, st.SaveSite(ctx, existing))

	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	require.NoError(t, err)

	added, err := NewImporter(st, logger.New("error", false)).Import(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 1, added, "only the unseen URL is imported")
}
