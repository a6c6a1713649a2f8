package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/ytexport/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test store
func createTestStore(t *testing.T) *Store {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err, "should create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// TestGetOptions_Default verifies defaults are returned when nothing is saved
func TestGetOptions_Default(t *testing.T) {
	store := createTestStore(t)

	opts, err := store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, video.DefaultOptions(), opts)
}

// TestGetOptions_ConfiguredDefault verifies configured defaults apply until
// options are saved
func TestGetOptions_ConfiguredDefault(t *testing.T) {
	store := createTestStore(t)
	configured := video.Options{IncludeDescriptions: true}
	store.SetDefaultOptions(configured)

	opts, err := store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, configured, opts)

	saved := video.Options{IncludeThumbnails: true}
	require.NoError(t, store.SaveOptions(saved))
	opts, err = store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, saved, opts, "saved options win over configured defaults")
}

// TestSaveOptions_Overwrites verifies saving replaces old values
func TestSaveOptions_Overwrites(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.SaveOptions(video.Options{IncludeThumbnails: true}))
	want := video.Options{IncludeDescriptions: true, IncludeViewCounts: false}
	require.NoError(t, store.SaveOptions(want))

	got, err := store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestRecordExport_AssignsIDAndTime verifies missing fields are filled in
func TestRecordExport_AssignsIDAndTime(t *testing.T) {
	store := createTestStore(t)

	e := &Export{Path: "/tmp/a.csv", Source: "https://www.youtube.com/@gopher", PageType: video.PageChannel, VideoCount: 12}
	require.NoError(t, store.RecordExport(e))

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

// TestListExports_NewestFirst verifies ordering and limit
func TestListExports_NewestFirst(t *testing.T) {
	store := createTestStore(t)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	for i, path := range []string{"first.csv", "second.csv", "third.csv"} {
		require.NoError(t, store.RecordExport(&Export{
			Path:       path,
			Source:     "feed.xml",
			PageType:   video.PageChannel,
			VideoCount: i + 1,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := store.ListExports(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third.csv", all[0].Path)
	assert.Equal(t, 3, all[0].VideoCount)
	assert.Equal(t, video.PageChannel, all[0].PageType)
	assert.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	limited, err := store.ListExports(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "second.csv", limited[1].Path)
}

func TestListExports_Empty(t *testing.T) {
	store := createTestStore(t)

	exports, err := store.ListExports(10)
	require.NoError(t, err)
	assert.NotNil(t, exports)
	assert.Empty(t, exports)
}
