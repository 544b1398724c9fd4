package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/adapter.report/internal/fsutil"
)

func TestNewManifest_FixedLayout(t *testing.T) {
	m := NewManifest("movie7")

	require.Len(t, m.Plots, 6)
	wantUIDs := []string{"0500001", "0500002", "0500003", "0500004", "0500005", "0500006"}
	wantImages := []string{
		"movie7_call_accuracy_box.png",
		"movie7_call_accuracy_dist.png",
		"movie7_call_accuracy_hist.png",
		"movie7_zmw_accuracy_box.png",
		"movie7_zmw_accuracy_dist.png",
		"movie7_zmw_accuracy_hist.png",
	}
	for i, p := range m.Plots {
		assert.Equal(t, wantUIDs[i], p.UID)
		assert.Equal(t, wantImages[i], p.Image)
		assert.Equal(t, p.ID, p.Title)
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)
	}
	assert.Equal(t, wantImages, m.Images())

	assert.Equal(t, "Adapter Call Accuracy Box Plots For Adapter Types", m.Plots[0].Caption)
	assert.Equal(t, "movie7 - Adapter Call Accuracy Box Plots", m.Plots[0].Title)
	assert.Equal(t, "ZMW Accuracy Histogram For Adapter Types", m.Plots[5].Caption)
	assert.Equal(t, "movie7 - ZMW Accuracy Histogram", m.Plots[5].ID)
}

func TestManifest_Marshal(t *testing.T) {
	data, err := NewManifest("p").Marshal()
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n \"plots\": [\n  {\n   \"caption\""), "unexpected layout:\n%s", s)
	assert.Contains(t, s, `"tags": []`)
	assert.Contains(t, s, `"tables": []`)

	// Keys appear in descriptor order.
	first := s[strings.Index(s, "{\n   "):strings.Index(s, "},")]
	order := []string{`"caption"`, `"image"`, `"tags"`, `"id"`, `"title"`, `"uid"`}
	last := -1
	for _, k := range order {
		i := strings.Index(first, k)
		require.Greater(t, i, last, "key %s out of order", k)
		last = i
	}

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["plots"], 6)
	assert.Len(t, decoded["tables"], 0)
	assert.Len(t, decoded["plots"][0], 6)
}

func TestManifest_Write(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()

	path, err := NewManifest("p").Write(mfs, "reports/run1")
	require.NoError(t, err)
	assert.Equal(t, "reports/run1/report.json", path)
	assert.True(t, mfs.Exists("reports/run1"))

	data, err := mfs.ReadFile(path)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Len(t, m.Plots, 6)
	assert.Equal(t, "0500004", m.Plots[3].UID)
}

func TestManifest_Verify(t *testing.T) {
	m := NewManifest("p")
	assert.NoError(t, m.Verify(m.Images()))

	assert.Error(t, m.Verify(m.Images()[:3]))

	swapped := m.Images()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.ErrorContains(t, m.Verify(swapped), "image 0")
}

func TestDatasets(t *testing.T) {
	assert.Equal(t, []string{"call_accuracy", "zmw_accuracy"}, Datasets())
}
