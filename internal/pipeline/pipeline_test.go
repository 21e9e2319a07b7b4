package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/pinfall/internal/history"
	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/ogimage"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/storage"
	"github.com/starford/pinfall/internal/testutil"
)

var buildTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return buildTime }

func writeEvent(t *testing.T, store storage.Provider, dir string, meta models.Meta, files map[string]string) {
	t.Helper()
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, store.Write(dir+"/meta.json", data))
	for name, content := range files {
		require.NoError(t, store.Write(dir+"/"+name, []byte(content)))
	}
}

func newBuilder(t *testing.T, opts ...Option) (*Builder, storage.Provider, storage.Provider) {
	t.Helper()
	_, data := testutil.TestTree(t)
	_, dist := testutil.TestTree(t)
	pages, err := render.New(render.WithClock(clock))
	require.NoError(t, err)

	base := []Option{
		WithClock(clock),
		WithSiteURL("https://events.example/"),
		WithHistory(history.Static{Default: history.Revision{Commit: "abc", Timestamp: buildTime}}),
		WithImageCache(ogimage.NopCache{}),
	}
	return New(data, dist, pages, testutil.Logger(), append(base, opts...)...), data, dist
}

const resultsCSV = " Place \tTeam\tPlayer 1\tPlayer 2\tHCP Series\n" +
	"2\tSpares\tC\tD\t1,390\n" +
	"1\tStrikers\tA\tB\t1,402\n" +
	"3\tGutters\tE\t\t1,100\n" +
	"4\tSplits\tG\tH\t999\n"

func TestProcessEvent(t *testing.T) {
	b, data, dist := newBuilder(t)
	writeEvent(t, data, "open/2025", models.Meta{
		Name:   "Spring Open",
		Format: "doubles-standard",
		Dates:  []string{"01/03/2025"},
		Files: []models.FileSpec{
			{Name: "Results", File: "results.csv"},
			{Name: "Broken", File: "missing.csv"},
			{File: "extra.csv"},
		},
	}, map[string]string{
		"results.csv": resultsCSV,
		"extra.csv":   "Name\tPins\nx\t10\n",
	})

	ref := models.EventRef{Slug: "open", Year: "2025", Dir: "open/2025", MetaPath: "open/2025/meta.json"}
	res, err := b.ProcessEvent(context.Background(), ref)
	require.NoError(t, err)

	require.Len(t, res.Files, 3)
	assert.Error(t, res.Files[1].Err)
	assert.Equal(t, "results", res.Files[0].Config.Format)

	require.Len(t, res.Tabs, 2)
	results := res.Tabs[0]
	assert.Equal(t, "results", results.ID)
	assert.True(t, results.IsActive)
	assert.Equal(t, "Place", results.DefaultSortKey)
	assert.Equal(t, "1", results.Rows[0]["Place"])
	assert.Equal(t, "2", results.RowsOriginal[0]["Place"])

	extra := res.Tabs[1]
	assert.Equal(t, "tab-2", extra.ID)
	assert.Equal(t, "Tab 2", extra.Name)
	assert.False(t, extra.IsActive)
	assert.Equal(t, "Name", extra.DefaultSortKey)

	assert.Equal(t, []models.PodiumEntry{
		{Place: 1, Players: "A & B", Score: "1,402"},
		{Place: 2, Players: "C & D", Score: "1,390"},
		{Place: 3, Players: "E", Score: "1,100"},
	}, res.OG.Podium)

	src, err := data.Read("open/2025/meta-lock.json")
	require.NoError(t, err)
	copied, err := dist.Read("events/open/2025/meta-lock.json")
	require.NoError(t, err)
	assert.Equal(t, src, copied)
	assert.NotContains(t, string(src), "missing.csv")

	page, err := dist.Read("events/open/2025/index.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "Spring Open")
	assert.Contains(t, string(page), "https://events.example/events/open/2025/")

	og, err := dist.Read("og-data/events/open/2025.json")
	require.NoError(t, err)
	var ogData models.OGData
	require.NoError(t, json.Unmarshal(og, &ogData))
	assert.Equal(t, "Spring Open", ogData.Name)
	require.NotNil(t, ogData.LastUpdated)
}

func TestBuild(t *testing.T) {
	_, static := testutil.TestTree(t)
	require.NoError(t, static.Write("style/index.css", []byte("body{}")))
	require.NoError(t, static.Write("assets/favicon.ico", []byte("ico")))
	_, root := testutil.TestTree(t)
	require.NoError(t, root.Write("_headers", []byte("/*\n  X-Frame-Options: DENY\n")))

	b, data, dist := newBuilder(t, WithStatic(static), WithHeaders(root, "_headers"), WithConcurrency(2))
	require.NoError(t, dist.Write("stale.html", []byte("old")))

	writeEvent(t, data, "open/2024", models.Meta{Name: "Open 2024", Dates: []string{"10/03/2024"}}, nil)
	writeEvent(t, data, "masters/2025", models.Meta{Name: "Masters", Dates: []string{"01/02/2025"}}, nil)
	writeEvent(t, data, "open/2025", models.Meta{
		Name:  "Open 2025",
		Dates: []string{"01/03/2025", "02/03/2025"},
		Files: []models.FileSpec{{Name: "Results", File: "results.csv"}},
	}, map[string]string{"results.csv": resultsCSV})
	require.NoError(t, data.Write("empty/2025/notes.txt", []byte("no meta")))

	report, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Events, 3)
	assert.Equal(t, "open/2025", report.Events[0].Ref.Dir)
	assert.Equal(t, "masters/2025", report.Events[1].Ref.Dir)
	assert.Equal(t, "open/2024", report.Events[2].Ref.Dir)

	assert.False(t, dist.Exists("stale.html"))
	for _, p := range []string{
		"index.html", "404.html", "og-data/index.json", "og/index.png",
		"og/open/2025.png", "sitemap.xml", "robots.txt", "style/index.css",
		"favicon.ico", "_headers", "events/masters/2025/index.html", "js/table.js",
	} {
		assert.True(t, dist.Exists(p), p)
	}

	script, err := dist.Read("js/table.js")
	require.NoError(t, err)
	assert.Contains(t, string(script), "table-state")
	assert.Contains(t, string(script), "data-sort-key")

	index, err := dist.Read("index.html")
	require.NoError(t, err)
	html := string(index)
	assert.Less(t, strings.Index(html, "Open 2025"), strings.Index(html, "Masters"))
	assert.Less(t, strings.Index(html, "Masters"), strings.Index(html, "Open 2024"))

	var ogIndex models.OGIndex
	raw, err := dist.Read("og-data/index.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &ogIndex))
	assert.Equal(t, 3, ogIndex.EventCount)
	require.NotNil(t, ogIndex.LatestEventName)
	assert.Equal(t, "Open 2025", *ogIndex.LatestEventName)

	sitemap, err := dist.Read("sitemap.xml")
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "<loc>https://events.example/events/open/2024/</loc>")
}

func TestBuild_InvalidMetaAborts(t *testing.T) {
	b, data, _ := newBuilder(t)
	require.NoError(t, data.Write("bad/2025/meta.json", []byte("{")))

	_, err := b.Build(context.Background())
	assert.Error(t, err)
}

func TestResolveConfig(t *testing.T) {
	assert.Equal(t, "singles", ResolveConfig(models.FileSpec{File: "singles.csv"}).Format)
	assert.Equal(t, "", ResolveConfig(models.FileSpec{File: "other.csv"}).Format)

	explicit := models.FileSpec{File: "results.csv"}
	explicit.Format = "singles"
	assert.Equal(t, "singles", ResolveConfig(explicit).Format)
}

func TestSortByDate(t *testing.T) {
	mk := func(dir string, dates ...string) *EventResult {
		return &EventResult{Ref: models.EventRef{Dir: dir}, Meta: models.Meta{Dates: dates}}
	}
	events := []*EventResult{mk("a"), mk("b", "01/01/2024"), mk("c", "15/06/2025"), mk("d", "01/01/2024")}
	SortByDate(events)

	var got []string
	for _, e := range events {
		got = append(got, e.Ref.Dir)
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, got)
}

func TestLeadingInt(t *testing.T) {
	n, ok := leadingInt("1st")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	_, ok = leadingInt("DNF")
	assert.False(t, ok)
}

func TestIngest_ReadsFromDataTree(t *testing.T) {
	b, data, _ := newBuilder(t)
	require.NoError(t, data.Write("open/2025/results.csv", []byte(resultsCSV)))

	ref := models.EventRef{Slug: "open", Year: "2025", Dir: "open/2025"}
	got := b.Ingest(ref, []models.FileSpec{
		{File: "results.csv"},
		{File: "../../../outside.csv"},
	})

	require.Len(t, got, 2)
	require.True(t, got[0].OK())
	assert.Len(t, got[0].Data.Rows, 4)
	assert.Equal(t, "Place", got[0].Data.Headers[0])
	assert.Error(t, got[1].Err)
	assert.False(t, got[1].OK())
}
