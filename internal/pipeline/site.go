package pipeline

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/ogimage"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/storage"
)

// SortByDate orders events by their first date, most recent first. Events
// without a parseable date go last; ties keep their current order.
func SortByDate(events []*EventResult) {
	slices.SortStableFunc(events, func(a, b *EventResult) int {
		return cmp.Compare(render.FirstDate(b.Meta).Unix(), render.FirstDate(a.Meta).Unix())
	})
}

func (b *Builder) writeIndex(events []*EventResult) error {
	entries := make([]render.IndexEntry, len(events))
	for i, e := range events {
		entries[i] = render.IndexEntry{Slug: e.Ref.Slug, Year: e.Ref.Year, Meta: e.Meta, Lockfile: e.Lockfile}
	}
	page, err := b.pages.Index(b.siteURL, entries)
	if err != nil {
		return err
	}
	if err := b.dist.Write("index.html", page); err != nil {
		return fmt.Errorf("pipeline: write index: %w", err)
	}
	return nil
}

func (b *Builder) writeNotFound([]*EventResult) error {
	page, err := b.pages.NotFound(b.siteURL)
	if err != nil {
		return err
	}
	if err := b.dist.Write("404.html", page); err != nil {
		return fmt.Errorf("pipeline: write 404: %w", err)
	}
	return nil
}

// OGIndex summarizes the listing for its preview image.
func OGIndex(events []*EventResult) models.OGIndex {
	idx := models.OGIndex{EventCount: len(events)}
	if len(events) > 0 {
		latest := events[0]
		year := latest.Ref.Year
		idx.LatestEventYear = &year
		if latest.Meta.Name != "" {
			name := latest.Meta.Name
			idx.LatestEventName = &name
		}
	}
	return idx
}

func (b *Builder) writeOGIndex(events []*EventResult) error {
	data, err := json.MarshalIndent(OGIndex(events), "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: encode og index: %w", err)
	}
	if err := b.dist.Write("og-data/index.json", data); err != nil {
		return fmt.Errorf("pipeline: write og index: %w", err)
	}
	return nil
}

// writeImages draws the listing image and one image per event. A failed
// event image is logged and skipped.
func (b *Builder) writeImages(events []*EventResult) error {
	png, err := b.image(ogimage.IndexCard(OGIndex(events)))
	if err != nil {
		return err
	}
	if err := b.dist.Write("og/index.png", png); err != nil {
		return fmt.Errorf("pipeline: write og image: %w", err)
	}

	for _, e := range events {
		target := path.Join("og", e.Ref.Slug, e.Ref.Year+".png")
		png, err := b.image(ogimage.EventCard(e.OG))
		if err == nil {
			err = b.dist.Write(target, png)
		}
		if err != nil {
			b.logger.Warn("Failed to generate preview image",
				slog.String("event", e.Ref.Dir),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (b *Builder) image(card ogimage.Card) ([]byte, error) {
	return b.cache.GetOrPopulate(ogimage.Key(card), func() ([]byte, error) {
		return b.images.Render(card)
	})
}

func (b *Builder) writeSitemap(events []*EventResult) error {
	urls := make([]render.SitemapURL, 0, len(events)+1)
	urls = append(urls, render.SitemapURL{Loc: b.siteURL + "/", LastMod: b.now()})
	for _, e := range events {
		urls = append(urls, render.SitemapURL{
			Loc:     fmt.Sprintf("%s/events/%s/%s/", b.siteURL, e.Ref.Slug, e.Ref.Year),
			LastMod: e.Lockfile.LastChange(),
		})
	}
	if err := b.dist.Write("sitemap.xml", render.Sitemap(urls)); err != nil {
		return fmt.Errorf("pipeline: write sitemap: %w", err)
	}
	if err := b.dist.Write("robots.txt", render.Robots(b.siteURL)); err != nil {
		return fmt.Errorf("pipeline: write robots: %w", err)
	}
	return nil
}

// copyStatic copies static assets into the output root, plus the favicon and
// web manifest from assets/ and the host _headers file when present.
// writeAssets writes the built-in page scripts. The static directory is
// copied afterwards and may replace them.
func (b *Builder) writeAssets([]*EventResult) error {
	return fs.WalkDir(render.Assets(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(render.Assets(), p)
		if err != nil {
			return fmt.Errorf("pipeline: read asset %s: %w", p, err)
		}
		if err := b.dist.Write(p, data); err != nil {
			return fmt.Errorf("pipeline: write asset %s: %w", p, err)
		}
		return nil
	})
}

func (b *Builder) copyStatic([]*EventResult) error {
	if b.static == nil {
		b.logger.Warn("Static directory not configured, skipping")
	} else {
		copied, err := storage.Copy(b.static, "", b.dist, "")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("pipeline: copy static: %w", err)
		}
		b.logger.Info("Copied static assets", slog.Int("files", len(copied)))

		for _, name := range []string{"favicon.ico", "site.webmanifest"} {
			src := path.Join("assets", name)
			if !b.static.Exists(src) {
				continue
			}
			data, err := b.static.Read(src)
			if err != nil {
				return fmt.Errorf("pipeline: copy %s: %w", name, err)
			}
			if err := b.dist.Write(name, data); err != nil {
				return fmt.Errorf("pipeline: copy %s: %w", name, err)
			}
		}
	}

	if b.headers == nil || !b.headers.Exists(b.headersPath) {
		b.logger.Warn("_headers not found, skipping")
		return nil
	}
	data, err := b.headers.Read(b.headersPath)
	if err != nil {
		return fmt.Errorf("pipeline: read headers: %w", err)
	}
	if err := b.dist.Write("_headers", data); err != nil {
		return fmt.Errorf("pipeline: write headers: %w", err)
	}
	return nil
}
