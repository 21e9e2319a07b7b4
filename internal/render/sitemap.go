package render

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"
)

// SitemapURL is one <url> entry. LastMod is omitted when zero.
type SitemapURL struct {
	Loc     string
	LastMod time.Time
}

// Sitemap renders a sitemaps.org urlset.
func Sitemap(urls []SitemapURL) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, u := range urls {
		b.WriteString("  <url>\n    <loc>")
		_ = xml.EscapeText(&b, []byte(u.Loc))
		b.WriteString("</loc>\n")
		if !u.LastMod.IsZero() {
			b.WriteString("    <lastmod>" + u.LastMod.UTC().Format("2006-01-02T15:04:05.000Z") + "</lastmod>\n")
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return b.Bytes()
}

// Robots allows everything and points crawlers at the sitemap.
func Robots(siteURL string) []byte {
	return []byte(strings.Join([]string{
		"User-agent: *",
		"Allow: /",
		"",
		"Sitemap: " + strings.TrimSuffix(siteURL, "/") + "/sitemap.xml",
		"",
	}, "\n"))
}
