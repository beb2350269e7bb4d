package sitemap

import (
	"encoding/xml"
	"fmt"
)

// Namespaces declared on every <urlset>.
const (
	NamespaceSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	NamespaceImage   = "http://www.google.com/schemas/sitemap-image/1.1"
	NamespaceVideo   = "http://www.google.com/schemas/sitemap-video/1.1"
	NamespaceNews    = "http://www.google.com/schemas/sitemap-news/0.9"
	NamespaceMobile  = "http://www.google.com/schemas/sitemap-mobile/1.0"
	NamespaceXHTML   = "http://www.w3.org/1999/xhtml"
	namespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// URLSetOpen and URLSetClose wrap the serialized <url> entries of a sitemap.
var (
	URLSetOpen = xml.Header + fmt.Sprintf(`<urlset xmlns=%q xmlns:xsi=%q xsi:schemaLocation=%q xmlns:image=%q xmlns:video=%q xmlns:news=%q xmlns:mobile=%q xmlns:xhtml=%q>`,
		NamespaceSitemap, namespaceXSI,
		NamespaceSitemap+" http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd",
		NamespaceImage, NamespaceVideo, NamespaceNews, NamespaceMobile, NamespaceXHTML)
	URLSetClose = "</urlset>\n"
)

// IndexOpen and IndexClose wrap the serialized <sitemap> entries of an index.
var (
	IndexOpen = xml.Header + fmt.Sprintf(`<sitemapindex xmlns=%q xmlns:xsi=%q xsi:schemaLocation=%q>`,
		NamespaceSitemap, namespaceXSI,
		NamespaceSitemap+" http://www.sitemaps.org/schemas/sitemap/0.9/siteindex.xsd")
	IndexClose = "</sitemapindex>\n"
)

// URL is a single <url> entry in a sitemap.
type URL struct {
	XMLName    xml.Name   `xml:"url"`
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
	Alternates []xmlLink  `xml:"xhtml:link,omitempty"`
	Images     []xmlImage `xml:"image:image,omitempty"`
	Videos     []xmlVideo `xml:"video:video,omitempty"`
	News       *xmlNews   `xml:"news:news,omitempty"`
	Mobile     *struct{}  `xml:"mobile:mobile,omitempty"`
}

// Sitemap is a single <sitemap> entry in a sitemap index.
type Sitemap struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type xmlLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr,omitempty"`
	Media    string `xml:"media,attr,omitempty"`
	Href     string `xml:"href,attr"`
}

type xmlImage struct {
	Loc         string `xml:"image:loc"`
	Caption     string `xml:"image:caption,omitempty"`
	GeoLocation string `xml:"image:geo_location,omitempty"`
	Title       string `xml:"image:title,omitempty"`
	License     string `xml:"image:license,omitempty"`
}

type xmlPlayerLoc struct {
	Loc        string `xml:",chardata"`
	AllowEmbed string `xml:"allow_embed,attr,omitempty"`
	Autoplay   string `xml:"autoplay,attr,omitempty"`
}

type xmlGalleryLoc struct {
	Loc   string `xml:",chardata"`
	Title string `xml:"title,attr,omitempty"`
}

type xmlUploader struct {
	Name string `xml:",chardata"`
	Info string `xml:"info,attr,omitempty"`
}

type xmlVideo struct {
	ThumbnailLoc    string         `xml:"video:thumbnail_loc"`
	Title           string         `xml:"video:title"`
	Description     string         `xml:"video:description"`
	ContentLoc      string         `xml:"video:content_loc,omitempty"`
	PlayerLoc       *xmlPlayerLoc  `xml:"video:player_loc,omitempty"`
	Duration        string         `xml:"video:duration,omitempty"`
	ExpirationDate  string         `xml:"video:expiration_date,omitempty"`
	Rating          string         `xml:"video:rating,omitempty"`
	ViewCount       string         `xml:"video:view_count,omitempty"`
	PublicationDate string         `xml:"video:publication_date,omitempty"`
	FamilyFriendly  string         `xml:"video:family_friendly,omitempty"`
	Tags            []string       `xml:"video:tag,omitempty"`
	Category        string         `xml:"video:category,omitempty"`
	GalleryLoc      *xmlGalleryLoc `xml:"video:gallery_loc,omitempty"`
	Uploader        *xmlUploader   `xml:"video:uploader,omitempty"`
}

type xmlPublication struct {
	Name     string `xml:"news:name"`
	Language string `xml:"news:language"`
}

type xmlNews struct {
	Publication     xmlPublication `xml:"news:publication"`
	Access          string         `xml:"news:access,omitempty"`
	Genres          string         `xml:"news:genres,omitempty"`
	PublicationDate string         `xml:"news:publication_date"`
	Title           string         `xml:"news:title"`
	Keywords        string         `xml:"news:keywords,omitempty"`
	StockTickers    string         `xml:"news:stock_tickers,omitempty"`
}

// Marshal encodes a single entry as an XML fragment.
func Marshal(v any) ([]byte, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding sitemap entry: %w", err)
	}
	return b, nil
}
