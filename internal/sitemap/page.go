package sitemap

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Devon-White/sitemapgen/internal/location"
)

// ChangeFreq is the optional <changefreq> hint of an entry.
type ChangeFreq string

const (
	Always  ChangeFreq = "always"
	Hourly  ChangeFreq = "hourly"
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
	Yearly  ChangeFreq = "yearly"
	Never   ChangeFreq = "never"
)

// Valid reports whether f is one of the protocol's enumerated values.
func (f ChangeFreq) Valid() bool {
	switch f {
	case Always, Hourly, Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// Protocol limits on extension blocks.
const (
	MaxImagesPerURL  = 1000
	MaxVideoTags     = 32
	MaxVideoDuration = 28800
	MaxVideoRating   = 5.0
)

// ErrInvalid matches every *ValidationError.
var ErrInvalid = errors.New("invalid page attribute")

// ValidationError identifies the page attribute that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Page is the set of attributes a caller supplies for one site page.
type Page struct {
	Path       string      `yaml:"path"`
	Host       string      `yaml:"host,omitempty"` // overrides the link set's default host
	LastMod    time.Time   `yaml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq  `yaml:"changefreq,omitempty"`
	Priority   *float64    `yaml:"priority,omitempty"`
	Alternates []Alternate `yaml:"alternates,omitempty"`
	Images     []Image     `yaml:"images,omitempty"`
	Videos     []Video     `yaml:"videos,omitempty"`
	News       *News       `yaml:"news,omitempty"`
	Mobile     bool        `yaml:"mobile,omitempty"`
}

// Alternate is an <xhtml:link rel="alternate"> pointing at another language
// or media version of the page.
type Alternate struct {
	Href     string `yaml:"href"`
	Lang     string `yaml:"lang,omitempty"`
	Media    string `yaml:"media,omitempty"`
	Nofollow bool   `yaml:"nofollow,omitempty"`
}

// Image is an <image:image> block.
type Image struct {
	Loc         string `yaml:"loc"`
	Caption     string `yaml:"caption,omitempty"`
	GeoLocation string `yaml:"geo_location,omitempty"`
	Title       string `yaml:"title,omitempty"`
	License     string `yaml:"license,omitempty"`
}

// Video is a <video:video> block. ThumbnailLoc, Title, Description and one
// of ContentLoc or PlayerLoc are required.
type Video struct {
	ThumbnailLoc    string    `yaml:"thumbnail_loc"`
	Title           string    `yaml:"title"`
	Description     string    `yaml:"description"`
	ContentLoc      string    `yaml:"content_loc,omitempty"`
	PlayerLoc       string    `yaml:"player_loc,omitempty"`
	AllowEmbed      *bool     `yaml:"allow_embed,omitempty"`
	Autoplay        string    `yaml:"autoplay,omitempty"`
	Duration        int       `yaml:"duration,omitempty"` // seconds
	ExpirationDate  time.Time `yaml:"expiration_date,omitempty"`
	Rating          *float64  `yaml:"rating,omitempty"`
	ViewCount       int       `yaml:"view_count,omitempty"`
	PublicationDate time.Time `yaml:"publication_date,omitempty"`
	FamilyFriendly  *bool     `yaml:"family_friendly,omitempty"`
	Tags            []string  `yaml:"tags,omitempty"`
	Category        string    `yaml:"category,omitempty"`
	GalleryLoc      string    `yaml:"gallery_loc,omitempty"`
	GalleryTitle    string    `yaml:"gallery_title,omitempty"`
	Uploader        string    `yaml:"uploader,omitempty"`
	UploaderInfo    string    `yaml:"uploader_info,omitempty"`
}

// News is a <news:news> block.
type News struct {
	PublicationName     string    `yaml:"publication_name"`
	PublicationLanguage string    `yaml:"publication_language"`
	Title               string    `yaml:"title"`
	PublicationDate     time.Time `yaml:"publication_date"`
	Access              string    `yaml:"access,omitempty"`
	Genres              string    `yaml:"genres,omitempty"`
	Keywords            string    `yaml:"keywords,omitempty"`
	StockTickers        string    `yaml:"stock_tickers,omitempty"`
}

// Build validates page and turns it into a <url> entry. Relative paths,
// and relative image, video and alternate locations, are resolved against
// host (or page.Host when set). Absolute ones are used as is.
func Build(host string, page Page) (URL, error) {
	if page.Host != "" {
		host = page.Host
	}
	if strings.TrimSpace(page.Path) == "" {
		return URL{}, invalid("path", "is required")
	}

	loc, err := resolve(host, page.Path, "path")
	if err != nil {
		return URL{}, err
	}
	u := URL{Loc: loc}

	if !page.LastMod.IsZero() {
		u.LastMod = FormatTime(page.LastMod)
	}
	if page.ChangeFreq != "" {
		if !page.ChangeFreq.Valid() {
			return URL{}, invalid("changefreq", "%q is not one of always, hourly, daily, weekly, monthly, yearly, never", page.ChangeFreq)
		}
		u.ChangeFreq = page.ChangeFreq
	}
	if page.Priority != nil {
		p := *page.Priority
		if !(p >= 0 && p <= 1) {
			return URL{}, invalid("priority", "%v is outside 0.0-1.0", p)
		}
		u.Priority = FormatPriority(p)
	}

	for i, alt := range page.Alternates {
		field := fmt.Sprintf("alternates[%d]", i)
		if alt.Href == "" {
			return URL{}, invalid(field+".href", "is required")
		}
		href, err := resolve(host, alt.Href, field+".href")
		if err != nil {
			return URL{}, err
		}
		rel := "alternate"
		if alt.Nofollow {
			rel += " nofollow"
		}
		u.Alternates = append(u.Alternates, xmlLink{Rel: rel, HrefLang: alt.Lang, Media: alt.Media, Href: href})
	}

	if len(page.Images) > MaxImagesPerURL {
		return URL{}, invalid("images", "%d images exceed the limit of %d", len(page.Images), MaxImagesPerURL)
	}
	for i, img := range page.Images {
		field := fmt.Sprintf("images[%d]", i)
		if img.Loc == "" {
			return URL{}, invalid(field+".loc", "is required")
		}
		imgLoc, err := resolve(host, img.Loc, field+".loc")
		if err != nil {
			return URL{}, err
		}
		u.Images = append(u.Images, xmlImage{
			Loc:         imgLoc,
			Caption:     img.Caption,
			GeoLocation: img.GeoLocation,
			Title:       img.Title,
			License:     img.License,
		})
	}

	for i, v := range page.Videos {
		xv, err := buildVideo(host, fmt.Sprintf("videos[%d]", i), v)
		if err != nil {
			return URL{}, err
		}
		u.Videos = append(u.Videos, xv)
	}

	if page.News != nil {
		xn, err := buildNews(*page.News)
		if err != nil {
			return URL{}, err
		}
		u.News = xn
	}

	if page.Mobile {
		u.Mobile = &struct{}{}
	}
	return u, nil
}

func buildVideo(host, field string, v Video) (xmlVideo, error) {
	switch {
	case v.ThumbnailLoc == "":
		return xmlVideo{}, invalid(field+".thumbnail_loc", "is required")
	case v.Title == "":
		return xmlVideo{}, invalid(field+".title", "is required")
	case v.Description == "":
		return xmlVideo{}, invalid(field+".description", "is required")
	case v.ContentLoc == "" && v.PlayerLoc == "":
		return xmlVideo{}, invalid(field+".content_loc", "content_loc or player_loc is required")
	case v.Duration < 0 || v.Duration > MaxVideoDuration:
		return xmlVideo{}, invalid(field+".duration", "%d is outside 0-%d seconds", v.Duration, MaxVideoDuration)
	case v.Rating != nil && !(*v.Rating >= 0 && *v.Rating <= MaxVideoRating):
		return xmlVideo{}, invalid(field+".rating", "%v is outside 0.0-5.0", *v.Rating)
	case v.ViewCount < 0:
		return xmlVideo{}, invalid(field+".view_count", "must not be negative")
	case len(v.Tags) > MaxVideoTags:
		return xmlVideo{}, invalid(field+".tags", "%d tags exceed the limit of %d", len(v.Tags), MaxVideoTags)
	}

	thumb, err := resolve(host, v.ThumbnailLoc, field+".thumbnail_loc")
	if err != nil {
		return xmlVideo{}, err
	}
	xv := xmlVideo{
		ThumbnailLoc: thumb,
		Title:        v.Title,
		Description:  v.Description,
		Tags:         v.Tags,
		Category:     v.Category,
	}
	if v.ContentLoc != "" {
		if xv.ContentLoc, err = resolve(host, v.ContentLoc, field+".content_loc"); err != nil {
			return xmlVideo{}, err
		}
	}
	if v.PlayerLoc != "" {
		player, err := resolve(host, v.PlayerLoc, field+".player_loc")
		if err != nil {
			return xmlVideo{}, err
		}
		xv.PlayerLoc = &xmlPlayerLoc{Loc: player, Autoplay: v.Autoplay}
		if v.AllowEmbed != nil {
			xv.PlayerLoc.AllowEmbed = yesNo(*v.AllowEmbed)
		}
	}
	if v.Duration > 0 {
		xv.Duration = strconv.Itoa(v.Duration)
	}
	if !v.ExpirationDate.IsZero() {
		xv.ExpirationDate = FormatTime(v.ExpirationDate)
	}
	if v.Rating != nil {
		xv.Rating = strconv.FormatFloat(*v.Rating, 'f', 1, 64)
	}
	if v.ViewCount > 0 {
		xv.ViewCount = strconv.Itoa(v.ViewCount)
	}
	if !v.PublicationDate.IsZero() {
		xv.PublicationDate = FormatTime(v.PublicationDate)
	}
	if v.FamilyFriendly != nil {
		xv.FamilyFriendly = yesNo(*v.FamilyFriendly)
	}
	if v.GalleryLoc != "" {
		gallery, err := resolve(host, v.GalleryLoc, field+".gallery_loc")
		if err != nil {
			return xmlVideo{}, err
		}
		xv.GalleryLoc = &xmlGalleryLoc{Loc: gallery, Title: v.GalleryTitle}
	}
	if v.Uploader != "" {
		xv.Uploader = &xmlUploader{Name: v.Uploader, Info: v.UploaderInfo}
	}
	return xv, nil
}

func buildNews(n News) (*xmlNews, error) {
	switch {
	case n.PublicationName == "":
		return nil, invalid("news.publication_name", "is required")
	case n.PublicationLanguage == "":
		return nil, invalid("news.publication_language", "is required")
	case n.Title == "":
		return nil, invalid("news.title", "is required")
	case n.PublicationDate.IsZero():
		return nil, invalid("news.publication_date", "is required")
	}
	return &xmlNews{
		Publication:     xmlPublication{Name: n.PublicationName, Language: n.PublicationLanguage},
		Access:          n.Access,
		Genres:          n.Genres,
		PublicationDate: FormatTime(n.PublicationDate),
		Title:           n.Title,
		Keywords:        n.Keywords,
		StockTickers:    n.StockTickers,
	}, nil
}

// resolve returns ref unchanged when it is absolute and joins it to host otherwise.
func resolve(host, ref, field string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", invalid(field, "%v", err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	if strings.TrimSpace(host) == "" {
		return "", fmt.Errorf("resolving %s %q: %w", field, ref, location.ErrHostRequired)
	}
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parsing host %q: %w", host, err)
	}
	return base.ResolveReference(r).String(), nil
}

// FormatTime renders t as a W3C datetime.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatPriority renders p with at least one decimal place.
func FormatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
