package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ImageStrategy extracts an image URL from a feed item, returning "" when it finds none.
type ImageStrategy func(item *gofeed.Item) string

// DefaultImageStrategies is the lookup order used by the RSS fetcher.
var DefaultImageStrategies = []ImageStrategy{
	MediaContent,
	MediaThumbnail,
	ItemImage,
	ImageEnclosure,
	EmbeddedImage,
}

// FirstImage runs strategies in order and returns the first non-empty result.
func FirstImage(item *gofeed.Item, strategies ...ImageStrategy) string {
	if item == nil {
		return ""
	}
	for _, strategy := range strategies {
		if url := strings.TrimSpace(strategy(item)); url != "" {
			return url
		}
	}
	return ""
}

// MediaContent reads <media:content url="...">.
func MediaContent(item *gofeed.Item) string {
	return mediaAttr(item, "content")
}

// MediaThumbnail reads <media:thumbnail url="...">.
func MediaThumbnail(item *gofeed.Item) string {
	return mediaAttr(item, "thumbnail")
}

// ItemImage reads the image gofeed resolved on its own.
func ItemImage(item *gofeed.Item) string {
	if item.Image == nil {
		return ""
	}
	return item.Image.URL
}

// ImageEnclosure picks the first enclosure with an image MIME type.
func ImageEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.Contains(enc.Type, "image") {
			return enc.URL
		}
	}
	return ""
}

// EmbeddedImage finds the first <img> in the item's content or description, skipping tracking pixels.
func EmbeddedImage(item *gofeed.Item) string {
	html := item.Content
	if html == "" {
		html = item.Description
	}
	return firstImg(html)
}

func firstImg(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, ok := doc.Find("img").First().Attr("src")
	if !ok || strings.Contains(src, "pixel") {
		return ""
	}
	return src
}

func mediaAttr(item *gofeed.Item, name string) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, ext := range media[name] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}
	// media:group wraps content elements in some feeds
	for _, group := range media["group"] {
		for _, child := range group.Children[name] {
			if url := child.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}
