package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/net/html"

	"bookforge/internal/book"
)

const fetchTimeout = 30 * time.Second

// Page is everything scraped from one catalog listing: the book metadata
// plus the address of its cover art, when the page advertises one.
type Page struct {
	book.Metadata
	CoverURL string
}

// Fetch retrieves and parses a catalog page.
func Fetch(ctx context.Context, url string) (*Page, error) {
	client := &http.Client{Timeout: fetchTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	// Catalog pages refuse requests that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog page: unexpected status %s", resp.Status)
	}
	return Parse(resp.Body)
}

// Parse extracts book metadata from catalog page markup. Missing elements
// leave their fields empty; only unreadable markup is an error.
func Parse(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	page := &Page{}
	var genres []string

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "h1":
				if page.Title == "" {
					page.Title = textOf(node)
				}
			case "h2":
				if attr(node, "slot") == "subtitle" && page.Subtitle == "" {
					page.Subtitle = textOf(node)
				}
			case "adbl-chip":
				if chip := textOf(node); chip != "" {
					genres = append(genres, chip)
				}
			case "meta":
				if attr(node, "property") == "og:image" && page.CoverURL == "" {
					page.CoverURL = strings.TrimSpace(attr(node, "content"))
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	page.Genres = strings.Join(genres, ", ")
	if series, volume, ok := seriesFromSubtitle(page.Subtitle); ok {
		page.Series = series
		page.Volume = volume
	}
	return page, nil
}

// seriesPattern matches "Name, Book 2", "Name - tome 3", "Name: Volume 0".
var seriesPattern = regexp.MustCompile(`(?i)^(.*?)[\s,:-]*\b(?:book|tome|volume|vol\.?)\s+(\d+)\s*$`)

func seriesFromSubtitle(subtitle string) (string, *int, bool) {
	match := seriesPattern.FindStringSubmatch(strings.TrimSpace(subtitle))
	if match == nil {
		return "", nil, false
	}
	series := strings.TrimSpace(match[1])
	if series == "" {
		return "", nil, false
	}
	value, err := strconv.Atoi(match[2])
	if err != nil {
		return "", nil, false
	}
	return series, &value, true
}

// DownloadCover saves the image at url to path. The image lands next to the
// metadata document so the builder picks it up as the book cover.
func DownloadCover(ctx context.Context, url, path string) error {
	client := &http.Client{Timeout: fetchTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build cover request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch cover: unexpected status %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteMetadata renders meta as a metadata document at path.
func WriteMetadata(path string, meta *book.Metadata) error {
	payload, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func textOf(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
