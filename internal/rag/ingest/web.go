package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/customHttpClient"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/util"
)

// Fetcher turns a URL into a Document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (commonModels.Document, error)
}

type WebFetcher struct {
	client *http.Client
	policy util.RetryPolicy
}

func NewWebFetcher(policy util.RetryPolicy) *WebFetcher {
	return &WebFetcher{client: customHttpClient.New(config.FetchTimeout), policy: policy}
}

func (f *WebFetcher) Fetch(ctx context.Context, url string) (commonModels.Document, error) {
	body, err := util.Retry(ctx, f.policy, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "ragchain/1.0")

		resp, err := f.client.Do(req)
		if err != nil {
			if apperrors.IsNetworkError(err) {
				return "", apperrors.Transient("fetch "+url, err)
			}
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			if apperrors.IsRetryableStatus(resp.StatusCode) {
				return "", apperrors.Transient("fetch", err)
			}
			return "", err
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxFetchBytes))
		return string(b), err
	})
	if err != nil {
		return commonModels.Document{}, err
	}

	page, err := parseHTML(body)
	if err != nil {
		return commonModels.Document{}, fmt.Errorf("parse %s: %w", url, err)
	}

	meta := commonModels.Metadata{"source": url}
	if page.title != "" {
		meta["title"] = page.title
	}
	if page.description != "" {
		meta["description"] = page.description
	}
	if len(page.keywords) > 0 {
		meta["keywords"] = page.keywords
	}
	return commonModels.Document{Content: page.text, Metadata: meta.Normalize()}, nil
}

type htmlPage struct {
	title       string
	description string
	keywords    []string
	text        string
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "nav": true, "footer": true, "title": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true, "pre": true,
}

func parseHTML(body string) (htmlPage, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return htmlPage{}, err
	}

	var page htmlPage
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && page.title == "" {
					page.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				readMeta(n, &page)
			}
			if skippedElements[n.Data] {
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	walk(root)

	page.text = strings.TrimSpace(b.String())
	return page, nil
}

func readMeta(n *html.Node, page *htmlPage) {
	var name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name", "property":
			name = strings.ToLower(a.Val)
		case "content":
			content = a.Val
		}
	}
	switch name {
	case "description", "og:description":
		if page.description == "" {
			page.description = content
		}
	case "keywords":
		for _, k := range strings.Split(content, ",") {
			if k = strings.TrimSpace(k); k != "" {
				page.keywords = append(page.keywords, k)
			}
		}
	}
}
