package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/customHttpClient"
)

// Tool is something the agent can call with a single text input.
type Tool struct {
	Name        string
	Description string
	Call        func(ctx context.Context, input string) (string, error)
}

// TimeTool reports the current local time as "03:04 PM".
func TimeTool(now func() time.Time) Tool {
	if now == nil {
		now = time.Now
	}
	return Tool{
		Name:        "Time",
		Description: "Useful for when you need to know the current time.",
		Call: func(ctx context.Context, _ string) (string, error) {
			return now().Format("03:04 PM"), nil
		},
	}
}

const wikipediaNotFound = "I couldn't find any information on that."

// WikipediaTool answers with the first two sentences of the page summary
// for the input. Any lookup failure yields a fixed "not found" answer.
func WikipediaTool(baseURL string, client *http.Client) Tool {
	if baseURL == "" {
		baseURL = config.WikipediaAPIBase
	}
	if client == nil {
		client = customHttpClient.New(config.FetchTimeout)
	}
	return Tool{
		Name:        "Wikipedia",
		Description: "Useful for when you need to know information about a topic.",
		Call: func(ctx context.Context, input string) (string, error) {
			extract, err := wikipediaSummary(ctx, client, baseURL, input)
			if err != nil || extract == "" {
				return wikipediaNotFound, nil
			}
			return firstSentences(extract, 2), nil
		},
	}
}

func wikipediaSummary(ctx context.Context, client *http.Client, baseURL string, query string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	if title == "" {
		return "", fmt.Errorf("empty query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/page/summary/"+url.PathEscape(title), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia: status %d", resp.StatusCode)
	}

	var body struct {
		Type    string `json:"type"`
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Type == "disambiguation" {
		return "", fmt.Errorf("wikipedia: %q is ambiguous", query)
	}
	return body.Extract, nil
}

// firstSentences keeps the first n sentences of text. A sentence ends at
// '.', '!' or '?' followed by whitespace or the end of the text.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				count++
				if count == n {
					return text[:i+1]
				}
			}
		}
	}
	return text
}
