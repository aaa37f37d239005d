package extract

import (
	"context"
	"fmt"
	"strings"

	"careermatch/internal/config"
	"careermatch/internal/errors"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// jobSignals identify a publicly rendered job posting page. Their presence
// overrides any authwall markers also present in the HTML.
var jobSignals = []string{
	"jobs-guest-frontend",
	"d_jobs_guest_details",
	"mx-details-container-padding",
	"description__text",
	"decorated-job-posting__details",
}

// authwallSignals identify LinkedIn's login/authwall interstitial.
var authwallSignals = []string{
	"authwall",
	"checkpoint/challenge",
	"/uas/login",
	"session_redirect",
	"fromsignin=true",
}

// JobPosting is the result of scraping one job posting URL.
type JobPosting struct {
	Title   string
	Text    string
	RawHTML string
}

// Fetcher retrieves job postings over HTTP and extracts their text.
type Fetcher struct {
	client   *resty.Client
	maxChars int
	logger   *errors.Logger
}

// NewFetcher builds a Fetcher from the extract configuration.
func NewFetcher(cfg config.ExtractConfig, logger *errors.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Fetcher{
		client:   client,
		maxChars: cfg.MaxInputChars,
		logger:   logger,
	}
}

// FetchJobPosting downloads a job posting page and extracts its title and
// description text. An authwall response is an error, not empty text.
func (f *Fetcher) FetchJobPosting(ctx context.Context, url string) (*JobPosting, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"Job posting URL is empty", nil)
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			"Failed to fetch job posting page", err)
	}
	if resp.IsError() {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			fmt.Sprintf("Job posting page returned status %d", resp.StatusCode()), nil)
	}

	rawHTML := resp.String()
	if LooksLikeAuthwall(rawHTML) {
		return nil, errors.NewValidationError(errors.ErrCodeAuthwall,
			"The job posting page returned a login wall instead of content", nil)
	}

	title := ExtractJobTitle(rawHTML)
	text := ExtractJobText(rawHTML)
	text = ClampChars(text, f.maxChars)
	if text == "" {
		return nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"No job description text found on the page", nil)
	}

	f.logger.Debug("Fetched job posting",
		"url", url,
		"title", title,
		"text_chars", len(text))

	return &JobPosting{
		Title:   title,
		Text:    text,
		RawHTML: rawHTML,
	}, nil
}

// LooksLikeAuthwall reports whether the HTML is LinkedIn's login wall rather
// than a job posting.
func LooksLikeAuthwall(rawHTML string) bool {
	h := strings.ToLower(rawHTML)

	for _, s := range jobSignals {
		if strings.Contains(h, s) {
			return false
		}
	}
	for _, s := range authwallSignals {
		if strings.Contains(h, s) {
			return true
		}
	}
	return false
}

// ExtractJobText pulls the job description text out of a posting page.
// It prefers the dedicated description block, falling back to the details
// container, the main element, and finally the whole document.
func ExtractJobText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := findByID(doc, "main", "main-content")
	if root == nil {
		root = doc
	}

	target := findByClass(root, "div", "details", "mx-details-container-padding")
	if target == nil {
		target = findByClass(root, "", "details", "mx-details-container-padding")
	}
	if target == nil {
		target = root
	}

	if desc := findByClass(target, "", "description__text"); desc != nil {
		target = desc
	}

	text := nodeText(target, "\n")
	text = RemoveShowMoreLess(text)
	return SanitizeWhitespace(text)
}

// ExtractJobTitle pulls the job title from a posting page.
func ExtractJobTitle(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	h1 := findByClass(doc, "h1", "top-card-layout__title")
	if h1 == nil {
		h1 = findByTag(doc, "h1")
	}
	if h1 == nil {
		return ""
	}
	return SanitizeWhitespace(nodeText(h1, " "))
}

func findByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode && (tag == "" || n.Data == tag) && attrValue(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, tag, id); found != nil {
			return found
		}
	}
	return nil
}

// findByClass returns the first element of the given tag (empty tag matches
// any element) carrying all the given classes.
func findByClass(n *html.Node, tag string, classes ...string) *html.Node {
	if n.Type == html.ElementNode && (tag == "" || n.Data == tag) && hasClasses(n, classes) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, classes...); found != nil {
			return found
		}
	}
	return nil
}

func hasClasses(n *html.Node, classes []string) bool {
	attr := attrValue(n, "class")
	if attr == "" {
		return false
	}
	present := make(map[string]bool)
	for _, c := range strings.Fields(attr) {
		present[c] = true
	}
	for _, c := range classes {
		if !present[c] {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates the trimmed text nodes under n, skipping script and
// style content.
func nodeText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
