package maven

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/bldr/pkg/buildinfo"
	"github.com/matzehuels/bldr/pkg/cache"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/integrations"
)

const (
	// DefaultRepoURL is the Maven Central repository root.
	DefaultRepoURL = "https://repo.maven.apache.org/maven2"

	// DefaultSearchURL is the Maven Central Solr search root.
	DefaultSearchURL = "https://search.maven.org/solrsearch"

	// DefaultCacheTTL is how long search responses stay cached.
	DefaultCacheTTL = 24 * time.Hour

	memoSize = 512
)

// SearchDoc is one gav document from the search index.
type SearchDoc struct {
	GroupID    string `json:"g"`
	ArtifactID string `json:"a"`
	Version    string `json:"v"`
}

// ID returns the "group:artifact:version" identifier of the document.
func (d SearchDoc) ID() string { return d.GroupID + ":" + d.ArtifactID + ":" + d.Version }

// SearchResult is a decoded search response.
//
// NumFound is the total hit count reported by the server; Docs holds the
// documents returned in this page, in server order.
type SearchResult struct {
	NumFound int         `json:"num_found"`
	Docs     []SearchDoc `json:"docs"`
}

// Client provides access to a Maven repository and its search index.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	repoURL   string
	searchURL string
	memo      *lru.Cache[string, *SearchResult]
}

// Option configures a [Client].
type Option func(*options)

type options struct {
	repoURL   string
	searchURL string
	cache     cache.Cache
	ttl       time.Duration
}

// WithRepoURL overrides the repository root used for downloads.
func WithRepoURL(u string) Option { return func(o *options) { o.repoURL = u } }

// WithSearchURL overrides the search root; "/select" is appended per query.
func WithSearchURL(u string) Option { return func(o *options) { o.searchURL = u } }

// WithCache stores search responses in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.ttl = ttl
	}
}

// NewClient creates a Maven client. Without options it talks to Maven
// Central and does not persist search responses between runs.
func NewClient(opts ...Option) (*Client, error) {
	o := options{
		repoURL:   DefaultRepoURL,
		searchURL: DefaultSearchURL,
		ttl:       DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	for _, u := range []string{o.repoURL, o.searchURL} {
		if err := errors.ValidateURL(u); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "client url %q", u)
		}
	}
	memo, err := lru.New[string, *SearchResult](memoSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:    integrations.NewClient(o.cache, "maven:search:", o.ttl, map[string]string{"User-Agent": buildinfo.UserAgent()}),
		repoURL:   strings.TrimSuffix(o.repoURL, "/"),
		searchURL: strings.TrimSuffix(o.searchURL, "/"),
		memo:      memo,
	}, nil
}

// RepoURL returns the repository root without a trailing slash.
func (c *Client) RepoURL() string { return c.repoURL }

// Search runs a raw query against the gav core of the search index.
//
// Results are memoized in-process and stored in the response cache. If
// refresh is true both are bypassed. A query with no hits is not an error.
func (c *Client) Search(ctx context.Context, query string, refresh bool) (*SearchResult, error) {
	if !refresh {
		if res, ok := c.memo.Get(query); ok {
			return res, nil
		}
	}

	var res SearchResult
	err := c.Cached(ctx, query, refresh, &res, func() error {
		return c.search(ctx, query, &res)
	})
	if err != nil {
		return nil, err
	}
	c.memo.Add(query, &res)
	return &res, nil
}

func (c *Client) search(ctx context.Context, query string, res *SearchResult) error {
	url := fmt.Sprintf("%s/select?q=%s&core=gav&wt=xml", c.searchURL, integrations.URLEncode(query))

	var resp searchResponse
	if err := c.GetXML(ctx, url, &resp); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven search endpoint %s", err, c.searchURL)
		}
		return err
	}

	n, err := resp.numFound()
	if err != nil {
		return err
	}
	*res = SearchResult{NumFound: n}
	if n == 0 {
		return nil
	}
	for _, d := range resp.Result.Docs {
		res.Docs = append(res.Docs, d.searchDoc())
	}
	return nil
}

// Exists reports whether the search index knows group:artifact:version.
func (c *Client) Exists(ctx context.Context, group, artifact, version string) (bool, error) {
	res, err := c.Search(ctx, fmt.Sprintf("g:%s AND a:%s AND v:%s", group, artifact, version), false)
	if err != nil {
		return false, err
	}
	return res.NumFound > 0, nil
}

// IDs returns the search documents for every indexed version of
// group:artifact, in server order.
func (c *Client) IDs(ctx context.Context, group, artifact string) ([]SearchDoc, error) {
	res, err := c.Search(ctx, fmt.Sprintf("g:%s AND a:%s", group, artifact), false)
	if err != nil {
		return nil, err
	}
	return res.Docs, nil
}

// Versions returns the indexed versions of group:artifact, in server order.
func (c *Client) Versions(ctx context.Context, group, artifact string) ([]string, error) {
	docs, err := c.IDs(ctx, group, artifact)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(docs))
	for _, d := range docs {
		versions = append(versions, d.Version)
	}
	return versions, nil
}

// ArtifactURL returns the repository URL of a file following the standard
// layout {repo}/{group as path}/{artifact}/{version}/{artifact}-{version}.{ext}.
func (c *Client) ArtifactURL(group, artifact, version, ext string) string {
	return c.repoURL + "/" + RepoPath(group, artifact, version, ext)
}

// RepoPath returns the layout path of a repository file relative to the root.
func RepoPath(group, artifact, version, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s",
		strings.ReplaceAll(group, ".", "/"), artifact, version, artifact, version, ext)
}

// Fetch downloads one repository file to dst.
// Returns an error wrapping [integrations.ErrNotFound] if the file does not exist.
func (c *Client) Fetch(ctx context.Context, group, artifact, version, ext, dst string) error {
	url := c.ArtifactURL(group, artifact, version, ext)
	if _, err := c.Download(ctx, url, dst); err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return nil
}

// searchResponse mirrors the Solr XML response writer:
//
//	<response><result numFound="1"><doc><str name="g">...</str></doc></result></response>
type searchResponse struct {
	Result struct {
		NumFound string   `xml:"numFound,attr"`
		Docs     []xmlDoc `xml:"doc"`
	} `xml:"result"`
}

func (r *searchResponse) numFound() (int, error) {
	raw := strings.TrimSpace(r.Result.NumFound)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed numFound %q", integrations.ErrNetwork, raw)
	}
	return n, nil
}

type xmlDoc struct {
	Fields []xmlField `xml:"str"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

func (d xmlDoc) searchDoc() SearchDoc {
	var doc SearchDoc
	for _, f := range d.Fields {
		switch f.Name {
		case "g":
			doc.GroupID = f.Value
		case "a":
			doc.ArtifactID = f.Value
		case "v":
			doc.Version = f.Value
		}
	}
	return doc
}
