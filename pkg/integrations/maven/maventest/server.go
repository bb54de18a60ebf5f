// Package maventest serves a fake Maven repository and search index for tests.
//
// A [Server] answers the same two surfaces the maven client talks to: the
// repository layout under /maven2 and the Solr gav core under /solrsearch.
//
//	srv := maventest.NewServer(t)
//	srv.AddArtifact(maventest.POM{Group: "org.example", Artifact: "lib", Version: "1.0"})
//	client, _ := maven.NewClient(maven.WithRepoURL(srv.RepoURL()), maven.WithSearchURL(srv.SearchURL()))
package maventest

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Doc is one indexed group:artifact:version triple.
type Doc struct {
	Group    string
	Artifact string
	Version  string
}

// Server is an in-memory repository plus search index.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	statuses map[string]int
	docs     []Doc
	hits     map[string]int
	searches int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		files:    make(map[string][]byte),
		statuses: make(map[string]int),
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/maven2/*", s.serveFile)
	r.Get("/solrsearch/select", s.serveSearch)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// RepoURL is the repository root.
func (s *Server) RepoURL() string { return s.URL + "/maven2" }

// SearchURL is the search root.
func (s *Server) SearchURL() string { return s.URL + "/solrsearch" }

// AddFile serves data at a repository-relative path.
func (s *Server) AddFile(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[strings.TrimPrefix(path, "/")] = data
}

// SetStatus makes a repository-relative path answer with code.
func (s *Server) SetStatus(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[strings.TrimPrefix(path, "/")] = code
}

// AddDoc indexes a triple for search.
func (s *Server) AddDoc(group, artifact, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, Doc{Group: group, Artifact: artifact, Version: version})
}

// AddArtifact serves p's descriptor and, unless it is pom-packaged, a
// placeholder jar, and indexes its coordinate.
func (s *Server) AddArtifact(p POM) {
	base := Path(p.Group, p.Artifact, p.Version, "")
	s.AddFile(base+"pom", p.Bytes())
	if p.Packaging != "pom" {
		s.AddFile(base+"jar", []byte("PK\x03\x04"+p.Artifact))
	}
	s.AddDoc(p.Group, p.Artifact, p.Version)
}

// Hits returns how many times a repository-relative path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[strings.TrimPrefix(path, "/")]
}

// Searches returns how many search requests were served.
func (s *Server) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

// Path returns the layout path of a file; ext is appended after a dot
// unless empty, in which case the path ends with the dot.
func Path(group, artifact, version, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s",
		strings.ReplaceAll(group, ".", "/"), artifact, version, artifact, version, ext)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")

	s.mu.Lock()
	s.hits[path]++
	data, ok := s.files[path]
	status := s.statuses[path]
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("core") != "gav" || q.Get("wt") != "xml" {
		http.Error(w, "unsupported core or writer", http.StatusBadRequest)
		return
	}
	terms := parseQuery(q.Get("q"))

	s.mu.Lock()
	s.searches++
	var matched []Doc
	for _, d := range s.docs {
		if terms.match(d) {
			matched = append(matched, d)
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/xml")
	xml.NewEncoder(w).Encode(newResponse(matched))
}

type query map[string]string

func parseQuery(q string) query {
	terms := query{}
	for _, part := range strings.Split(q, " AND ") {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), ":"); ok {
			terms[k] = v
		}
	}
	return terms
}

func (q query) match(d Doc) bool {
	for k, v := range q {
		var got string
		switch k {
		case "g":
			got = d.Group
		case "a":
			got = d.Artifact
		case "v":
			got = d.Version
		default:
			return false
		}
		if got != v {
			return false
		}
	}
	return true
}

type response struct {
	XMLName xml.Name `xml:"response"`
	Result  result   `xml:"result"`
}

type result struct {
	Name     string   `xml:"name,attr"`
	NumFound int      `xml:"numFound,attr"`
	Start    int      `xml:"start,attr"`
	Docs     []xmlDoc `xml:"doc"`
}

type xmlDoc struct {
	Fields []field `xml:"str"`
}

type field struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

func newResponse(docs []Doc) response {
	res := response{Result: result{Name: "response", NumFound: len(docs)}}
	for _, d := range docs {
		res.Result.Docs = append(res.Result.Docs, xmlDoc{Fields: []field{
			{Name: "id", Value: d.Group + ":" + d.Artifact + ":" + d.Version},
			{Name: "g", Value: d.Group},
			{Name: "a", Value: d.Artifact},
			{Name: "v", Value: d.Version},
		}})
	}
	return res
}
