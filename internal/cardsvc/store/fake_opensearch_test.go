package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// fakeOpenSearch is an in-memory stand-in for the subset of the
// OpenSearch HTTP API the card store talks to. Documents are kept in
// insertion order, which matches the created_at ascending sort the
// store asks for.
type fakeOpenSearch struct {
	mu sync.Mutex

	indexExists bool
	properties  map[string]interface{}
	docs        []fakeDoc
	nextId      int

	createCalls int
	deleteCalls int
}

type fakeDoc struct {
	id     string
	source map[string]interface{}
}

func newFakeOpenSearch() *fakeOpenSearch {
	return &fakeOpenSearch{}
}

// seedOldSchema puts the fake into the pre owner-scope state: an index
// whose mapping has user_id instead of owner_id, holding one legacy doc.
func (f *fakeOpenSearch) seedOldSchema() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexExists = true
	f.properties = map[string]interface{}{
		"user_id":   map[string]interface{}{"type": "long"},
		"card_name": map[string]interface{}{"type": "text"},
	}
	f.docs = []fakeDoc{{
		id:     "legacy-1",
		source: map[string]interface{}{"user_id": float64(1), "card_name": "Old card"},
	}}
}

func (f *fakeOpenSearch) docCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func (f *fakeOpenSearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"version": map[string]interface{}{"number": "2.11.0"},
		})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if parts[0] != IndexName {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		f.handleIndexOps(w, r)
	case parts[1] == "_mapping":
		f.handleMapping(w)
	case parts[1] == "_search":
		f.handleSearch(w, r)
	case parts[1] == "_doc":
		f.handleDoc(w, r, parts)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeOpenSearch) handleIndexOps(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		var body struct {
			Mappings struct {
				Properties map[string]interface{} `json:"properties"`
			} `json:"mappings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		f.indexExists = true
		f.properties = body.Mappings.Properties
		f.docs = nil
		f.createCalls++
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
	case http.MethodDelete:
		f.indexExists = false
		f.properties = nil
		f.docs = nil
		f.deleteCalls++
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeOpenSearch) handleMapping(w http.ResponseWriter) {
	if !f.indexExists {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "index_not_found_exception"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		IndexName: map[string]interface{}{
			"mappings": map[string]interface{}{"properties": f.properties},
		},
	})
}

func (f *fakeOpenSearch) handleDoc(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 2 && r.Method == http.MethodPost:
		var source map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		f.nextId++
		id := fmt.Sprintf("doc-%d", f.nextId)
		f.docs = append(f.docs, fakeDoc{id: id, source: source})
		writeJSON(w, http.StatusCreated, map[string]interface{}{"_id": id, "result": "created"})

	case len(parts) == 3 && r.Method == http.MethodGet:
		for _, doc := range f.docs {
			if doc.id == parts[2] {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"_id": doc.id, "found": true, "_source": doc.source,
				})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"_id": parts[2], "found": false})

	case len(parts) == 3 && r.Method == http.MethodDelete:
		for i, doc := range f.docs {
			if doc.id == parts[2] {
				f.docs = append(f.docs[:i], f.docs[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]interface{}{"result": "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"result": "not_found"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeOpenSearch) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Query struct {
			Term map[string]interface{} `json:"term"`
			Bool struct {
				Must []map[string]map[string]interface{} `json:"must"`
			} `json:"bool"`
		} `json:"query"`
		Size int `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	var (
		ownerFilter interface{}
		nameQuery   string
	)
	if v, ok := query.Query.Term["owner_id"]; ok {
		ownerFilter = v
	}
	for _, clause := range query.Query.Bool.Must {
		if term, ok := clause["term"]; ok {
			ownerFilter = term["owner_id"]
		}
		if match, ok := clause["match"]; ok {
			nameQuery, _ = match["card_name"].(string)
		}
	}

	hits := []map[string]interface{}{}
	for _, doc := range f.docs {
		if ownerFilter != nil && doc.source["owner_id"] != ownerFilter {
			continue
		}
		if nameQuery != "" && !matchName(doc.source["card_name"], nameQuery) {
			continue
		}
		hits = append(hits, map[string]interface{}{"_id": doc.id, "_source": doc.source})
		if query.Size > 0 && len(hits) == query.Size {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hits": map[string]interface{}{"hits": hits},
	})
}

// matchName imitates an analyzed full text match: every query token has
// to appear among the lowercased name tokens.
func matchName(name interface{}, query string) bool {
	nameStr, _ := name.(string)
	nameTokens := map[string]bool{}
	for _, token := range strings.Fields(strings.ToLower(nameStr)) {
		nameTokens[token] = true
	}
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if !nameTokens[token] {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
