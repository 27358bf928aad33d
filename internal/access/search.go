package access

import (
	"context"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
)

// SearchType selects which half of the index a search runs against.
type SearchType string

const (
	SearchPages  SearchType = "pages"
	SearchBlocks SearchType = "blocks"
	SearchAll    SearchType = "all"
)

// SearchRequest is a full-text search against one database.
type SearchRequest struct {
	Query string
	// Type defaults to SearchAll.
	Type SearchType
	// Limit applies to pages and blocks separately. <= 0 means
	// search.DefaultLimit.
	Limit int
	// Advanced passes Query to the engine unescaped (boolean operators,
	// phrases).
	Advanced bool
}

// SearchResponse holds the matches of a search. Both slices are non-nil.
type SearchResponse struct {
	Pages  []model.Page  `json:"pages"`
	Blocks []model.Block `json:"blocks"`
}

// Search runs a full-text search against database id.
func (s *Service) Search(ctx context.Context, id string, req SearchRequest) (SearchResponse, error) {
	typ := req.Type
	if typ == "" {
		typ = SearchAll
	}
	switch typ {
	case SearchPages, SearchBlocks, SearchAll:
	default:
		return SearchResponse{}, model.InvalidArgumentf("invalid search type %q: expected pages, blocks or all", req.Type)
	}

	q := search.Query{Text: req.Query, Limit: req.Limit, Raw: req.Advanced}
	resp := SearchResponse{Pages: []model.Page{}, Blocks: []model.Block{}}
	err := s.Do(ctx, id, func(store *docstore.Store) error {
		var err error
		switch typ {
		case SearchPages:
			resp.Pages, err = store.SearchPages(ctx, q)
		case SearchBlocks:
			resp.Blocks, err = store.SearchBlocks(ctx, q)
		default:
			resp.Pages, resp.Blocks, err = store.SearchAll(ctx, q)
		}
		return err
	})
	if err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}
