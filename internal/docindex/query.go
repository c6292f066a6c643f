package docindex

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// buildTextQuery compiles the free-text search syntax: field:value and
// quoted phrases go through the Bleve query-string parser, OR splits into a
// disjunction, AND and plain whitespace conjoin terms, and a * at either end
// of a bare term produces a prefix/wildcard query. A parse error is returned
// to the caller, which maps it to an empty result.
func buildTextQuery(text string) (query.Query, error) {
	trimmed := strings.TrimSpace(text)

	if strings.ContainsAny(trimmed, `:"`) {
		return bleve.NewQueryStringQuery(trimmed).Parse()
	}

	parts := strings.Split(trimmed, " OR ")
	if len(parts) > 1 {
		dq := bleve.NewDisjunctionQuery()
		for _, part := range parts {
			sub := termConjunction(part)
			dq.AddQuery(sub)
		}
		return dq, nil
	}

	return termConjunction(trimmed), nil
}

// termConjunction ANDs the individual terms of a bare-term query.
func termConjunction(text string) query.Query {
	cq := bleve.NewConjunctionQuery()
	terms := 0
	for _, tok := range strings.Fields(text) {
		if tok == "AND" {
			continue
		}
		cq.AddQuery(termQuery(tok))
		terms++
	}
	if terms == 0 {
		return bleve.NewMatchNoneQuery()
	}
	return cq
}

// termQuery maps one bare term to the appropriate content-field query.
func termQuery(tok string) query.Query {
	lower := strings.ToLower(tok)
	switch {
	case strings.HasSuffix(lower, "*") && !strings.HasPrefix(lower, "*"):
		q := bleve.NewPrefixQuery(strings.TrimSuffix(lower, "*"))
		q.SetField("content")
		return q
	case strings.Contains(lower, "*"):
		q := bleve.NewWildcardQuery(lower)
		q.SetField("content")
		return q
	default:
		q := bleve.NewMatchQuery(tok)
		q.SetField("content")
		return q
	}
}
