// Package query implements the listing feature pipeline: keyword search,
// attribute filtering, and pagination, composed left-to-right over a gorm
// query. Parsing is transport-level (url.Values in, Spec out); the scopes
// are plain gorm transforms so repositories can count the filtered set
// independently of the paginated page.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

var opSQL = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Condition is a single attribute constraint. Field names are not validated
// against a schema here; the store rejects unknown columns.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// Spec describes one desired result set. Constructed per request,
// consumed once.
type Spec struct {
	Keyword    string
	Page       int
	PageSize   int
	Conditions []Condition
}

// Control keys never interpreted as attribute constraints.
var reservedKeys = map[string]bool{
	"keyword": true,
	"page":    true,
	"limit":   true,
}

var (
	identPattern    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	rangeKeyPattern = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\[(gte|gt|lte|lt)\]$`)
)

// Parse builds a Spec from raw request query parameters. Every non-reserved
// key becomes an equality constraint, or a range constraint when spelled
// attr[gte|gt|lte|lt]=value. Keys that are neither valid identifiers nor
// range expressions are dropped. Page defaults to 1 when absent or
// non-positive; pageSize is fixed by the deployment, not the caller.
func Parse(values url.Values, pageSize int) Spec {
	spec := Spec{
		Keyword:  strings.TrimSpace(values.Get("keyword")),
		Page:     1,
		PageSize: pageSize,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		spec.Page = page
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if reservedKeys[key] {
			continue
		}
		value := values.Get(key)

		if m := rangeKeyPattern.FindStringSubmatch(key); m != nil {
			spec.Conditions = append(spec.Conditions, Condition{
				Field: m[1],
				Op:    Op(m[2]),
				Value: value,
			})
			continue
		}

		if identPattern.MatchString(key) {
			spec.Conditions = append(spec.Conditions, Condition{
				Field: key,
				Op:    OpEq,
				Value: value,
			})
		}
	}

	return spec
}

// Search restricts to rows whose name contains the keyword,
// case-insensitively. An empty keyword is a no-op.
func (s Spec) Search(db *gorm.DB) *gorm.DB {
	if s.Keyword == "" {
		return db
	}
	like := "%" + strings.ToLower(s.Keyword) + "%"
	return db.Where("LOWER(name) LIKE ?", like)
}

// Filter applies the attribute constraints. Narrows within the search
// result when chained after Search.
func (s Spec) Filter(db *gorm.DB) *gorm.DB {
	for _, cond := range s.Conditions {
		sqlOp, ok := opSQL[cond.Op]
		if !ok {
			continue
		}
		db = db.Where(fmt.Sprintf("%s %s ?", cond.Field, sqlOp), cond.Value)
	}
	return db
}

// Scope applies search then filter; this is the predicate shared by the
// paginated listing and the total count.
func (s Spec) Scope(db *gorm.DB) *gorm.DB {
	return s.Filter(s.Search(db))
}

// Paginate slices the final searched/filtered set.
func (s Spec) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset(s.Offset()).Limit(s.PageSize)
}

// Offset returns the number of rows skipped before the requested page.
func (s Spec) Offset() int {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * s.PageSize
}
