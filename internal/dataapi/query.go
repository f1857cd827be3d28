package dataapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Cond is one PostgREST condition, rendered as column.op.value inside an or=() group.
type Cond struct {
	Column string
	Op     string
	Value  string
}

// ILikeCond matches rows whose column contains s, ignoring case.
func ILikeCond(column, s string) Cond {
	return Cond{Column: column, Op: "ilike", Value: "*" + s + "*"}
}

func (c Cond) String() string {
	return c.Column + "." + c.Op + "." + quote(c.Value)
}

// quote wraps values holding PostgREST reserved characters in double quotes.
func quote(v string) string {
	if !strings.ContainsAny(v, `,.:()"\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Query builds the query string of a table read. Conditions are ANDed.
type Query struct {
	table  string
	params url.Values
}

func From(table string) *Query {
	return &Query{table: table, params: url.Values{}}
}

func (q *Query) Table() string {
	return q.table
}

// Select sets the column list, including embedded parents such as "*,countries(name)".
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) Eq(column string, value interface{}) *Query {
	q.params.Add(column, "eq."+fmt.Sprint(value))
	return q
}

func (q *Query) ILike(column, s string) *Query {
	q.params.Add(column, "ilike.*"+s+"*")
	return q
}

func (q *Query) Gte(column string, t time.Time) *Query {
	q.params.Add(column, "gte."+t.UTC().Format(time.RFC3339))
	return q
}

func (q *Query) Lte(column string, t time.Time) *Query {
	q.params.Add(column, "lte."+t.UTC().Format(time.RFC3339))
	return q
}

func (q *Query) NotNull(column string) *Query {
	q.params.Add(column, "not.is.null")
	return q
}

// Or adds a group that matches when any of conds holds.
func (q *Query) Or(conds ...Cond) *Query {
	if len(conds) == 0 {
		return q
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	q.params.Add("or", "("+strings.Join(parts, ",")+")")
	return q
}

func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.params.Set("limit", strconv.Itoa(n))
	}
	return q
}

func (q *Query) Encode() string {
	return q.params.Encode()
}
