package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// resultSet is a decoded GRAPH.QUERY reply. FalkorDB answers queries with
// a nested array: column headers, value rows, and execution statistics.
// Update-only queries carry statistics alone.
type resultSet struct {
	columns []string
	rows    [][]interface{}
}

func decodeResultSet(reply interface{}) (*resultSet, error) {
	top, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected reply shape %T", reply)
	}
	rs := &resultSet{}
	if len(top) < 3 {
		return rs, nil
	}
	if header, ok := top[0].([]interface{}); ok {
		for _, h := range header {
			rs.columns = append(rs.columns, toString(h))
		}
	}
	if rows, ok := top[1].([]interface{}); ok {
		for _, row := range rows {
			if cells, ok := row.([]interface{}); ok {
				rs.rows = append(rs.rows, cells)
			}
		}
	}
	return rs, nil
}

// Cell accessors. Value types depend on the RESP protocol version, so
// each accessor tolerates the representations go-redis may hand back.

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err == nil {
			return f
		}
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err == nil {
			return n
		}
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

func cell(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// cypherString quotes a value as a Cypher string literal. GRAPH.QUERY has
// no parameter map, so every caller-supplied string passes through here
// before being embedded in a query.
func cypherString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// cypherStringList renders a Cypher list literal of quoted strings.
func cypherStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = cypherString(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// isMissingGraph matches the error FalkorDB returns for graph-level
// commands against a key that holds no graph yet.
func isMissingGraph(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "empty key") || strings.Contains(msg, "unknown graph")
}

// isIndexExists matches the duplicate-index errors FalkorDB returns when
// initialization runs against an already-initialized graph.
func isIndexExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already indexed") || strings.Contains(msg, "already exists")
}
