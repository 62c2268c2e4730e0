package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryDefaults(t *testing.T) {
	p := parseQuery(map[string]string{}, "created_at", "desc", DefaultOpts)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, "created_at", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
	assert.Equal(t, 0, p.Offset())
}

func TestParseQueryClampAndAll(t *testing.T) {
	p := parseQuery(map[string]string{"page": "3", "per_page": "9999", "order": "ASC"}, "name", "desc", DefaultOpts)
	assert.Equal(t, 200, p.PerPage)
	assert.Equal(t, "asc", p.SortOrder)
	assert.Equal(t, 400, p.Offset())

	all := parseQuery(map[string]string{"page": "4", "per_page": "all"}, "name", "asc", ExportOpts)
	assert.True(t, all.All)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 10_000, all.PerPage)
}

func TestOrderClauseWhitelist(t *testing.T) {
	allowed := map[string]string{"name": "student_last_name", "created_at": "student_created_at"}
	p := Params{SortBy: "name; DROP TABLE x", SortOrder: "asc"}
	assert.Equal(t, "student_created_at ASC", p.OrderClause(allowed, "created_at"))

	p.SortBy = "name"
	p.SortOrder = "desc"
	assert.Equal(t, "student_last_name DESC", p.OrderClause(allowed, "created_at"))
}

func TestBuildMeta(t *testing.T) {
	m := BuildMeta(51, Params{Page: 2, PerPage: 25})
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)
	assert.Equal(t, 3, *m.NextPage)
	assert.Equal(t, 1, *m.PrevPage)

	empty := BuildMeta(0, Params{Page: 1, PerPage: 25})
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.Nil(t, empty.NextPage)
}
