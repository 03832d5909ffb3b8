package db

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffhub/pkg/types"
)

var employeeFields = map[string]string{
	"company_id": "e.company_id",
	"is_active":  "e.is_active",
	"full_name":  "e.full_name",
}

func TestApplyListParams(t *testing.T) {
	filter := types.Filter{
		Search: "ana",
		Sort:   map[string]string{"full_name": "desc", "password": "asc"},
		Filter: map[string]interface{}{
			"company_id": "1,2",
			"is_active":  "true",
			"role":       "admin",
		},
		Limit:          10,
		Offset:         20,
		WithPagination: true,
	}

	builder := sq.Select("e.id").From("employees e").PlaceholderFormat(sq.Dollar)
	query, args, err := ApplyListParams(builder, filter, employeeFields, "e.full_name", "e.email").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT e.id FROM employees e WHERE e.company_id IN ($1,$2) AND e.is_active = $3 AND (e.full_name ILIKE $4 OR e.email ILIKE $5) ORDER BY e.full_name DESC LIMIT 10 OFFSET 20",
		query)
	assert.Equal(t, []interface{}{int64(1), int64(2), true, "%ana%", "%ana%"}, args)
}

func TestApplyListParams_NoPagination(t *testing.T) {
	builder := sq.Select("id").From("companies")
	query, _, err := ApplyListParams(builder, types.Filter{Limit: 50}, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM companies", query)
}
