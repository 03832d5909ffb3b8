package db

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"staffhub/pkg/types"
)

// ApplyListParams применяет фильтры, поиск, сортировку и пагинацию.
// allowedMap сопоставляет поле из запроса с колонкой таблицы.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap, searchColumns...)
	builder = ApplySort(builder, filter, allowedMap)

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}
	return builder
}

// ApplyFilters добавляет только условия WHERE; используется и для COUNT.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	for _, jsonField := range sortedKeys(filter.Filter) {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		val := filter.Filter[jsonField]
		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			parts := strings.Split(s, ",")
			values := make([]interface{}, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					values = append(values, normalize(p))
				}
			}
			builder = builder.Where(sq.Eq{dbCol: values})
			continue
		}
		if s, ok := val.(string); ok {
			val = normalize(s)
		}
		builder = builder.Where(sq.Eq{dbCol: val})
	}

	if filter.Search != "" && len(searchColumns) > 0 {
		pattern := "%" + filter.Search + "%"
		or := sq.Or{}
		for _, col := range searchColumns {
			or = append(or, sq.ILike{col: pattern})
		}
		builder = builder.Where(or)
	}
	return builder
}

// ApplySort сортирует по разрешённым полям в алфавитном порядке ключей.
func ApplySort(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for _, jsonField := range sortedKeys(filter.Sort) {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(filter.Sort[jsonField]) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
	}
	return builder
}

// normalize превращает "true"/"false" и целые числа в типизированные значения.
func normalize(s string) interface{} {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
