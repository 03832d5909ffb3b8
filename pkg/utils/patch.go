package utils

import (
	"encoding/json"
	"strings"

	"github.com/aarondl/null/v8"

	apperrors "staffhub/pkg/errors"
)

// SentFields возвращает ключи, присутствующие в теле запроса. Нужен, чтобы
// отличить "поле не передано" от "поле передано как null".
func SentFields(rawRequestBody []byte) (map[string]json.RawMessage, error) {
	sent := make(map[string]json.RawMessage)
	if len(rawRequestBody) == 0 {
		return sent, nil
	}
	if err := json.Unmarshal(rawRequestBody, &sent); err != nil {
		return nil, apperrors.NewBadRequestError("Тело запроса должно быть JSON-объектом")
	}
	return sent, nil
}

// PatchNullString кладёт в changes значение колонки: строку, nil для явного null,
// или ничего, если поле не передано. Пустая строка тоже очищает поле.
func PatchNullString(changes map[string]interface{}, sent map[string]json.RawMessage, jsonKey, column string, v null.String, normalize func(string) string) {
	if _, ok := sent[jsonKey]; !ok {
		return
	}
	if !v.Valid {
		changes[column] = nil
		return
	}
	s := strings.TrimSpace(v.String)
	if normalize != nil {
		s = normalize(s)
	}
	if s == "" {
		changes[column] = nil
		return
	}
	changes[column] = s
}

func PatchNullBool(changes map[string]interface{}, sent map[string]json.RawMessage, jsonKey, column string, v null.Bool) {
	if _, ok := sent[jsonKey]; ok && v.Valid {
		changes[column] = v.Bool
	}
}
