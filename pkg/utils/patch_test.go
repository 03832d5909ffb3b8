package utils

import (
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchNullString(t *testing.T) {
	sent, err := SentFields([]byte(`{"phone": null, "department": "  RRHH ", "position": "", "telegram_handle": "@ana"}`))
	require.NoError(t, err)

	changes := map[string]interface{}{}
	PatchNullString(changes, sent, "phone", "phone", null.String{}, strings.ToUpper)
	PatchNullString(changes, sent, "department", "department", null.StringFrom("  RRHH "), nil)
	PatchNullString(changes, sent, "position", "position", null.StringFrom(""), nil)
	PatchNullString(changes, sent, "email", "email", null.StringFrom("x@y.cl"), nil)
	PatchNullString(changes, sent, "telegram_handle", "telegram_handle", null.StringFrom("@ana"), func(s string) string {
		return strings.TrimPrefix(s, "@")
	})

	assert.Equal(t, map[string]interface{}{
		"phone":           nil,
		"department":      "RRHH",
		"position":        nil,
		"telegram_handle": "ana",
	}, changes)
}

func TestSentFieldsRejectsArray(t *testing.T) {
	_, err := SentFields([]byte(`[1,2]`))
	assert.Error(t, err)
}
