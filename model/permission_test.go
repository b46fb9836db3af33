package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelNone < LevelRead)
	assert.True(t, LevelRead < LevelWrite)
	assert.True(t, LevelWrite < LevelAdmin)

	assert.True(t, LevelAdmin.Satisfies(LevelRead))
	assert.True(t, LevelWrite.Satisfies(LevelWrite))
	assert.False(t, LevelRead.Satisfies(LevelWrite))
	assert.True(t, LevelNone.Satisfies(LevelNone))
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]PermissionLevel{
		"none":  LevelNone,
		"read":  LevelRead,
		"write": LevelWrite,
		"admin": LevelAdmin,
		"ADMIN": LevelAdmin,
	} {
		got, ok := ParseLevel(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseLevel("owner")
	assert.False(t, ok)
}

func TestLevelJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(LevelWrite)
	require.NoError(t, err)
	assert.Equal(t, `"write"`, string(data))

	var l PermissionLevel
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &l))
	assert.Equal(t, LevelAdmin, l)

	// Numeric form is accepted for legacy payloads.
	require.NoError(t, json.Unmarshal([]byte(`2`), &l))
	assert.Equal(t, LevelWrite, l)

	assert.Error(t, json.Unmarshal([]byte(`"owner"`), &l))
}

func TestPermissionMatches(t *testing.T) {
	p := Permission{Resource: "procurement", Level: LevelWrite}

	assert.True(t, p.Matches("procurement"))
	assert.True(t, p.Matches("procurement.orders"))
	assert.False(t, p.Matches("finance.invoices"))
	assert.False(t, p.Matches("procurements"))

	exact := Permission{Resource: "procurement.orders", Level: LevelRead}
	assert.True(t, exact.Matches("procurement.orders"))
	assert.False(t, exact.Matches("procurement"))
}

func TestPermissionConditions(t *testing.T) {
	p := Permission{
		Resource:   "hr",
		Level:      LevelWrite,
		Conditions: map[string]interface{}{"departmentOnly": true},
	}

	assert.True(t, p.ConditionsMet(map[string]interface{}{"departmentOnly": true}))
	assert.False(t, p.ConditionsMet(map[string]interface{}{"departmentOnly": false}))
	assert.False(t, p.ConditionsMet(map[string]interface{}{}))
	assert.False(t, p.ConditionsMet(nil))

	unconditioned := Permission{Resource: "hr", Level: LevelRead}
	assert.True(t, unconditioned.ConditionsMet(nil))
}

func TestRawPermissionUnmarshal(t *testing.T) {
	var raw RawPermission
	require.NoError(t, json.Unmarshal([]byte(`"procurement.write"`), &raw))
	assert.Equal(t, "procurement.write", raw.Shorthand)
	assert.Nil(t, raw.Structured)

	require.NoError(t, json.Unmarshal([]byte(`{"resource":"hr.records","level":"write","conditions":{"departmentOnly":true}}`), &raw))
	require.NotNil(t, raw.Structured)
	assert.Equal(t, "hr.records", raw.Structured.Resource)
	assert.Equal(t, LevelWrite, raw.Structured.Level)
	assert.Equal(t, true, raw.Structured.Conditions["departmentOnly"])

	assert.Error(t, json.Unmarshal([]byte(`42`), &raw))
}

func TestRawPermissionListUnmarshal(t *testing.T) {
	payload := `["procurement.write", {"resource":"*","level":"admin"}]`

	var raws []RawPermission
	require.NoError(t, json.Unmarshal([]byte(payload), &raws))
	require.Len(t, raws, 2)
	assert.Equal(t, "procurement.write", raws[0].Shorthand)
	require.NotNil(t, raws[1].Structured)
	assert.True(t, raws[1].Structured.IsWildcard())
}
