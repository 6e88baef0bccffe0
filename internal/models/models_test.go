package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", p.Hash)

	ok, err := p.Matches("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordSetKeepsOnlyTheHash(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("s3cret-pass"))

	raw := fmt.Sprintf("%+v", p)
	assert.NotContains(t, raw, "s3cret-pass")
	assert.Equal(t, Password{Hash: p.Hash}, p)
}

func TestPasswordMatchesBadHash(t *testing.T) {
	p := Password{Hash: "not-a-bcrypt-hash"}
	ok, err := p.Matches("anything")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFullName(t *testing.T) {
	first, last := "Ada", "Lovelace"
	u := &User{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", u.FullName())

	u.FirstName = &first
	assert.Equal(t, "ada@example.com", u.FullName())

	u.LastName = &last
	assert.Equal(t, "Ada Lovelace", u.FullName())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestProductPriceIsJSONNumber(t *testing.T) {
	p := Product{Name: "Hammer", Price: decimal.NewFromInt(10)}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":10`)

	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"price": 12.5}`), &in))
	require.NotNil(t, in.Price)
	assert.True(t, in.Price.Equal(decimal.RequireFromString("12.5")))
}

func TestUserJSONHidesSecrets(t *testing.T) {
	u := User{Email: "a@example.com", PasswordHash: "hash", IsSuperuser: true}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "superuser")
}
