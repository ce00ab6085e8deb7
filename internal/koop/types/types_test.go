package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactorHTMLUnmarshal(t *testing.T) {
	var r RedactorHTML
	require.NoError(t, json.Unmarshal([]byte(`"<p class=\"mb-2\" style=\"color:red\">Hello <span style=\"color:blue\">World</span>\u200B</p><script>alert(1)</script>"`), &r))
	assert.Equal(t, "<p>Hello World</p>", r.Body)
	assert.True(t, r.AlreadySanitized)
	assert.Equal(t, "Hello World", r.StripTags())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `"<p>Hello World</p>"`, string(b))
}

func TestRedactorHTMLValue(t *testing.T) {
	v, err := RedactorHTML{Body: `<p onclick="x()">a</p>`}.Value()
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", v)

	var r RedactorHTML
	require.NoError(t, r.Scan([]byte("<p>b</p>")))
	assert.Equal(t, "<p>b</p>", r.String())
	assert.False(t, r.IsEmpty())
	assert.True(t, NewRedactorHTML("<p><br></p>").IsEmpty())
	assert.Error(t, r.Scan(42))
}

func TestStringArray(t *testing.T) {
	a := StringArray{"tarım", "Hasat"}
	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, `["tarım","Hasat"]`, v)

	var b StringArray
	require.NoError(t, b.Scan(v))
	assert.Equal(t, a, b)
	assert.True(t, b.Contains("hasat"))

	require.NoError(t, b.Scan(nil))
	assert.Nil(t, b)

	v, err = StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
