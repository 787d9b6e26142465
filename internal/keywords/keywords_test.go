package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"commentsent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, keywords ...string) *PatternSet {
	t.Helper()

	ps, err := Compile(keywords)
	require.NoError(t, err)

	return ps
}

func comment(body string) models.Comment {
	return models.Comment{Body: body, Author: "someone", CreatedUTC: 1}
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
papKeywords:
  - pap
  - lee hsien loong
oppoKeywords:
  - wp
  - workers' party
`), 0644))

	sets, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pap", "lee hsien loong"}, sets.A)
	assert.Equal(t, []string{"wp", "workers' party"}, sets.B)
}

func TestParseKeywords_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing A", yaml: "oppoKeywords: [wp]\n"},
		{name: "missing B", yaml: "papKeywords: [pap]\n"},
		{name: "empty A", yaml: "papKeywords: []\noppoKeywords: [wp]\n"},
		{name: "empty document", yaml: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, err := ParseKeywords([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrMissingKeywords)
			assert.Nil(t, sets)
		})
	}
}

func TestParseKeywords_Malformed(t *testing.T) {
	_, err := ParseKeywords([]byte("papKeywords: {not: [a list"))
	assert.Error(t, err)
}

func TestLoadKeywords_MissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "absent.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnchor_Idempotent(t *testing.T) {
	anchored := `(?:^|[^\p{L}\p{N}_])pap(?:$|[^\p{L}\p{N}_])`

	assert.Equal(t, anchored, Anchor("pap"))
	assert.Equal(t, Anchor("pap"), Anchor(Anchor("pap")))
	assert.Equal(t, anchored, Anchor(`\bpap\b`))
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile([]string{"pap", "(unclosed"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestCompile_Patterns(t *testing.T) {
	ps := mustCompile(t, "pap", `\bwp\b`)
	assert.Equal(t, []string{Anchor("pap"), Anchor("wp")}, ps.Patterns())
	assert.Equal(t, 2, ps.Len())
}

func TestCompile_BlankKeyword(t *testing.T) {
	for _, keyword := range []string{"", "   ", "\t"} {
		_, err := Compile([]string{"pap", keyword})
		assert.ErrorIs(t, err, ErrInvalidPattern, "%q", keyword)
	}
}

func TestParseKeywords_BlankEntry(t *testing.T) {
	tests := []string{
		"papKeywords: [\"\"]\noppoKeywords: [wp]\n",
		"papKeywords: [pap]\noppoKeywords: [wp, \"  \"]\n",
	}

	for _, doc := range tests {
		sets, err := ParseKeywords([]byte(doc))
		assert.ErrorIs(t, err, ErrMissingKeywords, doc)
		assert.Nil(t, sets)
	}
}

func TestPatternSet_WordBoundary(t *testing.T) {
	ps := mustCompile(t, "pap")

	assert.False(t, ps.Matches("papaya is great"))
	assert.True(t, ps.Matches("I support the pap"))
	assert.True(t, ps.Matches("PAP wins again"))
	assert.True(t, ps.Matches("pap, obviously."))
	assert.False(t, ps.Matches("the papacy"))
	assert.True(t, ps.Matches("pap"))
	assert.True(t, ps.Matches("(pap)"))
	assert.True(t, ps.Matches("支持 pap 的人"))
}

func TestPatternSet_UnicodeWordBoundary(t *testing.T) {
	ps := mustCompile(t, "pap")

	assert.False(t, ps.Matches("papé is nice"))
	assert.False(t, ps.Matches("ñpap"))
	assert.False(t, ps.Matches("pap２"))
	assert.False(t, ps.Matches("pap_wp"))
	assert.False(t, ps.Matches("支持pap"))
	assert.True(t, ps.Matches("café, pap, thé"))
}

func TestPatternSet_MultiWordKeyword(t *testing.T) {
	ps := mustCompile(t, "lee hsien loong")

	assert.True(t, ps.Matches("Lee Hsien Loong spoke today"))
	assert.False(t, ps.Matches("lee hsien loongest"))
}

func TestClassify_Exclusivity(t *testing.T) {
	a := mustCompile(t, "pap")
	b := mustCompile(t, "wp")

	bodies := []string{
		"the pap did well",
		"wp did better",
		"pap and wp debate",
		"nothing political here",
		"",
	}

	for _, body := range bodies {
		c := comment(body)
		assert.False(t, Classify(c, a, b) && Classify(c, b, a), body)
	}

	assert.True(t, Classify(comment("the pap did well"), a, b))
	assert.False(t, Classify(comment("the pap did well"), b, a))
	assert.False(t, Classify(comment("pap and wp debate"), a, b))
	assert.False(t, Classify(comment("pap and wp debate"), b, a))
	assert.False(t, Classify(comment("nothing political here"), a, b))
	assert.False(t, Classify(comment("nothing political here"), b, a))
}

func TestFilter_PreservesOrder(t *testing.T) {
	a := mustCompile(t, "pap")
	b := mustCompile(t, "wp")

	comments := []models.Comment{
		comment("pap one"),
		comment("wp one"),
		comment("pap two"),
		comment("pap and wp"),
	}

	got := Filter(comments, a, b)
	require.Len(t, got, 2)
	assert.Equal(t, "pap one", got[0].Body)
	assert.Equal(t, "pap two", got[1].Body)

	empty := Filter(nil, a, b)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDenylist_Apply(t *testing.T) {
	d := NewDenylist(DefaultDeniedAuthor, "")

	comments := []models.Comment{
		{Body: "pap", Author: "alice"},
		{Body: "pap", Author: DefaultDeniedAuthor},
		{Body: "wp", Author: "Sneakpeek_bot"},
	}

	kept, removed := d.Apply(comments)
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 2)
	assert.Equal(t, "alice", kept[0].Author)
	assert.Equal(t, "Sneakpeek_bot", kept[1].Author)
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Contains(DefaultDeniedAuthor))
}
