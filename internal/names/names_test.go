package names

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/fieldgraph/internal/field"
)

func TestToCamelCase(t *testing.T) {
	for in, want := range map[string]string{
		"Title":      "title",
		"ID":         "id",
		"URLPath":    "urlPath",
		"AuthorID":   "authorID",
		"created_at": "createdAt",
		"_private":   "_private",
		"already":    "already",
		"a__b":       "aB",
		"":           "",
	} {
		require.Equal(t, want, ToCamelCase(in), in)
	}
}

func TestConverter(t *testing.T) {
	f := field.New("CreatedAt")
	require.Equal(t, "createdAt", Default.Field(f))
	require.Equal(t, "CreatedAt", Converter{}.Field(f))

	f.PublicName = "created"
	require.Equal(t, "created", Default.Field(f))
	require.Equal(t, "first_name", Converter{}.Argument(&field.Argument{Name: "first_name"}))
	require.Equal(t, "firstName", Default.Argument(&field.Argument{Name: "first_name"}))
}
