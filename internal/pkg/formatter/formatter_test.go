package formatter

import (
	"testing"

	"github.com/northpole/elf-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()

	md, err := factory.Create(FormatMarkdown)
	require.NoError(t, err)
	require.Equal(t, ".md", md.FileExtension())

	pdf, err := factory.Create(FormatPDF)
	require.NoError(t, err)
	require.Equal(t, ".pdf", pdf.FileExtension())

	_, err = factory.Create("docx")
	require.Error(t, err)
}

func TestMarkdownFormatter_Format(t *testing.T) {
	data, err := NewMarkdownFormatter().Format("🎁 A wooden chess set\nSearch keywords: wooden chess set\n")
	require.NoError(t, err)

	md := string(data)
	require.Contains(t, md, "# Gift suggestions")
	require.Contains(t, md, "🎁 A wooden chess set")
	require.Equal(t, "text/markdown; charset=utf-8", NewMarkdownFormatter().ContentType())
}

func TestPlainText(t *testing.T) {
	result := &entity.GiftResult{
		Suggestions: []entity.GiftSuggestion{
			{Text: "🎁 A yoga mat", Keywords: "yoga mat"},
			{Text: "🎁 A puzzle book"},
		},
	}

	got := PlainText(result)

	require.Equal(t, "🎁 A yoga mat\nSearch keywords: yoga mat\n\n🎁 A puzzle book\n", got)
}
