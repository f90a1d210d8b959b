package formatter

import (
	"fmt"
	"strings"

	"github.com/northpole/elf-backend/internal/entity"
)

const baseTitle = "Gift suggestions"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
)

type Formatter interface {
	Format(plainText string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format ResultFormat) (Formatter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// PlainText renders a gift result as the plain-text list the
// formatters consume.
func PlainText(result *entity.GiftResult) string {
	var b strings.Builder
	for _, s := range result.Suggestions {
		b.WriteString(s.Text)
		b.WriteString("\n")
		if s.Keywords != "" {
			b.WriteString("Search keywords: " + s.Keywords + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
