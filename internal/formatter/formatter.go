// package formatter renders the ranked catalog to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, markdown (or md), and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Catalog is a snapshot of works grouped by category, each group ranked by votes.
type Catalog struct {
	Categories []models.Category
	Works      map[models.Category][]*models.Work
}

// NewCatalog builds a Catalog covering categories, in order. Categories missing from works export as empty.
func NewCatalog(works map[models.Category][]*models.Work, categories ...models.Category) *Catalog {
	if len(categories) == 0 {
		categories = models.Categories()
	}
	if works == nil {
		works = map[models.Category][]*models.Work{}
	}
	return &Catalog{Categories: categories, Works: works}
}

// Total returns the number of works across the exported categories.
func (c *Catalog) Total() int {
	n := 0
	for _, category := range c.Categories {
		n += len(c.Works[category])
	}
	return n
}

// ExportToCSV converts a Catalog to CSV format with columns: ID, Category, Rank, Title, Creator, Year, Votes
func ExportToCSV(catalog *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Category", "Rank", "Title", "Creator", "Year", "Votes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, category := range catalog.Categories {
		for i, work := range catalog.Works[category] {
			year := ""
			if work.PublicationYear() != 0 {
				year = strconv.Itoa(work.PublicationYear())
			}
			record := []string{
				work.ID(),
				category.String(),
				strconv.Itoa(i + 1),
				work.Title(),
				work.Creator(),
				year,
				strconv.Itoa(work.VoteCount()),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Catalog to Markdown with one ranked list per category
func ExportToMarkdown(catalog *Catalog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Media Rankings\n\n")
	buf.WriteString(fmt.Sprintf("**Works**: %d\n\n", catalog.Total()))

	for _, category := range catalog.Categories {
		works := catalog.Works[category]
		buf.WriteString(fmt.Sprintf("## %s\n\n", capitalize(category.Plural())))

		if len(works) == 0 {
			buf.WriteString(fmt.Sprintf("_No %s yet._\n\n", category.Plural()))
			continue
		}

		for i, work := range works {
			creatorPart := ""
			if work.Creator() != "" {
				creatorPart = fmt.Sprintf(" by %s", work.Creator())
			}
			yearPart := ""
			if work.PublicationYear() != 0 {
				yearPart = fmt.Sprintf(" (%d)", work.PublicationYear())
			}
			buf.WriteString(fmt.Sprintf("%d. **%s**%s%s [%s]\n", i+1, work.Title(), creatorPart, yearPart, votes(work.VoteCount())))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Catalog to plain text format
func ExportToText(catalog *Catalog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Works: %d\n", catalog.Total()))

	for _, category := range catalog.Categories {
		works := catalog.Works[category]
		buf.WriteString(fmt.Sprintf("\n%s (%d)\n", capitalize(category.Plural()), len(works)))
		for i, work := range works {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, work.Title(), votes(work.VoteCount())))
		}
	}

	return buf.Bytes(), nil
}

// Export renders catalog in format.
func Export(catalog *Catalog, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(catalog)
	case FormatMarkdown:
		return ExportToMarkdown(catalog)
	case FormatText:
		return ExportToText(catalog)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders catalog in format and writes it to path.
//
// Defaults to rankings.{ext} as the filename.
func WriteExport(catalog *Catalog, format Format, path string) (string, error) {
	if path == "" {
		path = "rankings." + format.Extension()
	}

	data, err := Export(catalog, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func votes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
