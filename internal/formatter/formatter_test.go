package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/shared"
	th "github.com/desertthunder/mediaranker/internal/testing"
)

func newWork(id, title string, category models.Category, creator string, year, votes int) *models.Work {
	w := models.NewWork(title, category)
	w.SetID(id)
	w.SetCreator(creator)
	w.SetPublicationYear(year)
	w.SetVoteCount(votes)
	return w
}

func testCatalog() *Catalog {
	return NewCatalog(map[models.Category][]*models.Work{
		models.CategoryAlbum: {
			newWork("album1", "Dirty Computer", models.CategoryAlbum, "Janelle Monáe", 2018, 3),
			newWork("album2", "Blonde", models.CategoryAlbum, "Frank Ocean", 2016, 1),
		},
		models.CategoryMovie: {
			newWork("movie1", "Arrival", models.CategoryMovie, "", 0, 0),
		},
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testCatalog())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Category,Rank,Title,Creator,Year,Votes") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "album1,album,1,Dirty Computer,Janelle Monáe,2018,3") {
			t.Errorf("CSV missing first album row, got: %s", output)
		}
		if !strings.Contains(output, "album2,album,2,Blonde,Frank Ocean,2016,1") {
			t.Errorf("CSV missing second album row, got: %s", output)
		}
		if !strings.Contains(output, "movie1,movie,1,Arrival,,,0") {
			t.Errorf("CSV should leave unknown year blank, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Errorf("expected header plus 3 rows, got %d lines", len(lines))
		}
	})

	t.Run("ExportToCSV Quotes Fields", func(t *testing.T) {
		catalog := NewCatalog(map[models.Category][]*models.Work{
			models.CategoryBook: {newWork("book1", "Sapiens, A Brief History", models.CategoryBook, "", 0, 0)},
		})

		data, err := ExportToCSV(catalog)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), `"Sapiens, A Brief History"`) {
			t.Errorf("expected comma in title to be quoted, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testCatalog())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"# Media Rankings",
			"**Works**: 3",
			"## Albums",
			"1. **Dirty Computer** by Janelle Monáe (2018) [3 votes]",
			"2. **Blonde** by Frank Ocean (2016) [1 vote]",
			"## Books",
			"_No books yet._",
			"## Movies",
			"1. **Arrival** [0 votes]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}

		if strings.Index(output, "## Albums") > strings.Index(output, "## Movies") {
			t.Error("expected categories in catalog order")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testCatalog())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{"Works: 3", "Albums (2)", "1. Dirty Computer - 3 votes", "Books (0)", "Movies (1)"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("Single Category", func(t *testing.T) {
		catalog := NewCatalog(testCatalog().Works, models.CategoryMovie)

		if catalog.Total() != 1 {
			t.Errorf("expected 1 work, got %d", catalog.Total())
		}

		data, err := ExportToText(catalog)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if strings.Contains(string(data), "Albums") {
			t.Errorf("expected only movies, got: %s", data)
		}
	})

	t.Run("Empty Catalog", func(t *testing.T) {
		catalog := NewCatalog(nil)

		data, err := ExportToCSV(catalog)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 1 {
			t.Errorf("expected only headers, got %d lines", len(lines))
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"txt", FormatText},
		{" text ", FormatText},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := ParseFormat("xlsx"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Extension", func(t *testing.T) {
		if FormatMarkdown.Extension() != "md" {
			t.Errorf("expected md, got %s", FormatMarkdown.Extension())
		}
		if FormatCSV.Extension() != "csv" {
			t.Errorf("expected csv, got %s", FormatCSV.Extension())
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Writes To Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		written, err := WriteExport(testCatalog(), FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Dirty Computer") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("Default Filename", func(t *testing.T) {
		dir := t.TempDir()
		th.MustChdir(t, dir)

		written, err := WriteExport(testCatalog(), FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "rankings.md" {
			t.Errorf("expected rankings.md, got %s", written)
		}
		th.AssertFileExists(t, filepath.Join(dir, "rankings.md"))
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")

		if _, err := WriteExport(testCatalog(), FormatText, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file to be written")
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")

		if _, err := WriteExport(testCatalog(), Format("xlsx"), path); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
