package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/ctrlmap-tools/cmapsync/internal/utils"
)

// Writer turns a resolved document graph into on-disk files: one file per
// document per format under the domain's folder, plus a regenerated
// index.md. Files are only touched when their content changed; a changed
// file is overwritten only under force and reported as a conflict
// otherwise.
type Writer struct {
	rootDir     string
	force       bool
	keepRawJSON bool
	logger      *utils.Logger
}

// WriterOptions configures a Writer.
type WriterOptions struct {
	RootDir     string
	Force       bool
	KeepRawJSON bool
	Logger      *utils.Logger
}

// NewWriter creates a writer rooted at opts.RootDir.
func NewWriter(opts WriterOptions) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if opts.RootDir == "" {
		opts.RootDir = "."
	}
	return &Writer{
		rootDir:     opts.RootDir,
		force:       opts.Force,
		keepRawJSON: opts.KeepRawJSON,
		logger:      logger.WithComponent("writer"),
	}
}

// Write persists one domain's export result and returns the run report.
func (w *Writer) Write(result *domain.ExportResult) (*domain.WriteReport, error) {
	dir := filepath.Join(w.rootDir, result.Domain.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	report := &domain.WriteReport{}
	stems := fileStems(result.Documents)

	formats := []Format{FormatMarkdown}
	if w.keepRawJSON {
		formats = append(formats, FormatJSON, FormatYAML)
	}

	for i, doc := range result.Documents {
		for _, format := range formats {
			content, err := Render(doc, format)
			if err != nil {
				return nil, fmt.Errorf("rendering %s %s: %w", result.Domain, doc.ID, err)
			}
			name := stems[i] + format.Ext()
			if err := w.writeFile(result.Domain, dir, name, content, report); err != nil {
				return nil, err
			}
		}
	}

	index := renderIndex(result.Domain, result.Documents, stems)
	if err := w.writeFile(result.Domain, dir, "index.md", index, report); err != nil {
		return nil, err
	}

	return report, nil
}

// writeFile applies the overwrite policy for a single target file.
func (w *Writer) writeFile(kind domain.Kind, dir, name string, content []byte, report *domain.WriteReport) error {
	path := filepath.Join(dir, name)

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		report.Created++
		w.logger.Debug().Str("file", name).Msg("created")
	case err != nil:
		return fmt.Errorf("reading %s: %w", path, err)
	case bytes.Equal(existing, content):
		report.Unchanged++
	case w.force:
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		report.Overwritten++
		w.logger.Debug().Str("file", name).Msg("overwritten")
	default:
		report.Conflicts = append(report.Conflicts, filepath.Join(kind.Dir(), name))
	}
	return nil
}

// fileStems derives a file stem per document from its title slug. Slug
// collisions within the batch get an id suffix on every colliding stem.
func fileStems(docs []*domain.Document) []string {
	slugs := make([]string, len(docs))
	counts := make(map[string]int, len(docs))
	for i, doc := range docs {
		slugs[i] = utils.Slugify(doc.Title)
		counts[slugs[i]]++
	}
	for i, doc := range docs {
		if counts[slugs[i]] > 1 {
			slugs[i] = slugs[i] + "-" + doc.ID
		}
	}
	return slugs
}
