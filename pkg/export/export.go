// Package export materializes a corpus into the compiler's submission shape,
// drives the compile call, and places the produced artifact at the caller's
// destination path.
package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/japaniel/speechcorpus/pkg/compiler"
	"github.com/japaniel/speechcorpus/pkg/config"
	"github.com/japaniel/speechcorpus/pkg/corpus"
)

// IOError reports a filesystem failure while placing the artifact at its
// destination. Compiler rejections surface as *compiler.BuildError instead.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write artifact to %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Exporter copies compiled model artifacts to their destination. The
// filesystem is injected so export is testable without touching disk.
type Exporter struct {
	FS       afero.Fs
	Compiler compiler.Compiler
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
}

// New creates an exporter over the given filesystem and compiler.
func New(fs afero.Fs, c compiler.Compiler) *Exporter {
	return &Exporter{FS: fs, Compiler: c}
}

// Export submits the corpus to the compiler and copies the resulting artifact
// to destPath, overwriting any existing file there. The copy is atomic: the
// artifact is written to a temp file in the destination directory and then
// renamed, so a failure never leaves a truncated destination behind.
func (e *Exporter) Export(ctx context.Context, c corpus.Corpus, cfg config.Config, destPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	req := compiler.NewRequest(cfg.Locale, cfg.Identifier, cfg.Version, c)
	if e.Logger != nil {
		e.Logger.Printf("compiling model %s %s (%s): %d phrases, %d pronunciations, %d templates",
			cfg.Identifier, cfg.Version, cfg.Locale, len(req.Phrases), len(req.Pronunciations), len(req.Templates))
	}

	artifactPath, err := e.Compiler.Compile(ctx, req)
	if err != nil {
		return err
	}
	// The artifact temp file belongs to the compiler; clean it up once copied.
	defer e.FS.Remove(artifactPath)

	return e.place(artifactPath, destPath)
}

// place copies the artifact to destPath via a same-directory temp file and
// rename.
func (e *Exporter) place(artifactPath, destPath string) error {
	src, err := e.FS.Open(artifactPath)
	if err != nil {
		return &IOError{Path: destPath, Err: fmt.Errorf("open artifact %s: %w", artifactPath, err)}
	}
	defer src.Close()

	destDir := filepath.Dir(destPath)
	tmp, err := afero.TempFile(e.FS, destDir, ".speechcorpus-*")
	if err != nil {
		return &IOError{Path: destPath, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		e.FS.Remove(tmpName)
		return &IOError{Path: destPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		e.FS.Remove(tmpName)
		return &IOError{Path: destPath, Err: err}
	}
	if err := e.FS.Rename(tmpName, destPath); err != nil {
		e.FS.Remove(tmpName)
		return &IOError{Path: destPath, Err: err}
	}
	return nil
}
