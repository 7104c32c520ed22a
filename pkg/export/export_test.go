package export

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/japaniel/speechcorpus/pkg/compiler"
	"github.com/japaniel/speechcorpus/pkg/config"
	"github.com/japaniel/speechcorpus/pkg/corpus"
)

// fakeCompiler honors the Compiler contract without the real service: it
// writes a canned artifact into the shared filesystem and returns its path.
type fakeCompiler struct {
	fs       afero.Fs
	artifact []byte
	err      error

	calls       int
	lastRequest compiler.Request
}

func (f *fakeCompiler) Compile(ctx context.Context, req compiler.Request) (string, error) {
	f.calls++
	f.lastRequest = req
	if f.err != nil {
		return "", f.err
	}
	path := "/tmp/artifact-out"
	if err := afero.WriteFile(f.fs, path, f.artifact, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func testConfig() config.Config {
	return config.Config{
		Locale:     "en_US",
		Identifier: "com.example.speechmodel",
		Version:    "1.0",
	}
}

func winawerCorpus(t *testing.T) corpus.Corpus {
	t.Helper()
	c, err := corpus.NewBuilder().
		AddPhrase("Winawer", corpus.WithCount(100), corpus.WithPronunciation("wIn'aU@r")).
		AddPhrase("Play the Winawer", corpus.WithCount(50)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestExportWritesDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	fc := &fakeCompiler{fs: fs, artifact: []byte("binary-model")}
	e := New(fs, fc)

	if err := e.Export(context.Background(), winawerCorpus(t), testConfig(), "/out/speech_model.bin"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, err := afero.ReadFile(fs, "/out/speech_model.bin")
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != "binary-model" {
		t.Fatalf("destination content mismatch: %q", got)
	}
	if fc.calls != 1 {
		t.Errorf("compiler must be invoked exactly once, got %d", fc.calls)
	}
	if len(fc.lastRequest.Pronunciations) != 1 || len(fc.lastRequest.Phrases) != 2 {
		t.Errorf("unexpected request shape: %+v", fc.lastRequest)
	}

	// The compiler's temp artifact is cleaned up after the copy.
	if exists, _ := afero.Exists(fs, "/tmp/artifact-out"); exists {
		t.Errorf("compiler temp artifact not removed")
	}
}

func TestExportOverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/out/speech_model.bin", []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	fc := &fakeCompiler{fs: fs, artifact: []byte("fresh")}
	e := New(fs, fc)

	if err := e.Export(context.Background(), winawerCorpus(t), testConfig(), "/out/speech_model.bin"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, _ := afero.ReadFile(fs, "/out/speech_model.bin")
	if string(got) != "fresh" {
		t.Fatalf("destination not overwritten: %q", got)
	}

	// No temp or partial files remain next to the destination.
	infos, err := afero.ReadDir(fs, "/out")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name() != "speech_model.bin" {
		var names []string
		for _, fi := range infos {
			names = append(names, fi.Name())
		}
		t.Fatalf("leftover files in destination dir: %v", names)
	}
}

func TestExportPropagatesBuildError(t *testing.T) {
	fs := afero.NewMemMapFs()
	fc := &fakeCompiler{fs: fs, err: &compiler.BuildError{Msg: "template references undeclared class"}}
	e := New(fs, fc)

	err := e.Export(context.Background(), winawerCorpus(t), testConfig(), "/out/speech_model.bin")
	if err == nil {
		t.Fatalf("expected build error")
	}
	var buildErr *compiler.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *compiler.BuildError, got %T: %v", err, err)
	}
	if exists, _ := afero.Exists(fs, "/out/speech_model.bin"); exists {
		t.Errorf("destination must not be created on build failure")
	}
}

func TestExportUnwritableDestination(t *testing.T) {
	backing := afero.NewMemMapFs()
	fc := &fakeCompiler{fs: backing, artifact: []byte("model")}

	// Read-only view: the compile succeeds against the backing fs, but the
	// destination copy must fail with an IOError.
	e := New(afero.NewReadOnlyFs(backing), fc)

	err := e.Export(context.Background(), winawerCorpus(t), testConfig(), "/out/speech_model.bin")
	if err == nil {
		t.Fatalf("expected IO error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T: %v", err, err)
	}
	if exists, _ := afero.Exists(backing, "/out/speech_model.bin"); exists {
		t.Errorf("no file may be created on IO failure")
	}
}

func TestExportRejectsInvalidConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	fc := &fakeCompiler{fs: fs, artifact: []byte("model")}
	e := New(fs, fc)

	err := e.Export(context.Background(), winawerCorpus(t), config.Config{}, "/out/speech_model.bin")
	if err == nil {
		t.Fatalf("expected error for empty configuration")
	}
	if fc.calls != 0 {
		t.Errorf("compiler must not be invoked with invalid configuration")
	}
}
