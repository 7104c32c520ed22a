package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestHTTPCompilerSuccess(t *testing.T) {
	artifact := []byte{0x53, 0x4d, 0x01, 0x00, 0xde, 0xad}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/compile" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Identifier != "com.example.speechmodel" {
			t.Errorf("identifier not transmitted: %+v", req)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(artifact)
	}))
	defer srv.Close()

	hc := NewHTTPCompiler(srv.URL)
	path, err := hc.Compile(context.Background(), Request{
		Locale:     "en_US",
		Identifier: "com.example.speechmodel",
		Version:    "1.0",
		Phrases:    []PhraseCount{{Phrase: "Winawer", Count: 100}},
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != string(artifact) {
		t.Fatalf("artifact mismatch: got %v, want %v", got, artifact)
	}
}

func TestHTTPCompilerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported locale xx_XX"})
	}))
	defer srv.Close()

	hc := NewHTTPCompiler(srv.URL)
	_, err := hc.Compile(context.Background(), Request{Locale: "xx_XX"})
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}
	if buildErr.Msg != "unsupported locale xx_XX" {
		t.Errorf("service diagnostic not carried: %q", buildErr.Msg)
	}
}

func TestHTTPCompilerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hc := NewHTTPCompiler(srv.URL)
	_, err := hc.Compile(context.Background(), Request{})
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		t.Fatalf("a 500 is not a corpus rejection, got BuildError: %v", err)
	}
}

func TestHTTPCompilerContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hc := NewHTTPCompiler(srv.URL)
	if _, err := hc.Compile(ctx, Request{}); err == nil {
		t.Fatalf("expected error with canceled context")
	}
}
