package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewOllama_Defaults(t *testing.T) {
	o := NewOllama()

	if o.baseURL != DefaultOllamaURL {
		t.Errorf("baseURL = %s, want %s", o.baseURL, DefaultOllamaURL)
	}
	if o.config.Model != DefaultModel {
		t.Errorf("model = %s, want %s", o.config.Model, DefaultModel)
	}
	if o.config.Dimensions != DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", o.config.Dimensions, DefaultDimensions)
	}
}

func TestNewOllama_WithOptions(t *testing.T) {
	o := NewOllama(
		WithBaseURL("http://custom:8080"),
		WithModel("nomic-embed-text", 768),
		WithTimeout(60*time.Second),
	)

	if o.baseURL != "http://custom:8080" {
		t.Errorf("baseURL = %s", o.baseURL)
	}
	if got := o.Config(); got.Model != "nomic-embed-text" || got.Dimensions != 768 {
		t.Errorf("Config() = %+v", got)
	}
	if o.client.Timeout != 60*time.Second {
		t.Errorf("timeout = %v", o.client.Timeout)
	}
}

func TestOllama_Embed(t *testing.T) {
	vector := make([]float32, 4)
	for i := range vector {
		vector[i] = float32(i) * 0.25
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathEmbeddings {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Prompt != "protein folding" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vector})
	}))
	defer srv.Close()

	o := NewOllama(WithBaseURL(srv.URL), WithModel("test-model", 4))

	got, err := o.Embed(context.Background(), "protein folding")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := range got {
		if got[i] != vector[i] {
			t.Errorf("vector[%d] = %f, want %f", i, got[i], vector[i])
		}
	}
}

func TestOllama_Embed_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{1, 2}})
	}))
	defer srv.Close()

	o := NewOllama(WithBaseURL(srv.URL), WithModel("test-model", 4))

	if _, err := o.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestOllama_Embed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(WithBaseURL(srv.URL))

	if _, err := o.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestOllama_HasModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaTagsResponse{
			Models: []ollamaModel{{Name: "all-minilm:l6-v2"}, {Name: "llama3"}},
		})
	}))
	defer srv.Close()

	o := NewOllama(WithBaseURL(srv.URL))

	ok, err := o.HasModel(context.Background())
	if err != nil {
		t.Fatalf("HasModel: %v", err)
	}
	if !ok {
		t.Error("HasModel = false, want true")
	}

	other := NewOllama(WithBaseURL(srv.URL), WithModel("missing-model", 128))
	ok, err = other.HasModel(context.Background())
	if err != nil {
		t.Fatalf("HasModel: %v", err)
	}
	if ok {
		t.Error("HasModel = true for missing model")
	}
}

func TestConfig_Validate(t *testing.T) {
	active := Config{Model: "all-minilm:l6-v2", Dimensions: 384}

	tests := []struct {
		name    string
		stored  Config
		wantErr bool
	}{
		{"unset store matches anything", Config{}, false},
		{"matching config", Config{Model: "all-minilm:l6-v2", Dimensions: 384}, false},
		{"different model", Config{Model: "nomic-embed-text", Dimensions: 384}, true},
		{"different dimensions", Config{Model: "all-minilm:l6-v2", Dimensions: 768}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := active.Validate(tt.stored)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
