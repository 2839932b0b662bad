package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
		wantDims    int
	}{
		{
			name:        "nil settings returns error",
			settings:    nil,
			wantErr:     true,
			errContains: "no embedding settings",
		},
		{
			name:     "hashing provider uses model dimensions",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHashing},
			wantDims: 384,
		},
		{
			name:     "hashing provider honours explicit dimensions",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHashing, Dimensions: 64},
			wantDims: 64,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantDims: 768,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantDims: 1536,
		},
		{
			name:        "openai without key is fatal",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:     true,
			errContains: "API key is required",
		},
		{
			name:        "gemini without key is fatal",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderGemini},
			wantErr:     true,
			errContains: "API key is required",
		},
		{
			name:        "unknown provider returns error",
			settings:    &domain.EmbeddingSettings{Provider: "unknown"},
			wantErr:     true,
			errContains: "unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer svc.Close()
			if svc.Dimensions() != tt.wantDims {
				t.Errorf("expected %d dimensions, got %d", tt.wantDims, svc.Dimensions())
			}
		})
	}
}

func TestNewEmbeddingService_DefaultSettingsWorkOffline(t *testing.T) {
	settings := domain.DefaultAppSettings().Embedding

	svc, err := NewEmbeddingService(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Close()

	if svc.ModelName() != "hashing-384" {
		t.Errorf("expected model hashing-384, got %q", svc.ModelName())
	}

	vecs, err := svc.EmbedBatch(context.Background(), []string{"cell biology", "organic chemistry"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 384 {
		t.Errorf("unexpected result shape: %d vectors", len(vecs))
	}
}

func TestNewEmbeddingService_InvalidProvider(t *testing.T) {
	_, err := NewEmbeddingService(domain.EmbeddingSettings{Provider: "bert"})
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}
}

func TestNewEmbeddingService_LazyConstructionDefersCredentialErrors(t *testing.T) {
	svc, err := NewEmbeddingService(domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI})
	if err != nil {
		t.Fatalf("construction should be deferred, got %v", err)
	}

	_, err = svc.Embed(context.Background(), "x")
	if err == nil {
		t.Fatal("expected an error on first use")
	}
	if domain.IsRetryable(err) {
		t.Errorf("missing key should be fatal, got retryable %v", err)
	}
}
