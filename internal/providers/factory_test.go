package providers

import (
	"strings"
	"testing"

	"modelgate/internal/catalog"
)

func TestCreate_KindCredentialPairing(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name    string
		kind    Kind
		cred    catalog.Credential
		wantErr string
	}{
		{
			name: "openai ok",
			kind: KindOpenAI,
			cred: catalog.Credential{ID: "c1", Type: catalog.CredentialOpenAI, Secret: "sk-x"},
		},
		{
			name: "anthropic ok",
			kind: KindAnthropic,
			cred: catalog.Credential{ID: "c2", Type: catalog.CredentialAnthropic, Secret: "sk-ant"},
		},
		{
			name: "azure ok",
			kind: KindAzure,
			cred: catalog.Credential{
				ID: "c3", Type: catalog.CredentialAzureOpenAI,
				Secret: "key", Endpoint: "https://r.openai.azure.com",
			},
		},
		{
			name:    "mismatched type rejected",
			kind:    KindOpenAI,
			cred:    catalog.Credential{ID: "c4", Type: catalog.CredentialAnthropic, Secret: "sk-ant"},
			wantErr: "does not match",
		},
		{
			name:    "bedrock rejected on sync path",
			kind:    KindBedrock,
			cred:    catalog.Credential{ID: "c5", Type: catalog.CredentialBedrock, Region: "us-east-1"},
			wantErr: "CreateBedrock",
		},
		{
			name:    "unknown kind rejected",
			kind:    Kind("cohere"),
			cred:    catalog.Credential{ID: "c6", Type: catalog.CredentialOpenAI},
			wantErr: "unknown provider kind",
		},
		{
			name:    "azure without endpoint rejected",
			kind:    KindAzure,
			cred:    catalog.Credential{ID: "c7", Type: catalog.CredentialAzureOpenAI, Secret: "key"},
			wantErr: "endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.Create(tt.kind, &tt.cred)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Create: %v", err)
				}
				if p == nil {
					t.Fatal("Create returned nil provider")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestKindForCredential(t *testing.T) {
	tests := []struct {
		credType catalog.CredentialType
		want     Kind
		ok       bool
	}{
		{catalog.CredentialOpenAI, KindOpenAI, true},
		{catalog.CredentialAnthropic, KindAnthropic, true},
		{catalog.CredentialAzureOpenAI, KindAzure, true},
		{catalog.CredentialBedrock, KindBedrock, true},
		{catalog.CredentialType("cohere"), "", false},
	}
	for _, tt := range tests {
		got, ok := KindForCredential(tt.credType)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KindForCredential(%q) = (%q, %v), want (%q, %v)", tt.credType, got, ok, tt.want, tt.ok)
		}
	}
}
