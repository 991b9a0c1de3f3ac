package catalog

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok := store.Credential(ctx, "missing"); ok {
		t.Error("lookup on empty store should miss")
	}

	store.PutCredential(Credential{ID: "c1", Type: CredentialOpenAI, Secret: "sk", Enabled: true})
	store.PutModel(Model{ID: "m2", CredentialID: "c1", ProviderModel: "x"})
	store.PutModel(Model{ID: "m1", CredentialID: "c1", ProviderModel: "y"})

	cred, ok := store.Credential(ctx, "c1")
	if !ok || cred.Secret != "sk" {
		t.Fatalf("Credential = (%+v, %v)", cred, ok)
	}

	// Returned values are copies; mutating them must not touch the store.
	cred.Secret = "changed"
	again, _ := store.Credential(ctx, "c1")
	if again.Secret != "sk" {
		t.Error("store contents mutated through a returned pointer")
	}

	models := store.List(ctx)
	if len(models) != 2 || models[0].ID != "m1" || models[1].ID != "m2" {
		t.Errorf("List = %+v, want sorted by id", models)
	}

	store.PutModel(Model{ID: "m1", CredentialID: "c1", ProviderModel: "z"})
	m, _ := store.Model(ctx, "m1")
	if m.ProviderModel != "z" {
		t.Errorf("Put should replace, got %+v", m)
	}
}
