package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestKey(id, key string) *Key {
	return &Key{
		ID:        id,
		Key:       key,
		Name:      "test key " + id,
		CreatedAt: time.Now(),
		Active:    true,
	}
}

func TestInMemoryKeyStoreAddAndFind(t *testing.T) {
	store := NewInMemoryKeyStore()
	ctx := context.Background()

	key := newTestKey("k1", "vajra_ak_one")

	if err := store.Add(ctx, key); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	found, ok := store.FindByKey(ctx, "vajra_ak_one")
	if !ok {
		t.Fatal("FindByKey() should find the added key")
	}

	if found.ID != "k1" {
		t.Errorf("FindByKey() ID = %s, want k1", found.ID)
	}

	// Mutating the returned copy must not affect the stored key.
	found.Name = "mutated"

	again, _ := store.FindByKey(ctx, "vajra_ak_one")
	if again.Name == "mutated" {
		t.Error("FindByKey() should return a copy")
	}

	if _, ok := store.FindByKey(ctx, "vajra_ak_missing"); ok {
		t.Error("FindByKey() should not find a missing key")
	}
}

func TestInMemoryKeyStoreAddDuplicate(t *testing.T) {
	store := NewInMemoryKeyStore()
	ctx := context.Background()

	if err := store.Add(ctx, newTestKey("k1", "vajra_ak_one")); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	if err := store.Add(ctx, newTestKey("k1", "vajra_ak_two")); !errors.Is(err, ErrKeyAlreadyExists) {
		t.Errorf("duplicate ID: err = %v, want ErrKeyAlreadyExists", err)
	}

	if err := store.Add(ctx, newTestKey("k2", "vajra_ak_one")); !errors.Is(err, ErrKeyAlreadyExists) {
		t.Errorf("duplicate key string: err = %v, want ErrKeyAlreadyExists", err)
	}

	if err := store.Add(ctx, nil); !errors.Is(err, ErrKeyNil) {
		t.Errorf("nil key: err = %v, want ErrKeyNil", err)
	}
}

func TestInMemoryKeyStoreUpdate(t *testing.T) {
	store := NewInMemoryKeyStore()
	ctx := context.Background()

	if err := store.Add(ctx, newTestKey("k1", "vajra_ak_one")); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	updated := newTestKey("k1", "vajra_ak_rotated")
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}

	if _, ok := store.FindByKey(ctx, "vajra_ak_one"); ok {
		t.Error("old key string should no longer resolve after rotation")
	}

	if _, ok := store.FindByKey(ctx, "vajra_ak_rotated"); !ok {
		t.Error("new key string should resolve after rotation")
	}

	if err := store.Update(ctx, newTestKey("missing", "vajra_ak_x")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("update missing key: err = %v, want ErrKeyNotFound", err)
	}
}

func TestInMemoryKeyStoreDelete(t *testing.T) {
	store := NewInMemoryKeyStore()
	ctx := context.Background()

	if err := store.Add(ctx, newTestKey("k1", "vajra_ak_one")); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	if _, ok := store.FindByKey(ctx, "vajra_ak_one"); ok {
		t.Error("deleted key should not resolve")
	}

	if err := store.Delete(ctx, "k1"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("double delete: err = %v, want ErrKeyNotFound", err)
	}
}

func TestInMemoryKeyStoreList(t *testing.T) {
	store := NewInMemoryKeyStore()
	ctx := context.Background()

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}

	if len(keys) != 0 {
		t.Errorf("List() on empty store = %d keys, want 0", len(keys))
	}

	if err := store.Add(ctx, newTestKey("k1", "vajra_ak_one")); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	if err := store.Add(ctx, newTestKey("k2", "vajra_ak_two")); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	keys, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}

	if len(keys) != 2 {
		t.Errorf("List() = %d keys, want 2", len(keys))
	}
}
