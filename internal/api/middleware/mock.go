// Package middleware provides HTTP middleware components for the admin API.
package middleware

import (
	"context"

	"github.com/vajra-io/vajra/internal/storage"
)

// MockKeyStore is a mock implementation of storage.KeyStore for testing.
type MockKeyStore struct {
	FindByKeyFunc func(ctx context.Context, key string) (*storage.Key, bool)
	AddFunc       func(ctx context.Context, apiKey *storage.Key) error
	UpdateFunc    func(ctx context.Context, apiKey *storage.Key) error
	DeleteFunc    func(ctx context.Context, keyID string) error
	ListFunc      func(ctx context.Context) ([]*storage.Key, error)
}

// FindByKey implements storage.KeyStore.FindByKey.
func (m *MockKeyStore) FindByKey(ctx context.Context, key string) (*storage.Key, bool) {
	if m.FindByKeyFunc != nil {
		return m.FindByKeyFunc(ctx, key)
	}

	return nil, false
}

// Add implements storage.KeyStore.Add.
func (m *MockKeyStore) Add(ctx context.Context, apiKey *storage.Key) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, apiKey)
	}

	return nil
}

// Update implements storage.KeyStore.Update.
func (m *MockKeyStore) Update(ctx context.Context, apiKey *storage.Key) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, apiKey)
	}

	return nil
}

// Delete implements storage.KeyStore.Delete.
func (m *MockKeyStore) Delete(ctx context.Context, keyID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keyID)
	}

	return nil
}

// List implements storage.KeyStore.List.
func (m *MockKeyStore) List(ctx context.Context) ([]*storage.Key, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}

	return []*storage.Key{}, nil
}
