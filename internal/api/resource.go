package api

import (
	"context"
	"net/url"

	"github.com/MKhiriev/farmlink/models"
)

// Resource is a typed view of one REST collection.
type Resource[T any] struct {
	client *Client
	name   string
}

// NewResource binds name (e.g. "fields") to item type T.
func NewResource[T any](client *Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: name}
}

// List returns the collection.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var items []T
	if _, err := r.client.List(ctx, r.name, query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the item with id.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	_, err := r.client.Get(ctx, r.name, id, &item)
	return item, err
}

// Create stores item and returns the stored representation.
func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	_, err := r.client.Create(ctx, r.name, item, &created)
	return created, err
}

// Update replaces the item with id.
func (r *Resource[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var updated T
	_, err := r.client.Update(ctx, r.name, id, item, &updated)
	return updated, err
}

// Patch changes the given fields of the item with id.
func (r *Resource[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var patched T
	_, err := r.client.Patch(ctx, r.name, id, fields, &patched)
	return patched, err
}

// Delete removes the item with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.name, id)
}

// Upload attaches a file to the collection.
func (r *Resource[T]) Upload(ctx context.Context, file models.UploadFile, fields map[string]string) (*models.Response, error) {
	return r.client.Upload(ctx, r.name, file, fields)
}
