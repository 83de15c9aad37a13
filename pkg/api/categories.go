package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// ListCategories fetches asset categories
func (a *API) ListCategories(ctx context.Context) ([]Category, error) {
	logger.Debug("Fetching categories")

	var categories []Category
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodGet,
		Path:   "/categories",
		Result: &categories,
	}); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category
func (a *API) CreateCategory(ctx context.Context, cat Category) (*Category, error) {
	var created Category
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/categories",
		Body:   cat,
		Result: &created,
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCategory renames a category
func (a *API) UpdateCategory(ctx context.Context, id string, cat Category) (*Category, error) {
	var updated Category
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPut,
		Path:   "/categories/" + url.PathEscape(id),
		Body:   cat,
		Result: &updated,
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory deletes a category
func (a *API) DeleteCategory(ctx context.Context, id string) error {
	_, err := a.c.Do(ctx, client.Call{
		Method: http.MethodDelete,
		Path:   "/categories/" + url.PathEscape(id),
	})
	return err
}
