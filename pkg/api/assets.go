package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// ListAssets fetches the inventory, optionally narrowed to one category
func (a *API) ListAssets(ctx context.Context, category string) ([]Asset, error) {
	logger.Debug("Fetching assets", "category", category)

	var assets []Asset
	call := client.Call{
		Method: http.MethodGet,
		Path:   "/assets",
		Result: &assets,
	}
	if category != "" {
		call.Query = map[string]string{"category": category}
	}
	if _, err := a.c.Do(ctx, call); err != nil {
		return nil, err
	}
	return assets, nil
}

// CreateAsset creates an asset
func (a *API) CreateAsset(ctx context.Context, asset Asset) (*Asset, error) {
	logger.Debug("Creating asset", "asset_code", asset.AssetCode)

	var created Asset
	_, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/assets",
		Body:   asset,
		Result: &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAsset replaces an asset
func (a *API) UpdateAsset(ctx context.Context, id string, asset Asset) (*Asset, error) {
	logger.Debug("Updating asset", "id", id)

	var updated Asset
	_, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPut,
		Path:   "/assets/" + url.PathEscape(id),
		Body:   asset,
		Result: &updated,
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAsset deletes an asset
func (a *API) DeleteAsset(ctx context.Context, id string) error {
	logger.Debug("Deleting asset", "id", id)

	_, err := a.c.Do(ctx, client.Call{
		Method: http.MethodDelete,
		Path:   "/assets/" + url.PathEscape(id),
	})
	return err
}
