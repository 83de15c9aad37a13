package api

import (
	"context"
	"net/http"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// Login exchanges username and password for an access token
func (a *API) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	logger.Debug("Attempting login", "username", username)

	var loginResp LoginResponse
	_, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/login",
		Form: map[string]string{
			"username": username,
			"password": password,
		},
		Result: &loginResp,
		Public: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "username", loginResp.User.Username, "role", loginResp.User.Role)
	return &loginResp, nil
}
