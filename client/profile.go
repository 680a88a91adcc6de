package client

import (
	"context"
	"net/http"
)

func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &ServerError{Status: resp.StatusCode}
	}

	var profile Profile
	if err := decodeBody(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, email, username string) error {
	payload := map[string]string{"email": email, "username": username}
	resp, err := c.do(ctx, http.MethodPut, "/profile/update", nil, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case isSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	default:
		return &ServerError{Status: resp.StatusCode}
	}
}
