package authclient

import (
	"context"

	"github.com/pkg/errors"
)

// User is the public customer record returned by the API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the outcome of a login or registration.
type Session struct {
	User      *User
	Pair      Pair
	ExpiresIn string
}

// Login signs a customer in and stores the issued pair.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.open(ctx, "/api/user/login", map[string]string{"email": email, "password": password})
}

// Register creates a customer account and stores the issued pair.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.open(ctx, "/api/user/register", map[string]string{"name": name, "email": email, "password": password})
}

// AdminLogin signs the administrator in and stores the issued pair.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	return c.open(ctx, "/api/user/adminLogin", map[string]string{"email": email, "password": password})
}

func (c *Client) open(ctx context.Context, path string, payload map[string]string) (*Session, error) {
	var out sessionResponse
	if err := c.postJSON(ctx, path, payload, &out); err != nil {
		return nil, err
	}
	pair := Pair{AccessToken: out.Token, RefreshToken: out.RefreshToken}
	if err := c.creds.SetPair(ctx, pair); err != nil {
		return nil, errors.Wrap(err, "store credentials")
	}
	return &Session{User: out.User, Pair: pair, ExpiresIn: out.ExpiresIn}, nil
}
