package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	opSignIn  = "sign_in"
	opGetUser = "get_user"
	opProfile = "profile"
	opSignOut = "sign_out"
)

// AuthUser is the identity the auth API attaches to a token.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// Profile is a row of the users table.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// DisplayName is the profile's full name, or its email when the name is blank.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return p.Email
}

// SignIn exchanges email and password for a session.
func (cl *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	c := call{
		op:     opSignIn,
		method: http.MethodPost,
		path:   "/auth/v1/token?grant_type=password",
		apiKey: cl.serviceKey,
		body:   map[string]string{"email": email, "password": password},
	}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return Session{}, err
	}
	if !resp.ok() {
		e := statusError(opSignIn, resp.status, resp.body)
		// Bad credentials come back as 400 invalid_grant.
		if resp.status == http.StatusBadRequest {
			e.Category = CategoryAuth
		}
		return Session{}, e
	}
	var s Session
	if err := decode(opSignIn, resp.body, &s); err != nil {
		return Session{}, err
	}
	if s.AccessToken == "" || s.User.ID == "" {
		return Session{}, &Error{Op: opSignIn, Category: CategoryAuth, Status: resp.status, Message: "no session returned"}
	}
	return s, nil
}

// GetUser resolves a bearer token to its user.
func (cl *Client) GetUser(ctx context.Context, token string) (AuthUser, error) {
	if token == "" {
		return AuthUser{}, ErrMissingToken
	}
	c := call{op: opGetUser, method: http.MethodGet, path: "/auth/v1/user", apiKey: cl.serviceKey, bearer: token}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return AuthUser{}, err
	}
	if !resp.ok() {
		return AuthUser{}, statusError(opGetUser, resp.status, resp.body)
	}
	var u AuthUser
	if err := decode(opGetUser, resp.body, &u); err != nil {
		return AuthUser{}, err
	}
	if u.ID == "" {
		return AuthUser{}, &Error{Op: opGetUser, Category: CategoryAuth, Status: resp.status, Message: "invalid token"}
	}
	return u, nil
}

// Profile reads the users row for email with the service key.
func (cl *Client) Profile(ctx context.Context, email string) (Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("email", "eq."+email)
	c := call{
		op:     opProfile,
		method: http.MethodGet,
		path:   "/rest/v1/users?" + q.Encode(),
		apiKey: cl.serviceKey,
		bearer: cl.serviceKey,
	}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return Profile{}, err
	}
	if !resp.ok() {
		return Profile{}, statusError(opProfile, resp.status, resp.body)
	}
	var rows []Profile
	if err := decode(opProfile, resp.body, &rows); err != nil {
		return Profile{}, err
	}
	if len(rows) == 0 {
		return Profile{}, ErrProfileNotFound
	}
	return rows[0], nil
}

// SignOut revokes the sessions of the token's user.
func (cl *Client) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	c := call{op: opSignOut, method: http.MethodPost, path: "/auth/v1/logout", apiKey: cl.serviceKey, bearer: token}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return statusError(opSignOut, resp.status, resp.body)
	}
	return nil
}
