package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerAuth(reg *Registry) {
	reg.Register("POST", "/auth/login", fault.Auth, b.login)
	reg.Register("POST", "/auth/logout", fault.Auth, b.logout)
	reg.Register("GET", "/auth/me", fault.Auth, b.me)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

// login authenticates against the user store. Passwords are not modeled -
// any credential pair naming a known user succeeds, which is all the client
// under test needs to exercise its auth flows.
func (b *backend) login(ctx context.Context, req *Request) (*Response, error) {
	var in loginRequest
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}

	user, ok := b.stores.Users.Find(func(u entity.User) bool {
		return u.Username == in.Username
	})
	if !ok {
		return Unauthorized("invalid credentials", b.now()), nil
	}

	b.stores.SetSession(entity.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	return OK(loginResponse{Token: "faux-token-" + user.ID, User: user}), nil
}

func (b *backend) logout(ctx context.Context, req *Request) (*Response, error) {
	b.stores.SetSession(entity.Session{})
	return Deleted(), nil
}

func (b *backend) me(ctx context.Context, req *Request) (*Response, error) {
	sess := b.stores.Session()
	if sess.UserID == "" {
		return Unauthorized("not authenticated", b.now()), nil
	}
	user, ok := b.stores.Users.Get(sess.UserID)
	if !ok {
		return Unauthorized("session user no longer exists", b.now()), nil
	}
	return OK(user), nil
}
