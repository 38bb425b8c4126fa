package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerUsers(reg *Registry) {
	reg.Register("GET", "/users", fault.Users, b.listUsers)
	reg.Register("POST", "/users", fault.Users, b.createUser)
	reg.Register("GET", "/users/:id", fault.Users, b.getUser)
	reg.Register("PUT", "/users/:id", fault.Users, b.updateUser)
	reg.Register("DELETE", "/users/:id", fault.Users, b.deleteUser)
}

func (b *backend) listUsers(ctx context.Context, req *Request) (*Response, error) {
	limit, offset := listOptions(req)

	role := req.Query.Get("role")
	page := b.stores.Users.List(entity.ListOptions[entity.User]{
		Filter: func(u entity.User) bool { return role == "" || u.Role == role },
		Offset: offset,
		Limit:  limit,
	})
	return OK(ListBody{
		Items: page.Items,
		Pagination: Pagination{
			Total:   page.Total,
			Limit:   limit,
			Offset:  offset,
			HasMore: page.HasMore,
		},
	}), nil
}

type userCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (b *backend) createUser(ctx context.Context, req *Request) (*Response, error) {
	var in userCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}
	if in.Username == "" {
		return BadRequest("username is required", b.now()), nil
	}

	if _, exists := b.stores.Users.Find(func(u entity.User) bool {
		return u.Username == in.Username
	}); exists {
		return Conflict("username already exists", b.now()), nil
	}

	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	user := b.stores.Users.Create(entity.User{
		Username:  in.Username,
		Email:     in.Email,
		Role:      role,
		CreatedAt: b.timestamp(),
	})
	return Created(user), nil
}

func (b *backend) getUser(ctx context.Context, req *Request) (*Response, error) {
	user, ok := b.stores.Users.Get(req.Params["id"])
	if !ok {
		return NotFound("user not found", b.now()), nil
	}
	return OK(user), nil
}

func (b *backend) updateUser(ctx context.Context, req *Request) (*Response, error) {
	var in userCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}

	id := req.Params["id"]
	if in.Username != "" {
		if _, exists := b.stores.Users.Find(func(u entity.User) bool {
			return u.ID != id && u.Username == in.Username
		}); exists {
			return Conflict("username already exists", b.now()), nil
		}
	}

	user, ok := b.stores.Users.Update(id, func(u *entity.User) {
		if in.Username != "" {
			u.Username = in.Username
		}
		if in.Email != "" {
			u.Email = in.Email
		}
		if in.Role != "" {
			u.Role = in.Role
		}
	})
	if !ok {
		return NotFound("user not found", b.now()), nil
	}
	return OK(user), nil
}

func (b *backend) deleteUser(ctx context.Context, req *Request) (*Response, error) {
	if !b.stores.Users.Delete(req.Params["id"]) {
		return NotFound("user not found", b.now()), nil
	}
	return Deleted(), nil
}
