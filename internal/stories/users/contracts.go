package users

import "context"

type (
	Storage interface {
		CreateUser(ctx context.Context, user User) (bool, error)
		GetUser(ctx context.Context, criteria GetCriteria) (*User, error)
		ListUsers(ctx context.Context, criteria ListCriteria) ([]*User, error)
	}
)
