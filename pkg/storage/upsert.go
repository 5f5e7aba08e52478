package storage

import (
	"context"

	"github.com/papercomputeco/wingman/pkg/dating"
)

// UpsertUser creates the user registered by reg, or overwrites the profile
// and password of the user already owning reg.Email. created reports which
// of the two happened.
func UpsertUser(ctx context.Context, d Driver, reg dating.Registration) (u *dating.User, created bool, err error) {
	u, err = d.CreateUser(ctx, reg)
	if err == nil {
		return u, true, nil
	}
	if !IsConflict(err) {
		return nil, false, err
	}

	existing, err := d.GetUserByEmail(ctx, reg.Email)
	if err != nil {
		return nil, false, err
	}

	u, err = d.UpdateUser(ctx, dating.ProfileUpdate{
		UserID:   existing.ID,
		Name:     reg.Name,
		Email:    reg.Email,
		Sex:      reg.Sex,
		Age:      reg.Age,
		Password: reg.Password,
	})
	if err != nil {
		return nil, false, err
	}
	return u, false, nil
}
