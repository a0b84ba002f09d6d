package main

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/user"
)

// createAdmin updates or creates an active admin account.
func (cli *commandLine) createAdmin(name, email, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			Role:      user.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Role = user.RoleAdmin
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	active := true
	if usr.ID == "" {
		usr.IsActive = true
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr, &active)
	return err
}
