package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/liviudnicoara/attrshare/api"
	"github.com/liviudnicoara/attrshare/session"
)

var errUsage = errors.New("invalid arguments, run attrshare without arguments for usage")

type app struct {
	client *api.Client
	tokens *session.Store
	logger *slog.Logger
	in     *prompter
	out    io.Writer
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args, false)
	case "admin-login":
		return a.login(ctx, args, true)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "rename":
		if len(args) != 1 {
			return errUsage
		}
		return a.ack(a.client.UpdateName(ctx, args[0]))
	case "passwd":
		return a.passwd(ctx)
	case "status":
		return a.status(ctx, args)
	case "ls":
		return a.listFiles(a.client.ListOwnFiles(ctx))
	case "ls-all":
		return a.listFiles(a.client.ListAllFiles(ctx))
	case "upload":
		return a.upload(ctx, args)
	case "download":
		if len(args) != 1 {
			return errUsage
		}
		if err := a.client.DownloadFile(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "saved", args[0])
		return nil
	case "rm":
		if len(args) != 1 {
			return errUsage
		}
		return a.ack(a.client.DeleteFile(ctx, args[0]))
	case "setup":
		return a.ack(a.client.Setup(ctx))
	case "users":
		return a.users(ctx)
	case "pending":
		return a.pending(ctx)
	case "revoke":
		id, err := userID(args)
		if err != nil {
			return err
		}
		return a.ack(a.client.RevokeUser(ctx, id))
	case "attrs":
		if len(args) != 2 {
			return errUsage
		}
		id, err := userID(args[:1])
		if err != nil {
			return err
		}
		return a.ack(a.client.UpdateAttributes(ctx, api.AttributeUpdate{UserID: id, Attributes: args[1]}))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errUsage
	}
	password, err := a.in.Password("Password")
	if err != nil {
		return err
	}

	req := api.RegisterRequest{Username: args[0], Password: password}
	if len(args) > 1 {
		req.Email = args[1]
	}
	if len(args) > 2 {
		req.Attributes = args[2]
	}

	return a.ack(a.client.Register(ctx, req))
}

func (a *app) login(ctx context.Context, args []string, admin bool) error {
	if len(args) != 1 {
		return errUsage
	}
	password, err := a.in.Password("Password")
	if err != nil {
		return err
	}

	login := a.client.Login
	if admin {
		login = a.client.AdminLogin
	}

	env, err := login(ctx, api.LoginRequest{Username: args[0], Password: password})
	if err != nil {
		return err
	}
	if err := a.tokens.Set(env.Data); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "logged in as", args[0])
	return nil
}

func (a *app) logout(ctx context.Context) error {
	_, err := a.client.Logout(ctx)
	if clearErr := a.tokens.Clear(); clearErr != nil {
		return errors.Join(err, clearErr)
	}
	return err
}

func (a *app) whoami(ctx context.Context) error {
	env, err := a.client.UserInfo(ctx)
	if err != nil {
		return err
	}
	u := env.Data
	fmt.Fprintf(a.out, "id:         %d\nusername:   %s\nnickname:   %s\nemail:      %s\nattributes: %s\n",
		u.ID, u.Username, u.Nickname, u.Email, u.Attributes)
	return nil
}

func (a *app) passwd(ctx context.Context) error {
	var update api.PasswordUpdate
	var err error
	if update.OldPassword, err = a.in.Password("Current password"); err != nil {
		return err
	}
	if update.NewPassword, err = a.in.Password("New password"); err != nil {
		return err
	}
	if update.RePassword, err = a.in.Password("Repeat new password"); err != nil {
		return err
	}
	return a.ack(a.client.UpdatePassword(ctx, update))
}

func (a *app) status(ctx context.Context, args []string) error {
	id, err := userID(args)
	if err != nil {
		return err
	}
	env, err := a.client.RegistrationStatus(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%d): %s\n", env.Data.Username, env.Data.UserID, env.Data.Status)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	withPassword := fs.Bool("p", false, "protect the file with a password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	path, policy := fs.Arg(0), fs.Arg(1)

	var password string
	if *withPassword {
		var err error
		if password, err = a.in.Password("File password"); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return a.ack(a.client.UploadFile(ctx, f, filepath.Base(path), policy, password))
}

func (a *app) listFiles(env *api.FilesEnvelope, err error) error {
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOWNER\tPOLICY\tUPLOADED")
	for _, f := range env.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.FileName, f.Username, f.Policy, f.UploadTime)
	}
	return tw.Flush()
}

func (a *app) users(ctx context.Context) error {
	env, err := a.client.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tATTRIBUTES")
	for _, u := range env.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Attributes)
	}
	return tw.Flush()
}

func (a *app) pending(ctx context.Context) error {
	env, err := a.client.PendingRegistrations(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tATTRIBUTES\tSTATUS")
	for _, r := range env.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.UserID, r.Username, r.Attributes, r.Status)
	}
	return tw.Flush()
}

// ack prints the server message of a call whose data is not used.
func (a *app) ack(env *api.Ack, err error) error {
	if err != nil {
		return err
	}
	if env.Msg != "" {
		fmt.Fprintln(a.out, env.Msg)
		return nil
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

func userID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", args[0])
	}
	return id, nil
}
