package api

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/liviudnicoara/attrshare"
)

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*Ack, error) {
	return attrshare.Post[json.RawMessage](c.re, "/user/register", in).Do(ctx)
}

// Login sends the credentials form-encoded and resolves with the token in Data.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*attrshare.Envelope[string], error) {
	return attrshare.Post[string](c.re, "/user/login", in.Form()).Do(ctx)
}

func (c *Client) UserInfo(ctx context.Context) (*attrshare.Envelope[UserInfo], error) {
	return attrshare.Get[UserInfo](c.re, "/user/userInfo").Do(ctx)
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Ack, error) {
	return attrshare.Put[json.RawMessage](c.re, "/user/update", in).Do(ctx)
}

func (c *Client) UpdateName(ctx context.Context, nickname string) (*Ack, error) {
	return attrshare.Patch[json.RawMessage](c.re, "/user/updateName", nil).
		WithQueryParameters(map[string]string{"nickname": nickname}).
		Do(ctx)
}

func (c *Client) UpdatePassword(ctx context.Context, in PasswordUpdate) (*Ack, error) {
	return attrshare.Patch[json.RawMessage](c.re, "/user/updatePwd", in).Do(ctx)
}

func (c *Client) Logout(ctx context.Context) (*Ack, error) {
	return attrshare.Post[json.RawMessage](c.re, "/user/logout", nil).Do(ctx)
}

func (c *Client) RegistrationStatus(ctx context.Context, userID int64) (*attrshare.Envelope[Registration], error) {
	return attrshare.Get[Registration](c.re, "/user/registerStatus").
		WithQueryParameters(map[string]string{"userId": strconv.FormatInt(userID, 10)}).
		Do(ctx)
}
