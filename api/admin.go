package api

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/liviudnicoara/attrshare"
)

// AdminLogin sends the credentials form-encoded and resolves with the token in Data.
func (c *Client) AdminLogin(ctx context.Context, in LoginRequest) (*attrshare.Envelope[string], error) {
	return attrshare.Post[string](c.re, "/admin/login", in.Form()).Do(ctx)
}

// Setup initialises the attribute authority on the server.
func (c *Client) Setup(ctx context.Context) (*Ack, error) {
	return attrshare.Get[json.RawMessage](c.re, "/admin/setup").Do(ctx)
}

func (c *Client) ListUsers(ctx context.Context) (*attrshare.Envelope[[]UserInfo], error) {
	return attrshare.Get[[]UserInfo](c.re, "/admin/ulList").Do(ctx)
}

// RevokeUser posts with an empty body and the id as a query parameter, the
// shape the server expects.
func (c *Client) RevokeUser(ctx context.Context, userID int64) (*Ack, error) {
	return attrshare.Post[json.RawMessage](c.re, "/admin/revoke", nil).
		WithQueryParameters(map[string]string{"userId": strconv.FormatInt(userID, 10)}).
		Do(ctx)
}

func (c *Client) PendingRegistrations(ctx context.Context) (*attrshare.Envelope[[]Registration], error) {
	return attrshare.Get[[]Registration](c.re, "/admin/findRegisters").Do(ctx)
}

// UpdateAttributes sets the attribute letters of a user. Both values travel
// as query parameters.
func (c *Client) UpdateAttributes(ctx context.Context, in AttributeUpdate) (*Ack, error) {
	return attrshare.Put[json.RawMessage](c.re, "/admin/updateAtt", nil).
		WithQueryParameters(map[string]string{
			"userId":     strconv.FormatInt(in.UserID, 10),
			"attributes": in.Attributes,
		}).
		Do(ctx)
}
