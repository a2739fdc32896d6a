// Package api has one method per remote operation. Each method builds a
// request, dispatches it once through the executor and returns the result
// unchanged, errors included.
package api

import (
	"encoding/json"
	"time"

	"github.com/liviudnicoara/attrshare"
	"github.com/liviudnicoara/attrshare/filetransfer"
)

// DefaultTransferTimeout keeps large uploads and downloads from being cut off
// by the timeout used for JSON calls.
const DefaultTransferTimeout = 30 * time.Second

// Ack is the envelope of calls whose data carries nothing the client reads.
type Ack = attrshare.Envelope[json.RawMessage]

type Client struct {
	re              *attrshare.RequestExecutor
	objects         *filetransfer.ObjectStore
	saver           filetransfer.Saver
	transferTimeout time.Duration
}

type Option func(*Client)

// WithSaver sets where downloads are saved. Defaults to the working directory.
func WithSaver(saver filetransfer.Saver) Option {
	return func(c *Client) {
		c.saver = saver
	}
}

func WithObjectStore(store *filetransfer.ObjectStore) Option {
	return func(c *Client) {
		c.objects = store
	}
}

// WithTransferTimeout overrides the timeout of uploads and downloads. Values below
// DefaultTransferTimeout are raised to it.
func WithTransferTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.transferTimeout = max(timeout, DefaultTransferTimeout)
	}
}

func NewClient(re *attrshare.RequestExecutor, opts ...Option) *Client {
	c := &Client{
		re:              re,
		saver:           filetransfer.DirSaver{Dir: "."},
		transferTimeout: DefaultTransferTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.objects == nil {
		c.objects = filetransfer.NewObjectStore(0)
	}
	return c
}

// Objects exposes the store download payloads pass through.
func (c *Client) Objects() *filetransfer.ObjectStore {
	return c.objects
}
