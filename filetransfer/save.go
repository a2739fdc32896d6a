package filetransfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrTriggerUsed = errors.New("filetransfer: save trigger already activated")
	ErrNoFileName  = errors.New("filetransfer: file name is required")
	ErrInvalidName = errors.New("filetransfer: invalid file name")
)

// Saver performs the save-as side effect for a suggested file name.
type Saver interface {
	SaveAs(ctx context.Context, name string, r io.Reader) error
}

type SaverFunc func(ctx context.Context, name string, r io.Reader) error

func (f SaverFunc) SaveAs(ctx context.Context, name string, r io.Reader) error {
	return f(ctx, name, r)
}

// DirSaver writes files into Dir, keeping only the base of the suggested name.
type DirSaver struct {
	Dir string
}

func (s DirSaver) SaveAs(ctx context.Context, name string, r io.Reader) error {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, base))
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// trigger binds one object to one suggested file name. It fires at most once
// and is detached afterwards.
type trigger struct {
	mu     sync.Mutex
	object *Object
	name   string
	fired  bool
}

func newTrigger(o *Object, name string) *trigger {
	return &trigger{object: o, name: name}
}

func (t *trigger) activate(ctx context.Context, saver Saver) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fired || t.object == nil {
		return ErrTriggerUsed
	}
	t.fired = true

	r, err := t.object.Open()
	if err != nil {
		return err
	}
	return saver.SaveAs(ctx, t.name, r)
}

func (t *trigger) detach() {
	t.mu.Lock()
	t.object = nil
	t.mu.Unlock()
}

// Deliver saves data under name: it creates a transient object, fires a
// single-use trigger for it and revokes the object afterwards, even when the
// save fails.
func Deliver(ctx context.Context, store *ObjectStore, saver Saver, name string, data []byte) error {
	if name == "" {
		return ErrNoFileName
	}

	return store.Scoped(data, func(o *Object) error {
		t := newTrigger(o, name)
		defer t.detach()
		return t.activate(ctx, saver)
	})
}
