package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/liviudnicoara/attrshare"
	"github.com/liviudnicoara/attrshare/api"
	"github.com/liviudnicoara/attrshare/config"
	"github.com/liviudnicoara/attrshare/filetransfer"
	"github.com/liviudnicoara/attrshare/middlewares"
	"github.com/liviudnicoara/attrshare/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, rest, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	if len(rest) == 0 {
		usage(errOut)
		return 2
	}

	a, err := newApp(cfg, in, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if err := a.dispatch(ctx, rest[0], rest[1:]); err != nil {
		rich := attrshare.AsServiceError(err)
		a.logger.Debug("command failed", "Command", rest[0], "Category", rich.Category, "TextCode", rich.TextCode, "Code", rich.Code)
		if _, transport := attrshare.ClassOf(err); !transport {
			if _, domain := attrshare.EnvelopeOf(err); !domain {
				fmt.Fprintln(errOut, "error:", err)
			}
		}
		return 1
	}
	return 0
}

func newApp(cfg config.Config, in io.Reader, out, errOut io.Writer) (*app, error) {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	tokens, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	re := attrshare.NewDefaultRequestExecutor(cfg.BaseURL).
		WithTimeout(cfg.Timeout).
		WithSuccessCodes(cfg.SuccessCodes...).
		WithLoginRoute(cfg.LoginRoute).
		WithTokenSource(tokens).
		WithNotifier(writerNotifier{w: errOut}).
		WithNavigator(loginNavigator{w: errOut, loginRoute: cfg.LoginRoute}).
		AddLogging(logger).
		AddPerformanceMonitor(middlewares.Thresholds{
			Call:     cfg.SlowRequestThreshold,
			Transfer: cfg.TransferTimeout / 2,
		}, logger).
		WithExponentialRetry(cfg.RetryCount)

	client := api.NewClient(re,
		api.WithSaver(filetransfer.DirSaver{Dir: cfg.DownloadDir}),
		api.WithTransferTimeout(cfg.TransferTimeout),
	)

	return &app{
		client: client,
		tokens: tokens,
		logger: logger,
		in:     newPrompter(in, errOut),
		out:    out,
	}, nil
}

type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(message string) {
	fmt.Fprintln(n.w, "error:", message)
}

// loginNavigator has no routes to switch to; it points the user at the
// login command instead.
type loginNavigator struct {
	w          io.Writer
	loginRoute string
}

func (n loginNavigator) NavigateTo(path string) {
	if path == n.loginRoute {
		fmt.Fprintln(n.w, "run `attrshare login` to start a new session")
		return
	}
	fmt.Fprintln(n.w, "navigate to", path)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: attrshare [flags] <command> [args]

commands:
  register <username> [email] [attributes]
  login <username>              admin-login <username>
  logout                        whoami
  rename <nickname>             passwd
  status <userId>
  ls                            ls-all
  upload <path> <policy> [-p]   download <fileName>
  rm <fileName>
  setup                         users
  pending                       revoke <userId>
  attrs <userId> <attributes>
`)
}
