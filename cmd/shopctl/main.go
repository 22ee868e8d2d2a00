package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/pkg/authclient"
)

const usage = `usage: shopctl [-api URL] [-session FILE] [-v] <command> [flags]

commands:
  register -name N -email E -password P
  login -email E -password P
  admin-login -email E -password P
  get [-admin] PATH
  logout
`

const exitReauth = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, authclient.ErrMustReauthenticate):
		fmt.Fprintln(os.Stderr, "session expired, run: shopctl login")
		os.Exit(exitReauth)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", envOr("SHOP_API_URL", "http://localhost:5000"), "storefront API base URL")
	sessionFile := global.String("session", envOr("SHOP_SESSION_FILE", defaultSessionFile()), "file holding the session")
	verbose := global.Bool("v", false, "log client activity to stderr")
	if err := global.Parse(args); err != nil {
		return errors.Wrap(err, usage)
	}
	if global.NArg() == 0 {
		return errors.New(usage)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		defer logger.Sync() //nolint:errcheck
	}

	store, err := authclient.OpenBoltStore(*sessionFile)
	if err != nil {
		return err
	}
	defer store.Close()

	client := authclient.New(*apiURL, store, authclient.WithLogger(logger))
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "register":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		session, err := client.Register(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		return printSession(out, session)

	case "login", "admin-login":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		login := client.Login
		if cmd == "admin-login" {
			login = client.AdminLogin
		}
		session, err := login(ctx, *email, *password)
		if err != nil {
			return err
		}
		return printSession(out, session)

	case "get":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		admin := fs.Bool("admin", false, "use the admin authorization scheme")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("get needs exactly one PATH")
		}
		req := authclient.Request{Method: http.MethodGet, Path: fs.Arg(0)}
		if *admin {
			req.Scheme = authclient.SchemeBare
		}
		resp, err := client.Do(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		fmt.Fprintln(out, resp.Status)
		_, err = io.Copy(out, resp.Body)
		return err

	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "logged out")
		return nil
	}
	return errors.Errorf("unknown command %q\n%s", cmd, usage)
}

func printSession(out io.Writer, session *authclient.Session) error {
	if session.User != nil {
		fmt.Fprintf(out, "signed in as %s <%s>\n", session.User.Name, session.User.Email)
	} else {
		fmt.Fprintln(out, "signed in")
	}
	exp, err := authclient.Expiration(session.Pair.AccessToken)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "access token valid until %s (%s)\n", exp.Local().Format("2006-01-02 15:04"), session.ExpiresIn)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopctl.db"
	}
	return filepath.Join(home, ".shopctl.db")
}
