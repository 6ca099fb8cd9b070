package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"adda-backend/internal/capture"
	"adda-backend/internal/checkin"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

const defaultAPI = "https://localhost:8443"

type commandLine struct {
	out       io.Writer
	tokenPath string
	// newClient is swapped in tests
	newClient func(api string, insecure bool) *checkin.Client
}

func newCommandLine(out io.Writer) *commandLine {
	return &commandLine{out: out, tokenPath: defaultTokenPath(), newClient: newHTTPClient}
}

func defaultTokenPath() string {
	if v := os.Getenv("ADDA_TOKEN_FILE"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".adda-token"
	}
	return filepath.Join(dir, "adda", "token")
}

func newHTTPClient(api string, insecure bool) *checkin.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return checkin.NewClient(api, &http.Client{Transport: tr, Timeout: 60 * time.Second})
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                      - sign in; the password is prompted next")
	fmt.Fprintln(cli.out, "  mark [-file PATH] [-front URL] [-rear URL] [-facing user|environment]")
	fmt.Fprintln(cli.out, "                                          - mark today's attendance")
	fmt.Fprintln(cli.out, "  status                                  - whether today is already marked")
	fmt.Fprintln(cli.out, "  leaderboard                             - show the rankings")
	fmt.Fprintln(cli.out, "  share [-user ID]                        - print the public profile link")
	fmt.Fprintln(cli.out, "  logout                                  - sign out and forget the token")
	fmt.Fprintln(cli.out, "Every command accepts -api URL and -insecure.")
}

type common struct {
	api      *string
	insecure *bool
}

func commonFlags(fs *flag.FlagSet) common {
	api := os.Getenv("ADDA_API_URL")
	if api == "" {
		api = defaultAPI
	}
	return common{
		api:      fs.String("api", api, "API base URL"),
		insecure: fs.Bool("insecure", false, "skip TLS certificate verification (dev only)"),
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginCommon := commonFlags(loginCmd)
	loginEmail := loginCmd.String("email", "", "account email")

	markCmd := flag.NewFlagSet("mark", flag.ContinueOnError)
	markCommon := commonFlags(markCmd)
	markFile := markCmd.String("file", "", "upload this image instead of using a camera")
	markFront := markCmd.String("front", os.Getenv("ADDA_CAMERA_FRONT"), "snapshot URL of the user-facing camera")
	markRear := markCmd.String("rear", os.Getenv("ADDA_CAMERA_REAR"), "snapshot URL of the rear camera")
	markFacing := markCmd.String("facing", string(capture.FacingUser), "preferred camera: user or environment")

	statusCmd := flag.NewFlagSet("status", flag.ContinueOnError)
	statusCommon := commonFlags(statusCmd)

	boardCmd := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	boardCommon := commonFlags(boardCmd)

	shareCmd := flag.NewFlagSet("share", flag.ContinueOnError)
	shareCommon := commonFlags(shareCmd)
	shareUser := shareCmd.String("user", "", "user id (default: yourself)")

	logoutCmd := flag.NewFlagSet("logout", flag.ContinueOnError)
	logoutCommon := commonFlags(logoutCmd)

	for _, fs := range []*flag.FlagSet{loginCmd, markCmd, statusCmd, boardCmd, shareCmd, logoutCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, cli.client(loginCommon), *loginEmail, string(pwd))

	case "mark":
		if err := markCmd.Parse(args[2:]); err != nil {
			return err
		}
		facing := capture.FacingMode(*markFacing)
		if !facing.Valid() {
			markCmd.Usage()
			return errHelp
		}
		c, err := cli.authedClient(markCommon)
		if err != nil {
			return err
		}
		cams := map[capture.FacingMode]string{capture.FacingUser: *markFront, capture.FacingEnvironment: *markRear}
		return cli.mark(ctx, c, *markFile, cams, facing)

	case "status":
		if err := statusCmd.Parse(args[2:]); err != nil {
			return err
		}
		c, err := cli.authedClient(statusCommon)
		if err != nil {
			return err
		}
		return cli.status(ctx, c)

	case "leaderboard":
		if err := boardCmd.Parse(args[2:]); err != nil {
			return err
		}
		c, err := cli.authedClient(boardCommon)
		if err != nil {
			return err
		}
		return cli.leaderboard(ctx, c)

	case "share":
		if err := shareCmd.Parse(args[2:]); err != nil {
			return err
		}
		c, err := cli.authedClient(shareCommon)
		if err != nil {
			return err
		}
		return cli.share(ctx, c, *shareUser)

	case "logout":
		if err := logoutCmd.Parse(args[2:]); err != nil {
			return err
		}
		c, err := cli.authedClient(logoutCommon)
		if err != nil {
			return err
		}
		return cli.logout(ctx, c)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) client(cf common) *checkin.Client {
	return cli.newClient(*cf.api, *cf.insecure)
}

func (cli *commandLine) authedClient(cf common) (*checkin.Client, error) {
	raw, err := os.ReadFile(cli.tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("not signed in, run: checkin login -email EMAIL")
	}
	if err != nil {
		return nil, err
	}
	c := cli.client(cf)
	c.SetToken(strings.TrimSpace(string(raw)))
	return c, nil
}

func (cli *commandLine) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(cli.tokenPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(cli.tokenPath, []byte(token+"\n"), 0o600)
}
