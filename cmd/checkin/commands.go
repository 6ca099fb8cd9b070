package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"adda-backend/internal/capture"
	"adda-backend/internal/capture/httpcam"
	"adda-backend/internal/checkin"
)

func (cli *commandLine) login(ctx context.Context, c *checkin.Client, email, password string) error {
	if _, err := c.Login(ctx, email, password); err != nil {
		return err
	}
	if err := cli.saveToken(c.Token()); err != nil {
		return err
	}
	p, err := c.Profile(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome back, %s!\n", p.FirstName)
	return nil
}

// mark runs one check-in dialog: the picked file when given, otherwise the
// network cameras.
func (cli *commandLine) mark(ctx context.Context, c *checkin.Client, file string, cams map[capture.FacingMode]string, facing capture.FacingMode) error {
	today, err := c.Today(ctx)
	if err != nil {
		return err
	}
	if today.Marked {
		fmt.Fprintf(cli.out, "You have already marked attendance today (%s).\n", today.Date)
		return nil
	}

	var session *capture.Session
	if file == "" {
		session = capture.NewSession(httpcam.New(cams))
	}
	flow := checkin.NewFlow(session, c, checkin.Hooks{
		Celebrate: func() { fmt.Fprintln(cli.out, "Attendance marked! +1 point") },
		Refresh:   func(ctx context.Context) { cli.printStanding(ctx, c) },
	})
	defer flow.Close()

	if file != "" {
		if err := flow.UseFilePath(file); err != nil {
			return err
		}
	} else {
		if err := flow.UseCamera(ctx, facing); err != nil {
			return err
		}
		if err := session.WaitReady(ctx); err != nil {
			return err
		}
		a, err := flow.Capture(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Captured %s (%d bytes)\n", a.Name(), a.Size())
	}

	res, err := flow.Submit(ctx)
	if checkin.IsAlreadyMarked(err) {
		fmt.Fprintln(cli.out, errors.Unwrap(err))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Checked in for %s, photo: %s\n", res.AttendedOn, res.PhotoURL)
	return nil
}

func (cli *commandLine) printStanding(ctx context.Context, c *checkin.Client) {
	lb, err := c.Leaderboard(ctx)
	if err != nil || lb.CurrentUserRank == 0 {
		return
	}
	e := lb.Entries[lb.CurrentUserRank-1]
	fmt.Fprintf(cli.out, "You are #%d of %d with %d points\n", e.Rank, lb.Total, e.Points)
}

func (cli *commandLine) status(ctx context.Context, c *checkin.Client) error {
	t, err := c.Today(ctx)
	if err != nil {
		return err
	}
	if t.Marked {
		fmt.Fprintf(cli.out, "%s: marked\n", t.Date)
	} else {
		fmt.Fprintf(cli.out, "%s: not marked yet\n", t.Date)
	}
	return nil
}

func (cli *commandLine) leaderboard(ctx context.Context, c *checkin.Client) error {
	lb, err := c.Leaderboard(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tPOINTS\t")
	for _, e := range lb.Entries {
		mark := ""
		switch {
		case e.IsCurrentUser:
			mark = "<- you"
		case e.IsBottomTwo:
			mark = "magi para"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", e.Rank, e.FullName, e.Points, mark)
	}
	return tw.Flush()
}

func (cli *commandLine) share(ctx context.Context, c *checkin.Client, userID string) error {
	res, err := c.ShareLink(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.URL)
	return nil
}

func (cli *commandLine) logout(ctx context.Context, c *checkin.Client) error {
	if err := c.SignOut(ctx); err != nil {
		return err
	}
	if err := os.Remove(cli.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}
