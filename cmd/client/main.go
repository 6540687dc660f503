// Command client is a small CLI over the EmotiSense API client. The session
// is persisted between invocations, so signing in once is enough.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/emotisense/emotisense/backend/internal/client"
)

const usage = `usage: client [flags] <command> [args]

commands:
  register <name> <email> <password>   create an account and sign in
  login <email> <password>             sign in
  logout                               sign out and forget the session
  whoami                               print the signed-in user
  upload <file>                        upload an image for emotion analysis
  list                                 list analyzed images
  delete <id>                          delete an image and its stored file
`

func main() {
	server := flag.String("server", envOr("EMOTISENSE_SERVER", "http://localhost:8001"), "backend base URL")
	sessionPath := flag.String("session", defaultSessionPath(), "session file path")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	c, err := client.New(*server, *sessionPath)
	if err != nil {
		fatal(err)
	}

	if err := run(context.Background(), c, flag.Args()); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "register":
		if len(args) != 3 {
			return fmt.Errorf("usage: register <name> <email> <password>")
		}
		if err := c.Register(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", c.Session().User.Email)
		return nil

	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		if err := c.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", c.Session().User.Email)
		return nil

	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "whoami":
		if !c.Session().Active() {
			fmt.Println("not signed in")
			return nil
		}
		u := c.Session().User
		fmt.Printf("%s <%s> (id %s)\n", u.Name, u.Email, u.ID)
		return nil

	case "upload":
		if len(args) != 1 {
			return fmt.Errorf("usage: upload <file>")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		mimeType := mime.TypeByExtension(filepath.Ext(args[0]))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		resp, err := c.Upload(ctx, filepath.Base(args[0]), mimeType, data)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (confidence %v)\n", resp.Image.Filename, resp.Emotion, resp.Confidence)
		return nil

	case "list":
		if err := c.RefreshImages(ctx); err != nil {
			return err
		}
		for _, img := range c.Images() {
			emotion := "pending"
			if img.Emotion != nil {
				emotion = *img.Emotion
			}
			fmt.Printf("%s  %-20s %s\n", img.ID.Hex(), emotion, img.Filename)
		}
		return nil

	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		if err := c.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".emotisense-session.json"
	}
	return filepath.Join(home, ".emotisense", "session.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
