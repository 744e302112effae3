package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/skillshikhi/skillshikhi-go/internal/auth"
	"github.com/skillshikhi/skillshikhi-go/internal/chat"
	"github.com/skillshikhi/skillshikhi-go/internal/config"
	"github.com/skillshikhi/skillshikhi-go/internal/feed"
	"github.com/skillshikhi/skillshikhi-go/internal/friends"
	"github.com/skillshikhi/skillshikhi-go/internal/notifications"
	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
	"github.com/skillshikhi/skillshikhi-go/internal/pkg/logger"
	"github.com/skillshikhi/skillshikhi-go/internal/profile"
	"github.com/skillshikhi/skillshikhi-go/internal/session"
	"github.com/skillshikhi/skillshikhi-go/internal/teaching"
)

type app struct {
	cfg      *config.Config
	session  *session.Supplier
	auth     *auth.Client
	friends  *friends.Executor
	profile  *profile.Client
	chat     *chat.Client
	feed     *feed.Client
	teaching *teaching.Client
	notifs   *notifications.Client
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	durable, err := session.OpenSQLite(cfg.StateDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.StateDir).Msg("Failed to open state store")
	}
	defer durable.Close()

	supplier := session.NewSupplier(durable, session.NewMemStore())
	api := apiclient.New(cfg.BaseURL, supplier, cfg.RequestTimeout, cfg.UserAgent)

	friendsClient := friends.NewClient(api)
	executor := friends.NewExecutor(friendsClient,
		friends.WithCache(friends.NewCache(durable)),
		friends.WithConfirmer(confirmOnStdin),
	)

	a := &app{
		cfg:      cfg,
		session:  supplier,
		auth:     auth.NewClient(api, supplier),
		friends:  executor,
		profile:  profile.NewClient(api),
		chat:     chat.NewClient(api),
		feed:     feed.NewClient(api),
		teaching: teaching.NewClient(api),
		notifs:   notifications.NewClient(api),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		a.auth.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.cmdWhoami(ctx)
	case "friends":
		return a.cmdFriends(ctx, rest)
	case "feed":
		return a.cmdFeed(ctx, rest)
	case "chat":
		return a.cmdChat(ctx, rest)
	case "sessions":
		return a.cmdSessions(ctx, rest)
	case "notifications":
		return a.cmdNotifications(ctx)
	case "watch":
		return a.cmdWatch(ctx)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `skillshikhi - terminal client for the SkillShikhi platform

Usage:
  skillshikhi login -email <email> [-password <password>]
  skillshikhi logout
  skillshikhi whoami
  skillshikhi friends list
  skillshikhi friends status <user-id>
  skillshikhi friends send <user-id>
  skillshikhi friends cancel <user-id>
  skillshikhi friends accept <request-id>
  skillshikhi friends reject <request-id>
  skillshikhi friends unfriend <user-id>
  skillshikhi feed [post <text>|like <post-id>|comment <post-id> <text>]
  skillshikhi chat [list|messages <conversation-id>|send <user-id> <text>]
  skillshikhi sessions [list|request <user-id> <skill>|respond <id> <status>]
  skillshikhi notifications
  skillshikhi watch
`)
}

// userMessage maps internal errors to a single user-facing line.
func userMessage(err error) string {
	switch {
	case errors.Is(err, friends.ErrActionInFlight):
		return "That action is already in progress, hang on."
	case errors.Is(err, friends.ErrInvalidTransition):
		return "That action is not available for this user right now."
	case errors.Is(err, friends.ErrMissingTarget), errors.Is(err, friends.ErrMissingRequest):
		return "A user or request ID is required."
	case errors.Is(err, friends.ErrUnknownRequest):
		return "No pending request with that ID. Try `skillshikhi friends list` first."
	case errors.Is(err, friends.ErrConfirmDeclined):
		return "Cancelled."
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apiclient.KindAuth:
			return "Not logged in or session expired. Run `skillshikhi login`."
		case apiclient.KindConflict:
			return "That action is no longer valid: " + apiErr.Message
		case apiclient.KindNetwork:
			return "Could not reach SkillShikhi. Check your connection and try again."
		case apiclient.KindValidation:
			return "The server rejected the request: " + apiErr.Message
		case apiclient.KindNotFound:
			return "Not found: " + apiErr.Message
		default:
			return "SkillShikhi had a problem: " + apiErr.Message
		}
	}

	return err.Error()
}

// confirmOnStdin is the destructive-action gate for interactive use.
func confirmOnStdin(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
