package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/skillshikhi/skillshikhi-go/internal/friends"
	"github.com/skillshikhi/skillshikhi-go/internal/poller"
	"github.com/skillshikhi/skillshikhi-go/internal/teaching"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: -email is required")
	}
	if *password == "" {
		fmt.Print("Password: ")
		if _, err := fmt.Scanln(password); err != nil {
			return errors.New("login: could not read password")
		}
	}

	if err := a.auth.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s.\n", a.session.UserID())
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	me, err := a.profile.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", me.Name, me.ID)
	if me.Bio != "" {
		fmt.Println(me.Bio)
	}
	if len(me.Skills) > 0 {
		fmt.Printf("Skills: %v\n", me.Skills)
	}
	return nil
}

func (a *app) cmdFriends(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	// Every friends command works from a fresh snapshot so transition guards
	// see the server's current view.
	if err := a.friends.Refresh(ctx); err != nil {
		return err
	}

	switch sub {
	case "list":
		return a.printFriends()
	case "status":
		if len(rest) < 1 {
			return errors.New("friends status: user ID required")
		}
		rel := a.friends.Relationship(rest[0])
		if rel.RequestID != "" {
			fmt.Printf("%s (request %s)\n", rel.State, rel.RequestID)
		} else {
			fmt.Println(rel.State)
		}
		return nil
	case "send":
		if len(rest) < 1 {
			return errors.New("friends send: user ID required")
		}
		if err := a.friends.SendRequest(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Friend request sent.")
	case "cancel":
		if len(rest) < 1 {
			return errors.New("friends cancel: user ID required")
		}
		if err := a.friends.CancelRequest(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Friend request cancelled.")
	case "accept", "reject":
		if len(rest) < 1 {
			return errors.New("friends " + sub + ": request ID required")
		}
		decision := friends.DecisionAccept
		if sub == "reject" {
			decision = friends.DecisionReject
		}
		if err := a.friends.Respond(ctx, rest[0], decision); err != nil {
			return err
		}
		fmt.Println("Done.")
	case "unfriend":
		if len(rest) < 1 {
			return errors.New("friends unfriend: user ID required")
		}
		if err := a.friends.Unfriend(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Friend removed.")
	default:
		return fmt.Errorf("unknown friends command %q", sub)
	}

	// Reconcile against the server before exiting; the optimistic state was
	// already correct, this just confirms it.
	return a.friends.Refresh(ctx)
}

func (a *app) printFriends() error {
	l := a.friends.Snapshot()

	fmt.Printf("Friends (%d):\n", len(l.Friends))
	for _, f := range l.Friends {
		fmt.Printf("  %s  %s\n", f.ID, f.Name)
	}

	pendingSent := 0
	for _, r := range l.Sent {
		if r.Status == friends.StatusPending {
			pendingSent++
		}
	}
	fmt.Printf("Sent, pending (%d):\n", pendingSent)
	for _, r := range l.Sent {
		if r.Status != friends.StatusPending {
			continue
		}
		to := r.To
		if to.ID == "" {
			to = r.User
		}
		fmt.Printf("  %s  %s  (request %s)\n", to.ID, to.Name, r.ID)
	}

	fmt.Printf("Received, pending (%d):\n", len(l.Received))
	for _, r := range l.Received {
		if r.Status != friends.StatusPending {
			continue
		}
		from := r.From
		if from.ID == "" {
			from = r.User
		}
		fmt.Printf("  %s  %s  (request %s)\n", from.ID, from.Name, r.ID)
	}
	return nil
}

func (a *app) cmdFeed(ctx context.Context, args []string) error {
	if len(args) == 0 {
		posts, err := a.feed.Posts(ctx)
		if err != nil {
			return err
		}
		for _, p := range posts {
			tag := ""
			if p.SkillTag != "" {
				tag = " #" + p.SkillTag
			}
			fmt.Printf("[%s] %s%s\n  %s  (%d likes, %d comments)\n", p.ID, p.Author, tag, p.Content, p.Likes, len(p.Comments))
		}
		return nil
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "post":
		if len(rest) < 1 {
			return errors.New("feed post: text required")
		}
		skillTag := ""
		if len(rest) > 1 {
			skillTag = rest[1]
		}
		p, err := a.feed.Create(ctx, rest[0], skillTag)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %s.\n", p.ID)
		return nil
	case "like":
		if len(rest) < 1 {
			return errors.New("feed like: post ID required")
		}
		likes, err := a.feed.ToggleLike(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d likes.\n", likes)
		return nil
	case "comment":
		if len(rest) < 2 {
			return errors.New("feed comment: post ID and text required")
		}
		if _, err := a.feed.AddComment(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("Comment added.")
		return nil
	case "delete":
		if len(rest) < 1 {
			return errors.New("feed delete: post ID required")
		}
		if err := a.feed.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Post deleted.")
		return nil
	default:
		return fmt.Errorf("unknown feed command %q", sub)
	}
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		convs, err := a.chat.Conversations(ctx)
		if err != nil {
			return err
		}
		for _, c := range convs {
			marker := " "
			if c.Unread > 0 {
				marker = "*"
			}
			fmt.Printf("%s [%s] %s: %s\n", marker, c.ID, c.WithName, c.LastMessage)
		}
		return nil
	case "messages":
		if len(rest) < 1 {
			return errors.New("chat messages: conversation ID required")
		}
		msgs, err := a.chat.Messages(ctx, rest[0])
		if err != nil {
			return err
		}
		for _, m := range msgs {
			fmt.Printf("%s %s: %s\n", m.CreatedAt.Format("15:04"), m.FromUserID, m.Text)
		}
		return nil
	case "send":
		if len(rest) < 2 {
			return errors.New("chat send: user ID and text required")
		}
		if _, err := a.chat.SendTo(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("Sent.")
		return nil
	default:
		return fmt.Errorf("unknown chat command %q", sub)
	}
}

func (a *app) cmdSessions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		sessions, err := a.teaching.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Printf("[%s] %s -> %s: %s (%s)\n", s.ID, s.FromUserID, s.ToUserID, s.Skill, s.Status)
		}
		return nil
	case "request":
		if len(rest) < 2 {
			return errors.New("sessions request: user ID and skill required")
		}
		preferred := ""
		if len(rest) > 2 {
			preferred = rest[2]
		}
		s, err := a.teaching.Request(ctx, rest[0], rest[1], preferred)
		if err != nil {
			return err
		}
		fmt.Printf("Session requested: %s.\n", s.ID)
		return nil
	case "respond":
		if len(rest) < 2 {
			return errors.New("sessions respond: session ID and status required")
		}
		if err := a.teaching.SetStatus(ctx, rest[0], teaching.SessionStatus(rest[1])); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	default:
		return fmt.Errorf("unknown sessions command %q", sub)
	}
}

func (a *app) cmdNotifications(ctx context.Context) error {
	notifs, err := a.notifs.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, n.CreatedAt.Format("Jan 2 15:04"), n.Message)
	}
	return a.notifs.MarkAllRead(ctx)
}

// cmdWatch runs the background refresh loops until interrupted: the friends
// snapshot, chat unread counts and notifications, each on its own interval.
func (a *app) cmdWatch(ctx context.Context) error {
	friendsPoller := poller.New("friends", a.cfg.ChatPollInterval,
		func(ctx context.Context) (interface{}, error) {
			if err := a.friends.Refresh(ctx); err != nil {
				return nil, err
			}
			return a.friends.Snapshot(), nil
		},
		func(v interface{}) {
			l := v.(friends.Lists)
			pending := 0
			for _, r := range l.Received {
				if r.Status == friends.StatusPending {
					pending++
				}
			}
			fmt.Printf("friends: %d, pending requests: %d\n", len(l.Friends), pending)
		})

	chatPoller := poller.New("chat", a.cfg.ChatPollInterval,
		func(ctx context.Context) (interface{}, error) {
			return a.chat.UnreadCount(ctx)
		},
		func(v interface{}) {
			if n := v.(int); n > 0 {
				fmt.Printf("chat: %d unread\n", n)
			}
		})

	notifPoller := poller.New("notifications", a.cfg.NotificationPollInterval,
		func(ctx context.Context) (interface{}, error) {
			return a.notifs.UnreadCount(ctx)
		},
		func(v interface{}) {
			if n := v.(int); n > 0 {
				fmt.Printf("notifications: %d unread\n", n)
			}
		})

	fmt.Println("Watching, Ctrl-C to stop.")
	go friendsPoller.Run(ctx)
	go chatPoller.Run(ctx)
	notifPoller.Run(ctx)
	return nil
}
