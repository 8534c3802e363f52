package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/infra/messaging"
	"journal-backend/internal/infra/readstore"
	"journal-backend/internal/infra/uow"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/pkg/password"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/jobs"
	"journal-backend/internal/usecase/queries"
	"journal-backend/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ops is the interactive operator console. Every command prompts for its
// inputs on stdin; nothing is flag-driven.
type console struct {
	in      *bufio.Scanner
	uow     shared.UnitOfWork
	members queries.MemberQueries
	stats   queries.StatsQueries
	jobCmds commands.JobCommands
	pusher  jobs.Pusher
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect to database:", err)
		os.Exit(1)
	}
	defer cleanup()

	c := newConsole(pool, cfg)
	c.run()
}

func newConsole(pool *pgxpool.Pool, cfg config.Config) *console {
	clk := clock.NewRealClock()
	unit := uow.NewPostgresUoW(pool, cfg.Jobs)

	var pusher jobs.Pusher = messaging.NopPusher{}
	if cfg.Messaging.FirebaseCredentialsFile != "" {
		fcm, err := messaging.NewFCMPusher(context.Background(), cfg.Messaging)
		if err != nil {
			fmt.Fprintln(os.Stderr, "FCM unavailable:", err)
		} else {
			pusher = fcm
		}
	}

	return &console{
		in:      bufio.NewScanner(os.Stdin),
		uow:     unit,
		members: queries.NewMemberQueries(readstore.NewMemberReadStore(pool)),
		stats:   queries.NewStatsQueries(readstore.NewStatsReadStore(pool)),
		jobCmds: commands.NewJobCommands(unit, clk),
		pusher:  pusher,
	}
}

func (c *console) run() {
	fmt.Println("journal-backend ops console")
	for {
		fmt.Println()
		fmt.Println("1) look up member")
		fmt.Println("2) start job chain")
		fmt.Println("3) send test push")
		fmt.Println("4) create operator account")
		fmt.Println("5) show member stats")
		fmt.Println("q) quit")
		choice := c.prompt("> ")
		switch choice {
		case "1":
			c.lookupMember()
		case "2":
			c.startJob()
		case "3":
			c.sendTestPush()
		case "4":
			c.createOperator()
		case "5":
			c.showStats()
		case "q", "quit", "exit":
			return
		default:
			fmt.Println("unknown choice")
		}
	}
}

func (c *console) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *console) lookupMember() {
	email := c.prompt("member email: ")
	view, err := c.members.GetByEmail(context.Background(), email)
	if err != nil {
		fmt.Println("lookup failed:", err)
		return
	}
	pretty, _ := json.MarshalIndent(view, "", "  ")
	fmt.Println(string(pretty))
}

func (c *console) startJob() {
	kind := c.prompt("job kind (trial.expire / subscription.cancel / prompt.daily / member.stats): ")
	batchSize := 0
	if raw := c.prompt("batch size (empty for default): "); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Println("not a number:", raw)
			return
		}
		batchSize = parsed
	}
	result, err := c.jobCmds.StartChain(context.Background(), kind, batchSize)
	if err != nil {
		fmt.Println("start failed:", err)
		return
	}
	fmt.Printf("started %s: queue entry %s, batch size %d\n", result.Kind, result.QueueEntryID, result.BatchSize)
}

func (c *console) sendTestPush() {
	token := c.prompt("FCM token: ")
	question := c.prompt("question text: ")
	if err := c.pusher.SendPrompt(context.Background(), token, question); err != nil {
		fmt.Println("push failed:", err)
		return
	}
	fmt.Println("push sent")
}

func (c *console) createOperator() {
	email := c.prompt("email: ")
	pass := c.prompt("password: ")
	roleName := c.prompt("role (viewer / operator / admin): ")

	role, err := operator.NewRole(roleName)
	if err != nil {
		fmt.Println("invalid role:", err)
		return
	}
	if _, err := operator.NewEmail(email); err != nil {
		fmt.Println("invalid email:", err)
		return
	}
	hash, err := password.HashPassword(pass)
	if err != nil {
		fmt.Println("hashing failed:", err)
		return
	}

	err = c.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		id, createErr := tx.Operators().Create(ctx, tx.DB(), email, hash, role.String())
		if createErr != nil {
			return createErr
		}
		fmt.Println("created operator", id)
		return nil
	})
	if err != nil {
		fmt.Println("create failed:", err)
	}
}

func (c *console) showStats() {
	view, err := c.stats.GetLatest(context.Background())
	if err != nil {
		fmt.Println("no stats snapshot:", err)
		return
	}
	pretty, _ := json.MarshalIndent(view, "", "  ")
	fmt.Println(string(pretty))
}
