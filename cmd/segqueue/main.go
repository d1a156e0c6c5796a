package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/segqueue/segqueue/internal/actorhost"
	"github.com/segqueue/segqueue/internal/config"
	logpkg "github.com/segqueue/segqueue/pkg/log"
)

func main() {
	level := os.Getenv("SEGQ_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "segqueue",
		Short: "segqueue operator CLI",
		Long:  "segqueue hosts one priority queue per actor instance. This CLI operates directly against the local hot/cold stores for local use and scripted testing.",
	}

	var configPath string
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults if omitted)")

	openHost := func() (*actorhost.Host, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		config.FromEnv(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		hostLevel, err := logpkg.ParseLevel(cfg.Logging.Level)
		if err != nil {
			hostLevel = logpkg.InfoLevel
		}
		var formatter logpkg.Formatter = &logpkg.TextFormatter{}
		if cfg.Logging.Format == "json" {
			formatter = &logpkg.JSONFormatter{}
		}
		hostLogger := logpkg.NewLogger(
			logpkg.WithLevel(hostLevel),
			logpkg.WithFormatter(formatter),
			logpkg.WithOutput(logpkg.NewConsoleOutput()),
		)
		return actorhost.Open(cfg, hostLogger)
	}

	pushCmd := &cobra.Command{
		Use:   "push <actor> <item>",
		Short: "Push an item onto an actor's queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetInt("priority")
			h, err := openHost()
			if err != nil {
				return err
			}
			defer h.Close()
			if err := h.Push(context.Background(), args[0], []byte(args[1]), priority); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
	pushCmd.Flags().Int("priority", 0, "priority (lower value is higher priority)")
	rootCmd.AddCommand(pushCmd)

	popCmd := &cobra.Command{
		Use:   "pop <actor>",
		Short: "Destructively pop the next item from an actor's queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHost()
			if err != nil {
				return err
			}
			defer h.Close()
			items, err := h.Pop(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("(empty)")
				return nil
			}
			fmt.Println(string(items[0]))
			return nil
		},
	}
	rootCmd.AddCommand(popCmd)

	popWithAckCmd := &cobra.Command{
		Use:   "pop-with-ack <actor>",
		Short: "Pop the next item under a lock that must later be acknowledged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ttlSeconds *int
			if cmd.Flags().Changed("ttl") {
				ttl, _ := cmd.Flags().GetInt("ttl")
				ttlSeconds = &ttl
			}
			h, err := openHost()
			if err != nil {
				return err
			}
			defer h.Close()
			res, err := h.PopWithAck(context.Background(), args[0], ttlSeconds)
			if err != nil {
				return err
			}
			if !res.Locked {
				fmt.Println("(empty)")
				return nil
			}
			if res.Count == 0 {
				fmt.Println("locked by another outstanding ack, no items popped")
				return nil
			}
			fmt.Printf("lock_id=%s expires_at=%s item=%s\n", res.LockID, res.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"), res.Items[0])
			return nil
		},
	}
	popWithAckCmd.Flags().Int("ttl", 0, "lock TTL in seconds, clamped into the configured [min,max] range (default applies if omitted)")
	rootCmd.AddCommand(popWithAckCmd)

	ackCmd := &cobra.Command{
		Use:   "ack <actor> <lock-id>",
		Short: "Acknowledge a held lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHost()
			if err != nil {
				return err
			}
			defer h.Close()
			res, err := h.Acknowledge(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("acknowledged %d item(s)\n", res.ItemsAcknowledged)
			return nil
		},
	}
	rootCmd.AddCommand(ackCmd)

	statsCmd := &cobra.Command{
		Use:   "stats <actor>",
		Short: "Show per-priority queue depth without consuming anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHost()
			if err != nil {
				return err
			}
			defer h.Close()
			stats, err := h.Stats(context.Background(), args[0])
			if err != nil {
				return err
			}
			for _, s := range stats {
				fmt.Printf("priority=%d count=%d offloaded=%t\n", s.Priority, s.Count, s.Offloaded)
			}
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
