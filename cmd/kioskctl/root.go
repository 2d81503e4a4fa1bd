package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"kiosk/internal/config"
	"kiosk/internal/storage"
	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
)

type globalOpts struct {
	configPath string
	backend    string
	storePath  string
}

// cli holds what every subcommand needs.
type cli struct {
	opts globalOpts
	now  func() time.Time

	cfg   config.Config
	store store.Store
	close func() error
}

func newRootCmd(now func() time.Time) *cobra.Command {
	c := &cli{now: now}
	root := &cobra.Command{
		Use:           "kioskctl",
		Short:         "Manage the Days Tracker task store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.close == nil {
				return nil
			}
			return c.close()
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&c.opts.configPath, "config", config.DefaultPath(), "TOML config file")
	f.StringVar(&c.opts.backend, "backend", "", "override store.backend (json|sqlite)")
	f.StringVar(&c.opts.storePath, "store", "", "override store.path")

	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.editCmd(),
		c.completeCmd(),
		c.deleteCmd(),
		c.historyCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) open() error {
	defaults := config.Default(config.DefaultStorePath())
	cfg, err := config.Load(c.opts.configPath, defaults)
	if err != nil {
		return err
	}
	if c.opts.backend != "" {
		cfg.Store.Backend = config.StoreBackend(c.opts.backend)
	}
	if c.opts.storePath != "" {
		cfg.Store.Path = c.opts.storePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Store.Backend == config.StoreMemory {
		return errors.New("the memory backend cannot be shared with a running kiosk")
	}
	c.cfg = cfg

	s, closeFn, err := storage.Open(cfg.Store)
	if err != nil {
		return err
	}
	c.store, c.close = s, closeFn
	return nil
}

func (c *cli) today() time.Time { return model.Day(c.now()) }

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return uint32(id), nil
}

func parseRecurrence(unit string, every uint32) (model.RecurrenceType, error) {
	if every == 0 {
		return 0, errors.New("--every must be at least 1")
	}
	typ, ok := model.ParseRecurrence(unit)
	if !ok {
		return 0, fmt.Errorf("invalid --unit %q (days|weeks|months|years)", unit)
	}
	return typ, nil
}

func parseDue(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --due %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}
