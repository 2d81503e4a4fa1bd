package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kiosk/internal/config"
	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		filter string
		byName bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			today := c.today()

			var tasks []model.Task
			var err error
			switch filter {
			case "", "all":
				tasks, err = c.store.AllTasks(ctx, !byName)
			case model.FilterOverdue, model.FilterToday, model.FilterWeek:
				tasks, err = c.store.TasksByUrgency(ctx, filter, today)
			default:
				return fmt.Errorf("invalid --filter %q (overdue|today|week|all)", filter)
			}
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}

			tw := newTable(cmd)
			fmt.Fprintln(tw, "ID\tNAME\tEVERY\tDUE\tSTATUS")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%d\t%s\t%d %s\t%s\t%s\n",
					t.ID, t.Name, t.RecurrenceValue, t.Recurrence, t.NextDue, t.Urgency(today).Label())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "overdue|today|week|all")
	cmd.Flags().BoolVar(&byName, "by-name", false, "sort by name instead of due date")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var (
		every uint32
		unit  string
		due   string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recurring task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseRecurrence(unit, every)
			if err != nil {
				return err
			}
			next := c.today()
			if due != "" {
				if next, err = parseDue(due); err != nil {
					return err
				}
			}
			t, err := c.store.Create(cmd.Context(), store.NewTask{
				Name:            args[0],
				Recurrence:      typ,
				RecurrenceValue: every,
				NextDue:         next,
			}, c.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d %q, due %s\n", t.ID, t.Name, t.NextDue)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&every, "every", 1, "recurrence count")
	cmd.Flags().StringVar(&unit, "unit", "days", "days|weeks|months|years")
	cmd.Flags().StringVar(&due, "due", "", "first due date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var (
		name  string
		every uint32
		unit  string
		due   string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's name, schedule or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var p store.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("every") || flags.Changed("unit") {
				cur, err := c.store.Task(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !flags.Changed("every") {
					every = cur.RecurrenceValue
				}
				if !flags.Changed("unit") {
					unit = cur.Recurrence.String()
				}
				typ, err := parseRecurrence(unit, every)
				if err != nil {
					return err
				}
				p.Recurrence, p.RecurrenceValue = &typ, &every
			}
			if flags.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				p.NextDue = &d
			}
			t, err := c.store.Update(cmd.Context(), id, p, c.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d %q, every %d %s, due %s\n",
				t.ID, t.Name, t.RecurrenceValue, t.Recurrence, t.NextDue)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().Uint32Var(&every, "every", 1, "recurrence count")
	cmd.Flags().StringVar(&unit, "unit", "days", "days|weeks|months|years")
	cmd.Flags().StringVar(&due, "due", "", "next due date, YYYY-MM-DD")
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task done and advance its due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.store.Complete(cmd.Context(), id, c.now()); err != nil {
				return err
			}
			t, err := c.store.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %d %q, next due %s\n", t.ID, t.Name, t.NextDue)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a task's completions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := c.store.Task(cmd.Context(), id); err != nil {
				return err
			}
			hist, err := c.store.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(hist) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Never completed.")
				return nil
			}
			tw := newTable(cmd)
			fmt.Fprintln(tw, "DATE\tGAP")
			for _, r := range hist {
				gap := "-"
				if r.DaysSinceLast != nil {
					gap = fmt.Sprintf("%dd", *r.DaysSinceLast)
				}
				fmt.Fprintf(tw, "%s\t%s\n", r.FormattedDate(), gap)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := config.Encode(c.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
