package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eliteGoblin/focusd/web_gate/internal/config"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/usecase"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Decide whether a URL would be blocked right now",
	Long: `Runs the same decision the browser extension gets for a navigation.
Pass page metadata to let music through on video platforms.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage blocking rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <site> [site...]",
	Short: "Add a rule",
	Long: `Adds a rule blocking the given sites. Pick exactly one condition:

  webgate rules add reddit.com --steps 8000
  webgate rules add twitch.tv --mode DURING --between 09:00-17:00
  webgate rules add netflix.com --mode ALLOW_DURING --days 6,7
  webgate rules add news.ycombinator.com --password hunter2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <rule-id>",
	Short: "Remove a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRemove,
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <rule-id>",
	Short: "Enable a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRuleEnabled(cmd, args[0], true)
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <rule-id>",
	Short: "Disable a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRuleEnabled(cmd, args[0], false)
	},
}

var rulesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reinstall the default platform rules",
	Long:  `Replaces the default YouTube, Twitter, Discord and video rules with fresh copies. User rules are kept.`,
	RunE:  runRulesSeed,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or update today's progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's steps and workout minutes",
	RunE:  runProgressShow,
}

var progressSetCmd = &cobra.Command{
	Use:   "set <steps> <workout-minutes>",
	Short: "Overwrite today's progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProgress(cmd, args, false)
	},
}

var progressAddCmd = &cobra.Command{
	Use:   "add <steps> <workout-minutes>",
	Short: "Add to today's progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProgress(cmd, args, true)
	},
}

var mentionCmd = &cobra.Command{
	Use:   "mention <platform> <channel>",
	Short: "Open a ping window for a conversation",
	Long:  `Records a personal mention so the conversation is reachable for the ping window (3 minutes by default).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMention,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <rule-id>",
	Short: "Unlock a tomorrow or password rule until midnight",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnlock,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var (
	checkPage      domain.PageMetadata
	ruleMode       string
	ruleExceptions []string
	ruleCondition  conditionFlags
	unlockPassword string
	configForce    bool
)

func init() {
	checkCmd.Flags().StringVar(&checkPage.Title, "title", "", "Page title")
	checkCmd.Flags().StringVar(&checkPage.Description, "description", "", "Page description")
	checkCmd.Flags().StringVar(&checkPage.Channel, "channel", "", "Channel or uploader name")
	checkCmd.Flags().StringVar(&checkPage.Category, "category", "", "Platform category")

	rulesAddCmd.Flags().StringVar(&ruleMode, "mode", string(domain.ModeUntil), "UNTIL, DURING or ALLOW_DURING")
	rulesAddCmd.Flags().StringSliceVar(&ruleExceptions, "except", nil, "Hosts exempt from the rule (subdomains included)")
	ruleCondition.register(rulesAddCmd.Flags())

	unlockCmd.Flags().StringVar(&unlockPassword, "password", "", "Password for password rules")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesRemoveCmd, rulesEnableCmd, rulesDisableCmd, rulesSeedCmd)
	progressCmd.AddCommand(progressShowCmd, progressSetCmd, progressAddCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	rootCmd.AddCommand(checkCmd, rulesCmd, progressCmd, mentionCmd, unlockCmd, configCmd)
}

// withApp opens the store for a one-shot command.
func withApp(fn func(ctx context.Context, a *app) error) error {
	logger := createCLILogger()
	defer func() { _ = logger.Sync() }()

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(context.Background(), a)
}

func runCheck(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		page := checkPage
		page.URL = args[0]
		d := a.engine.CheckURLWithMetadata(ctx, page)
		printDecision(cmd.OutOrStdout(), d)
		return nil
	})
}

func printDecision(w io.Writer, d domain.Decision) {
	if !d.Blocked {
		fmt.Fprintln(w, "ALLOWED")
		return
	}
	fmt.Fprintln(w, "BLOCKED")
	if d.Rule != nil {
		fmt.Fprintf(w, "  Rule:     %s (%s)\n", d.Rule.Describe(), d.Rule.ID)
	}
	fmt.Fprintf(w, "  Status:   %s\n", d.Status)
	fmt.Fprintf(w, "  Progress: %d%%\n", d.Progress)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		rules, err := a.rules.List(ctx)
		if err != nil {
			return err
		}
		printRules(cmd.OutOrStdout(), rules)
		return nil
	})
}

func printRules(w io.Writer, rules []domain.Rule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "No rules. Run 'webgate rules seed' to install the defaults.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENABLED\tRULE\tEXCEPTIONS")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%v\t%s\t%s\n", r.ID, r.Enabled, r.Describe(), strings.Join(r.Exceptions, ","))
	}
	_ = tw.Flush()
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	cond, err := ruleCondition.build()
	if err != nil {
		return err
	}
	mode, err := domain.ParseMode(ruleMode)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		rule, err := a.rules.Add(ctx, usecase.NewRule{
			Items:      args,
			Mode:       mode,
			Condition:  cond,
			Exceptions: ruleExceptions,
			Password:   ruleCondition.password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", rule.ID, rule.Describe())
		return nil
	})
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.rules.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	})
}

func setRuleEnabled(cmd *cobra.Command, id string, enabled bool) error {
	return withApp(func(ctx context.Context, a *app) error {
		rule, err := a.rules.SetEnabled(ctx, id, enabled)
		if err != nil {
			return err
		}
		state := "Disabled"
		if rule.Enabled {
			state = "Enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", state, rule.ID, rule.Describe())
		return nil
	})
}

func runRulesSeed(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		rules, err := a.seeder.Seed(ctx)
		if err != nil {
			return err
		}
		printRules(cmd.OutOrStdout(), rules)
		return nil
	})
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		p, err := a.progress.Today(ctx)
		if err != nil {
			return err
		}
		printProgress(cmd.OutOrStdout(), p)
		return nil
	})
}

func printProgress(w io.Writer, p domain.Progress) {
	fmt.Fprintf(w, "Date:    %s\n", p.Date)
	fmt.Fprintf(w, "Steps:   %d\n", p.Steps)
	fmt.Fprintf(w, "Workout: %d min\n", p.WorkoutMinutes)
}

func updateProgress(cmd *cobra.Command, args []string, add bool) error {
	steps, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid steps %q: %w", args[0], err)
	}
	workout, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid workout minutes %q: %w", args[1], err)
	}
	return withApp(func(ctx context.Context, a *app) error {
		apply := a.progress.Set
		if add {
			apply = a.progress.Add
		}
		p, err := apply(ctx, steps, workout)
		if err != nil {
			return err
		}
		printProgress(cmd.OutOrStdout(), p)
		return nil
	})
}

func runMention(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.engine.RecordPersonalMention(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ping window open for %s:%s (%s)\n",
			strings.ToLower(args[0]), args[1], a.pings.Lifetime())
		return nil
	})
}

func runUnlock(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		until, err := a.unlocks.Unlock(ctx, args[0], unlockPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %s until %s\n", args[0], until.Format(time.RFC1123))
		return nil
	})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", config.Path(cfg.DataDir), data)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := resolveDataDir()
	if fileExists(config.Path(dir)) && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.Path(dir))
	}
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.Path(dir))
	return nil
}
