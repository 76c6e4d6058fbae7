package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fitbeard/okta-assume/internal/config"
	"github.com/fitbeard/okta-assume/internal/credentials"
	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/logging"
	"github.com/fitbeard/okta-assume/internal/okta"
	"github.com/fitbeard/okta-assume/internal/profile"
	"github.com/fitbeard/okta-assume/internal/redact"
	"github.com/fitbeard/okta-assume/internal/roles"
	"github.com/fitbeard/okta-assume/internal/sts"
	"github.com/fitbeard/okta-assume/internal/ui"
	"github.com/fitbeard/okta-assume/internal/version"
)

// app carries the process environment of one invocation.
type app struct {
	// stdin is nil or not a terminal when prompting is impossible.
	stdin   *os.File
	stdout  io.Writer
	stderr  io.Writer
	environ []string
	fs      afero.Fs

	registry *redact.Registry
	logger   *log.Logger
	console  io.Writer
	prompter *ui.Prompter
	// logFile is the log output file, if any. Closed after the final error is logged.
	logFile io.Closer
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, a *app, args []string) int {
	a.registry = redact.NewRegistry()
	a.logger = logging.New(a.stderr, a.registry)

	ran := false
	cmd := newRootCmd(a, &ran)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !ran {
		// Flag parsing and flag group errors.
		err = errUtils.Wrap(errUtils.ErrConfiguration, err)
	}
	if err != nil {
		a.logger.Error(err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return errUtils.ExitCode(err)
}

func newRootCmd(a *app, ran *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "okta-assume",
		Short: "Get temporary AWS credentials through Okta",
		Long: `okta-assume signs in to Okta, reads the SAML assertion of your AWS app,
assumes one of the roles it grants and writes the temporary credentials to
the AWS shared credentials file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*ran = true
			return a.execute(cmd.Context(), cmd.Flags())
		},
	}

	registerFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive(config.FlagOktaOrgURL, config.FlagOktaAppURL)
	return cmd
}

func registerFlags(flags *pflag.FlagSet) {
	flags.Bool(config.FlagVersion, false, "Display version information and exit")
	flags.Bool(config.FlagConfigure, false, "Create or update the configuration profile and exit")

	flags.String(config.FlagUsername, "", "Username to log in to Okta")
	flags.String(config.FlagPassword, "", "Password to log in to Okta")
	flags.String(config.FlagProfile, "", "okta-assume configuration profile to use")
	flags.String(config.FlagConfigFile, "", "Use an alternative configuration file")
	flags.StringP(config.FlagLoglevel, "l", "", "Log level: DEBUG, INFO, WARN, ERROR")
	flags.String(config.FlagLogOutputFile, "", "Write logs to this file instead of stderr")
	flags.Bool(config.FlagNoColor, false, "Disable colored output")
	flags.Bool(config.FlagQuiet, false, "Suppress console output")

	flags.String(config.FlagAWSConfigFile, "", "AWS configuration file to write to")
	flags.String(config.FlagAWSOutput, "", "AWS output format for the generated profile")
	flags.String(config.FlagAWSProfile, "", "AWS profile to save credentials to; a role with this name is selected automatically")
	flags.String(config.FlagAWSRegion, "", "AWS region for the generated profile")
	flags.String(config.FlagAWSRoleARN, "", "IAM role ARN to assume; skips the role menu")
	flags.String(config.FlagAWSSharedCredentialsFile, "", "AWS shared credentials file to write to")
	flags.String(config.FlagAWSSessionDuration, "", "Session duration, e.g. 1h, 90m or 3600 (15m-12h)")

	flags.String(config.FlagOktaOrgURL, "", "Okta organization URL, e.g. https://acme.okta.com")
	flags.String(config.FlagOktaAppURL, "", "Okta AWS app tile URL")
	flags.String(config.FlagOktaMFAMethod, "", "Preferred MFA factor type or factor id")
	flags.String(config.FlagOktaMFAResponse, "", "Answer to the MFA challenge")
}

func (a *app) execute(ctx context.Context, flags *pflag.FlagSet) error {
	env := config.FromEnvironment(a.environ, a.registry)
	args := config.FromFlags(flags, a.registry)

	if err := a.setupEarly(env, args); err != nil {
		return err
	}

	if showVersion, _ := flags.GetBool(config.FlagVersion); showVersion {
		version.PrintVersion(a.stdout)
		return nil
	}

	if a.stdin != nil && ui.IsInteractive(a.stdin) {
		a.prompter = ui.NewPrompter(a.stdin, a.stderr)
	}
	resolver := &config.Resolver{Registry: a.registry, Logger: a.logger, Out: a.console}
	if a.prompter != nil {
		resolver.Prompter = a.prompter
	}

	if configure, _ := flags.GetBool(config.FlagConfigure); configure {
		return a.configure(resolver, config.Locate(env, args))
	}

	sources, err := config.LoadSources(a.fs, env, args, a.registry)
	if err != nil {
		return err
	}
	cfg, err := resolver.Resolve(sources)
	if err != nil {
		return err
	}

	// The config file may change the log level and output.
	if err := a.applyLogging(cfg.User.Loglevel, cfg.User.LogOutputFile); err != nil {
		return err
	}
	a.console = ui.Console(a.stdout, cfg.User.Quiet || a.hasEnv("QUIET"))
	ui.SetupColor(cfg.User.NoColor)

	_, err = a.pipeline(cfg).Run(ctx, cfg)
	return err
}

// setupEarly configures logging and the console from arguments and the
// environment before the configuration file is read.
func (a *app) setupEarly(env, args config.Values) error {
	pick := func(key string) string {
		if v, ok := args.Get(config.NamespaceUser, key); ok {
			return v
		}
		v, _ := env.Get(config.NamespaceUser, key)
		return v
	}

	if err := a.applyLogging(pick("loglevel"), pick("log_output_file")); err != nil {
		return err
	}

	ui.SetupColor(isSet(pick("no_color")) || a.hasEnv("NO_COLOR"))
	a.console = ui.Console(a.stdout, isSet(pick("quiet")) || a.hasEnv("QUIET"))
	return nil
}

// applyLogging sets the log level and output, replacing an earlier log file.
func (a *app) applyLogging(level, outputFile string) error {
	if a.logFile != nil {
		a.logger.SetOutput(a.registry.Writer(a.stderr))
		a.logFile.Close()
		a.logFile = nil
	}

	logFile, err := logging.Apply(a.logger, a.registry, level, outputFile)
	if err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrIO, err)
	}
	a.logFile = logFile
	return nil
}

// hasEnv reports whether name is present in the environment, whatever its value.
func (a *app) hasEnv(name string) bool {
	for _, entry := range a.environ {
		if key, _, _ := strings.Cut(entry, "="); key == name {
			return true
		}
	}
	return false
}

func isSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	}
	return false
}

// configure asks for the Okta identity and stores it in the config profile.
func (a *app) configure(resolver *config.Resolver, loc config.Location) error {
	if resolver.Prompter == nil {
		return fmt.Errorf("%w: --configure needs an interactive terminal", errUtils.ErrConfiguration)
	}

	org, appURL, username, err := resolver.AskIdentity("", "", "")
	if err != nil {
		return err
	}
	if appURL != "" {
		org = config.BaseURL(appURL)
	}

	store := profile.NewStore(a.fs, loc.Encoding)
	identity := config.OktaConfig{Org: org, AppURL: appURL, Username: username}
	if err := store.SaveIdentity(loc.Path, loc.Profile, identity); err != nil {
		return err
	}

	fmt.Fprintf(a.console, "Updated profile '%s' in %s.\n", loc.Profile, loc.Path)
	return nil
}

func (a *app) pipeline(cfg *config.Config) *credentials.Pipeline {
	client := okta.NewClient(cfg.Okta.Org, a.registry, a.logger)
	client.UserAgent = version.GetUserAgent()
	client.Out = a.console

	selector := &roles.Selector{
		Aliases: &roles.AliasLookup{Client: client.HTTP, Logger: a.logger},
		Out:     a.console,
		Logger:  a.logger,
	}
	if a.prompter != nil {
		client.Prompter = a.prompter
		client.Chooser = a.prompter
		selector.Chooser = a.prompter
	}

	return &credentials.Pipeline{
		Okta:     client,
		Roles:    selector,
		STS:      &sts.Client{Registry: a.registry},
		Profiles: profile.NewStore(a.fs, cfg.User.Encoding),
		Out:      a.console,
		Logger:   a.logger,
	}
}
