package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/buildbeaver/chatdl/api/client"
	"github.com/buildbeaver/chatdl/app"
	"github.com/buildbeaver/chatdl/cmd/chatdl/cli"
	"github.com/buildbeaver/chatdl/cmd/chatdl/progress"
	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
	"github.com/buildbeaver/chatdl/common/version"
	"github.com/buildbeaver/chatdl/services/export"
	"github.com/buildbeaver/chatdl/services/history"
)

const (
	ConfigFileName = ".chatdl"
	EnvPrefix      = "CHATDL"
)

const usageTemplate = `Usage: {{.CommandPath}} [token] [channelId] [lastMessageId]{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`

// Config keys, which double as flag names with "-" in place of "_".
const (
	keyBaseURL    = "base_url"
	keyOutput     = "output"
	keyLimit      = "limit"
	keyTimeout    = "timeout"
	keyAuthScheme = "auth_scheme"
	keyStrict     = "strict"
	keyProgress   = "progress"
	keyDebug      = "debug"
	keyJSON       = "json"
	keyLogLevels  = "log_levels"
	keyUserAgent  = "user_agent"
)

// Execute runs the root command and exits the process.
// This is called by main.main().
func Execute() {
	cli.Exit(NewRootCmd().Execute())
}

// NewRootCmd returns the chatdl command with its own configuration state.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var configFilePath string

	cmd := &cobra.Command{
		Use:           "chatdl [token] [channelId] [lastMessageId]",
		Short:         "Download the message history of a chat channel to a JSON file",
		Version:       versionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return cmd.Help()
			case 3:
			default:
				fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				return errors.Errorf("expected 3 arguments but got %d", len(args))
			}
			err := readConfigFile(v, configFilePath)
			if err != nil {
				return err
			}
			config, err := configFromViper(v, models.Token(args[0]), models.ChannelID(args[1]), models.MessageID(args[2]))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return run(ctx, config, v.GetBool(keyProgress))
		},
	}
	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpTemplate("{{.UsageString}}")

	flags := cmd.Flags()
	flags.StringVarP(&configFilePath, "config", "c", "",
		fmt.Sprintf("The config file to use (default is %s.yml in the home or current directory)", ConfigFileName))
	flags.StringP("output", "o", export.DefaultOutputFile.String(), "The file to write the downloaded messages to")
	bindPFlag(v, flags, keyOutput)
	flags.String("base-url", client.DefaultEndpoint.String(), "The base URL of the chat API")
	bindPFlag(v, flags, keyBaseURL)
	flags.Int("limit", history.DefaultPageSize, fmt.Sprintf("The number of messages to request per page (1-%d)", client.MaxMessagesLimit))
	bindPFlag(v, flags, keyLimit)
	flags.Duration("timeout", 0, "The timeout for each API request, or 0 for no timeout")
	bindPFlag(v, flags, keyTimeout)
	flags.String("auth-scheme", client.AuthSchemeQuery.String(),
		fmt.Sprintf("How to send the token: %q (query parameter), %q or %q (Authorization header)",
			client.AuthSchemeQuery, client.AuthSchemeBot, client.AuthSchemeBearer))
	bindPFlag(v, flags, keyAuthScheme)
	flags.String("user-agent", version.UserAgent(), "The User-Agent header to send with each request")
	bindPFlag(v, flags, keyUserAgent)
	flags.Bool("strict", false, "Exit with an error if the API stops the download early")
	bindPFlag(v, flags, keyStrict)
	flags.Bool("progress", false, "Show a progress spinner when running in a terminal")
	bindPFlag(v, flags, keyProgress)
	flags.BoolP("debug", "d", false, "Enable verbose debug output")
	bindPFlag(v, flags, keyDebug)
	flags.BoolP("json", "j", false, "Enable structured JSON log output")
	bindPFlag(v, flags, keyJSON)
	flags.String("log-levels", "",
		fmt.Sprintf("A comma separated list of name=level pairs where name is the name of the logger and level is one of: %s", logger.ListLogLevels()))
	bindPFlag(v, flags, keyLogLevels)

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return cmd
}

func versionString() string {
	if s := version.VersionToString(); s != "" {
		return s
	}
	return "dev"
}

// bindPFlag binds the flag for key to the viper config key of the same name.
func bindPFlag(v *viper.Viper, flags *pflag.FlagSet, key string) {
	if err := v.BindPFlag(key, flags.Lookup(strings.ReplaceAll(key, "_", "-"))); err != nil {
		panic(err)
	}
}

// readConfigFile reads the config file at path, or looks for the default config file if path is empty.
// A missing default config file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}
	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.Wrapf(err, "error loading config file (%s)", v.ConfigFileUsed())
	}
	return nil
}

func configFromViper(v *viper.Viper, token models.Token, channelID models.ChannelID, startCursor models.MessageID) (*app.Config, error) {
	config := app.NewConfig(token, channelID, startCursor)
	config.RunID = app.RunID(uuid.NewString())
	config.APIClientConfig = client.APIClientConfig{
		Endpoint:  client.Endpoint(v.GetString(keyBaseURL)),
		Timeout:   v.GetDuration(keyTimeout),
		UserAgent: v.GetString(keyUserAgent),
	}
	config.AuthScheme = client.AuthScheme(strings.ToLower(v.GetString(keyAuthScheme)))
	config.PageSize = history.PageSize(v.GetInt(keyLimit))
	config.OutputFile = export.OutputFile(v.GetString(keyOutput))
	config.LogLevels = logger.LogLevelConfig(v.GetString(keyLogLevels))
	config.JSON = logger.JSONOutput(v.GetBool(keyJSON))
	config.Debug = v.GetBool(keyDebug)
	config.Strict = v.GetBool(keyStrict)

	err := config.Validate()
	if err != nil {
		return nil, err
	}
	return config, nil
}

func run(ctx context.Context, config *app.Config, showProgress bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config)
	if err != nil {
		return errors.Wrap(err, "error initializing app")
	}
	log := a.LogFactory("Command")
	log.WithFields(config.LogFields()).Debug("Using configuration")

	var spinner *progress.SpinnerObserver
	if showProgress && progress.IsTerminal() {
		spinner = progress.NewSpinnerObserver(config.ChannelID)
		a.Paginator.SetObserver(spinner)
		spinner.Start()
	}

	_, err = a.Run(ctx)
	if spinner != nil {
		spinner.Finish(err)
	}
	return err
}
