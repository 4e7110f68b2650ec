package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest"
	"github.com/CiscoTestAutomation/rest/internal/testbed"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

var (
	testbedPath string
	deviceName  string
	timeout     time.Duration
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "restcli",
		Short: "REST client for network device automation",
		Long: `restcli opens a REST connection to a device from a testbed
topology file and issues a single request against it, printing the
decoded response body.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&testbedPath, "testbed", "", "Testbed topology file (YAML)")
	rootCmd.PersistentFlags().StringVar(&deviceName, "device", "", "Device name from the testbed")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 uses the connection default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(verbCmd("get", "Issue a GET request", false))
	rootCmd.AddCommand(verbCmd("post", "Issue a POST request", true))
	rootCmd.AddCommand(verbCmd("put", "Issue a PUT request", true))
	rootCmd.AddCommand(verbCmd("patch", "Issue a PATCH request", true))
	rootCmd.AddCommand(verbCmd("delete", "Issue a DELETE request", false))
	rootCmd.AddCommand(platformsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() {
	viper.SetConfigName("restcli")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.restcli")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err == nil {
		if testbedPath == "" {
			testbedPath = viper.GetString("testbed")
		}
		if deviceName == "" {
			deviceName = viper.GetString("device")
		}
	}
}

// verbCmd builds one HTTP-verb subcommand. Payload verbs read the
// request body from stdin or the --data flag.
func verbCmd(verb, short string, hasPayload bool) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   verb + " <resource>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), verb, args[0], data, hasPayload)
		},
	}
	if hasPayload {
		cmd.Flags().StringVarP(&data, "data", "d", "", "Request payload (reads stdin when omitted)")
	}
	return cmd
}

func runVerb(ctx context.Context, verb, resource, data string, hasPayload bool) error {
	if testbedPath == "" {
		return fmt.Errorf("a testbed file is required (--testbed)")
	}
	if deviceName == "" {
		return fmt.Errorf("a device name is required (--device)")
	}

	tb, err := testbed.Load(testbedPath)
	if err != nil {
		return err
	}
	cfg, err := tb.Device(deviceName)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
	}

	conn, err := rest.Open(cfg, logger)
	if err != nil {
		return err
	}
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer conn.Disconnect(context.Background())

	var payload any
	if hasPayload {
		payload, err = readPayload(data)
		if err != nil {
			return err
		}
	}

	var opts []connector.Option
	if timeout > 0 {
		opts = append(opts, connector.WithTimeout(timeout))
	}

	result, err := dispatch(ctx, conn, verb, resource, payload, opts)
	if err != nil {
		return err
	}
	return printResult(result)
}

func dispatch(ctx context.Context, conn connector.Connector, verb, resource string, payload any, opts []connector.Option) (*models.Result, error) {
	switch verb {
	case "get":
		return conn.Get(ctx, resource, opts...)
	case "post":
		return conn.Post(ctx, resource, payload, opts...)
	case "put":
		return conn.Put(ctx, resource, payload, opts...)
	case "patch":
		return conn.Patch(ctx, resource, payload, opts...)
	case "delete":
		return conn.Delete(ctx, resource, opts...)
	default:
		return nil, fmt.Errorf("unknown verb %q", verb)
	}
}

func readPayload(data string) (any, error) {
	raw := []byte(data)
	if data == "" {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	return string(raw), nil
}

func printResult(result *models.Result) error {
	switch v := result.Decoded.(type) {
	case nil:
		return nil
	case string:
		fmt.Println(v)
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Println(result.Text())
			return nil
		}
		fmt.Println(string(out))
	}
	return nil
}

func platformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platform tags",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range rest.Platforms() {
				fmt.Println(p)
			}
		},
	}
}
