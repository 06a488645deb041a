package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ctrlmap-tools/cmapsync/internal/config"
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

var initCmd = &cobra.Command{
	Use:   "init <api-url>",
	Short: "Store API credentials and scaffold the output directories",
	Long: `Init records the ControlMap API base URL, tenant URI and bearer token in
~/.cmapsync/config.yaml, then creates one folder per exportable domain
under the output directory. The token prompt does not echo.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Output directory to scaffold")
}

func runInit(cmd *cobra.Command, args []string) error {
	baseURL := strings.TrimSpace(args[0])
	if !strings.HasPrefix(baseURL, "https://") {
		return fmt.Errorf("api url must start with https://")
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Tenant URI: ")
	tenant, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading tenant: %w", err)
	}
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return fmt.Errorf("tenant is required")
	}

	token, err := readToken(reader)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	outputDir, _ := cmd.Flags().GetString("output")

	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.Tenant = tenant
	cfg.API.Token = token
	cfg.Output.Directory = outputDir
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := config.Save(cfg)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	for _, kind := range domain.AllKinds {
		dir := filepath.Join(outputDir, kind.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	fmt.Printf("Configuration written to %s\n", path)
	fmt.Printf("Output folders created under %s\n", outputDir)
	return nil
}

// readToken reads the bearer token without echoing when stdin is a
// terminal, falling back to a plain line read when it is not (pipes, CI).
func readToken(reader *bufio.Reader) (string, error) {
	fmt.Print("Bearer token: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
