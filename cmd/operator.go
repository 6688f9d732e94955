package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"irrigation_node/internal/config"
	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"
	"irrigation_node/internal/repository/db"
	"irrigation_node/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// passwordEnv lets scripts provision operators without a terminal.
const passwordEnv = "IRRIGATION_OPERATOR_PASSWORD"

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage diagnostics API operators",
}

var operatorAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an operator that can sign in to the diagnostics API",
	Long: `Create an operator in the node database.

The password is read from the IRRIGATION_OPERATOR_PASSWORD environment variable,
or prompted for (twice, without echo) when stdin is a terminal, or read as the
first line of stdin otherwise. There is no --password flag so the password
never lands in shell history.`,
	Args: cobra.ExactArgs(1),
	RunE: runOperatorAdd,
}

var operatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators and their last sign-in",
	Args:  cobra.NoArgs,
	RunE:  runOperatorList,
}

func init() {
	operatorCmd.AddCommand(operatorAddCmd)
	operatorCmd.AddCommand(operatorListCmd)
	rootCmd.AddCommand(operatorCmd)
}

func runOperatorAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	auth, closeDB, err := openAuth(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	id, err := auth.SignUp(username, password)
	if err != nil {
		return fmt.Errorf("create operator %q: %w", username, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "operator %q created (id %d)\n", username, id)
	return nil
}

func runOperatorList(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	auth, closeDB, err := openAuth(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ops, err := auth.Operators()
	if err != nil {
		return err
	}
	return printOperators(cmd.OutOrStdout(), ops)
}

func openAuth(cfg config.Config) (*service.AuthService, func(), error) {
	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sqlite: %w", err)
	}
	auth := service.NewAuthService(repository.NewOperatorRepository(database), service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	})
	return auth, func() { _ = database.Close() }, nil
}

func printOperators(w io.Writer, ops []models.Operator) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tLAST SIGN-IN")
	for _, op := range ops {
		last := "never"
		if op.LastLoginAt != nil {
			last = op.LastLoginAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", op.ID, op.Username, last)
	}
	return tw.Flush()
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprint(prompt, "Repeat password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
