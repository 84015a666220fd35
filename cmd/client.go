/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/promptpix/apiserver/internal/client"
	"github.com/promptpix/apiserver/types"
	"github.com/spf13/cobra"
)

var (
	clientServerURL string
	clientStateDir  string

	generateModel string

	authName     string
	authPassword string
	authConfirm  string
	agreeTerms   bool
)

// clientCmd groups the end-user commands that talk to a running server.
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Interact with a promptpix server",
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image from a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp()
		if err != nil {
			return err
		}

		result, err := app.Generate(cmd.Context(), args[0], generateModel)
		if err != nil {
			return err
		}
		fmt.Println(result.ImageURL)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp()
		if err != nil {
			return err
		}

		result, history, err := app.Authenticate(cmd.Context(), client.Form{
			Mode:       client.ModeRegister,
			Email:      args[0],
			Name:       authName,
			Password:   authPassword,
			Confirm:    authConfirm,
			AgreeTerms: agreeTerms,
		})
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", result.User.Name, result.User.Email)
		printHistory(history)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp()
		if err != nil {
			return err
		}

		result, history, err := app.Authenticate(cmd.Context(), client.Form{
			Mode:     client.ModeLogin,
			Email:    args[0],
			Password: authPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", result.User.Name, result.User.Email)
		printHistory(history)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp()
		if err != nil {
			return err
		}
		return app.Logout()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your prompt history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp()
		if err != nil {
			return err
		}

		history, err := app.History(cmd.Context())
		if err != nil {
			return err
		}
		printHistory(history)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(generateCmd, registerCmd, loginCmd, logoutCmd, historyCmd)

	clientCmd.PersistentFlags().StringVar(&clientServerURL, "server", defaultServerURL(), "promptpix server base URL")
	clientCmd.PersistentFlags().StringVar(&clientStateDir, "state-dir", defaultStateDir(), "directory for client-local state")

	generateCmd.Flags().StringVar(&generateModel, "model", "", "provider to use (fal-ai, openai)")

	registerCmd.Flags().StringVar(&authName, "name", "", "display name")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "password")
	registerCmd.Flags().StringVar(&authConfirm, "confirm", "", "password confirmation")
	registerCmd.Flags().BoolVar(&agreeTerms, "agree-terms", false, "acknowledge the terms of service")

	loginCmd.Flags().StringVar(&authPassword, "password", "", "password")
}

func newClientApp() (*client.App, error) {
	store, err := client.NewFileStore(clientStateDir)
	if err != nil {
		return nil, fmt.Errorf("open state dir: %w", err)
	}
	return client.NewApp(client.NewAPI(clientServerURL), store), nil
}

func printHistory(history []types.PromptView) {
	for _, record := range history {
		fmt.Printf("%s  %q  %s\n", record.CreatedAt.Format(time.RFC3339), record.Text, record.ImageURL)
	}
}

func defaultServerURL() string {
	if url := os.Getenv("PROMPTPIX_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func defaultStateDir() string {
	if dir := os.Getenv("PROMPTPIX_STATE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptpix"
	}
	return filepath.Join(home, ".promptpix")
}
