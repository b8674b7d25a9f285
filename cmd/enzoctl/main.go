package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"enzo/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type pageFlags struct {
	limit int
	skip  int
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", 0, "page size (0 uses the server default)")
	cmd.Flags().IntVar(&p.skip, "skip", 0, "number of items to skip")
}

func (p *pageFlags) page() client.Page {
	return client.Page{Limit: p.limit, Skip: p.skip}
}

func newRootCmd() *cobra.Command {
	loader := NewLoader()
	var api *client.Client

	root := &cobra.Command{
		Use:          "enzoctl",
		Short:        "Command-line client for the Enzo English API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			api, err = client.New(cfg.BaseURL,
				client.WithTimeout(cfg.Timeout),
				client.WithTokenProvider(client.StaticToken(cfg.Token)),
			)
			return err
		},
	}
	root.PersistentFlags().String("base-url", "", "API base URL")
	root.PersistentFlags().String("token", "", "Firebase ID token")
	root.PersistentFlags().Duration("timeout", 0, "request timeout")

	root.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd.OutOrStdout(), api.CurrentUser.Execute(cmd.Context()))
		},
	})

	folders := &cobra.Command{Use: "folders", Short: "Work with folders"}
	var folderPage pageFlags
	foldersList := &cobra.Command{
		Use:   "list",
		Short: "List your folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd.OutOrStdout(), api.Folders.Execute(cmd.Context(), folderPage.page()))
		},
	}
	folderPage.register(foldersList)
	folders.AddCommand(foldersList)

	words := &cobra.Command{Use: "words", Short: "Work with words"}
	var wordPage pageFlags
	wordsList := &cobra.Command{
		Use:   "list FOLDER_ID",
		Short: "List the words in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid folder id %q: %w", args[0], err)
			}
			return printResult(cmd.OutOrStdout(), api.FolderWords.Execute(cmd.Context(), uuid.Nil, folderID, wordPage.page()))
		},
	}
	wordPage.register(wordsList)
	wordsGet := &cobra.Command{
		Use:   "get WORD_ID",
		Short: "Show a single word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid word id %q: %w", args[0], err)
			}
			return printResult(cmd.OutOrStdout(), api.Word.Execute(cmd.Context(), id))
		},
	}
	words.AddCommand(wordsList, wordsGet)

	root.AddCommand(folders, words)
	return root
}

func printResult[T any](w io.Writer, r client.Result[T]) error {
	v, err := r.Get()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
