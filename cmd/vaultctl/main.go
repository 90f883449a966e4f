package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vault/internal/api"
	"vault/internal/config"
	"vault/internal/domain/models"
	"vault/internal/vault"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "vaultctl",
		Short:   "Scripted access to the compliance vault",
		Long:    `Command-line client for the document vault: browse the folder tree, create, rename, move and delete folders and documents, and transfer files through the object store.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		lsCmd(),
		statCmd(),
		treeCmd(),
		mkdirCmd(),
		renameCmd(),
		mvCmd(),
		rmCmd(),
		uploadCmd(),
		downloadCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSession builds the API client and a refreshed session from
// configuration.
func loadSession(ctx context.Context) (*vault.Session, *config.Config, error) {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfgFile != "" {
		if err := config.LoadFile(cfg, cfgFile); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client := api.NewHTTPClient(cfg.ServerURL)
	client.SetAuthToken(cfg.AuthToken)

	session := vault.NewSession(client, cfg.CompanyID, slog.Default())
	if err := session.Refresh(ctx); err != nil {
		return nil, nil, fmt.Errorf("load vault: %w", err)
	}

	return session, cfg, nil
}

// parseFolderRef turns "root" or a folder id into a parent reference.
func parseFolderRef(ref string) (*int64, error) {
	if ref == "" || strings.EqualFold(ref, "root") {
		return nil, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid folder reference %q (expected a positive id or \"root\")", ref)
	}
	return &id, nil
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [folder]",
		Short: "List folders and documents at a location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			folderID, err := parseFolderRef(ref)
			if err != nil {
				return err
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			tree := session.Tree()
			if folderID != nil {
				path, err := tree.PathTo(*folderID)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(path))
				for _, folder := range path {
					names = append(names, folder.Name)
				}
				fmt.Printf("/%s\n", strings.Join(names, "/"))
			}

			for _, folder := range tree.ChildrenOf(folderID) {
				fmt.Printf("%8d  folder    %s/\n", folder.ID, folder.Name)
			}
			for _, doc := range tree.DocumentsIn(folderID) {
				fmt.Printf("%8d  %-8s  %s (%d bytes)\n", doc.ID, doc.Extension, doc.Name, doc.Size)
			}

			return nil
		},
	}
}

func statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <folder-id>",
		Short: "Show one folder's server-side contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid folder id %q", args[0])
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			// Asks the store directly instead of the local cache, so the
			// answer reflects edits made by other sessions.
			contents, err := session.API().GetFolder(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("folder %q [%d]\n", contents.Folder.Name, contents.Folder.ID)
			for _, child := range contents.ChildFolders {
				fmt.Printf("  %8d  folder    %s/\n", child.ID, child.Name)
			}
			for _, doc := range contents.Documents {
				fmt.Printf("  %8d  %-8s  %s (%d bytes)\n", doc.ID, doc.Extension, doc.Name, doc.Size)
			}

			return nil
		},
	}
}

func treeCmd() *cobra.Command {
	showDocs := false
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole folder hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			tree := session.Tree()
			tree.Walk(func(folder models.Folder, depth int) {
				marker := ""
				if tree.IsOrphan(folder.ID) {
					marker = "  (orphan)"
				}
				fmt.Printf("%s%s/  [%d]%s\n", strings.Repeat("  ", depth), folder.Name, folder.ID, marker)
				if showDocs {
					for _, doc := range tree.DocumentsIn(&folder.ID) {
						fmt.Printf("%s%s  [%d]\n", strings.Repeat("  ", depth+1), doc.Name, doc.ID)
					}
				}
			})
			if showDocs {
				for _, doc := range tree.DocumentsIn(nil) {
					fmt.Printf("%s  [%d]\n", doc.Name, doc.ID)
				}
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&showDocs, "documents", false, "include documents")
	return cmd
}

func mkdirCmd() *cobra.Command {
	parent := ""
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			parentID, err := parseFolderRef(parent)
			if err != nil {
				return err
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			reconciler := vault.NewReconciler(session, slog.Default())
			folder, err := reconciler.CreateFolder(ctx, args[0], parentID)
			if err != nil {
				return err
			}

			fmt.Printf("created folder %q with id %d\n", folder.Name, folder.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "root", "parent folder id or \"root\"")
	return cmd
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder|document> <id> <name>",
		Short: "Rename a folder or document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			reconciler := vault.NewReconciler(session, slog.Default())
			switch args[0] {
			case "folder":
				err = reconciler.RenameFolder(ctx, id, args[2])
			case "document":
				err = reconciler.RenameDocument(ctx, id, args[2])
			default:
				return fmt.Errorf("unknown kind %q (expected folder or document)", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("renamed %s %d to %q\n", args[0], id, args[2])
			return nil
		},
	}
}

func mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <folder|document> <id> <destination>",
		Short: "Move a folder or document into another folder (or \"root\")",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}
			destination, err := parseFolderRef(args[2])
			if err != nil {
				return err
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			mover := vault.NewMover(session, slog.Default())
			switch args[0] {
			case "folder":
				err = mover.MoveFolder(ctx, id, destination)
			case "document":
				err = mover.MoveDocument(ctx, id, destination)
			default:
				return fmt.Errorf("unknown kind %q (expected folder or document)", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("moved %s %d\n", args[0], id)
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <folder|document> <id>",
		Short: "Delete a folder (with its contents) or a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			session, _, err := loadSession(ctx)
			if err != nil {
				return err
			}

			reconciler := vault.NewReconciler(session, slog.Default())
			switch args[0] {
			case "folder":
				err = reconciler.DeleteFolder(ctx, id)
			case "document":
				err = reconciler.DeleteDocument(ctx, id)
			default:
				return fmt.Errorf("unknown kind %q (expected folder or document)", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("deleted %s %d\n", args[0], id)
			return nil
		},
	}
}
