package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vault/internal/vault"
	"vault/internal/watch"
)

const watchDebounceMs = 500

func uploadCmd() *cobra.Command {
	folder := ""
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload local files into a vault folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			folderID, err := parseFolderRef(folder)
			if err != nil {
				return err
			}

			session, cfg, err := loadSession(ctx)
			if err != nil {
				return err
			}
			uploader := vault.NewUploader(session.API(), cfg.CompanyID, slog.Default())

			for _, path := range args {
				if err := uploadOne(ctx, uploader, session, path, folderID); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "root", "destination folder id or \"root\"")
	return cmd
}

func uploadOne(ctx context.Context, uploader *vault.Uploader, session *vault.Session, path string, folderID *int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	bar := progressbar.DefaultBytes(info.Size(), filepath.Base(path))
	doc, err := uploader.Upload(ctx, &vault.UploadRequest{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		Reader:   io.TeeReader(f, bar),
		FolderID: folderID,
	})
	if err != nil {
		var commitErr *vault.CommitError
		if errors.As(err, &commitErr) {
			// Bytes are in the store already; one commit retry with the
			// same key before giving up.
			doc, err = uploader.RetryCommit(ctx, commitErr.Pending)
			if err != nil {
				return fmt.Errorf("%w (bytes are stored under key %s; retry the commit, do not re-upload)", err, commitErr.Pending.Key)
			}
		} else {
			return err
		}
	}

	session.InsertDocument(*doc)
	fmt.Printf("uploaded %s as document %d (key %s)\n", doc.Name, doc.ID, doc.Key)
	return nil
}

func downloadCmd() *cobra.Command {
	output := ""
	cmd := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download a document via its presigned read URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			docID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || docID <= 0 {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			session, cfg, err := loadSession(ctx)
			if err != nil {
				return err
			}

			idx := -1
			for i, doc := range session.Documents() {
				if doc.ID == docID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("document %d is not in the vault", docID)
			}
			doc := session.Documents()[idx]

			name := output
			if name == "" {
				name = doc.Name
			}
			out, err := os.Create(name)
			if err != nil {
				return err
			}
			defer out.Close()

			uploader := vault.NewUploader(session.API(), cfg.CompanyID, slog.Default())
			bar := progressbar.DefaultBytes(doc.Size, doc.Name)

			written, err := uploader.Download(ctx, doc.ID, io.MultiWriter(out, bar))
			if err != nil {
				return err
			}

			fmt.Printf("downloaded %s (%d bytes) to %s\n", doc.Name, written, name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the document name)")
	return cmd
}

func watchCmd() *cobra.Command {
	folder := ""
	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a local directory and auto-upload new files",
		Long:  `Watches a directory tree and uploads every file that settles after a create or modify into the destination folder. Ignore patterns from the config file (watch_ignore) are doublestar globs.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			folderID, err := parseFolderRef(folder)
			if err != nil {
				return err
			}

			session, cfg, err := loadSession(ctx)
			if err != nil {
				return err
			}
			uploader := vault.NewUploader(session.API(), cfg.CompanyID, slog.Default())

			w, err := watch.NewWatcher(args[0], watchDebounceMs, cfg.WatchIgnore, slog.Default())
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			fmt.Printf("Watching %s. Press Ctrl+C to stop.\n", args[0])

			for {
				select {
				case <-sigCh:
					slog.Info("shutting down")
					return w.Stop()

				case event, ok := <-w.Events():
					if !ok {
						return nil
					}
					slog.Debug("file settled", "path", event.RelPath, "type", event.EventType.String())
					if err := uploadOne(ctx, uploader, session, event.AbsPath, folderID); err != nil {
						slog.Error("auto-upload failed", "path", event.RelPath, "error", err)
					}
				}
			}
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "root", "destination folder id or \"root\"")
	return cmd
}
