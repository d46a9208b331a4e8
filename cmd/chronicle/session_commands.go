package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chronicle/internal/pipeline"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the shared correlation session",
	}
	cmd.AddCommand(newSessionStartCommand(ctx))
	cmd.AddCommand(newSessionStopCommand(ctx))
	cmd.AddCommand(newSessionShowCommand(ctx))
	return cmd
}

func newSessionStartCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a session; later emits share its correlation id",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := ctx.ensurePipeline()
			if err != nil {
				return err
			}

			session := pipe.StartSession(cmd.Context(), nameFlag)
			if err := saveSessionState(ctx.configValue().SessionStatePath(), session); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			cmd.Printf("session %s started\n", session.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Session name")
	return cmd
}

func newSessionStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := ctx.ensurePipeline()
			if err != nil {
				return err
			}

			statePath := ctx.configValue().SessionStatePath()
			_, active := pipe.ActiveSession()
			pipe.StopSession(cmd.Context())
			if err := clearSessionState(statePath); err != nil {
				return fmt.Errorf("clear session state: %w", err)
			}
			if !active {
				cmd.Println("no active session")
				return nil
			}
			cmd.Println("session stopped")
			return nil
		},
	}
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			session, ok, err := loadSessionState(cfg.SessionStatePath())
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("no active session")
				return nil
			}
			return writeJSON(cmd, session)
		},
	}
}

// Session state persists as one small JSON file so consecutive one-shot CLI
// invocations share a correlation id.

func saveSessionState(path string, session pipeline.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadSessionState(path string) (pipeline.Session, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pipeline.Session{}, false, nil
		}
		return pipeline.Session{}, false, err
	}
	var session pipeline.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return pipeline.Session{}, false, fmt.Errorf("parse session state: %w", err)
	}
	return session, session.ID != "", nil
}

func clearSessionState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
