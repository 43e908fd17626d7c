package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatehouse-io/gatehouse/internal/app"
	"github.com/gatehouse-io/gatehouse/internal/credstore"
	"github.com/gatehouse-io/gatehouse/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gatectl",
		Short: "Manage Gatehouse user credentials",
		Long: `gatectl administers the Gatehouse credential store directly over PG_DSN.

Role names on "add" are validated against the configured role registry;
the store itself accepts any role string.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		addCmd(),
		deleteCmd(),
		setPasswordCmd(),
		verifyPasswordCmd(),
		listUsersCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// withStore opens the Postgres credential store and hands it to fn.
func withStore(fn func(ctx context.Context, store credstore.Store) error) error {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		return fmt.Errorf("PG_DSN must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	return fn(ctx, credstore.NewPGStore(pool))
}

func addCmd() *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := app.NewRegistry()
			if err != nil {
				return err
			}
			for _, name := range roles {
				if !registry.HasRole(name) {
					return fmt.Errorf("unknown role %q; known roles: %s", name, strings.Join(registry.RoleNames(), ", "))
				}
			}
			return withStore(func(ctx context.Context, store credstore.Store) error {
				if err := store.AddUser(ctx, args[0], args[1], strings.Join(roles, ",")); err != nil {
					return err
				}
				fmt.Printf("user %s created\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to grant (repeatable)")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store credstore.Store) error {
				if err := store.DeleteUser(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("user %s deleted\n", args[0])
				return nil
			})
		},
	}
}

func setPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username> <password>",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store credstore.Store) error {
				if err := store.ChangePassword(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("password updated for %s\n", args[0])
				return nil
			})
		},
	}
}

func verifyPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-password <username> <password>",
		Short: "Check a password against the stored hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store credstore.Store) error {
				ok, err := store.VerifyPassword(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if ok {
					fmt.Println("correct")
				} else {
					fmt.Println("incorrect")
				}
				return nil
			})
		},
	}
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List all user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store credstore.Store) error {
				creds, err := store.ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, c := range creds {
					roles := c.Roles
					if roles == "" {
						roles = "-"
					}
					fmt.Printf("%s\t%s\t%s\n", c.Username, roles, c.CreatedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}
