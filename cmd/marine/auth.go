package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/render"
)

func loginCmd(a *app) *cobra.Command {
	var creds marine.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.Auth.Login(ctx, creds); err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				profile, err := s.client.Auth.Me(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.stdout, "Signed in as %s\n", render.Profile(profile))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				logoutErr := s.client.Auth.Logout(ctx)
				if err := s.jar.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear cookies: %w", err)
				}
				if logoutErr != nil && !marine.IsUnauthorized(logoutErr) {
					return fmt.Errorf("logout failed: %w", logoutErr)
				}
				_, _ = fmt.Fprintln(a.stdout, "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				profile, err := s.client.Auth.Me(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, render.Profile(profile))
				return nil
			})
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	var (
		reg  marine.Registration
		role string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg.Role = marine.Role(role)
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				profile, err := s.client.Auth.Register(ctx, reg)
				if err != nil {
					return fmt.Errorf("registration failed: %w", err)
				}
				_, _ = fmt.Fprintf(a.stdout, "Registered %s. Check your inbox to verify your email.\n", render.Profile(profile))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(marine.RoleHobbyist), "hobbyist or researcher")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func passwordResetCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "password-reset",
		Short: "Email a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.Auth.RequestPasswordReset(ctx, email); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, "If the address has an account, a reset link is on its way.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func passwordResetConfirmCmd(a *app) *cobra.Command {
	var confirm marine.PasswordResetConfirm
	cmd := &cobra.Command{
		Use:   "password-reset-confirm",
		Short: "Set a new password from a reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if confirm.ConfirmPassword == "" {
				confirm.ConfirmPassword = confirm.NewPassword
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.Auth.ConfirmPasswordReset(ctx, confirm); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, "Password updated. Sign in with the new password.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&confirm.UID, "uid", "", "uid from the reset link")
	cmd.Flags().StringVar(&confirm.Token, "token", "", "token from the reset link")
	cmd.Flags().StringVar(&confirm.NewPassword, "password", "", "new password")
	cmd.Flags().StringVar(&confirm.ConfirmPassword, "confirm", "", "new password again (defaults to --password)")
	_ = cmd.MarkFlagRequired("uid")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func verifyEmailCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm an email address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.Auth.VerifyEmail(ctx, token); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, "Email verified")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token from the verification email")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
