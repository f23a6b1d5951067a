package main

import (
	"errors"

	"NanoVision/server/internal/nutrition"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.session.Login(commandContext(cmd), email, password)
			if err != nil {
				return err
			}
			a.printf("Signed in as %s (%s)\n", profile.Email, profile.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(commandContext(cmd)); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req nutrition.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Register(commandContext(cmd), req)
			if err != nil {
				return err
			}
			a.printf("Registered %s (id %d). Run \"login\" to sign in.\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.session.FetchProfile(commandContext(cmd))
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(profile)
		},
	}

	var (
		update        nutrition.HealthProfileUpdate
		calorieTarget int
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update the health profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("calories") {
				update.CalorieTarget = &calorieTarget
			}
			profile, err := a.client.UpdateProfile(commandContext(cmd), update)
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(profile)
		},
	}
	set.Flags().StringVar(&update.GoalType, "goal", "maintain", "Goal type: lose_weight, maintain or gain_muscle")
	set.Flags().IntVar(&calorieTarget, "calories", 0, "Daily calorie target")
	set.Flags().StringVar(&update.Allergies, "allergies", "", "Allergies")
	set.Flags().StringVar(&update.ChronicConditions, "conditions", "", "Chronic conditions")
	set.Flags().StringVar(&update.FoodRestrictions, "restrictions", "", "Food restrictions")
	cmd.AddCommand(set)
	return cmd
}

// loginHint turns a 401 into a prompt to sign in
func loginHint(err error) error {
	if nutrition.IsUnauthorized(err) {
		return errors.New("not signed in or session expired; run \"login\" first")
	}
	return err
}
