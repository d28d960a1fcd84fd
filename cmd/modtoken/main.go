// Command modtoken, sunucu operatörünün moderatör token'ı üretmesini sağlar.
//
// Token, sunucuyla aynı JWT_SECRET ile imzalanır. Moderatör bunu join
// frame'inin token alanında veya admin API'sinde Bearer olarak kullanır.
//
//	modtoken --nick boss --level 3 --ttl 720h
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akinalp/hush/config"
	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		nick  string
		level int
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:          "modtoken",
		Short:        "Issue a signed moderator token for hush",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			token, err := services.NewAuthService(cfg.JWT.Secret).IssueModToken(nick, level, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nick, "nick", "n", "", "nick the token is bound to")
	cmd.Flags().IntVarP(&level, "level", "l", models.LevelModerator, "permission level (1-4)")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("nick")

	return cmd
}
