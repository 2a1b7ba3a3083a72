package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/errors"
)

// tokenCmd issues the development tokens.
var tokenCmd = &cobra.Command{
	Use:   "token <credential id>",
	Short: "Issues the signed token for the credential id",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringSlice("claim", nil, "additional 'key=value' claims")
	tokenCmd.Flags().Duration("expiration", time.Hour, "token expiration")
}

func runToken(cmd *cobra.Command, args []string) error {
	claimFlags, err := cmd.Flags().GetStringSlice("claim")
	if err != nil {
		return err
	}
	expiration, err := cmd.Flags().GetDuration("expiration")
	if err != nil {
		return err
	}
	token, err := issueToken(args[0], claimFlags, expiration)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func issueToken(id string, claimFlags []string, expiration time.Duration) (string, error) {
	signer, err := auth.NewSigner(authOptions(auth.WithExpiration(expiration))...)
	if err != nil {
		return "", err
	}
	claims := map[string]interface{}{}
	for _, claim := range claimFlags {
		parts := strings.SplitN(claim, "=", 2)
		if len(parts) != 2 {
			return "", errors.NewDetf(auth.ClassToken, "invalid claim: '%s', expected 'key=value'", claim)
		}
		claims[parts[0]] = parts[1]
	}
	return signer.Sign(credentialID(id), claims)
}

// credentialID uses the integer identifiers as numbers.
func credentialID(id string) interface{} {
	if i, err := strconv.ParseInt(id, 10, 64); err == nil {
		return i
	}
	return id
}

func authOptions(options ...auth.Option) []auth.Option {
	if cfg.Auth == nil {
		return options
	}
	return append([]auth.Option{auth.WithSecret([]byte(cfg.Auth.Secret)), auth.WithIDClaim(cfg.Auth.IDClaim)}, options...)
}
