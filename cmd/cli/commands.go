package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ori-shem-tov/scratchcard/tools"
)

var (
	depth       uint32
	bufferSize  uint32
	canopyDepth uint32

	quantity uint64
	owner    string
	referrer string

	assetID  string
	newOwner string
	player   string
)

func init() {
	ProvisionCmd.Flags().Uint32Var(&depth, "depth", 14, "tree max depth")
	ProvisionCmd.Flags().Uint32Var(&bufferSize, "buffer", 64, "tree max buffer size")
	ProvisionCmd.Flags().Uint32Var(&canopyDepth, "canopy", 0, "tree canopy depth")

	MintCmd.Flags().Uint64Var(&quantity, "quantity", 1, "credits to buy with the card")
	MintCmd.Flags().StringVar(&owner, "owner", "", "owner of the minted card (optional. default: the signer)")
	MintCmd.Flags().StringVar(&referrer, "referrer", "", "inviter to bind on the first mint (optional)")

	ScratchCmd.Flags().StringVar(&assetID, "asset", "", "asset id of the card to scratch (required)")
	tools.MarkFlagRequired(ScratchCmd.Flags(), "asset")

	TransferCmd.Flags().StringVar(&assetID, "asset", "", "asset id of the card to transfer (required)")
	tools.MarkFlagRequired(TransferCmd.Flags(), "asset")
	TransferCmd.Flags().StringVar(&newOwner, "to", "", "new owner (required)")
	tools.MarkFlagRequired(TransferCmd.Flags(), "to")

	BalanceCmd.Flags().StringVar(&player, "player", "", "participant to query (required)")
	tools.MarkFlagRequired(BalanceCmd.Flags(), "player")
}

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "creates the game root for the signing admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			sig, root, err := s.game.Initialize(ctx, s.signer)
			if err != nil {
				return err
			}
			fmt.Printf("game root %s (%s)\n", root, sig)
			return nil
		})
	},
}

var ProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "allocates a new tree and waits until it can be minted into",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			reg, err := s.game.ProvisionRegistry(ctx, s.signer, depth, bufferSize, canopyDepth)
			if err != nil {
				return err
			}
			fmt.Printf("tree %s capacity %d (%s)\n", reg.Tree, reg.Config.TotalMintCapacity, reg.Signature)
			return nil
		})
	},
}

var MintCmd = &cobra.Command{
	Use:   "mint",
	Short: "mints a scratchcard into the active tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			ownerKey, err := parseKey("owner", owner)
			if err != nil {
				return err
			}
			referrerKey, err := parseKey("referrer", referrer)
			if err != nil {
				return err
			}
			res, err := s.game.Mint(ctx, s.signer, quantity, ownerKey, referrerKey)
			if err != nil {
				return err
			}
			fmt.Printf("asset %s nonce %d balance %d (%s)\n", res.AssetID, res.Nonce, res.Balance, res.Signature)
			if !res.Inviter.IsZero() {
				fmt.Printf("inviter %s\n", res.Inviter)
			}
			return nil
		})
	},
}

var ScratchCmd = &cobra.Command{
	Use:   "scratch",
	Short: "reveals a scratchcard with fresh oracle randomness",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			asset, err := parseKey("asset", assetID)
			if err != nil {
				return err
			}
			res, err := s.game.Resolve(ctx, s.signer, asset)
			if err != nil {
				return err
			}
			fmt.Printf("pattern %v win %t scratches %d balance %d (%s)\n",
				res.LatestPattern, res.IsWin, res.ScratchCount, res.Balance, res.RevealSignature)
			return nil
		})
	},
}

var TransferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "transfers a scratchcard to a new owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			asset, err := parseKey("asset", assetID)
			if err != nil {
				return err
			}
			to, err := parseKey("to", newOwner)
			if err != nil {
				return err
			}
			sig, err := s.game.Transfer(ctx, s.signer, asset, to)
			if err != nil {
				return err
			}
			fmt.Printf("transferred %s to %s (%s)\n", asset, to, sig)
			return nil
		})
	},
}

var BalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "prints the credits of a participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *session) error {
			key, err := parseKey("player", player)
			if err != nil {
				return err
			}
			balance, err := s.game.Balance(ctx, key)
			if err != nil {
				return err
			}
			fmt.Println(balance)
			return nil
		})
	},
}
