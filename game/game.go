// Package game composes derivation, referral resolution, leaf extraction,
// randomness and registry provisioning into the operations players and the
// administrator run against the scratchcard program.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/leaf"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
	"github.com/ori-shem-tov/scratchcard/randomness"
	"github.com/ori-shem-tov/scratchcard/referral"
	"github.com/ori-shem-tov/scratchcard/registry"
	"github.com/ori-shem-tov/scratchcard/tools"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotOwner     = errors.New("caller does not own the asset")
	ErrNoActiveTree = errors.New("game has no active tree")
)

// AssetIndex answers ownership and proof queries for compressed assets.
type AssetIndex interface {
	Asset(ctx context.Context, id solana.PublicKey) (*registry.Asset, error)
	AssetProof(ctx context.Context, id solana.PublicKey) (*registry.AssetProof, error)
}

type Game struct {
	Ledger chain.Ledger
	Index  AssetIndex
	Policy Policy
	Admin  solana.PublicKey // owner of the game root

	Builder    program.Builder
	Deriver    pda.Deriver
	Referrals  *referral.Resolver
	Leaves     *leaf.Extractor
	Randomness *randomness.Coordinator
	Poller     *registry.Poller

	CanopyDepth uint32 // of the active tree, trims transfer proofs
	Tracer      trace.Tracer
}

// New wires a Game for programID whose root belongs to admin. Only admin is
// authorized for administrative operations; replace Policy to change that.
func New(ledger chain.Ledger, index AssetIndex, oracle randomness.Oracle, programID, admin solana.PublicKey) *Game {
	deriver := pda.New(programID)
	return &Game{
		Ledger: ledger,
		Index:  index,
		Policy: AdminPolicy{Admin: admin},
		Admin:  admin,

		Builder:    program.NewBuilder(programID),
		Deriver:    deriver,
		Referrals:  referral.NewResolver(ledger, deriver),
		Leaves:     leaf.NewExtractor(ledger, leaf.ByDiscriminator{LogWrapper: program.NoopProgramID}),
		Randomness: randomness.NewCoordinator(ledger, oracle, randomness.NewTracker(1500)),
		Poller:     registry.NewPoller(ledger, registry.DefaultPollPolicy),
	}
}

// FromConfig builds the RPC, oracle and index clients described by conf and
// checks that the configured oracle queue exists.
func FromConfig(ctx context.Context, conf *Config) (*Game, error) {
	client, err := tools.InitClients(conf.RPCEndpoint)
	if err != nil {
		return nil, err
	}
	ledger := chain.NewRPCLedger(client, rpc.CommitmentType(conf.Commitment))

	programID, err := configuredProgramID(conf.ProgramID)
	if err != nil {
		return nil, err
	}
	admin, err := solana.PublicKeyFromBase58(conf.Admin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin: %w", err)
	}
	queue, err := PublicKeyOr(conf.Queue, program.DevnetQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queue: %w", err)
	}
	oracle, err := solana.PublicKeyFromBase58(conf.Oracle)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oracle: %w", err)
	}
	if conf.GatewayURL == "" {
		return nil, fmt.Errorf("missing gateway url")
	}

	indexEndpoint := conf.IndexEndpoint
	if indexEndpoint == "" {
		indexEndpoint = conf.RPCEndpoint
	}

	sb := randomness.NewSwitchboard(randomness.ProgramIDFor(queue), queue, oracle, ledger, conf.GatewayURL, conf.RPCEndpoint)
	if err := sb.CheckQueue(ctx); err != nil {
		return nil, err
	}
	g := New(ledger, registry.NewAssetIndex(indexEndpoint), sb, programID, admin)
	if conf.Poll != (tools.RetryPolicy{}) {
		g.Poller.Policy = conf.Poll
	}
	if conf.Receipt != (tools.RetryPolicy{}) {
		g.Leaves.Retry = conf.Receipt
	}
	if conf.ExpirySlots > 0 {
		g.Randomness.Tracker.ExpirySlots = conf.ExpirySlots
	}
	g.CanopyDepth = conf.Tree.CanopyDepth
	return g, nil
}

func configuredProgramID(s string) (solana.PublicKey, error) {
	if s != "" {
		id, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("failed to parse program id: %w", err)
		}
		return id, nil
	}
	id, err := program.DefaultProgramID()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("missing program-id in config (SCRATCH_PROGRAM_ID): %w", err)
	}
	return id, nil
}

// NewFromConfig loads the config file at path and exits on any error.
func NewFromConfig(path string) *Game {
	conf, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config %s: %+v", path, err)
	}
	g, err := FromConfig(context.Background(), conf)
	if err != nil {
		log.Fatalf("Failed to set up game: %+v", err)
	}
	return g
}

// GameRoot is the root address of this game.
func (g *Game) GameRoot() solana.PublicKey {
	return g.Deriver.GameRoot(g.Admin).Key
}

// Initialize creates the game root and the default relationship slot.
// Re-initialization is left to the program to reject.
func (g *Game) Initialize(ctx context.Context, admin solana.PrivateKey) (sig solana.Signature, root solana.PublicKey, err error) {
	op, ctx := g.startOperation(ctx, "initialize", key("admin", admin.PublicKey()))
	defer func() { op.end(err) }()

	if err = g.Policy.Authorize(admin.PublicKey()); err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}

	root = g.Deriver.GameRoot(admin.PublicKey()).Key
	ix := g.Builder.InitMatch3(program.InitMatch3Accounts{
		Match3Info:  root,
		PlaceHolder: g.Deriver.DefaultRelationship().Key,
		Payer:       admin.PublicKey(),
	})
	sig, err = g.Ledger.Submit(ctx, admin, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, fmt.Errorf("failed to initialize game: %w", err)
	}
	return sig, root, nil
}

type Registry struct {
	Tree      solana.PublicKey
	Signature solana.Signature
	Config    registry.TreeConfig
}

// ProvisionRegistry allocates a fresh tree, registers it with the game and
// blocks until its config is observable.
func (g *Game) ProvisionRegistry(ctx context.Context, admin solana.PrivateKey, depth, bufferSize, canopyDepth uint32) (reg *Registry, err error) {
	op, ctx := g.startOperation(ctx, "provision",
		key("admin", admin.PublicKey()),
		attribute.Int64("depth", int64(depth)),
		attribute.Int64("buffer", int64(bufferSize)),
		attribute.Int64("canopy", int64(canopyDepth)),
	)
	defer func() { op.end(err) }()

	if err = g.Policy.Authorize(admin.PublicKey()); err != nil {
		return nil, err
	}

	tree, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tree key: %w", err)
	}
	shape := registry.Shape{MaxDepth: depth, MaxBufferSize: bufferSize, CanopyDepth: canopyDepth}
	ixs, err := registry.AllocationInstructions(ctx, g.Ledger, g.Builder, g.Deriver.GameRoot(admin.PublicKey()).Key, admin.PublicKey(), tree.PublicKey(), shape)
	if err != nil {
		return nil, err
	}

	sig, err := g.Ledger.Submit(ctx, admin, ixs, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to provision tree %s: %w", tree.PublicKey(), err)
	}
	log.Infof("provisioned tree %s (%s), waiting for it to be indexed", tree.PublicKey(), sig)

	config, err := g.Poller.AwaitTreeReady(ctx, tree.PublicKey())
	if err != nil {
		return nil, err
	}
	return &Registry{Tree: tree.PublicKey(), Signature: sig, Config: config}, nil
}

type MintResult struct {
	Signature solana.Signature
	AssetID   solana.PublicKey
	Nonce     uint64
	Leaf      leaf.Schema
	Inviter   solana.PublicKey // effective inviter, zero when none
	Balance   uint64           // participant credits after the mint
}

// Mint mints one scratchcard for participant into the active tree. owner
// receives the leaf and defaults to participant; referrer only binds if the
// participant has no inviter yet. Zero keys mean absent.
func (g *Game) Mint(ctx context.Context, participant solana.PrivateKey, quantity uint64, owner, referrer solana.PublicKey) (res *MintResult, err error) {
	op, ctx := g.startOperation(ctx, "mint",
		key("participant", participant.PublicKey()),
		attribute.Int64("quantity", int64(quantity)),
	)
	defer func() { op.end(err) }()

	player := participant.PublicKey()
	if owner.IsZero() {
		owner = player
	}
	if err = referral.Validate(player, referrer); err != nil {
		return nil, err
	}

	root, info, err := g.gameRoot(ctx)
	if err != nil {
		return nil, err
	}
	if info.MerkleTree.IsZero() {
		return nil, ErrNoActiveTree
	}

	resolution, err := g.Referrals.Resolve(ctx, player, referrer)
	if err != nil {
		return nil, err
	}

	ix := g.Builder.MintScratchcard(program.MintAccounts{
		Payer:         player,
		LeafOwner:     owner,
		Match3Info:    root,
		PlayerConfig:  g.Deriver.Participant(player).Key,
		InviterConfig: g.Referrals.InviterAccount(resolution.Inviter),
		TreeConfig:    pda.TreeConfig(info.MerkleTree).Key,
		MerkleTree:    info.MerkleTree,
	}, resolution.Inviter, quantity)

	sig, err := g.Ledger.Submit(ctx, participant, []solana.Instruction{ix})
	if err != nil {
		return nil, fmt.Errorf("failed to mint: %w", err)
	}

	schema, err := g.Leaves.Extract(ctx, sig, resolution.Preexisted)
	if err != nil {
		return nil, fmt.Errorf("failed to extract leaf of %s: %w", sig, err)
	}

	state, err := g.playerConfig(ctx, player)
	if err != nil {
		return nil, err
	}
	log.Infof("minted asset %s (nonce %d) for %s", schema.ID, schema.Nonce, player)
	return &MintResult{
		Signature: sig,
		AssetID:   schema.ID,
		Nonce:     schema.Nonce,
		Leaf:      schema,
		Inviter:   resolution.Inviter,
		Balance:   state.Credits,
	}, nil
}

type ResolveResult struct {
	CommitSignature solana.Signature
	RevealSignature solana.Signature
	ScratchCount    uint32
	LatestPattern   [9]uint8
	IsWin           bool
	Balance         uint64
}

// Resolve scratches assetID for participant with fresh oracle randomness.
// The caller must own the asset; otherwise nothing is submitted.
func (g *Game) Resolve(ctx context.Context, participant solana.PrivateKey, assetID solana.PublicKey) (res *ResolveResult, err error) {
	op, ctx := g.startOperation(ctx, "resolve",
		key("participant", participant.PublicKey()),
		key("asset", assetID),
	)
	defer func() { op.end(err) }()

	player := participant.PublicKey()
	if _, err = g.ownedAsset(ctx, player, assetID); err != nil {
		return nil, err
	}

	req, err := g.Randomness.Commit(ctx, participant)
	if err != nil {
		return nil, err
	}

	apply := g.Builder.ScratchCard(program.ScratchAccounts{
		Payer:        player,
		PlayerConfig: g.Deriver.Participant(player).Key,
		ScratchCard:  g.Deriver.ScratchCard(assetID).Key,
		Randomness:   req.Account,
	}, assetID)
	sig, err := g.Randomness.Reveal(ctx, req, participant, apply)
	if err != nil {
		return nil, err
	}

	cardAddr := g.Deriver.ScratchCard(assetID).Key
	data, err := g.Ledger.AccountData(ctx, cardAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch result %s: %w", cardAddr, err)
	}
	card, err := program.DecodeScratchCard(data)
	if err != nil {
		return nil, err
	}
	state, err := g.playerConfig(ctx, player)
	if err != nil {
		return nil, err
	}
	if card.IsWin {
		scratchWins.Inc()
	}
	return &ResolveResult{
		CommitSignature: req.CommitSig,
		RevealSignature: sig,
		ScratchCount:    card.ScratchCount,
		LatestPattern:   card.LatestPattern,
		IsWin:           card.IsWin,
		Balance:         state.Credits,
	}, nil
}

// Transfer moves assetID from owner to newOwner through Bubblegum.
func (g *Game) Transfer(ctx context.Context, owner solana.PrivateKey, assetID, newOwner solana.PublicKey) (sig solana.Signature, err error) {
	op, ctx := g.startOperation(ctx, "transfer",
		key("owner", owner.PublicKey()),
		key("asset", assetID),
		key("new_owner", newOwner),
	)
	defer func() { op.end(err) }()

	asset, err := g.ownedAsset(ctx, owner.PublicKey(), assetID)
	if err != nil {
		return solana.Signature{}, err
	}
	proof, err := g.Index.AssetProof(ctx, assetID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get proof of %s: %w", assetID, err)
	}

	delegate := owner.PublicKey()
	if asset.Ownership.Delegate != nil {
		delegate = *asset.Ownership.Delegate
	}
	tree := asset.Compression.Tree
	shape := registry.Shape{MaxDepth: uint32(len(proof.Proof)), CanopyDepth: g.CanopyDepth}
	ix := program.BubblegumTransfer(program.TransferArgs{
		TreeConfig:   pda.TreeConfig(tree).Key,
		LeafOwner:    owner.PublicKey(),
		LeafDelegate: delegate,
		NewOwner:     newOwner,
		MerkleTree:   tree,
		Root:         proof.Root,
		DataHash:     asset.Compression.DataHash,
		CreatorHash:  asset.Compression.CreatorHash,
		Nonce:        asset.Compression.LeafID,
		Index:        uint32(asset.Compression.LeafID),
		Proof:        registry.TrimProof(proof.Proof, shape),
	})
	sig, err = g.Ledger.Submit(ctx, owner, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to transfer %s: %w", assetID, err)
	}
	return sig, nil
}

// SweepAbandoned closes the expired randomness requests payer abandoned.
func (g *Game) SweepAbandoned(ctx context.Context, payer solana.PrivateKey) (closed int, err error) {
	op, ctx := g.startOperation(ctx, "sweep", key("payer", payer.PublicKey()))
	defer func() { op.end(err) }()
	return g.Randomness.Sweep(ctx, payer)
}

// Balance returns the credits of participant, zero when it has no state yet.
func (g *Game) Balance(ctx context.Context, participant solana.PublicKey) (uint64, error) {
	if !chain.Exists(ctx, g.Ledger, g.Deriver.Participant(participant).Key) {
		return 0, nil
	}
	state, err := g.playerConfig(ctx, participant)
	if err != nil {
		return 0, err
	}
	return state.Credits, nil
}

func (g *Game) ownedAsset(ctx context.Context, caller, assetID solana.PublicKey) (*registry.Asset, error) {
	asset, err := g.Index.Asset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up asset %s: %w", assetID, err)
	}
	if !asset.Ownership.Owner.Equals(caller) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrNotOwner, assetID, asset.Ownership.Owner)
	}
	return asset, nil
}

func (g *Game) gameRoot(ctx context.Context) (solana.PublicKey, program.Match3Info, error) {
	root := g.GameRoot()
	data, err := g.Ledger.AccountData(ctx, root)
	if err != nil {
		return root, program.Match3Info{}, fmt.Errorf("failed to read game root %s: %w", root, err)
	}
	info, err := program.DecodeMatch3Info(data)
	if err != nil {
		return root, program.Match3Info{}, err
	}
	return root, info, nil
}

func (g *Game) playerConfig(ctx context.Context, player solana.PublicKey) (program.PlayerConfig, error) {
	addr := g.Deriver.Participant(player).Key
	data, err := g.Ledger.AccountData(ctx, addr)
	if err != nil {
		return program.PlayerConfig{}, fmt.Errorf("failed to read participant state %s: %w", addr, err)
	}
	return program.DecodePlayerConfig(data)
}
