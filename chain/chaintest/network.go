// Package chaintest is an in-memory ledger that executes the game program,
// the randomness oracle, Bubblegum transfers and system allocations well
// enough for end-to-end tests. It also serves the oracle gateway and the
// asset index over HTTP.
//
// Program behaviour simulated:
//   - init_match3 creates the game root for the signing admin and the
//     default relationship slot.
//   - create_tree needs the tree account already allocated, binds the tree
//     to the game root and writes its Bubblegum config.
//   - mint_scratchcard creates the relationship state of a new player
//     (binding the inviter), mints one leaf, and grants quantity credits.
//     A bound inviter earns InviteReward credits on every mint.
//   - scratch_card costs one credit, needs randomness revealed in the same
//     transaction, and pays WinReward credits on a win.
package chaintest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/leaf"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
	"github.com/ori-shem-tov/scratchcard/randomness"
	"github.com/ori-shem-tov/scratchcard/registry"
)

// Program errors surfaced by Submit.
var (
	ErrMissingSignature  = errors.New("missing required signature")
	ErrAccountInUse      = errors.New("account already in use")
	ErrUninitialized     = errors.New("account not initialized")
	ErrInsufficientFunds = errors.New("insufficient credits")
	ErrInviterMismatch   = errors.New("inviter does not match binding")
	ErrNotLeafOwner      = errors.New("signer does not own the leaf")
	ErrLeafMismatch      = errors.New("leaf does not match the supplied accounts")
	ErrNotRevealed       = errors.New("randomness not revealed in this transaction")
	ErrUnsupported       = errors.New("unsupported instruction")
)

const (
	DefaultWinReward    = 5
	DefaultInviteReward = 1
)

// Asset is a minted leaf as the simulated indexer sees it.
type Asset struct {
	ID    solana.PublicKey
	Tree  solana.PublicKey
	Nonce uint64
	Owner solana.PublicKey
	Leaf  leaf.Schema
}

type Network struct {
	ProgramID       solana.PublicKey
	OracleProgramID solana.PublicKey

	WinReward    uint64
	InviteReward uint64
	// TreeConfigDelay is how many reads of a new tree config fail before
	// it becomes observable.
	TreeConfigDelay int
	// ReceiptDelay is how many receipt reads fail before a receipt is
	// indexed.
	ReceiptDelay int
	// Outcome turns a revealed value into a pattern and a win flag.
	Outcome func(value [32]byte) ([9]uint8, bool)
	// FailSubmit, when set, rejects transactions touching the given program.
	FailSubmit map[solana.PublicKey]error

	mu        sync.Mutex
	slot      uint64
	accounts  map[solana.PublicKey][]byte
	assets    map[solana.PublicKey]*Asset
	depths    map[solana.PublicKey]uint32
	hidden    map[solana.PublicKey]int
	receipts  map[solana.Signature]*chain.Receipt
	pending   map[solana.Signature]int
	submitted int
}

func New(programID, oracleProgramID solana.PublicKey) *Network {
	return &Network{
		ProgramID:       programID,
		OracleProgramID: oracleProgramID,
		WinReward:       DefaultWinReward,
		InviteReward:    DefaultInviteReward,
		Outcome:         Match3Outcome,
		slot:            1000,
		accounts:        map[solana.PublicKey][]byte{},
		assets:          map[solana.PublicKey]*Asset{},
		depths:          map[solana.PublicKey]uint32{},
		hidden:          map[solana.PublicKey]int{},
		receipts:        map[solana.Signature]*chain.Receipt{},
		pending:         map[solana.Signature]int{},
		FailSubmit:      map[solana.PublicKey]error{},
	}
}

// Match3Outcome draws nine symbols out of nine; three equal symbols win.
func Match3Outcome(value [32]byte) ([9]uint8, bool) {
	var pattern [9]uint8
	counts := map[uint8]int{}
	win := false
	for i := range pattern {
		pattern[i] = value[i] % 9
		counts[pattern[i]]++
		if counts[pattern[i]] >= 3 {
			win = true
		}
	}
	return pattern, win
}

// Submitted counts the transactions that reached the network, accepted or not.
func (n *Network) Submitted() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.submitted
}

// Put seeds raw account data.
func (n *Network) Put(address solana.PublicKey, data []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[address] = append([]byte(nil), data...)
}

func (n *Network) Asset(id solana.PublicKey) (Asset, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	a, ok := n.assets[id]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// Delegate sets the leaf delegate of a minted asset.
func (n *Network) Delegate(id, delegate solana.PublicKey) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	a, ok := n.assets[id]
	if !ok {
		return false
	}
	updated := *a
	updated.Leaf.Delegate = delegate
	n.assets[id] = &updated
	return true
}

func (n *Network) AccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if left := n.hidden[address]; left > 0 {
		n.hidden[address] = left - 1
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, address)
	}
	data, ok := n.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, address)
	}
	return append([]byte(nil), data...), nil
}

func (n *Network) Receipt(_ context.Context, sig solana.Signature) (*chain.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if left := n.pending[sig]; left > 0 {
		n.pending[sig] = left - 1
		return nil, chain.ErrReceiptNotFound
	}
	r, ok := n.receipts[sig]
	if !ok {
		return nil, chain.ErrReceiptNotFound
	}
	return r, nil
}

func (n *Network) Slot(context.Context) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.slot, nil
}

func (n *Network) MinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	return (128 + size) * 6960, nil
}

// Submit executes instructions atomically in a new slot.
func (n *Network) Submit(_ context.Context, payer solana.PrivateKey, instructions []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted++

	signed := map[solana.PublicKey]bool{payer.PublicKey(): true}
	for _, s := range signers {
		signed[s.PublicKey()] = true
	}

	tx := &txn{
		net:      n,
		slot:     n.slot + 1,
		accounts: make(map[solana.PublicKey][]byte, len(n.accounts)),
		assets:   make(map[solana.PublicKey]*Asset, len(n.assets)),
		hidden:   map[solana.PublicKey]int{},
		depths:   map[solana.PublicKey]uint32{},
	}
	for k, v := range n.accounts {
		tx.accounts[k] = v
	}
	for k, v := range n.assets {
		tx.assets[k] = v
	}

	for i, ix := range instructions {
		for _, meta := range ix.Accounts() {
			if meta.IsSigner && !signed[meta.PublicKey] {
				return solana.Signature{}, fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)
			}
		}
		if err := n.FailSubmit[ix.ProgramID()]; err != nil {
			return solana.Signature{}, err
		}
		data, err := ix.Data()
		if err != nil {
			return solana.Signature{}, err
		}
		tx.inner = nil
		tx.logs = append(tx.logs, fmt.Sprintf("Program %s invoke [1]", ix.ProgramID()))
		if err := tx.execute(ix.ProgramID(), ix.Accounts(), data); err != nil {
			return solana.Signature{}, fmt.Errorf("instruction %d: %w", i, err)
		}
		tx.logs = append(tx.logs, fmt.Sprintf("Program %s success", ix.ProgramID()))
		if len(tx.inner) > 0 {
			tx.groups = append(tx.groups, chain.InnerGroup{Index: uint16(i), Invocations: tx.inner})
		}
	}

	n.slot = tx.slot
	n.accounts = tx.accounts
	n.assets = tx.assets
	for k, v := range tx.hidden {
		n.hidden[k] = v
	}
	for k, v := range tx.depths {
		n.depths[k] = v
	}

	msg := make([]byte, 16)
	binary.LittleEndian.PutUint64(msg, tx.slot)
	binary.LittleEndian.PutUint64(msg[8:], uint64(n.submitted))
	sig, err := payer.Sign(msg)
	if err != nil {
		return solana.Signature{}, err
	}
	n.receipts[sig] = &chain.Receipt{Signature: sig, Slot: tx.slot, Inner: tx.groups, Logs: tx.logs}
	n.pending[sig] = n.ReceiptDelay
	return sig, nil
}

type txn struct {
	net      *Network
	slot     uint64
	accounts map[solana.PublicKey][]byte
	assets   map[solana.PublicKey]*Asset
	hidden   map[solana.PublicKey]int
	depths   map[solana.PublicKey]uint32
	inner    []chain.Invocation
	groups   []chain.InnerGroup
	logs     []string
}

func (t *txn) invoke(programID solana.PublicKey, data []byte) {
	t.inner = append(t.inner, chain.Invocation{ProgramID: programID, Data: data})
	t.logs = append(t.logs, fmt.Sprintf("Program %s invoke [2]", programID))
}

func (t *txn) exists(address solana.PublicKey) bool {
	_, ok := t.accounts[address]
	return ok
}

func (t *txn) put(address solana.PublicKey, v interface{ Marshal() ([]byte, error) }) error {
	data, err := v.Marshal()
	if err != nil {
		return err
	}
	t.accounts[address] = data
	return nil
}

func (t *txn) execute(programID solana.PublicKey, metas []*solana.AccountMeta, data []byte) error {
	switch {
	case programID.Equals(solana.SystemProgramID):
		return t.system(metas, data)
	case programID.Equals(t.net.ProgramID):
		return t.game(metas, data)
	case programID.Equals(t.net.OracleProgramID):
		return t.oracle(metas, data)
	case programID.Equals(program.BubblegumProgramID):
		return t.bubblegum(metas, data)
	}
	return fmt.Errorf("%w: program %s", ErrUnsupported, programID)
}

func (t *txn) system(metas []*solana.AccountMeta, data []byte) error {
	ix, err := system.DecodeInstruction(metas, data)
	if err != nil {
		return err
	}
	switch impl := ix.Impl.(type) {
	case *system.CreateAccount:
		target := impl.GetNewAccount().PublicKey
		if t.exists(target) {
			return fmt.Errorf("%w: %s", ErrAccountInUse, target)
		}
		t.accounts[target] = make([]byte, *impl.Space)
		return nil
	case *system.Transfer:
		return nil
	}
	return fmt.Errorf("%w: system instruction %T", ErrUnsupported, ix.Impl)
}

func tag(name string) []byte {
	d := program.InstructionDiscriminator(name)
	return d[:]
}

func discriminator(data []byte) (program.Discriminator, []byte, error) {
	var d program.Discriminator
	if len(data) < len(d) {
		return d, nil, fmt.Errorf("%w: %d bytes of data", ErrUnsupported, len(data))
	}
	copy(d[:], data)
	return d, data[len(d):], nil
}

func key(metas []*solana.AccountMeta, i int) solana.PublicKey {
	if i >= len(metas) {
		return solana.PublicKey{}
	}
	return metas[i].PublicKey
}

func (t *txn) game(metas []*solana.AccountMeta, data []byte) error {
	disc, args, err := discriminator(data)
	if err != nil {
		return err
	}
	d := pda.New(t.net.ProgramID)
	switch disc {
	case program.InitMatch3Discriminator:
		root, placeholder, admin := key(metas, 0), key(metas, 1), key(metas, 2)
		want := d.GameRoot(admin)
		if !root.Equals(want.Key) || !placeholder.Equals(d.DefaultRelationship().Key) {
			return fmt.Errorf("seeds constraint violated")
		}
		if t.exists(root) {
			return fmt.Errorf("%w: %s", ErrAccountInUse, root)
		}
		if err := t.put(root, program.Match3Info{Admin: admin, Bump: want.Bump}); err != nil {
			return err
		}
		if !t.exists(placeholder) {
			return t.put(placeholder, program.PlayerConfig{Bump: d.DefaultRelationship().Bump})
		}
		return nil

	case program.CreateTreeDiscriminator:
		var shape struct{ MaxDepth, MaxBufferSize uint32 }
		if err := bin.NewBorshDecoder(args).Decode(&shape); err != nil {
			return err
		}
		rootKey, configKey, tree, payer := key(metas, 0), key(metas, 1), key(metas, 2), key(metas, 3)
		root, err := t.match3(rootKey)
		if err != nil {
			return err
		}
		if !root.Admin.Equals(payer) {
			return fmt.Errorf("only the admin may create trees")
		}
		if _, ok := t.accounts[tree]; !ok {
			return fmt.Errorf("%w: tree %s not allocated", ErrUninitialized, tree)
		}
		if !configKey.Equals(pda.TreeConfig(tree).Key) || t.exists(configKey) {
			return fmt.Errorf("%w: %s", ErrAccountInUse, configKey)
		}
		t.invoke(program.BubblegumProgramID, tag("create_tree"))
		t.invoke(program.CompressionProgramID, []byte{0})
		config := registry.TreeConfig{
			Creator:           rootKey,
			Delegate:          rootKey,
			TotalMintCapacity: uint64(1) << shape.MaxDepth,
		}
		if err := t.put(configKey, config); err != nil {
			return err
		}
		root.MerkleTree = tree
		t.hidden[configKey] = t.net.TreeConfigDelay
		t.depths[tree] = shape.MaxDepth
		return t.put(rootKey, root)

	case program.MintScratchcardDiscriminator:
		var in struct {
			Inviter  solana.PublicKey
			Quantity uint64
		}
		if err := bin.NewBorshDecoder(args).Decode(&in); err != nil {
			return err
		}
		return t.mint(d, metas, in.Inviter, in.Quantity)

	case program.ScratchCardIxDiscriminator:
		var assetID solana.PublicKey
		if err := bin.NewBorshDecoder(args).Decode(&assetID); err != nil {
			return err
		}
		return t.scratch(d, metas, assetID)
	}
	return fmt.Errorf("%w: game instruction %x", ErrUnsupported, disc)
}

func (t *txn) match3(address solana.PublicKey) (program.Match3Info, error) {
	data, ok := t.accounts[address]
	if !ok {
		return program.Match3Info{}, fmt.Errorf("%w: game root %s", ErrUninitialized, address)
	}
	return program.DecodeMatch3Info(data)
}

func (t *txn) playerConfig(address solana.PublicKey) (program.PlayerConfig, bool, error) {
	data, ok := t.accounts[address]
	if !ok {
		return program.PlayerConfig{}, false, nil
	}
	c, err := program.DecodePlayerConfig(data)
	return c, true, err
}

func (t *txn) mint(d pda.Deriver, metas []*solana.AccountMeta, inviter solana.PublicKey, quantity uint64) error {
	payer, leafOwner, rootKey := key(metas, 0), key(metas, 1), key(metas, 2)
	playerKey, inviterKey, configKey, tree := key(metas, 3), key(metas, 4), key(metas, 5), key(metas, 6)

	participant := d.Participant(payer)
	if !playerKey.Equals(participant.Key) {
		return fmt.Errorf("seeds constraint violated: player config")
	}
	wantInviter := d.DefaultRelationship().Key
	if !inviter.IsZero() {
		wantInviter = d.Participant(inviter).Key
	}
	if !inviterKey.Equals(wantInviter) {
		return fmt.Errorf("seeds constraint violated: inviter config")
	}
	if inviter.Equals(payer) {
		return fmt.Errorf("%w: self invite", ErrInviterMismatch)
	}

	root, err := t.match3(rootKey)
	if err != nil {
		return err
	}
	if !root.MerkleTree.Equals(tree) || !configKey.Equals(pda.TreeConfig(tree).Key) {
		return fmt.Errorf("tree %s is not the active tree", tree)
	}
	configData, ok := t.accounts[configKey]
	if !ok {
		return fmt.Errorf("%w: tree config %s", ErrUninitialized, configKey)
	}
	config, err := registry.DecodeTreeConfig(configData)
	if err != nil {
		return err
	}
	if config.Full() {
		return fmt.Errorf("tree %s is full", tree)
	}

	player, existed, err := t.playerConfig(playerKey)
	if err != nil {
		return err
	}
	if existed {
		if !player.Inviter.IsZero() && !player.Inviter.Equals(inviter) {
			return fmt.Errorf("%w: bound to %s", ErrInviterMismatch, player.Inviter)
		}
	} else {
		t.invoke(solana.SystemProgramID, []byte{0, 0, 0, 0})
		player = program.PlayerConfig{Player: payer, Bump: participant.Bump}
	}
	if player.Inviter.IsZero() {
		player.Inviter = inviter
	}
	player.Credits += quantity
	player.Minted++

	if !player.Inviter.IsZero() {
		ref, ok, err := t.playerConfig(inviterKey)
		if err != nil {
			return err
		}
		if ok {
			ref.Credits += t.net.InviteReward
			if err := t.put(inviterKey, ref); err != nil {
				return err
			}
		}
	}

	nonce := config.NumMinted
	asset := pda.AssetID(tree, nonce).Key
	schema := leaf.Schema{
		ID:          asset,
		Owner:       leafOwner,
		Delegate:    leafOwner,
		Nonce:       nonce,
		DataHash:    sha256.Sum256(append(asset.Bytes(), []byte("metadata")...)),
		CreatorHash: sha256.Sum256(rootKey.Bytes()),
	}
	event, err := leaf.EventPayload(schema)
	if err != nil {
		return err
	}
	t.invoke(solana.SystemProgramID, []byte{2, 0, 0, 0})
	t.invoke(program.BubblegumProgramID, tag("mint_v1"))
	t.invoke(program.NoopProgramID, event)
	t.invoke(program.CompressionProgramID, []byte{1})

	config.NumMinted++
	root.TotalMinted++
	t.assets[asset] = &Asset{ID: asset, Tree: tree, Nonce: nonce, Owner: leafOwner, Leaf: schema}

	if err := t.put(configKey, config); err != nil {
		return err
	}
	if err := t.put(rootKey, root); err != nil {
		return err
	}
	return t.put(playerKey, player)
}

func (t *txn) scratch(d pda.Deriver, metas []*solana.AccountMeta, assetID solana.PublicKey) error {
	payer, playerKey, cardKey, randKey := key(metas, 0), key(metas, 1), key(metas, 2), key(metas, 3)
	if !playerKey.Equals(d.Participant(payer).Key) || !cardKey.Equals(d.ScratchCard(assetID).Key) {
		return fmt.Errorf("seeds constraint violated")
	}
	asset, ok := t.assets[assetID]
	if !ok || !asset.Owner.Equals(payer) {
		return fmt.Errorf("%w: %s", ErrNotLeafOwner, assetID)
	}
	player, ok, err := t.playerConfig(playerKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: player config %s", ErrUninitialized, playerKey)
	}
	if player.Credits == 0 {
		return ErrInsufficientFunds
	}

	raw, ok := t.accounts[randKey]
	if !ok {
		return fmt.Errorf("%w: randomness %s", ErrUninitialized, randKey)
	}
	acc, err := randomness.DecodeAccount(raw)
	if err != nil {
		return err
	}
	if !acc.Revealed() || acc.RevealSlot != t.slot {
		return ErrNotRevealed
	}

	card := program.ScratchCard{Asset: assetID, Owner: payer}
	if data, ok := t.accounts[cardKey]; ok {
		if card, err = program.DecodeScratchCard(data); err != nil {
			return err
		}
	} else {
		t.invoke(solana.SystemProgramID, []byte{0, 0, 0, 0})
	}
	pattern, win := t.net.Outcome(acc.Value)
	card.ScratchCount++
	card.LatestPattern = pattern
	card.IsWin = win
	card.Randomness = acc.Value

	player.Credits--
	if win {
		player.Credits += t.net.WinReward
	}
	if err := t.put(cardKey, card); err != nil {
		return err
	}
	return t.put(playerKey, player)
}

func (t *txn) oracle(metas []*solana.AccountMeta, data []byte) error {
	disc, args, err := discriminator(data)
	if err != nil {
		return err
	}
	account := key(metas, 0)
	switch disc {
	case randomness.RandomnessInitDiscriminator:
		if t.exists(account) {
			return fmt.Errorf("%w: %s", ErrAccountInUse, account)
		}
		t.invoke(solana.SystemProgramID, []byte{0, 0, 0, 0})
		return t.put(account, randomness.Account{Authority: key(metas, 2), Queue: key(metas, 3)})

	case randomness.RandomnessCommitDiscriminator:
		acc, err := t.randomness(account)
		if err != nil {
			return err
		}
		if !acc.Queue.Equals(key(metas, 1)) {
			return fmt.Errorf("randomness %s bound to another queue", account)
		}
		acc.SeedSlot = t.slot
		acc.SeedSlothash = sha256.Sum256(le64(t.slot))
		acc.Oracle = key(metas, 2)
		return t.put(account, acc)

	case randomness.RandomnessRevealDiscriminator:
		var params randomness.RevealParams
		if err := bin.NewBorshDecoder(args).Decode(&params); err != nil {
			return err
		}
		acc, err := t.randomness(account)
		if err != nil {
			return err
		}
		if !acc.Committed() || acc.Revealed() {
			return fmt.Errorf("randomness %s cannot be revealed", account)
		}
		if params.Value != RevealValue(account, acc.SeedSlot) {
			return fmt.Errorf("randomness %s: bad oracle signature", account)
		}
		acc.Value = params.Value
		acc.RevealSlot = t.slot
		return t.put(account, acc)

	case randomness.RandomnessCloseDiscriminator:
		acc, err := t.randomness(account)
		if err != nil {
			return err
		}
		if !acc.Authority.Equals(key(metas, 2)) {
			return fmt.Errorf("only the authority may close %s", account)
		}
		delete(t.accounts, account)
		return nil
	}
	return fmt.Errorf("%w: oracle instruction %x", ErrUnsupported, disc)
}

func (t *txn) randomness(address solana.PublicKey) (randomness.Account, error) {
	raw, ok := t.accounts[address]
	if !ok {
		return randomness.Account{}, fmt.Errorf("%w: randomness %s", ErrUninitialized, address)
	}
	return randomness.DecodeAccount(raw)
}

func (t *txn) bubblegum(metas []*solana.AccountMeta, data []byte) error {
	disc, args, err := discriminator(data)
	if err != nil {
		return err
	}
	if disc != program.TransferDiscriminator {
		return fmt.Errorf("%w: bubblegum instruction %x", ErrUnsupported, disc)
	}
	if len(args) != 32*3+8+4 {
		return fmt.Errorf("%w: transfer args of %d bytes", ErrUnsupported, len(args))
	}
	owner, delegate, newOwner, tree := key(metas, 1), key(metas, 2), key(metas, 3), key(metas, 4)
	nonce := binary.LittleEndian.Uint64(args[96:])

	asset, ok := t.assets[pda.AssetID(tree, nonce).Key]
	if !ok || !asset.Owner.Equals(owner) {
		return fmt.Errorf("%w: nonce %d", ErrNotLeafOwner, nonce)
	}
	// the leaf hash is rebuilt from the delegate account
	if !asset.Leaf.Delegate.Equals(delegate) {
		return fmt.Errorf("%w: delegate %s of nonce %d", ErrLeafMismatch, delegate, nonce)
	}
	if !bytes.Equal(args[32:64], asset.Leaf.DataHash[:]) {
		return fmt.Errorf("data hash mismatch for nonce %d", nonce)
	}
	moved := *asset
	moved.Owner = newOwner
	moved.Leaf.Owner = newOwner
	moved.Leaf.Delegate = newOwner
	t.assets[asset.ID] = &moved
	t.invoke(program.NoopProgramID, []byte{1})
	t.invoke(program.CompressionProgramID, []byte{2})
	return nil
}

// RevealValue is the value the simulated oracle signs for a request.
func RevealValue(account solana.PublicKey, seedSlot uint64) [32]byte {
	return sha256.Sum256(append(account.Bytes(), le64(seedSlot)...))
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
