package program

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	InitMatch3Discriminator      = InstructionDiscriminator("init_match3")
	CreateTreeDiscriminator      = InstructionDiscriminator("create_tree")
	MintScratchcardDiscriminator = InstructionDiscriminator("mint_scratchcard")
	ScratchCardIxDiscriminator   = InstructionDiscriminator("scratch_card")
	TransferDiscriminator        = InstructionDiscriminator("transfer")
)

func data(disc Discriminator, args ...interface{}) []byte {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	for _, a := range args {
		if err := enc.Encode(a); err != nil {
			// args are fixed-size values built by this package
			panic(err)
		}
	}
	return buf.Bytes()
}

// Builder assembles the game program instructions for one deployment.
type Builder struct {
	ProgramID solana.PublicKey
}

func NewBuilder(programID solana.PublicKey) Builder {
	return Builder{ProgramID: programID}
}

type InitMatch3Accounts struct {
	Match3Info  solana.PublicKey
	PlaceHolder solana.PublicKey // default relationship slot
	Payer       solana.PublicKey
}

func (b Builder) InitMatch3(a InitMatch3Accounts) solana.Instruction {
	return solana.NewInstruction(b.ProgramID, solana.AccountMetaSlice{
		solana.Meta(a.Match3Info).WRITE(),
		solana.Meta(a.PlaceHolder).WRITE(),
		solana.Meta(a.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}, data(InitMatch3Discriminator))
}

type CreateTreeAccounts struct {
	Match3Info solana.PublicKey
	TreeConfig solana.PublicKey
	MerkleTree solana.PublicKey
	Payer      solana.PublicKey
}

func (b Builder) CreateTree(a CreateTreeAccounts, maxDepth, maxBufferSize uint32) solana.Instruction {
	return solana.NewInstruction(b.ProgramID, solana.AccountMetaSlice{
		solana.Meta(a.Match3Info).WRITE(),
		solana.Meta(a.TreeConfig).WRITE(),
		solana.Meta(a.MerkleTree).WRITE(),
		solana.Meta(a.Payer).WRITE().SIGNER(),
		solana.Meta(BubblegumProgramID),
		solana.Meta(NoopProgramID),
		solana.Meta(CompressionProgramID),
		solana.Meta(solana.SystemProgramID),
	}, data(CreateTreeDiscriminator, maxDepth, maxBufferSize))
}

type MintAccounts struct {
	Payer         solana.PublicKey
	LeafOwner     solana.PublicKey
	Match3Info    solana.PublicKey
	PlayerConfig  solana.PublicKey
	InviterConfig solana.PublicKey // inviter's relationship state, or the default slot
	TreeConfig    solana.PublicKey
	MerkleTree    solana.PublicKey
}

func (b Builder) MintScratchcard(a MintAccounts, inviter solana.PublicKey, quantity uint64) solana.Instruction {
	return solana.NewInstruction(b.ProgramID, solana.AccountMetaSlice{
		solana.Meta(a.Payer).WRITE().SIGNER(),
		solana.Meta(a.LeafOwner),
		solana.Meta(a.Match3Info).WRITE(),
		solana.Meta(a.PlayerConfig).WRITE(),
		solana.Meta(a.InviterConfig).WRITE(),
		solana.Meta(a.TreeConfig).WRITE(),
		solana.Meta(a.MerkleTree).WRITE(),
		solana.Meta(BubblegumProgramID),
		solana.Meta(CompressionProgramID),
		solana.Meta(NoopProgramID),
		solana.Meta(solana.SystemProgramID),
	}, data(MintScratchcardDiscriminator, inviter, quantity))
}

type ScratchAccounts struct {
	Payer        solana.PublicKey
	PlayerConfig solana.PublicKey
	ScratchCard  solana.PublicKey
	Randomness   solana.PublicKey
}

func (b Builder) ScratchCard(a ScratchAccounts, assetID solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(b.ProgramID, solana.AccountMetaSlice{
		solana.Meta(a.Payer).WRITE().SIGNER(),
		solana.Meta(a.PlayerConfig).WRITE(),
		solana.Meta(a.ScratchCard).WRITE(),
		solana.Meta(a.Randomness),
		solana.Meta(solana.SystemProgramID),
	}, data(ScratchCardIxDiscriminator, assetID))
}

// TransferArgs is a Bubblegum transfer of a compressed leaf.
type TransferArgs struct {
	TreeConfig   solana.PublicKey
	LeafOwner    solana.PublicKey
	LeafDelegate solana.PublicKey // zero means the owner
	NewOwner     solana.PublicKey
	MerkleTree  solana.PublicKey
	Root        [32]byte
	DataHash    [32]byte
	CreatorHash [32]byte
	Nonce       uint64
	Index       uint32
	Proof       []solana.PublicKey // canopy-trimmed, appended as remaining accounts
}

// BubblegumTransfer is sent to Bubblegum directly; the game program is not involved.
func BubblegumTransfer(a TransferArgs) solana.Instruction {
	delegate := a.LeafDelegate
	if delegate.IsZero() {
		delegate = a.LeafOwner
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(a.TreeConfig),
		solana.Meta(a.LeafOwner).SIGNER(),
		solana.Meta(delegate),
		solana.Meta(a.NewOwner),
		solana.Meta(a.MerkleTree).WRITE(),
		solana.Meta(NoopProgramID),
		solana.Meta(CompressionProgramID),
		solana.Meta(solana.SystemProgramID),
	}
	for _, p := range a.Proof {
		metas = append(metas, solana.Meta(p))
	}
	d := make([]byte, 0, 8+32*3+8+4)
	d = append(d, TransferDiscriminator[:]...)
	d = append(d, a.Root[:]...)
	d = append(d, a.DataHash[:]...)
	d = append(d, a.CreatorHash[:]...)
	d = binary.LittleEndian.AppendUint64(d, a.Nonce)
	d = binary.LittleEndian.AppendUint32(d, a.Index)
	return solana.NewInstruction(BubblegumProgramID, metas, d)
}
