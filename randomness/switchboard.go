package randomness

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/program"
	"github.com/ori-shem-tov/scratchcard/tools"
)

var addressLookupTableProgramID = solana.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")

var ErrQueueNotFound = errors.New("oracle queue not found")

// RevealPath is the gateway endpoint that signs revealed values.
const RevealPath = "/gateway/api/v1/randomness_reveal"

// Switchboard is the on-demand oracle client. Instructions are built
// locally; the revealed value is fetched from the oracle gateway.
type Switchboard struct {
	ProgramID solana.PublicKey
	QueueKey  solana.PublicKey
	OracleKey solana.PublicKey // oracle assigned at commit
	Ledger    chain.Ledger     // reads request accounts
	Gateway   *resty.Client
	RPCURL    string            // forwarded to the gateway so it reads the same cluster
	Retry     tools.RetryPolicy // gateway calls
}

func NewSwitchboard(programID, queue, oracle solana.PublicKey, ledger chain.Ledger, gatewayURL, rpcURL string) *Switchboard {
	return &Switchboard{
		ProgramID: programID,
		QueueKey:  queue,
		OracleKey: oracle,
		Ledger:    ledger,
		Gateway:   resty.New().SetBaseURL(gatewayURL).SetTimeout(15 * time.Second),
		RPCURL:    rpcURL,
		Retry:     tools.Exponential(time.Second, 5),
	}
}

func (s *Switchboard) Queue() solana.PublicKey { return s.QueueKey }

// CheckQueue fails when the queue account cannot be loaded, so a wrong
// queue is reported before any request is committed to it.
func (s *Switchboard) CheckQueue(ctx context.Context) error {
	if !chain.Exists(ctx, s.Ledger, s.QueueKey) {
		return fmt.Errorf("%w: %s", ErrQueueNotFound, s.QueueKey)
	}
	return nil
}

func (s *Switchboard) pda(seeds ...[]byte) (solana.PublicKey, error) {
	key, _, err := solana.FindProgramAddress(seeds, s.ProgramID)
	return key, err
}

func (s *Switchboard) state() (solana.PublicKey, error) {
	return s.pda([]byte("STATE"))
}

func rewardEscrow(account solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindAssociatedTokenAddress(account, solana.WrappedSol)
	return key, err
}

func (s *Switchboard) Init(ctx context.Context, account, payer solana.PublicKey) ([]solana.Instruction, error) {
	recentSlot, err := s.Ledger.Slot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent slot: %w", err)
	}
	escrow, err := rewardEscrow(account)
	if err != nil {
		return nil, err
	}
	state, err := s.state()
	if err != nil {
		return nil, err
	}
	lutSigner, err := s.pda([]byte("LutSigner"), account.Bytes())
	if err != nil {
		return nil, err
	}
	lut, _, err := solana.FindProgramAddress([][]byte{lutSigner.Bytes(), le64(recentSlot)}, addressLookupTableProgramID)
	if err != nil {
		return nil, err
	}

	data, err := instructionData(RandomnessInitDiscriminator, recentSlot)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{solana.NewInstruction(s.ProgramID, solana.AccountMetaSlice{
		solana.Meta(account).WRITE().SIGNER(),
		solana.Meta(escrow).WRITE(),
		solana.Meta(payer).SIGNER(), // authority
		solana.Meta(s.QueueKey).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(solana.WrappedSol),
		solana.Meta(state),
		solana.Meta(lutSigner),
		solana.Meta(lut).WRITE(),
		solana.Meta(addressLookupTableProgramID),
	}, data)}, nil
}

func (s *Switchboard) Commit(_ context.Context, account, authority solana.PublicKey) (solana.Instruction, error) {
	data, err := instructionData(RandomnessCommitDiscriminator)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(s.ProgramID, solana.AccountMetaSlice{
		solana.Meta(account).WRITE(),
		solana.Meta(s.QueueKey),
		solana.Meta(s.OracleKey).WRITE(),
		solana.Meta(solana.SysVarSlotHashesPubkey),
		solana.Meta(authority).SIGNER(),
	}, data), nil
}

type revealRequest struct {
	Slothash      string `json:"slothash"`       // base58
	RandomnessKey string `json:"randomness_key"` // hex
	Slot          uint64 `json:"slot"`
	RPC           string `json:"rpc"`
}

type revealResponse struct {
	Signature  string `json:"signature"` // base64
	RecoveryID uint8  `json:"recovery_id"`
	Value      []int  `json:"value"`
}

func (r revealResponse) params() (RevealParams, error) {
	var p RevealParams
	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return p, fmt.Errorf("failed to decode gateway signature: %w", err)
	}
	if len(sig) != len(p.Signature) {
		return p, fmt.Errorf("gateway signature is %d bytes", len(sig))
	}
	if len(r.Value) != len(p.Value) {
		return p, fmt.Errorf("gateway value is %d bytes", len(r.Value))
	}
	copy(p.Signature[:], sig)
	for i, v := range r.Value {
		if v < 0 || v > 255 {
			return p, fmt.Errorf("gateway value byte %d out of range: %d", i, v)
		}
		p.Value[i] = byte(v)
	}
	p.RecoveryID = r.RecoveryID
	return p, nil
}

// fetchReveal asks the gateway for the signed value of a committed request.
func (s *Switchboard) fetchReveal(ctx context.Context, account solana.PublicKey, acc Account) (RevealParams, error) {
	body := revealRequest{
		Slothash:      solana.PublicKeyFromBytes(acc.SeedSlothash[:]).String(),
		RandomnessKey: hex.EncodeToString(account.Bytes()),
		Slot:          acc.SeedSlot,
		RPC:           s.RPCURL,
	}
	var params RevealParams
	err := s.Retry.Do(ctx,
		func() error {
			var out revealResponse
			resp, err := s.Gateway.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(RevealPath)
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
			}
			params, err = out.params()
			return err
		},
		func(err error) {
			log.Warnf("failed fetching reveal for %s, trying again...: %v", account, err)
		},
	)
	return params, err
}

func (s *Switchboard) Reveal(ctx context.Context, account, payer solana.PublicKey) (solana.Instruction, error) {
	raw, err := s.Ledger.AccountData(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read randomness account %s: %w", account, err)
	}
	acc, err := DecodeAccount(raw)
	if err != nil {
		return nil, err
	}
	if !acc.Committed() {
		return nil, fmt.Errorf("randomness account %s is not committed", account)
	}

	params, err := s.fetchReveal(ctx, account, acc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reveal for %s: %w", account, err)
	}

	stats, err := s.pda([]byte("OracleRandomnessStats"), acc.Oracle.Bytes())
	if err != nil {
		return nil, err
	}
	escrow, err := rewardEscrow(account)
	if err != nil {
		return nil, err
	}
	state, err := s.state()
	if err != nil {
		return nil, err
	}
	data, err := instructionData(RandomnessRevealDiscriminator, params)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(s.ProgramID, solana.AccountMetaSlice{
		solana.Meta(account).WRITE(),
		solana.Meta(acc.Oracle),
		solana.Meta(acc.Queue),
		solana.Meta(stats).WRITE(),
		solana.Meta(acc.Authority).SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(solana.SysVarSlotHashesPubkey),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(escrow).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.WrappedSol),
		solana.Meta(state),
	}, data), nil
}

func (s *Switchboard) Close(_ context.Context, account, authority, payer solana.PublicKey) (solana.Instruction, error) {
	escrow, err := rewardEscrow(account)
	if err != nil {
		return nil, err
	}
	data, err := instructionData(RandomnessCloseDiscriminator)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(s.ProgramID, solana.AccountMetaSlice{
		solana.Meta(account).WRITE(),
		solana.Meta(escrow).WRITE(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(payer).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
	}, data), nil
}

// ProgramIDFor returns the oracle program of the cluster the queue lives on.
func ProgramIDFor(queue solana.PublicKey) solana.PublicKey {
	if queue.Equals(program.MainnetQueue) {
		return program.SwitchboardMainnetProgramID
	}
	return program.SwitchboardDevnetProgramID
}
