package leaf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/sha3"
)

var ErrMalformedReceipt = errors.New("malformed receipt")

const (
	schemaV1 uint8 = 0 // LeafSchema::V1 enum tag

	// noop event framing
	tagApplicationData uint8 = 1
	tagEventV1         uint8 = 0
	tagLeafSchemaEvent uint8 = 1
	tagVersionV1       uint8 = 0

	// PrefixSize is the framing stripped before the schema itself.
	PrefixSize = 8

	// SchemaSize is the borsh size of a V1 leaf schema.
	SchemaSize = 1 + 32*3 + 8 + 32*2
)

// Schema is a V1 compressed-asset leaf as emitted on mint.
type Schema struct {
	ID          solana.PublicKey
	Owner       solana.PublicKey
	Delegate    solana.PublicKey
	Nonce       uint64
	DataHash    [32]byte
	CreatorHash [32]byte
}

func (s Schema) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(schemaV1); err != nil {
		return err
	}
	for _, k := range []solana.PublicKey{s.ID, s.Owner, s.Delegate} {
		if err := enc.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	if err := enc.WriteUint64(s.Nonce, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteBytes(s.DataHash[:], false); err != nil {
		return err
	}
	return enc.WriteBytes(s.CreatorHash[:], false)
}

func (s *Schema) UnmarshalWithDecoder(dec *bin.Decoder) error {
	version, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if version != schemaV1 {
		return fmt.Errorf("unsupported leaf schema version %d", version)
	}
	for _, k := range []*solana.PublicKey{&s.ID, &s.Owner, &s.Delegate} {
		b, err := dec.ReadNBytes(32)
		if err != nil {
			return err
		}
		copy(k[:], b)
	}
	if s.Nonce, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	for _, h := range []*[32]byte{&s.DataHash, &s.CreatorHash} {
		b, err := dec.ReadNBytes(32)
		if err != nil {
			return err
		}
		copy(h[:], b)
	}
	return nil
}

func (s Schema) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := s.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a schema from the start of data; trailing bytes are ignored.
func Decode(data []byte) (Schema, error) {
	var s Schema
	if err := s.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return Schema{}, fmt.Errorf("%w: leaf schema: %v", ErrMalformedReceipt, err)
	}
	return s, nil
}

// Hash is the merkle leaf the registry stores for this schema.
func (s Schema) Hash() [32]byte {
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], s.Nonce)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{1}) // Version::V1
	h.Write(s.ID[:])
	h.Write(s.Owner[:])
	h.Write(s.Delegate[:])
	h.Write(nonce[:])
	h.Write(s.DataHash[:])
	h.Write(s.CreatorHash[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// EventPayload frames the schema and its leaf hash the way the log wrapper
// receives them on mint.
func EventPayload(s Schema) ([]byte, error) {
	body, err := s.Encode()
	if err != nil {
		return nil, err
	}
	hash := s.Hash()
	appData := make([]byte, 0, 2+len(body)+len(hash))
	appData = append(appData, tagLeafSchemaEvent, tagVersionV1)
	appData = append(appData, body...)
	appData = append(appData, hash[:]...)

	out := make([]byte, 0, 6+len(appData))
	out = append(out, tagApplicationData, tagEventV1)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(appData)))
	return append(out, appData...), nil
}

// isLeafEvent reports whether payload carries the leaf-schema event framing
// with a length prefix consistent with the payload.
func isLeafEvent(payload []byte) bool {
	if len(payload) < PrefixSize+SchemaSize {
		return false
	}
	if payload[0] != tagApplicationData || payload[1] != tagEventV1 {
		return false
	}
	if int(binary.LittleEndian.Uint32(payload[2:6])) != len(payload)-6 {
		return false
	}
	return payload[6] == tagLeafSchemaEvent && payload[7] == tagVersionV1
}
