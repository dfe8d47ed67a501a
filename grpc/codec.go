// Package vestinggrpc serves a vesting verifier over gRPC, using
// cramberry for deterministic binary serialization.
//
// No protobuf code generation is involved. The types in
// vesting/types travel as-is via their cramberry struct tags.
package vestinggrpc

import (
	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/pkg/errors"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

// CramberryCodec implements grpc/encoding.Codec on top of cramberry.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "cramberry marshal %T", v)
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "cramberry unmarshal %T", v)
	}
	return nil
}

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
