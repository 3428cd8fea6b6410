package feeder

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

// actionName maps a job kind to its declared metadata variant.
var actionName = map[string]string{
	"update_value":     "UpdateValue",
	"set_random_value": "SetRandomValue",
}

// submit runs one fire-and-forget submission: validate against the schema,
// encode, price, sign, broadcast, await acknowledgment. Every failure is
// logged and swallowed here; nothing propagates to the orchestrator and
// nothing is retried. Exactly one broadcast attempt per job that reaches
// the broadcast step.
func (s *Service) submit(ctx context.Context, j job) {
	attempt := uuid.NewString()
	fields := map[string]interface{}{
		"attempt": attempt,
		"kind":    j.kind,
		"target":  j.target,
	}

	fail := func(stage string, err error) {
		s.metrics.submissionsFailed.Inc()
		fields["stage"] = stage
		fields["error"] = err.Error()
		s.logger.Error(ctx, "submission failed", fields)
	}

	// The metadata is loaded once at startup; revalidating the variant here
	// keeps the schema check on every submission path.
	if err := s.cfg.Metadata.EnsureAction(actionName[j.kind]); err != nil {
		fail("schema", err)
		return
	}

	payloadHex, err := codec.EncodeActionHex(j.action)
	if err != nil {
		fail("encode", err)
		return
	}

	signer := s.cfg.Signer.Address()

	gas, err := s.cfg.Node.CalculateHandleGas(ctx, signer, s.cfg.ProgramID, payloadHex, 0)
	if err != nil {
		fail("gas", err)
		return
	}

	nonce, err := s.cfg.Node.AccountNonce(ctx, signer)
	if err != nil {
		fail("nonce", err)
		return
	}

	msg := chain.Message{
		Destination: s.cfg.ProgramID,
		Payload:     payloadHex,
		GasLimit:    gas.MinLimit,
		Value:       0,
		Nonce:       nonce,
	}
	signingBytes, err := msg.SigningPayload()
	if err != nil {
		fail("sign", err)
		return
	}

	signed := &chain.SignedMessage{
		Message:   msg,
		Signer:    signer,
		Signature: "0x" + hex.EncodeToString(s.cfg.Signer.Sign(signingBytes)),
	}

	hash, err := s.cfg.Node.SubmitMessage(ctx, signed)
	if err != nil {
		fail("broadcast", err)
		return
	}
	fields["message_hash"] = hash

	if err := s.cfg.Node.AwaitFinalized(ctx, hash, s.cfg.StatusPollInterval); err != nil {
		fail("acknowledgment", err)
		return
	}

	s.metrics.submissionsOK.Inc()
	fields["gas_limit"] = gas.MinLimit
	s.logger.Info(ctx, "submission finalized", fields)
}
