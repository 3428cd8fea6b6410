package feeder

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gear-feeds/oracle-feeder/internal/beacon"
	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
	"github.com/gear-feeds/oracle-feeder/internal/config"
	"github.com/gear-feeds/oracle-feeder/internal/logging"
)

const testProgramID = "0x" + "11" + "1111111111111111111111111111111111111111111111111111111111111b" // 32 bytes

// fakeNode is an in-memory NodeClient recording every call.
type fakeNode struct {
	mu sync.Mutex

	queue     [][]string
	readErr   error
	gasErr    error
	nonceErr  error
	submitErr error
	ackErr    error

	gasCalls    int
	submitCalls int
	submitted   []*chain.SignedMessage
	submittedCh chan *chain.SignedMessage
}

func (f *fakeNode) ReadState(ctx context.Context, programID, queryHex string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	raw, err := json.Marshal(map[string]interface{}{"RequestsQueue": f.queue})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (f *fakeNode) CalculateHandleGas(ctx context.Context, source, programID, payloadHex string, value uint64) (*chain.GasInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gasCalls++
	if f.gasErr != nil {
		return nil, f.gasErr
	}
	return &chain.GasInfo{MinLimit: 1000000}, nil
}

func (f *fakeNode) AccountNonce(ctx context.Context, address string) (uint64, error) {
	if f.nonceErr != nil {
		return 0, f.nonceErr
	}
	return 1, nil
}

func (f *fakeNode) SubmitMessage(ctx context.Context, msg *chain.SignedMessage) (string, error) {
	f.mu.Lock()
	f.submitCalls++
	if f.submitErr != nil {
		f.mu.Unlock()
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, msg)
	ch := f.submittedCh
	f.mu.Unlock()

	if ch != nil {
		ch <- msg
	}
	return fmt.Sprintf("0x%04x", f.submitCalls), nil
}

func (f *fakeNode) AwaitFinalized(ctx context.Context, hash string, pollInterval time.Duration) error {
	return f.ackErr
}

func (f *fakeNode) submissions() []*chain.SignedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*chain.SignedMessage, len(f.submitted))
	copy(out, f.submitted)
	return out
}

// fakeSigner is a deterministic test identity.
type fakeSigner struct {
	priv ed25519.PrivateKey
}

func newFakeSigner() *fakeSigner {
	seed := make([]byte, ed25519.SeedSize)
	return &fakeSigner{priv: ed25519.NewKeyFromSeed(seed)}
}

func (s *fakeSigner) Address() string {
	return "0x" + hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}

func (s *fakeSigner) Sign(msg []byte) []byte {
	return ed25519.Sign(s.priv, msg)
}

// fakeStream is a scripted event stream.
type fakeStream struct {
	events    chan chain.UserMessageEvent
	err       error
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan chain.UserMessageEvent, 16)}
}

func (s *fakeStream) Events() <-chan chain.UserMessageEvent { return s.events }
func (s *fakeStream) Err() error                            { return s.err }
func (s *fakeStream) Close()                                { s.closeOnce.Do(func() { close(s.events) }) }

// testMetadata writes a metadata module declaring both action variants.
func testMetadata(t *testing.T) *codec.Metadata {
	t.Helper()
	content := append([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		[]byte("RequestValue.ChangeManager.UpdateValue.SetRandomValue")...)
	path := filepath.Join(t.TempDir(), "oracle.meta.wasm")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	meta, err := codec.LoadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	return meta
}

// fakeBeacon serves scripted rounds.
type fakeBeacon struct {
	mu      sync.Mutex
	records []*beacon.Record
	err     error
	calls   int
}

func (b *fakeBeacon) Latest(ctx context.Context) (*beacon.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	record := b.records[0]
	if len(b.records) > 1 {
		b.records = b.records[1:]
	}
	return record, nil
}

func newValueService(t *testing.T, node *fakeNode, stream *fakeStream) *Service {
	t.Helper()
	cfg := Config{
		Node:      node,
		Signer:    newFakeSigner(),
		Metadata:  testMetadata(t),
		ProgramID: testProgramID,
		Variant:   config.VariantValue,
		Producer:  NewLocalRandom(10_000_000_000_000),
		Subscribe: func(ctx context.Context) (EventStream, error) { return stream, nil },
		Workers:   2,
		Logger:    logging.Nop(),
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

// drainJobs collects every queued job without blocking.
func drainJobs(s *Service) []job {
	var out []job
	for {
		select {
		case j := <-s.jobs:
			out = append(out, j)
		default:
			return out
		}
	}
}
