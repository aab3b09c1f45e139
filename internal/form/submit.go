package form

import (
	"context"
	"log/slog"
	"time"
)

// Receipt is the remote store's acknowledgement of a batch. Submitter fills
// Records with the batch that was sent.
type Receipt struct {
	Accepted int
	Reply    map[string]any
	Records  []Record
}

// Sink delivers a batch of records to the remote store.
type Sink interface {
	Submit(ctx context.Context, records []Record) (Receipt, error)
}

// Clock supplies the submission instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Submitter validates, builds and sends a session's records.
type Submitter struct {
	sink   Sink
	clock  Clock
	stamp  Stamp
	logger *slog.Logger
}

// NewSubmitter creates a submitter. A nil clock uses SystemClock and a nil
// logger uses slog.Default().
func NewSubmitter(sink Sink, clock Clock, stamp Stamp, logger *slog.Logger) *Submitter {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{sink: sink, clock: clock, stamp: stamp, logger: logger}
}

// Prepare validates s and builds its records without sending anything.
func (sub *Submitter) Prepare(s Session) ([]Record, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return Build(s, sub.clock.Now(), sub.stamp)
}

// Submit sends the session's records. On success it returns the reset session
// (selection cleared, responses dropped); on any failure it returns s unchanged
// so the operator can retry with the same input.
func (sub *Submitter) Submit(ctx context.Context, s Session) (Session, Receipt, error) {
	records, err := sub.Prepare(s)
	if err != nil {
		sub.logger.Debug("submission blocked", slog.String("session", s.ID()), slog.String("error", err.Error()))
		return s, Receipt{}, err
	}

	sub.logger.Info("submitting records",
		slog.String("session", s.ID()),
		slog.String("line", s.Line()),
		slog.String("control", string(s.Control())),
		slog.Int("records", len(records)))

	receipt, err := sub.sink.Submit(ctx, records)
	if err != nil {
		sub.logger.Error("submission failed", slog.String("session", s.ID()), slog.String("error", err.Error()))
		return s, Receipt{}, err
	}

	receipt.Records = records
	sub.logger.Info("submission accepted", slog.String("session", s.ID()), slog.Int("accepted", receipt.Accepted))
	return s.Reset(), receipt, nil
}
