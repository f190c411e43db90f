// Package publish re-publishes decoded route events to Kafka as JSON,
// one record per event, keyed by prefix for partition affinity.
package publish

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"go.uber.org/zap"

	"github.com/bgparchive/bgparchive/internal/observability"
	"github.com/bgparchive/bgparchive/internal/store"
)

type Producer struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers []string, topic, clientID string, tlsCfg *tls.Config, saslMech sasl.Mechanism, logger *zap.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1 << 20),
	}
	if tlsCfg != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	if saslMech != nil {
		opts = append(opts, kgo.SASL(saslMech))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("publish: constructing producer client: %w", err)
	}
	return &Producer{client: client, topic: topic, logger: logger}, nil
}

// eventRecord is the JSON wire shape published for each RouteEvent.
type eventRecord struct {
	EventID   string   `json:"event_id"`
	AFI       int      `json:"afi"`
	Prefix    string   `json:"prefix"`
	PathID    uint32   `json:"path_id,omitempty"`
	Action    string   `json:"action"`
	Nexthop   string   `json:"nexthop,omitempty"`
	ASPath    string   `json:"as_path,omitempty"`
	Origin    string   `json:"origin,omitempty"`
	LocalPref *uint32  `json:"local_pref,omitempty"`
	MED       *uint32  `json:"med,omitempty"`
	CommStd   []string `json:"communities,omitempty"`
	CommExt   []string `json:"extended_communities,omitempty"`
	CommLarge []string `json:"large_communities,omitempty"`
}

// PublishBatch produces one record per row, returning once every
// produce has been acknowledged or the context is cancelled.
func (p *Producer) PublishBatch(ctx context.Context, eventID []byte, rows []store.RouteEvent) error {
	if len(rows) == 0 {
		return nil
	}

	results := make(chan error, len(rows))
	for _, e := range rows {
		body, err := json.Marshal(eventRecord{
			EventID: fmt.Sprintf("%x", eventID), AFI: e.AFI, Prefix: e.Prefix, PathID: e.PathID,
			Action: e.Action, Nexthop: e.Nexthop, ASPath: e.ASPath, Origin: e.Origin,
			LocalPref: e.LocalPref, MED: e.MED, CommStd: e.CommStd, CommExt: e.CommExt, CommLarge: e.CommLarge,
		})
		if err != nil {
			return fmt.Errorf("publish: marshaling event: %w", err)
		}
		record := &kgo.Record{Topic: p.topic, Key: []byte(e.Prefix), Value: body}
		p.client.Produce(ctx, record, func(_ *kgo.Record, err error) { results <- err })
	}

	var firstErr error
	for range rows {
		if err := <-results; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("publish: producing batch: %w", firstErr)
	}
	observability.PublishedTotal.WithLabelValues(p.topic).Add(float64(len(rows)))
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
