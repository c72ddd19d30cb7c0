package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	p.Publish(LayerEvent{Kind: "water"})
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafka_PublishesJSONKeyedByKind(t *testing.T) {
	cfg := ProducerConfig()
	mp := mocks.NewAsyncProducer(t, cfg)

	kinds := []string{"streets", "water"}
	for _, k := range kinds {
		want := k
		mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
			if m.Topic != "poster-layer-events" {
				return fmt.Errorf("topic=%q", m.Topic)
			}
			key, _ := m.Key.Encode()
			if string(key) != want {
				return fmt.Errorf("key=%q want %q", key, want)
			}
			b, _ := m.Value.Encode()
			var ev LayerEvent
			if err := json.Unmarshal(b, &ev); err != nil {
				return err
			}
			if ev.Kind != want || ev.State != "resolved" || ev.TS.IsZero() {
				return fmt.Errorf("event=%+v", ev)
			}
			return nil
		})
	}

	p := NewKafka(mp, "poster-layer-events", 8, nil)
	for _, k := range kinds {
		p.Publish(LayerEvent{Kind: k, State: "resolved", Source: "upstream"})
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if p.Dropped() != 0 {
		t.Fatalf("dropped=%d", p.Dropped())
	}
}

func TestKafka_ProducerErrorsAreNotFatal(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, ProducerConfig())
	mp.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	p := NewKafka(mp, "t", 1, nil)
	p.Publish(LayerEvent{Kind: "parks", State: "failed"})
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafka_PublishAfterCloseIsIgnored(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, ProducerConfig())
	p := NewKafka(mp, "t", 1, nil)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	p.Publish(LayerEvent{Kind: "beach"})
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

type recording struct {
	got      []LayerEvent
	closeErr error
}

func (r *recording) Publish(ev LayerEvent) { r.got = append(r.got, ev) }
func (r *recording) Close() error          { return r.closeErr }

func TestMulti_FansOutAndJoinsCloseErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recording{}, &recording{closeErr: boom}
	m := Multi{a, Noop{}, b}

	m.Publish(LayerEvent{Kind: "parks", State: "resolved"})
	if len(a.got) != 1 || len(b.got) != 1 || b.got[0].Kind != "parks" {
		t.Fatalf("fan-out a=%v b=%v", a.got, b.got)
	}
	if err := m.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close err=%v", err)
	}
}
