package kafka

import (
	"encoding/json"
	"testing"

	"fare-estimator/internal/config"
	"fare-estimator/internal/logger"
	"fare-estimator/internal/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
)

func testLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

func TestPublishEvent(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev models.Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != models.EventTypeFareQuoted {
			t.Errorf("unexpected event type %q", ev.Type)
		}
		return nil
	})

	event := models.Event{ID: uuid.New(), Type: models.EventTypeFareQuoted}
	p := &Producer{
		producer: mp,
		log:      testLogger(),
		topics:   &config.Topics{Quotes: "fare-quotes"},
	}
	if err := p.publishEvent("fare-quotes", event); err != nil {
		t.Fatalf("expected publish success, got %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Fatalf("failed to close mock producer: %v", err)
	}
}

func TestProducer_WrapperMethods(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev struct {
			Type models.EventType      `json:"type"`
			Data models.FareQuotedData `json:"data"`
		}
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != models.EventTypeFareQuoted || ev.Data.Amount != 60 || ev.Data.Passengers != 3 {
			t.Errorf("unexpected quote event: %+v", ev)
		}
		return nil
	})
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev struct {
			Type models.EventType         `json:"type"`
			Data models.CatalogLoadedData `json:"data"`
		}
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != models.EventTypeCatalogLoaded || ev.Data.Version != "2024-07" {
			t.Errorf("unexpected catalog event: %+v", ev)
		}
		return nil
	})

	p := &Producer{
		producer: mp,
		log:      testLogger(),
		topics:   &config.Topics{Quotes: "fare-quotes", Catalog: "fare-catalog"},
	}

	quote := models.FareQuotedData{
		QuoteID:    uuid.New(),
		Mode:       "taxi",
		Category:   "Within Kingstown (Per Passenger)",
		Item:       "Sion Hill",
		Passengers: 3,
		Result:     "fare",
		Amount:     60,
	}
	if err := p.PublishFareQuoted(quote); err != nil {
		t.Fatalf("PublishFareQuoted failed: %v", err)
	}
	if err := p.PublishCatalogLoaded(models.CatalogLoadedData{Source: "embedded", Version: "2024-07", Categories: 7}); err != nil {
		t.Fatalf("PublishCatalogLoaded failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestProducer_PublishEvent_Failure(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &Producer{
		producer: mp,
		log:      testLogger(),
		topics:   &config.Topics{Quotes: "fare-quotes"},
	}

	ev := models.Event{ID: uuid.New(), Type: models.EventTypeFareQuoted}
	err := p.publishEvent("fare-quotes", ev)
	if err == nil {
		t.Fatalf("expected error on send failure")
	}
	_ = p.Close()
}

func TestNewProducer_Error(t *testing.T) {
	cfg := &config.KafkaConfig{Brokers: []string{"localhost:0"}}
	if _, err := NewProducer(cfg, testLogger()); err == nil {
		t.Fatalf("expected error creating producer")
	}
}

func TestNewProducer_MockBroker(t *testing.T) {
	broker := sarama.NewMockBroker(t, 1)
	defer broker.Close()

	broker.SetHandlerByMap(map[string]sarama.MockResponse{
		"MetadataRequest": sarama.NewMockMetadataResponse(t).
			SetBroker(broker.Addr(), broker.BrokerID()).
			SetLeader("fare-quotes", 0, broker.BrokerID()),
		"ProduceRequest": sarama.NewMockProduceResponse(t),
	})

	cfg := &config.KafkaConfig{Brokers: []string{broker.Addr()}, Topics: config.Topics{Quotes: "fare-quotes"}}
	p, err := NewProducer(cfg, testLogger())
	if err != nil {
		t.Fatalf("expected producer, got %v", err)
	}
	defer p.Close()

	if err := p.PublishFareQuoted(models.FareQuotedData{QuoteID: uuid.New(), Result: "none"}); err != nil {
		t.Fatalf("publish via mock broker failed: %v", err)
	}
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on nil producer")
	}
	p = &Producer{}
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on empty producer, got %v", err)
	}
}
