package events

import (
	"context"
	"sync"
	"testing"
)

func TestNopPublishNeverFails(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), "payment-events", "Payment processed: 1"); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}

func TestRecorderCapturesInOrder(t *testing.T) {
	recorder := &Recorder{}
	if err := recorder.Publish(context.Background(), "shipping-events", "Shipment created: 1"); err != nil {
		t.Fatalf("publish first: %v", err)
	}
	if err := recorder.Publish(context.Background(), "shipping-events", "Shipment cancelled: 1"); err != nil {
		t.Fatalf("publish second: %v", err)
	}

	records := recorder.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Message != "Shipment created: 1" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Topic != "shipping-events" {
		t.Fatalf("unexpected second topic: %+v", records[1])
	}
}

func TestRecorderIsSafeForConcurrentUse(t *testing.T) {
	recorder := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = recorder.Publish(context.Background(), "payment-events", "Payment processed: 7")
		}()
	}
	wg.Wait()
	if got := len(recorder.Records()); got != 20 {
		t.Fatalf("expected 20 records, got %d", got)
	}
}
