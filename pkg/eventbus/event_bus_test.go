package eventbus

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/pkg/logging"
)

type args struct {
	data interface{}
}

func TestPublisher_Publish_NoSubscribers(t *testing.T) {
	type other struct {
		data interface{}
	}
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)
	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *args) {
		t.Error("should not be called")
	})
	publisher.Publish(&other{data: "test"})

	if output := logBuffer.String(); output == "" {
		t.Error("should have logged")
	} else if !strings.Contains(output, "eventbus.Publish: no matching subscribers") {
		t.Errorf("should have contained no matching subscribers but got: %q", output)
	}
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	called := false
	var data interface{}
	publisher.Subscribe(func(e *args) {
		called = true
		data = e.data
	})
	publisher.Publish(&args{data: "test"})
	if !called {
		t.Error("should be called")
	}
	if data != "test" {
		t.Errorf("expected: %v, got: %v", "test", data)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(nil)
	handler := func(e *args) {
		t.Error("should not be called after unsubscribe")
	}
	publisher.Subscribe(handler)
	publisher.Unsubscribe(handler)
	if publisher.SubscribersCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", publisher.SubscribersCount())
	}
	publisher.Publish(&args{data: "after"})
}

func TestPublisher_UnsubscribeRemovesOnlyMatchingHandler(t *testing.T) {
	publisher := NewEventPublisher(nil)
	kept := false
	keep := func(e *args) { kept = true }
	drop := func(e *args) {
		t.Error("should not be called after unsubscribe")
	}
	publisher.Subscribe(keep)
	publisher.Subscribe(drop)
	publisher.Unsubscribe(drop)
	if publisher.SubscribersCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", publisher.SubscribersCount())
	}
	publisher.Publish(&args{data: "test"})
	if !kept {
		t.Error("remaining subscriber should still be called")
	}
}

func TestMatchSignature(t *testing.T) {
	type first struct{}
	type second struct{}
	if !MatchSignature(func(e *first) {}, []interface{}{&first{}}) {
		t.Error("expected true")
	}
	if MatchSignature(func(e *first) {}, []interface{}{&second{}}) {
		t.Error("expected false")
	}
	if MatchSignature(func(e *first) {}, []interface{}{}) {
		t.Error("expected false")
	}
	if MatchSignature(func(e *first) {}, []interface{}{&first{}, &first{}}) {
		t.Error("expected false")
	}
	if !MatchSignature(func(ctx context.Context) {}, []interface{}{context.Background()}) {
		t.Error("expected true")
	}
}
